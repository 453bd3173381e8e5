package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
)

// Publisher pushes notifications onto a durable RabbitMQ queue. Delivery
// is handled out of process by the notify-worker.
type Publisher struct {
	channel *amqp091.Channel
	queue   string
}

func NewPublisher(conn *amqp091.Connection, queue string) (*Publisher, error) {
	channel, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}

	return &Publisher{channel: channel, queue: queue}, nil
}

func (p *Publisher) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	publishing := amqp091.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp091.Persistent,
	}

	if err := p.channel.PublishWithContext(ctx, "", p.queue, false, false, publishing); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}

	return nil
}

func (p *Publisher) Close() error {
	return p.channel.Close()
}

// Consume opens a delivery stream for the worker. Messages are acked by
// the caller after a successful send, so a crashed worker leaves them
// queued.
func Consume(conn *amqp091.Connection, queue string) (<-chan amqp091.Delivery, *amqp091.Channel, error) {
	channel, err := conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}

	deliveries, err := channel.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("consume queue %s: %w", queue, err)
	}

	return deliveries, channel, nil
}
