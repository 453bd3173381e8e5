package main

import (
	"context"
	"encoding/json"
	"log"
	"os/signal"
	"syscall"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/ruthwik162/OTSchedular-Backend/internal/config"
	"github.com/ruthwik162/OTSchedular-Backend/internal/logger"
	"github.com/ruthwik162/OTSchedular-Backend/internal/notify"
)

// notify-worker drains the notification queue and delivers mail over
// SMTP. Failed deliveries are logged and requeued once; the booking that
// produced them has long since committed.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if cfg.AMQPURL == "" {
		zlog.Fatal("AMQP_URL is required for the notify-worker")
	}
	if cfg.SMTPHost == "" {
		zlog.Fatal("SMTP_HOST is required for the notify-worker")
	}

	zlog.Info("notify-worker starting up",
		zap.String("env", cfg.Env),
		zap.String("queue", cfg.NotifyQueue))

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := amqp091.Dial(cfg.AMQPURL)
	if err != nil {
		zlog.Fatal("rabbitmq connection error", zap.Error(err))
	}
	defer conn.Close()

	deliveries, channel, err := notify.Consume(conn, cfg.NotifyQueue)
	if err != nil {
		zlog.Fatal("rabbitmq consume error", zap.Error(err))
	}
	defer channel.Close()

	sender := notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPSender)

	zlog.Info("consuming notifications")

	for {
		select {
		case <-rootCtx.Done():
			zlog.Info("shutting down notify-worker")
			return
		case delivery, ok := <-deliveries:
			if !ok {
				zlog.Error("delivery channel closed")
				return
			}
			handleDelivery(rootCtx, zlog, sender, delivery)
		}
	}
}

func handleDelivery(ctx context.Context, zlog *zap.Logger, sender *notify.SMTPSender, delivery amqp091.Delivery) {
	var msg notify.Message
	if err := json.Unmarshal(delivery.Body, &msg); err != nil {
		zlog.Error("malformed notification payload, dropping", zap.Error(err))
		_ = delivery.Nack(false, false)
		return
	}

	if err := sender.Send(ctx, msg); err != nil {
		zlog.Error("send mail",
			zap.Strings("recipients", msg.Recipients),
			zap.String("subject", msg.Subject),
			zap.Error(err))
		// Requeue only on first failure so a dead address cannot loop forever.
		_ = delivery.Nack(false, !delivery.Redelivered)
		return
	}

	zlog.Info("mail delivered",
		zap.Strings("recipients", msg.Recipients),
		zap.String("subject", msg.Subject))
	_ = delivery.Ack(false)
}
