package notify

import (
	"context"

	"go.uber.org/zap"
)

// Message is one outbound mail. HTML selects the content type.
type Message struct {
	Recipients []string `json:"recipients"`
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
	HTML       bool     `json:"html"`
}

// Notifier delivers messages best-effort. Callers on the booking path must
// treat failures as log-only: a committed booking is never rolled back
// because mail could not be sent.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

type logNotifier struct {
	log *zap.Logger
}

// NewLogNotifier returns a notifier that only logs, for environments
// without SMTP or a queue configured.
func NewLogNotifier(log *zap.Logger) Notifier {
	return &logNotifier{log: log}
}

func (n *logNotifier) Send(_ context.Context, msg Message) error {
	n.log.Info("notification (not delivered, no transport configured)",
		zap.Strings("recipients", msg.Recipients),
		zap.String("subject", msg.Subject))
	return nil
}
