package mail

import (
	"context"
	"log/slog"
)

// NopSender drops every message.
type NopSender struct{}

var _ Sender = NopSender{}

func (NopSender) Send(Message)    {}
func (NopSender) SendError(error) {}

// LogTransport delivers envelopes to a logger instead of a mail server. It is
// used when no mail server is configured.
type LogTransport struct {
	Logger *slog.Logger
}

var _ Transport = &LogTransport{}

func (t *LogTransport) Deliver(ctx context.Context, e Envelope) error {
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "mail", "from", e.From, "to", e.To, "subject", e.Subject, "date", e.Date)
	return nil
}
