package mailer

import (
	"context"

	"github.com/agriportal/agriportal-backend/pkg/config"
	"github.com/agriportal/agriportal-backend/pkg/logger"
)

// LogTransport writes messages to the structured log instead of sending them.
type LogTransport struct {
	logg *logger.Logger
}

func NewLogTransport(logg *logger.Logger) *LogTransport {
	if logg == nil {
		logg = logger.Nop()
	}
	return &LogTransport{logg: logg}
}

func (t *LogTransport) Name() string { return config.MailTransportLog }

func (t *LogTransport) Send(ctx context.Context, from Address, msg Message) error {
	attachments := make([]map[string]any, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		attachments = append(attachments, map[string]any{
			"filename":     a.Filename,
			"content_type": a.ContentType,
			"bytes":        len(a.Data),
		})
	}
	ctx = t.logg.WithFields(ctx, map[string]any{
		"from":        from.Email,
		"to":          msg.To,
		"subject":     msg.Subject,
		"attachments": attachments,
		"html_bytes":  len(msg.HTML),
	})
	t.logg.Info(ctx, "mail.logged")
	return nil
}

// NewTransport selects the transport named by cfg.
func NewTransport(ctx context.Context, cfg config.MailConfig, logg *logger.Logger) (Transport, error) {
	switch cfg.TransportName() {
	case config.MailTransportSMTP:
		return NewSMTPTransport(cfg)
	case config.MailTransportSES:
		return NewSESTransport(ctx, cfg)
	default:
		return NewLogTransport(logg), nil
	}
}
