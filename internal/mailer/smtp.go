package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/agriportal/agriportal-backend/pkg/config"
)

// SMTPTransport sends through an SMTP relay. A new connection is dialed per message.
type SMTPTransport struct {
	host     string
	port     int
	username string
	password string
	policy   mail.TLSPolicy
	timeout  time.Duration
}

// NewSMTPTransport validates the SMTP settings.
func NewSMTPTransport(cfg config.MailConfig) (*SMTPTransport, error) {
	if strings.TrimSpace(cfg.SMTPHost) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	policy, err := parseTLSPolicy(cfg.SMTPTLS)
	if err != nil {
		return nil, err
	}
	return &SMTPTransport{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		policy:   policy,
		timeout:  cfg.SMTPTimeout,
	}, nil
}

func (t *SMTPTransport) Name() string { return config.MailTransportSMTP }

func (t *SMTPTransport) Send(ctx context.Context, from Address, msg Message) error {
	m, err := buildMsg(from, msg)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(t.port),
		mail.WithTLSPolicy(t.policy),
	}
	if t.timeout > 0 {
		opts = append(opts, mail.WithTimeout(t.timeout))
	}
	if t.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(t.username),
			mail.WithPassword(t.password),
		)
	}

	client, err := mail.NewClient(t.host, opts...)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp deliver to %s:%d: %w", t.host, t.port, err)
	}
	return nil
}

func parseTLSPolicy(value string) (mail.TLSPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "opportunistic":
		return mail.TLSOpportunistic, nil
	case "mandatory", "required":
		return mail.TLSMandatory, nil
	case "none", "off":
		return mail.NoTLS, nil
	default:
		return mail.TLSOpportunistic, fmt.Errorf("unsupported smtp tls policy %q", value)
	}
}
