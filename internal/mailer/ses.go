package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/agriportal/agriportal-backend/pkg/config"
)

// SESAPI is the subset of the SES client used for raw sends.
type SESAPI interface {
	SendRawEmail(ctx context.Context, params *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error)
}

// SESTransport sends raw MIME through Amazon SES so attachments survive.
type SESTransport struct {
	client SESAPI
}

// NewSESTransport loads the default AWS credential chain for the configured region.
func NewSESTransport(ctx context.Context, cfg config.MailConfig) (*SESTransport, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.SESRegion))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return &SESTransport{client: ses.NewFromConfig(awsCfg)}, nil
}

// NewSESTransportWithClient wraps an existing SES client.
func NewSESTransportWithClient(client SESAPI) *SESTransport {
	return &SESTransport{client: client}
}

func (t *SESTransport) Name() string { return config.MailTransportSES }

func (t *SESTransport) Send(ctx context.Context, from Address, msg Message) error {
	raw, err := RawMIME(from, msg)
	if err != nil {
		return err
	}
	out, err := t.client.SendRawEmail(ctx, &ses.SendRawEmailInput{
		Source:       aws.String(from.Email),
		Destinations: msg.To,
		RawMessage:   &types.RawMessage{Data: raw},
	})
	if err != nil {
		return fmt.Errorf("ses send raw email: %w", err)
	}
	if out == nil || out.MessageId == nil {
		return fmt.Errorf("ses send raw email: empty message id")
	}
	return nil
}
