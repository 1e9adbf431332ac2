package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/agriportal/agriportal-backend/pkg/config"
)

type fakeSES struct {
	input *ses.SendRawEmailInput
	err   error
}

func (f *fakeSES) SendRawEmail(_ context.Context, params *ses.SendRawEmailInput, _ ...func(*ses.Options)) (*ses.SendRawEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendRawEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func sampleMessage() Message {
	return Message{
		Kind:    KindRegistrationDecision,
		To:      []string{"owner@acme.test"},
		Subject: "Your registration has been approved",
		HTML:    "<p>approved</p>",
		Attachments: []Attachment{{
			Filename:    "certificate-PCA-1.pdf",
			ContentType: ContentTypePDF,
			Data:        []byte("%PDF-1.3 fake"),
		}},
	}
}

func TestSESTransportSendsRawMIME(t *testing.T) {
	client := &fakeSES{}
	transport := NewSESTransportWithClient(client)

	require.NoError(t, transport.Send(context.Background(), sender, sampleMessage()))
	require.NotNil(t, client.input)
	assert.Equal(t, "no-reply@agriportal.test", aws.ToString(client.input.Source))
	assert.Equal(t, []string{"owner@acme.test"}, client.input.Destinations)

	raw := string(client.input.RawMessage.Data)
	assert.Contains(t, raw, "Subject: Your registration has been approved")
	assert.Contains(t, raw, "application/pdf")
	assert.Contains(t, raw, "certificate-PCA-1.pdf")
	assert.Contains(t, raw, "text/html")
}

func TestSESTransportPropagatesErrors(t *testing.T) {
	transport := NewSESTransportWithClient(&fakeSES{err: errors.New("throttled")})
	err := transport.Send(context.Background(), sender, sampleMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestRawMIMERequiresRecipients(t *testing.T) {
	msg := sampleMessage()
	msg.To = nil
	_, err := RawMIME(sender, msg)
	assert.Error(t, err)
}

func TestNewSMTPTransport(t *testing.T) {
	_, err := NewSMTPTransport(config.MailConfig{})
	assert.Error(t, err)

	_, err = NewSMTPTransport(config.MailConfig{SMTPHost: "smtp.test", SMTPTLS: "sometimes"})
	assert.Error(t, err)

	tr, err := NewSMTPTransport(config.MailConfig{SMTPHost: "smtp.test", SMTPPort: 2525, SMTPTLS: "mandatory"})
	require.NoError(t, err)
	assert.Equal(t, mail.TLSMandatory, tr.policy)
	assert.Equal(t, config.MailTransportSMTP, tr.Name())
}

func TestNewTransportDefaultsToLog(t *testing.T) {
	tr, err := NewTransport(context.Background(), config.MailConfig{}, nil)
	require.NoError(t, err)
	assert.Equal(t, config.MailTransportLog, tr.Name())
	assert.NoError(t, tr.Send(context.Background(), sender, sampleMessage()))
}
