package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agriportal/agriportal-backend/internal/certificates"
	"github.com/agriportal/agriportal-backend/pkg/config"
	"github.com/agriportal/agriportal-backend/pkg/db/models"
	"github.com/agriportal/agriportal-backend/pkg/enums"
)

type recordingTransport struct {
	sent []Message
	err  error
}

func (r *recordingTransport) Name() string { return "recording" }

func (r *recordingTransport) Send(_ context.Context, _ Address, msg Message) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

type failingRenderer struct{}

func (failingRenderer) Render(models.Registration) (*certificates.Certificate, error) {
	return nil, errors.New("font missing")
}

type panickingRenderer struct{}

func (panickingRenderer) Render(models.Registration) (*certificates.Certificate, error) {
	panic("nil layout")
}

var sender = Address{Name: "AgriPortal Registrations", Email: "no-reply@agriportal.test"}

func certConfig() config.CertificateConfig {
	return config.CertificateConfig{
		Country: "Republic of the Philippines", Department: "Department of Agriculture",
		Authority: "Philippine Coconut Authority", Office: "Regional Office",
		Signatory: "Regional Manager", NumberPrefix: "PCA", ValidityYears: 1,
	}
}

func registration(status enums.ApplicationStatus) models.Registration {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	until := now.AddDate(1, 0, 0)
	number := "PCA-2025-ABCDEF12"
	return models.Registration{
		ID:                uuid.New(),
		BusinessName:      "Acme Coconuts",
		ContactPerson:     "Juana Cruz",
		Email:             "owner@acme.test",
		OfficeAddress:     "Boac, Marinduque",
		ApplicationType:   enums.ApplicationTypeNew,
		FilingDate:        now.AddDate(0, -1, 0),
		RegistrationDate:  &now,
		ValidUntil:        &until,
		CertificateNumber: &number,
		Status:            status,
	}
}

func TestSendRegistrationDecision_ApprovedAttachesCertificate(t *testing.T) {
	transport := &recordingTransport{}
	d, err := NewDispatcher(transport, sender, certificates.NewGenerator(certConfig()), nil, nil)
	require.NoError(t, err)

	res := d.SendRegistrationDecision(context.Background(), registration(enums.ApplicationStatusApproved))
	require.NoError(t, res.Err)
	assert.True(t, res.Sent)
	assert.True(t, res.Attached)

	require.Len(t, transport.sent, 1)
	msg := transport.sent[0]
	assert.Equal(t, []string{"owner@acme.test"}, msg.To)
	assert.Equal(t, KindRegistrationDecision, msg.Kind)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, ContentTypePDF, msg.Attachments[0].ContentType)
	assert.Equal(t, "certificate-PCA-2025-ABCDEF12.pdf", msg.Attachments[0].Filename)
	assert.NotEmpty(t, msg.Attachments[0].Data)
	assert.Contains(t, msg.HTML, colorApproved)
	assert.Contains(t, msg.HTML, "is attached")
}

func TestSendRegistrationDecision_RejectedHasNoAttachment(t *testing.T) {
	transport := &recordingTransport{}
	d, err := NewDispatcher(transport, sender, certificates.NewGenerator(certConfig()), nil, nil)
	require.NoError(t, err)

	res := d.SendRegistrationDecision(context.Background(), registration(enums.ApplicationStatusRejected))
	require.NoError(t, res.Err)
	assert.True(t, res.Sent)
	assert.False(t, res.Attached)
	require.Len(t, transport.sent, 1)
	assert.Empty(t, transport.sent[0].Attachments)
	assert.Contains(t, transport.sent[0].HTML, colorRejected)
	assert.NotContains(t, transport.sent[0].HTML, colorApproved)
}

func TestSendRegistrationDecision_RenderFailureDegrades(t *testing.T) {
	for name, renderer := range map[string]certificates.Renderer{
		"error": failingRenderer{},
		"panic": panickingRenderer{},
		"nil":   nil,
	} {
		t.Run(name, func(t *testing.T) {
			transport := &recordingTransport{}
			d, err := NewDispatcher(transport, sender, renderer, nil, nil)
			require.NoError(t, err)

			res := d.SendRegistrationDecision(context.Background(), registration(enums.ApplicationStatusApproved))
			assert.True(t, res.Sent, "email still goes out")
			assert.False(t, res.Attached)
			assert.Error(t, res.Err)
			require.Len(t, transport.sent, 1)
			assert.Empty(t, transport.sent[0].Attachments)
			assert.Contains(t, transport.sent[0].HTML, "could not be attached")
		})
	}
}

func TestSendRegistrationDecision_TransportFailureIsReported(t *testing.T) {
	transport := &recordingTransport{err: errors.New("connection refused")}
	d, err := NewDispatcher(transport, sender, failingRenderer{}, nil, nil)
	require.NoError(t, err)

	res := d.SendRegistrationDecision(context.Background(), registration(enums.ApplicationStatusApproved))
	assert.False(t, res.Sent)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "font missing")
	assert.Contains(t, res.Err.Error(), "connection refused")
}

func TestSendPermitDecision(t *testing.T) {
	transport := &recordingTransport{}
	d, err := NewDispatcher(transport, sender, nil, nil, nil)
	require.NoError(t, err)

	p := models.Permit{
		ID:                uuid.New(),
		PermitType:        enums.PermitTypeTransport,
		ApplicantName:     "Pedro Reyes",
		Email:             "pedro@example.test",
		Municipality:      enums.MunicipalityGasan,
		NumberOfTrees:     12,
		VolumeCubicMeters: decimal.RequireFromString("3.5"),
		Status:            enums.ApplicationStatusApproved,
	}
	res := d.SendPermitDecision(context.Background(), p)
	require.NoError(t, res.Err)
	assert.True(t, res.Sent)
	require.Len(t, transport.sent, 1)
	msg := transport.sent[0]
	assert.Equal(t, KindPermitDecision, msg.Kind)
	assert.Equal(t, "Your transport permit application has been approved", msg.Subject)
	assert.Contains(t, msg.HTML, "Gasan")
	assert.Contains(t, msg.HTML, "3.5")
	assert.Empty(t, msg.Attachments)
}

func TestNewDispatcherValidates(t *testing.T) {
	_, err := NewDispatcher(nil, sender, nil, nil, nil)
	assert.Error(t, err)
	_, err = NewDispatcher(&recordingTransport{}, Address{}, nil, nil, nil)
	assert.Error(t, err)
}

func TestComposeEscapesUserInput(t *testing.T) {
	reg := registration(enums.ApplicationStatusRejected)
	reg.BusinessName = `<script>alert("x")</script>`
	msg, err := ComposeRegistrationDecision(reg, nil, sender.Name)
	require.NoError(t, err)
	assert.False(t, strings.Contains(msg.HTML, "<script>"))
}
