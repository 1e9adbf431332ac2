package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/agriportal/agriportal-backend/internal/certificates"
	"github.com/agriportal/agriportal-backend/pkg/db/models"
	"github.com/agriportal/agriportal-backend/pkg/enums"
	"github.com/agriportal/agriportal-backend/pkg/logger"
	"github.com/agriportal/agriportal-backend/pkg/metrics"
)

// Result reports what a dispatch achieved. Err aggregates every stage failure;
// a certificate failure with a successful send leaves Sent true and Attached false.
type Result struct {
	Sent     bool
	Attached bool
	Err      error
}

// Dispatcher runs the render → compose/attach → send pipeline for decision emails.
type Dispatcher struct {
	transport Transport
	from      Address
	renderer  certificates.Renderer
	logg      *logger.Logger
	metrics   *metrics.PipelineMetrics
}

// NewDispatcher wires a dispatcher. renderer may be nil, in which case approval
// emails go out without a certificate.
func NewDispatcher(transport Transport, from Address, renderer certificates.Renderer, logg *logger.Logger, m *metrics.PipelineMetrics) (*Dispatcher, error) {
	if transport == nil {
		return nil, errors.New("mail transport required")
	}
	if from.Email == "" {
		return nil, errors.New("sender address required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Dispatcher{
		transport: transport,
		from:      from,
		renderer:  renderer,
		logg:      logg,
		metrics:   m,
	}, nil
}

// SendRegistrationDecision emails the applicant about reg's current status,
// attaching the certificate when the registration is approved.
func (d *Dispatcher) SendRegistrationDecision(ctx context.Context, reg models.Registration) Result {
	ctx = d.logg.WithRecord(ctx, "registration", reg.ID.String())
	ctx = d.logg.WithField(ctx, "recipient", reg.Email)

	var res Result
	var cert *certificates.Certificate
	if reg.Status == enums.ApplicationStatusApproved {
		rendered, err := d.render(reg)
		if err != nil {
			res.Err = multierr.Append(res.Err, err)
			d.metrics.IncMail(KindRegistrationDecision, metrics.OutcomeDegraded)
			d.logg.Warn(d.logg.WithField(ctx, "error", err.Error()), "certificate.attach_failed")
		} else {
			cert = rendered
		}
	}

	msg, err := ComposeRegistrationDecision(reg, cert, d.from.Name)
	if err != nil {
		return d.fail(ctx, res, KindRegistrationDecision, err)
	}
	res.Attached = msg.HasAttachment(ContentTypePDF)
	return d.deliver(ctx, res, msg)
}

// SendPermitDecision emails the applicant about a permit's current status.
func (d *Dispatcher) SendPermitDecision(ctx context.Context, p models.Permit) Result {
	ctx = d.logg.WithRecord(ctx, "permit", p.ID.String())
	ctx = d.logg.WithField(ctx, "recipient", p.Email)

	msg, err := ComposePermitDecision(p, d.from.Name)
	if err != nil {
		return d.fail(ctx, Result{}, KindPermitDecision, err)
	}
	return d.deliver(ctx, Result{}, msg)
}

func (d *Dispatcher) render(reg models.Registration) (cert *certificates.Certificate, err error) {
	if d.renderer == nil {
		return nil, errors.New("certificate renderer not configured")
	}
	defer func() {
		if r := recover(); r != nil {
			cert, err = nil, fmt.Errorf("certificate render panic: %v", r)
		}
	}()
	cert, err = d.renderer.Render(reg)
	if err != nil {
		return nil, fmt.Errorf("certificate render: %w", err)
	}
	return cert, nil
}

func (d *Dispatcher) deliver(ctx context.Context, res Result, msg Message) Result {
	start := time.Now()
	err := d.transport.Send(ctx, d.from, msg)
	d.metrics.ObserveSend(d.transport.Name(), time.Since(start))
	if err != nil {
		return d.fail(ctx, res, msg.Kind, fmt.Errorf("%s send: %w", d.transport.Name(), err))
	}

	res.Sent = true
	d.metrics.IncMail(msg.Kind, metrics.OutcomeSent)
	ctx = d.logg.WithFields(ctx, map[string]any{
		"mail_kind":     msg.Kind,
		"transport":     d.transport.Name(),
		"attached":      res.Attached,
		"subject":       msg.Subject,
		"send_duration": time.Since(start).String(),
	})
	d.logg.Info(ctx, "mail.sent")
	return res
}

func (d *Dispatcher) fail(ctx context.Context, res Result, kind string, err error) Result {
	res.Err = multierr.Append(res.Err, err)
	d.metrics.IncMail(kind, metrics.OutcomeFailed)
	d.logg.Error(d.logg.WithField(ctx, "mail_kind", kind), "mail.send_failed", err)
	return res
}
