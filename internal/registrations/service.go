package registrations

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agriportal/agriportal-backend/internal/certificates"
	"github.com/agriportal/agriportal-backend/internal/mailer"
	"github.com/agriportal/agriportal-backend/pkg/db"
	"github.com/agriportal/agriportal-backend/pkg/db/models"
	"github.com/agriportal/agriportal-backend/pkg/enums"
	pkgerrors "github.com/agriportal/agriportal-backend/pkg/errors"
	"github.com/agriportal/agriportal-backend/pkg/logger"
	"github.com/agriportal/agriportal-backend/pkg/pagination"
)

type registrationsRepository interface {
	Create(ctx context.Context, reg *models.Registration) (*models.Registration, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Registration, error)
	List(ctx context.Context, q listQuery) ([]models.Registration, error)
	UpdateStatus(ctx context.Context, reg *models.Registration, expected enums.ApplicationStatus) (bool, error)
}

type decisionMailer interface {
	SendRegistrationDecision(ctx context.Context, reg models.Registration) mailer.Result
}

// certificateIssuer assigns certificate metadata and renders the document.
type certificateIssuer interface {
	certificates.Renderer
	Number(reg models.Registration, issued time.Time) string
	ValidUntil(issued time.Time) time.Time
}

type inbox interface {
	Create(ctx context.Context, n *models.Notification) error
}

// Service exposes registration submission, review and certificate operations.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.Registration, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Registration, error)
	List(ctx context.Context, params ListParams) (*pagination.Page[models.Registration], error)
	UpdateStatus(ctx context.Context, id uuid.UUID, decision string) (*StatusResult, error)
	Certificate(ctx context.Context, id uuid.UUID) (*certificates.Certificate, error)
}

// SubmitInput is the applicant-supplied portion of a registration.
type SubmitInput struct {
	BusinessName      string
	ContactPerson     string
	Email             string
	Phone             string
	OfficeAddress     string
	Municipality      string
	NatureOfBusiness  string
	ToolsAndEquipment string
	ApplicationType   string
	IdentityDocument  string
	QRCode            string
}

// ListParams filters the admin listing.
type ListParams struct {
	Status string
	pagination.Params
}

// StatusResult is the outcome of a review decision.
type StatusResult struct {
	Registration        *models.Registration
	Changed             bool
	EmailSent           bool
	CertificateAttached bool
}

type service struct {
	repo   registrationsRepository
	mail   decisionMailer
	issuer certificateIssuer
	inbox  inbox
	logg   *logger.Logger
	now    func() time.Time
}

// NewService builds the registration service. inbox may be nil, in which case
// no in-app notification is written for decisions.
func NewService(repo registrationsRepository, mail decisionMailer, issuer certificateIssuer, inbox inbox, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("registration repository required")
	}
	if mail == nil {
		return nil, fmt.Errorf("decision mailer required")
	}
	if issuer == nil {
		return nil, fmt.Errorf("certificate issuer required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:   repo,
		mail:   mail,
		issuer: issuer,
		inbox:  inbox,
		logg:   logg,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.Registration, error) {
	business := strings.TrimSpace(input.BusinessName)
	if business == "" {
		return nil, pkgerrors.InvalidInput("business_name is required")
	}
	contact := strings.TrimSpace(input.ContactPerson)
	if contact == "" {
		return nil, pkgerrors.InvalidInput("contact_person is required")
	}
	address := strings.TrimSpace(input.OfficeAddress)
	if address == "" {
		return nil, pkgerrors.InvalidInput("office_address is required")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, pkgerrors.InvalidInput("email must be a valid address")
	}
	appType, err := enums.ParseApplicationType(input.ApplicationType)
	if err != nil {
		return nil, pkgerrors.InvalidInput("application_type must be new or renewal")
	}

	reg := &models.Registration{
		BusinessName:      business,
		ContactPerson:     contact,
		Email:             email,
		Phone:             optional(input.Phone),
		OfficeAddress:     address,
		Municipality:      optional(input.Municipality),
		NatureOfBusiness:  optional(input.NatureOfBusiness),
		ToolsAndEquipment: optional(input.ToolsAndEquipment),
		ApplicationType:   appType,
		FilingDate:        s.now(),
		IdentityDocument:  optional(input.IdentityDocument),
		QRCode:            optional(input.QRCode),
		Status:            enums.ApplicationStatusPending,
	}

	created, err := s.repo.Create(ctx, reg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create registration")
	}
	s.logg.Info(s.logg.WithRecord(ctx, "registration", created.ID.String()), "registration.submitted")
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.InvalidInput("registration id is required")
	}
	return s.find(ctx, id)
}

func (s *service) List(ctx context.Context, params ListParams) (*pagination.Page[models.Registration], error) {
	q := listQuery{page: params.Params}
	if strings.TrimSpace(params.Status) != "" {
		status, err := enums.ParseApplicationStatus(params.Status)
		if err != nil {
			return nil, pkgerrors.InvalidInput("status must be Pending, Approved or Rejected")
		}
		q.status = &status
	}
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list registrations")
	}
	page := pagination.Finish(rows, params.Limit, func(r models.Registration) pagination.Cursor {
		return pagination.Cursor{CreatedAt: r.CreatedAt, ID: r.ID}
	})
	return &page, nil
}

// UpdateStatus applies a reviewer decision. The decision is validated before the
// record is read, so an invalid value never touches storage. Mail delivery
// problems are logged and reported through EmailSent only; the status write
// stands regardless.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, decision string) (*StatusResult, error) {
	parsed, err := enums.ParseReviewDecision(decision)
	if err != nil {
		return nil, pkgerrors.InvalidInput("status must be accepted or rejected").
			WithDetails(map[string]any{"status": decision, "allowed": []string{"accepted", "rejected"}})
	}
	if id == uuid.Nil {
		return nil, pkgerrors.InvalidInput("registration id is required")
	}

	reg, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithRecord(ctx, "registration", reg.ID.String())
	target := parsed.Status()
	current := reg.Status
	if !enums.CanTransition(current, target) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "status transition not allowed").
			WithDetails(map[string]any{"from": current, "to": target})
	}
	if current == target {
		return &StatusResult{Registration: reg}, nil
	}

	now := s.now()
	reg.Status = target
	reg.UpdatedAt = now
	if target == enums.ApplicationStatusApproved {
		if reg.RegistrationDate == nil {
			reg.RegistrationDate = &now
		}
		if reg.ValidUntil == nil {
			until := s.issuer.ValidUntil(*reg.RegistrationDate)
			reg.ValidUntil = &until
		}
		if reg.CertificateNumber == nil {
			number := s.issuer.Number(*reg, *reg.RegistrationDate)
			reg.CertificateNumber = &number
		}
	}

	updated, err := s.repo.UpdateStatus(ctx, reg, current)
	if db.IsUniqueViolation(err, "certificate_number") {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "certificate number already issued")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update registration status")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "registration was modified concurrently; reload and retry")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"from": current, "to": target}), "registration.status_changed")

	res := s.mail.SendRegistrationDecision(ctx, *reg)
	if res.Err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", res.Err.Error()), "registration.decision_mail_incomplete")
	}
	s.notifyApplicant(ctx, reg)

	return &StatusResult{
		Registration:        reg,
		Changed:             true,
		EmailSent:           res.Sent,
		CertificateAttached: res.Attached,
	}, nil
}

func (s *service) Certificate(ctx context.Context, id uuid.UUID) (*certificates.Certificate, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.InvalidInput("registration id is required")
	}
	reg, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if reg.Status != enums.ApplicationStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "certificate is only available for approved registrations").
			WithDetails(map[string]any{"status": reg.Status})
	}
	cert, err := s.issuer.Render(*reg)
	if err != nil {
		return nil, pkgerrors.Dependency(err, "render certificate")
	}
	return cert, nil
}

// notifyApplicant records an in-app update for the applicant's address. It is
// best effort; failures are logged only.
func (s *service) notifyApplicant(ctx context.Context, reg *models.Registration) {
	if s.inbox == nil {
		return
	}
	n := &models.Notification{
		UserEmail: reg.Email,
		Type:      enums.NotificationTypeRegistrationUpdate,
		Title:     fmt.Sprintf("Registration %s", strings.ToLower(string(reg.Status))),
		Message:   fmt.Sprintf("The registration of %s is now %s.", reg.BusinessName, reg.Status),
	}
	if err := s.inbox.Create(ctx, n); err != nil {
		s.logg.Error(ctx, "registration.notification_failed", err)
	}
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("registration not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup registration")
	}
	return reg, nil
}

func optional(v string) *string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
