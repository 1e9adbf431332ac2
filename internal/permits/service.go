package permits

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/agriportal/agriportal-backend/internal/mailer"
	"github.com/agriportal/agriportal-backend/pkg/db/models"
	"github.com/agriportal/agriportal-backend/pkg/enums"
	pkgerrors "github.com/agriportal/agriportal-backend/pkg/errors"
	"github.com/agriportal/agriportal-backend/pkg/logger"
	"github.com/agriportal/agriportal-backend/pkg/pagination"
)

type permitsRepository interface {
	Create(ctx context.Context, permit *models.Permit) (*models.Permit, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Permit, error)
	List(ctx context.Context, q listQuery) ([]models.Permit, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, expected, target enums.ApplicationStatus) (bool, error)
}

type decisionMailer interface {
	SendPermitDecision(ctx context.Context, p models.Permit) mailer.Result
}

// Service manages cut and transport permit applications.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*PermitDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*PermitDTO, error)
	List(ctx context.Context, params ListParams) (*pagination.Page[PermitDTO], error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*StatusResult, error)
}

// SubmitInput is the applicant-supplied permit payload.
type SubmitInput struct {
	PermitType        string
	ApplicantName     string
	Email             string
	Phone             string
	Address           string
	Municipality      string
	NumberOfTrees     int
	VolumeCubicMeters decimal.Decimal
	Purpose           string
	Destination       string
}

// ListParams filters the admin permit listing.
type ListParams struct {
	Status     string
	PermitType string
	pagination.Params
}

// StatusResult is the outcome of a permit review.
type StatusResult struct {
	Permit    *PermitDTO
	Changed   bool
	EmailSent bool
}

type service struct {
	repo permitsRepository
	mail decisionMailer
	logg *logger.Logger
}

// NewService builds the permit service.
func NewService(repo permitsRepository, mail decisionMailer, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("permit repository required")
	}
	if mail == nil {
		return nil, fmt.Errorf("decision mailer required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, mail: mail, logg: logg}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*PermitDTO, error) {
	permit, err := buildPermit(input)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, permit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create permit")
	}
	s.logg.Info(s.logg.WithRecord(ctx, "permit", created.ID.String()), "permit.submitted")
	return NewPermitDTO(created), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*PermitDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.InvalidInput("permit id is required")
	}
	permit, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewPermitDTO(permit), nil
}

func (s *service) List(ctx context.Context, params ListParams) (*pagination.Page[PermitDTO], error) {
	q := listQuery{page: params.Params}
	if strings.TrimSpace(params.Status) != "" {
		status, err := enums.ParseApplicationStatus(params.Status)
		if err != nil {
			return nil, pkgerrors.InvalidInput("status must be Pending, Approved or Rejected")
		}
		q.status = &status
	}
	if strings.TrimSpace(params.PermitType) != "" {
		permitType, err := enums.ParsePermitType(params.PermitType)
		if err != nil {
			return nil, pkgerrors.InvalidInput("type must be cut or transport")
		}
		q.permitType = &permitType
	}
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list permits")
	}
	page := pagination.Finish(rows, params.Limit, func(p models.Permit) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	})
	items := make([]PermitDTO, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, *NewPermitDTO(&page.Items[i]))
	}
	return &pagination.Page[PermitDTO]{Items: items, NextCursor: page.NextCursor}, nil
}

// UpdateStatus applies a reviewer decision. Approved and Rejected notify the
// applicant by email; a failed send is logged and reported through EmailSent.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*StatusResult, error) {
	target, err := enums.ParseApplicationStatus(strings.TrimSpace(status))
	if err != nil {
		return nil, pkgerrors.InvalidInput("status must be Pending, Approved or Rejected").
			WithDetails(map[string]any{"status": status})
	}
	if id == uuid.Nil {
		return nil, pkgerrors.InvalidInput("permit id is required")
	}

	permit, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithRecord(ctx, "permit", permit.ID.String())
	current := permit.Status
	if !enums.CanTransition(current, target) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "status transition not allowed").
			WithDetails(map[string]any{"from": current, "to": target})
	}
	if current == target {
		return &StatusResult{Permit: NewPermitDTO(permit)}, nil
	}

	updated, err := s.repo.UpdateStatus(ctx, permit.ID, current, target)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update permit status")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "permit was modified concurrently; reload and retry")
	}
	permit.Status = target
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"from": current, "to": target}), "permit.status_changed")

	result := &StatusResult{Permit: NewPermitDTO(permit), Changed: true}
	if target.IsFinal() {
		res := s.mail.SendPermitDecision(ctx, *permit)
		if res.Err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", res.Err.Error()), "permit.decision_mail_failed")
		}
		result.EmailSent = res.Sent
	}
	return result, nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Permit, error) {
	permit, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("permit not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup permit")
	}
	return permit, nil
}

func buildPermit(input SubmitInput) (*models.Permit, error) {
	permitType, err := enums.ParsePermitType(input.PermitType)
	if err != nil {
		return nil, pkgerrors.InvalidInput("permit_type must be cut or transport")
	}
	name := strings.TrimSpace(input.ApplicantName)
	if name == "" {
		return nil, pkgerrors.InvalidInput("applicant_name is required")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, pkgerrors.InvalidInput("email must be a valid address")
	}
	address := strings.TrimSpace(input.Address)
	if address == "" {
		return nil, pkgerrors.InvalidInput("address is required")
	}
	municipality, err := enums.ParseMunicipality(input.Municipality)
	if err != nil {
		return nil, pkgerrors.InvalidInput("municipality is not served by this office").
			WithDetails(map[string]any{"allowed": enums.Municipalities()})
	}
	if input.NumberOfTrees < 1 {
		return nil, pkgerrors.InvalidInput("number_of_trees must be at least 1")
	}
	if !input.VolumeCubicMeters.IsPositive() {
		return nil, pkgerrors.InvalidInput("volume_cubic_meters must be greater than zero")
	}
	destination := optional(input.Destination)
	if permitType == enums.PermitTypeTransport && destination == nil {
		return nil, pkgerrors.InvalidInput("destination is required for transport permits")
	}

	return &models.Permit{
		PermitType:        permitType,
		ApplicantName:     name,
		Email:             email,
		Phone:             optional(input.Phone),
		Address:           address,
		Municipality:      municipality,
		NumberOfTrees:     input.NumberOfTrees,
		VolumeCubicMeters: input.VolumeCubicMeters.Round(3),
		Purpose:           optional(input.Purpose),
		Destination:       destination,
		Status:            enums.ApplicationStatusPending,
	}, nil
}

func optional(v string) *string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
