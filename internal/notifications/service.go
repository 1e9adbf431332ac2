package notifications

import (
	"context"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/agriportal/agriportal-backend/pkg/db/models"
	pkgerrors "github.com/agriportal/agriportal-backend/pkg/errors"
	"github.com/agriportal/agriportal-backend/pkg/pagination"
)

// Service defines notification create/list/read operations for a user address.
type Service interface {
	Create(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, params ListParams) (*pagination.Page[models.Notification], error)
	UnreadCount(ctx context.Context, email string) (int64, error)
	MarkRead(ctx context.Context, email string, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, email string) (int64, error)
}

type service struct {
	repo Repository
}

// ListParams configures pagination for notifications.
type ListParams struct {
	Email      string
	UnreadOnly bool
	pagination.Params
}

// NewService wires notifications dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, n *models.Notification) error {
	if n == nil {
		return pkgerrors.InvalidInput("notification required")
	}
	email, err := normalizeEmail(n.UserEmail)
	if err != nil {
		return err
	}
	if !n.Type.IsValid() {
		return pkgerrors.InvalidInput("invalid notification type")
	}
	if strings.TrimSpace(n.Title) == "" || strings.TrimSpace(n.Message) == "" {
		return pkgerrors.InvalidInput("notification title and message are required")
	}
	n.UserEmail = email
	n.IsRead = false
	if err := s.repo.Create(ctx, n); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}
	return nil
}

func (s *service) List(ctx context.Context, params ListParams) (*pagination.Page[models.Notification], error) {
	email, err := normalizeEmail(params.Email)
	if err != nil {
		return nil, err
	}
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.List(ctx, listNotificationsParams{
		Email:      email,
		Page:       params.Params,
		UnreadOnly: params.UnreadOnly,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	page := pagination.Finish(rows, params.Limit, func(n models.Notification) pagination.Cursor {
		return pagination.Cursor{CreatedAt: n.CreatedAt, ID: n.ID}
	})
	return &page, nil
}

func (s *service) UnreadCount(ctx context.Context, email string) (int64, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return 0, err
	}
	count, err := s.repo.CountUnread(ctx, normalized)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread notifications")
	}
	return count, nil
}

// MarkRead is idempotent: marking an already-read notification succeeds.
func (s *service) MarkRead(ctx context.Context, email string, notificationID uuid.UUID) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, normalized, notificationID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, email string) (int64, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return 0, err
	}
	count, err := s.repo.MarkAllRead(ctx, normalized)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "user email required")
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", pkgerrors.InvalidInput("user email is invalid")
	}
	return normalized, nil
}
