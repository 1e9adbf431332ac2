package permits

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agriportal/agriportal-backend/pkg/db/models"
)

// PermitDTO is the client view of a permit application.
type PermitDTO struct {
	ID                uuid.UUID       `json:"id"`
	PermitType        string          `json:"permit_type"`
	ApplicantName     string          `json:"applicant_name"`
	Email             string          `json:"email"`
	Phone             *string         `json:"phone,omitempty"`
	Address           string          `json:"address"`
	Municipality      string          `json:"municipality"`
	NumberOfTrees     int             `json:"number_of_trees"`
	VolumeCubicMeters decimal.Decimal `json:"volume_cubic_meters"`
	Purpose           *string         `json:"purpose,omitempty"`
	Destination       *string         `json:"destination,omitempty"`
	Status            string          `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// NewPermitDTO maps the persisted permit.
func NewPermitDTO(p *models.Permit) *PermitDTO {
	return &PermitDTO{
		ID:                p.ID,
		PermitType:        string(p.PermitType),
		ApplicantName:     p.ApplicantName,
		Email:             p.Email,
		Phone:             p.Phone,
		Address:           p.Address,
		Municipality:      string(p.Municipality),
		NumberOfTrees:     p.NumberOfTrees,
		VolumeCubicMeters: p.VolumeCubicMeters,
		Purpose:           p.Purpose,
		Destination:       p.Destination,
		Status:            string(p.Status),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
