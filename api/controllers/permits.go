package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/agriportal/agriportal-backend/api/responses"
	"github.com/agriportal/agriportal-backend/api/validators"
	"github.com/agriportal/agriportal-backend/internal/permits"
	"github.com/agriportal/agriportal-backend/pkg/logger"
)

type permitRequest struct {
	PermitType        string          `json:"permit_type" validate:"required,oneof=cut transport"`
	ApplicantName     string          `json:"applicant_name" validate:"required,max=200"`
	Email             string          `json:"email" validate:"required,email"`
	Phone             string          `json:"phone" validate:"omitempty,max=40"`
	Address           string          `json:"address" validate:"required,max=500"`
	Municipality      string          `json:"municipality" validate:"required"`
	NumberOfTrees     int             `json:"number_of_trees" validate:"min=1"`
	VolumeCubicMeters decimal.Decimal `json:"volume_cubic_meters"`
	Purpose           string          `json:"purpose" validate:"omitempty,max=1000"`
	Destination       string          `json:"destination" validate:"omitempty,max=500"`
}

type permitStatusResponse struct {
	Permit    *permits.PermitDTO `json:"permit"`
	Changed   bool               `json:"changed"`
	EmailSent bool               `json:"email_sent"`
}

func SubmitPermit(svc permits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req permitRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Submit(r.Context(), permits.SubmitInput{
			PermitType:        req.PermitType,
			ApplicantName:     req.ApplicantName,
			Email:             req.Email,
			Phone:             req.Phone,
			Address:           req.Address,
			Municipality:      req.Municipality,
			NumberOfTrees:     req.NumberOfTrees,
			VolumeCubicMeters: req.VolumeCubicMeters,
			Purpose:           req.Purpose,
			Destination:       req.Destination,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func GetPermit(svc permits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "permitId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func AdminListPermits(svc permits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.List(r.Context(), permits.ListParams{
			Status:     validators.SanitizeString(r.URL.Query().Get("status"), 32),
			PermitType: validators.SanitizeString(r.URL.Query().Get("type"), 32),
			Params:     page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminUpdatePermitStatus sets a permit to Pending, Approved or Rejected.
func AdminUpdatePermitStatus(svc permits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "permitId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req statusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.UpdateStatus(r.Context(), id, req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, permitStatusResponse{
			Permit:    result.Permit,
			Changed:   result.Changed,
			EmailSent: result.EmailSent,
		})
	}
}
