package controllers

import (
	"net/http"
	"strings"

	"github.com/agriportal/agriportal-backend/api/responses"
	"github.com/agriportal/agriportal-backend/api/validators"
	"github.com/agriportal/agriportal-backend/internal/mailer"
	"github.com/agriportal/agriportal-backend/internal/registrations"
	pkgerrors "github.com/agriportal/agriportal-backend/pkg/errors"
	"github.com/agriportal/agriportal-backend/pkg/logger"
	"github.com/agriportal/agriportal-backend/pkg/pagination"
)

type registrationRequest struct {
	BusinessName      string `json:"business_name" validate:"required,max=200"`
	ContactPerson     string `json:"contact_person" validate:"required,max=200"`
	Email             string `json:"email" validate:"required,email"`
	Phone             string `json:"phone" validate:"omitempty,max=40"`
	OfficeAddress     string `json:"office_address" validate:"required,max=500"`
	Municipality      string `json:"municipality" validate:"omitempty,max=100"`
	NatureOfBusiness  string `json:"nature_of_business" validate:"omitempty,max=500"`
	ToolsAndEquipment string `json:"tools_and_equipment" validate:"omitempty,max=1000"`
	ApplicationType   string `json:"application_type" validate:"omitempty,oneof=new renewal"`
	IdentityDocument  string `json:"identity_document" validate:"omitempty,max=500"`
	QRCode            string `json:"qr_code" validate:"omitempty,max=500"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type registrationStatusResponse struct {
	Registration        *registrations.RegistrationDTO `json:"registration"`
	Changed             bool                           `json:"changed"`
	EmailSent           bool                           `json:"email_sent"`
	CertificateAttached bool                           `json:"certificate_attached"`
}

// SubmitRegistration accepts a public registration application.
func SubmitRegistration(svc registrations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registrationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reg, err := svc.Submit(r.Context(), registrations.SubmitInput{
			BusinessName:      req.BusinessName,
			ContactPerson:     req.ContactPerson,
			Email:             req.Email,
			Phone:             req.Phone,
			OfficeAddress:     req.OfficeAddress,
			Municipality:      req.Municipality,
			NatureOfBusiness:  req.NatureOfBusiness,
			ToolsAndEquipment: req.ToolsAndEquipment,
			ApplicationType:   req.ApplicationType,
			IdentityDocument:  req.IdentityDocument,
			QRCode:            req.QRCode,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, registrations.NewRegistrationDTO(reg))
	}
}

func GetRegistration(svc registrations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "registrationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reg, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, registrations.NewRegistrationDTO(reg))
	}
}

// AdminListRegistrations lists registrations, optionally filtered by status.
func AdminListRegistrations(svc registrations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.List(r.Context(), registrations.ListParams{
			Status: validators.SanitizeString(r.URL.Query().Get("status"), 32),
			Params: page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pagination.Page[registrations.RegistrationDTO]{
			Items:      registrations.NewRegistrationItems(result.Items),
			NextCursor: result.NextCursor,
		})
	}
}

// AdminUpdateRegistrationStatus applies an accepted/rejected review decision.
// The response reports whether the decision email went out; a failed send
// never fails the request.
func AdminUpdateRegistrationStatus(svc registrations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "registrationId")
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
		responses.WriteSuccess(w, registrationStatusResponse{
			Registration:        registrations.NewRegistrationDTO(result.Registration),
			Changed:             result.Changed,
			EmailSent:           result.EmailSent,
			CertificateAttached: result.CertificateAttached,
		})
	}
}

// AdminRegistrationCertificate renders the certificate PDF of an approved
// registration. ?download=true switches from inline preview to attachment.
func AdminRegistrationCertificate(svc registrations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "registrationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cert, err := svc.Certificate(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if len(cert.PDF) == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "empty certificate"))
			return
		}
		download := strings.EqualFold(r.URL.Query().Get("download"), "true")
		responses.WriteFile(w, mailer.ContentTypePDF, cert.Filename, !download, cert.PDF)
	}
}
