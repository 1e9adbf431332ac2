package controllers

import (
	"errors"
	"net/http"

	"github.com/agriportal/agriportal-backend/api/responses"
	"github.com/agriportal/agriportal-backend/internal/uploads"
	pkgerrors "github.com/agriportal/agriportal-backend/pkg/errors"
	"github.com/agriportal/agriportal-backend/pkg/logger"
)

// multipartOverhead leaves room for boundaries and the kind field.
const multipartOverhead = 1 << 20

// Upload accepts a multipart form with "kind" and "file" fields.
func Upload(svc uploads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, svc.MaxBytes()+multipartOverhead)
		if err := r.ParseMultipartForm(svc.MaxBytes()); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeTooLarge, "file exceeds the upload size limit").
					WithDetails(map[string]any{"max_bytes": svc.MaxBytes()}))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		file, _, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file is required"))
			return
		}
		defer file.Close()

		stored, err := svc.Save(r.Context(), r.FormValue("kind"), file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, stored)
	}
}
