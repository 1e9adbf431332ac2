package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/agriportal/agriportal-backend/api/middleware"
	"github.com/agriportal/agriportal-backend/api/responses"
	"github.com/agriportal/agriportal-backend/api/validators"
	product "github.com/agriportal/agriportal-backend/internal/products"
	"github.com/agriportal/agriportal-backend/pkg/enums"
	"github.com/agriportal/agriportal-backend/pkg/logger"
)

type createProductRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description *string         `json:"description" validate:"omitempty,max=2000"`
	Category    string          `json:"category" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity" validate:"min=0"`
	Unit        string          `json:"unit" validate:"omitempty"`
	ImageURL    *string         `json:"image_url" validate:"omitempty,max=500"`
}

type productStatusResponse struct {
	Product *product.ProductDTO `json:"product"`
	Changed bool                `json:"changed"`
}

// ListProducts returns approved listings for the public marketplace.
func ListProducts(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ListPublic(r.Context(), product.ListProductsInput{
			Category: validators.SanitizeString(r.URL.Query().Get("category"), 32),
			Params:   page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetProduct returns a listing. Pending or rejected listings are only visible
// to their owner and admins.
func GetProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		viewer := product.Viewer{
			Email: middleware.EmailFromContext(r.Context()),
			Admin: middleware.RoleFromContext(r.Context()) == string(enums.RoleAdmin),
		}
		dto, err := svc.GetProduct(r.Context(), id, viewer)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func CreateProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createProductRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.CreateProduct(r.Context(), middleware.EmailFromContext(r.Context()), product.CreateProductInput{
			Name:        req.Name,
			Description: req.Description,
			Category:    req.Category,
			Price:       req.Price,
			Quantity:    req.Quantity,
			Unit:        req.Unit,
			ImageURL:    req.ImageURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func ListMyProducts(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ListMine(r.Context(), middleware.EmailFromContext(r.Context()), product.ListProductsInput{
			Category: validators.SanitizeString(r.URL.Query().Get("category"), 32),
			Params:   page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminUpdateProductStatus reviews a listing; the owner notification is
// committed together with the status.
func AdminUpdateProductStatus(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "productId")
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
		responses.WriteSuccess(w, productStatusResponse{Product: result.Product, Changed: result.Changed})
	}
}
