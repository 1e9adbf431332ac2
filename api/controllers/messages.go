package controllers

import (
	"net/http"

	"github.com/agriportal/agriportal-backend/api/middleware"
	"github.com/agriportal/agriportal-backend/api/responses"
	"github.com/agriportal/agriportal-backend/api/validators"
	"github.com/agriportal/agriportal-backend/internal/messages"
	"github.com/agriportal/agriportal-backend/pkg/db/models"
	"github.com/agriportal/agriportal-backend/pkg/logger"
)

type sendMessageRequest struct {
	To       string `json:"to" validate:"required,email"`
	Text     string `json:"text" validate:"omitempty,max=4000"`
	ImageURL string `json:"image_url" validate:"omitempty,max=500"`
	Type     string `json:"type" validate:"omitempty,oneof=text image"`
}

type sendMessageResponse struct {
	Message   *models.Message `json:"message"`
	Broadcast bool            `json:"broadcast"`
}

// SendMessage stores a chat message and fans it out to the room.
func SendMessage(svc messages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sendMessageRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Send(r.Context(), middleware.EmailFromContext(r.Context()), messages.SendInput{
			To:       req.To,
			Text:     req.Text,
			ImageURL: req.ImageURL,
			Type:     req.Type,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, sendMessageResponse{Message: result.Message, Broadcast: result.Broadcast})
	}
}

// GetConversation pages through the caller's conversation with ?with=.
func GetConversation(svc messages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		other := validators.SanitizeString(r.URL.Query().Get("with"), 320)
		result, err := svc.Conversation(r.Context(), middleware.EmailFromContext(r.Context()), other, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func MarkConversationRead(svc messages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		other := validators.SanitizeString(r.URL.Query().Get("with"), 320)
		count, err := svc.MarkConversationRead(r.Context(), middleware.EmailFromContext(r.Context()), other)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"updated": count})
	}
}

func MessageUnreadCount(svc messages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := svc.UnreadCount(r.Context(), middleware.EmailFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"unread": count})
	}
}
