package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agriportal/agriportal-backend/api/controllers"
	"github.com/agriportal/agriportal-backend/api/middleware"
	"github.com/agriportal/agriportal-backend/internal/messages"
	"github.com/agriportal/agriportal-backend/internal/notifications"
	"github.com/agriportal/agriportal-backend/internal/permits"
	product "github.com/agriportal/agriportal-backend/internal/products"
	"github.com/agriportal/agriportal-backend/internal/registrations"
	"github.com/agriportal/agriportal-backend/internal/uploads"
	"github.com/agriportal/agriportal-backend/pkg/config"
	"github.com/agriportal/agriportal-backend/pkg/enums"
	"github.com/agriportal/agriportal-backend/pkg/logger"
	"github.com/agriportal/agriportal-backend/pkg/redis"
)

// Dependencies carries everything the router hands to controllers.
type Dependencies struct {
	Health        map[string]controllers.Pinger
	Redis         *redis.Client
	Metrics       prometheus.Gatherer
	Registrations registrations.Service
	Permits       permits.Service
	Products      product.Service
	Notifications notifications.Service
	Messages      messages.Service
	Uploads       uploads.Service
}

// NewRouter builds the chi router and registers all routes.
func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	submissions := middleware.NewRateLimitPolicy(
		"submission",
		cfg.RateLimit.SubmissionWindow,
		cfg.RateLimit.SubmissionIPLimit,
		cfg.RateLimit.SubmissionEmailLimit,
	)
	var limiter func(http.Handler) http.Handler
	if deps.Redis != nil {
		limiter = middleware.SubmissionRateLimit(submissions, deps.Redis, logg)
	} else {
		limiter = func(next http.Handler) http.Handler { return next }
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Health))
	})
	if deps.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}
	if cfg.Uploads.Dir != "" && cfg.Uploads.PublicPath != "" {
		r.Handle(cfg.Uploads.PublicPath+"/*", uploadsHandler(cfg.Uploads.Dir, cfg.Uploads.PublicPath))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.With(limiter).Post("/registrations", controllers.SubmitRegistration(deps.Registrations, logg))
			r.Get("/registrations/{registrationId}", controllers.GetRegistration(deps.Registrations, logg))

			r.With(limiter).Post("/permits", controllers.SubmitPermit(deps.Permits, logg))
			r.Get("/permits/{permitId}", controllers.GetPermit(deps.Permits, logg))

			r.With(limiter).Post("/uploads", controllers.Upload(deps.Uploads, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.Products, logg))
			r.With(middleware.Auth(cfg.JWT, logg)).Post("/", controllers.CreateProduct(deps.Products, logg))
			r.With(middleware.Auth(cfg.JWT, logg)).Get("/mine", controllers.ListMyProducts(deps.Products, logg))
			r.With(middleware.OptionalAuth(cfg.JWT, logg)).Get("/{productId}", controllers.GetProduct(deps.Products, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
				r.Get("/unread-count", controllers.NotificationUnreadCount(deps.Notifications, logg))
				r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
				r.Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
			})

			r.Route("/messages", func(r chi.Router) {
				r.Get("/", controllers.GetConversation(deps.Messages, logg))
				r.Post("/", controllers.SendMessage(deps.Messages, logg))
				r.Post("/read", controllers.MarkConversationRead(deps.Messages, logg))
				r.Get("/unread-count", controllers.MessageUnreadCount(deps.Messages, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(enums.RoleAdmin, logg))

		r.Route("/registrations", func(r chi.Router) {
			r.Get("/", controllers.AdminListRegistrations(deps.Registrations, logg))
			r.Post("/{registrationId}/status", controllers.AdminUpdateRegistrationStatus(deps.Registrations, logg))
			r.Get("/{registrationId}/certificate", controllers.AdminRegistrationCertificate(deps.Registrations, logg))
		})
		r.Route("/permits", func(r chi.Router) {
			r.Get("/", controllers.AdminListPermits(deps.Permits, logg))
			r.Post("/{permitId}/status", controllers.AdminUpdatePermitStatus(deps.Permits, logg))
		})
		r.Post("/products/{productId}/status", controllers.AdminUpdateProductStatus(deps.Products, logg))
	})

	return r
}
