package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ignite/massmail/internal/pkg/logger"
)

// SetupRoutes configures all HTTP routes.
func SetupRoutes(h *Handlers, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(h.metrics.Middleware)

	// CORS - allow credentials for the session cookie
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health and metrics (no auth required)
	r.Get("/health", h.health.HandleHealth)
	r.Get("/health/live", h.health.HandleLiveness)
	r.Get("/health/ready", h.health.HandleReadiness)
	r.Get("/health/db", h.health.HandleDBStats)
	r.Handle("/metrics", h.metrics.Handler())

	// Auth routes (no auth required)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Get("/gmail/callback", h.GmailCallback)
	})

	// API routes (operator session required)
	r.Route("/api", func(r chi.Router) {
		r.Use(h.sessions.RequireOperator)

		r.Get("/me", h.Me)
		r.Put("/session/sender", h.SelectSender)
		r.Put("/session/template-owner", h.SelectTemplateOwner)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.ListUsers)
			r.Post("/", h.CreateUser)
			r.Get("/admins", h.ListAdmins)
			r.Get("/enabled", h.ListEnabledUsers)
			r.Get("/{id}", h.GetUser)
			r.Put("/{id}", h.UpdateUser)
			r.Delete("/{id}", h.DeleteUser)
		})

		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", h.ListContacts)
			r.Post("/", h.CreateContact)
			r.Post("/import", h.ImportContacts)
			r.Get("/{id}", h.GetContact)
			r.Put("/{id}", h.UpdateContact)
			r.Delete("/{id}", h.DeleteContact)
		})

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", h.ListTemplates)
			r.Get("/shared", h.ListSharedTemplates)
			r.Post("/", h.CreateTemplate)
			r.Put("/{name}", h.UpdateTemplate)
			r.Delete("/{name}", h.DeleteTemplate)
		})

		r.Post("/mail/send", h.SendMail)
		r.Post("/mail/schedule", h.ScheduleMail)
		r.Post("/recipients/parse", h.ParseRecipients)

		r.Route("/scheduled", func(r chi.Router) {
			r.Get("/", h.ListScheduled)
			r.Delete("/{id}", h.DeleteScheduled)
			r.Post("/{id}/retry", h.RetryScheduled)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/", h.GetDashboard)
			r.Get("/summary", h.GetSummary)
			r.Get("/performance", h.GetPerformance)
			r.Get("/growth", h.GetGrowth)
			r.Get("/scheduled-status", h.GetScheduledStatus)
		})

		r.Get("/gmail/connect", h.GmailConnect)
	})

	return r
}

// requestLogger logs one line per request through the structured logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
