/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/children/*   Child management, schedules, manual state
  /api/holidays     Raw school calendar
  /api/refresh      Holiday cache invalidation

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Child routes
		r.Route("/children", func(r chi.Router) {
			r.Get("/", h.ListChildren)
			r.Post("/", h.CreateChild)
			r.Get("/{id}", h.GetChild)
			r.Put("/{id}", h.UpdateChild)
			r.Delete("/{id}", h.DeleteChild)
			r.Get("/{id}/schedule", h.GetSchedule)
			r.Get("/{id}/manual-windows", h.ListManualWindows)
			r.Put("/{id}/manual-windows", h.SetManualWindows)
			r.Post("/{id}/override", h.SetOverride)
			r.Delete("/{id}/override", h.ClearOverride)
		})

		// Calendar routes
		r.Get("/holidays", h.ListHolidays)
		r.Post("/refresh", h.Refresh)
	})

	return r
}
