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
  /api/practices/*   Practice management, per-practice balances and periods
  /api/entries/*     Entry recording
  /api/payments/*    Payment instrument recording
  /api/balances      Reconciliation dashboard
  /api/metrics/*     Cross-practice comparison
  /api/scenarios/*   Demo scenarios

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

	r.Route("/api", func(r chi.Router) {
		// Practice routes
		r.Route("/practices", func(r chi.Router) {
			r.Get("/", h.ListPractices)
			r.Post("/", h.CreatePractice)
			r.Get("/{id}", h.GetPractice)
			r.Put("/{id}", h.UpdatePractice)
			r.Delete("/{id}", h.DeletePractice)
			r.Get("/{id}/entries", h.ListEntries)
			r.Get("/{id}/periods", h.ListPeriods)
			r.Get("/{id}/balance", h.GetBalance)
		})

		// Entry routes
		r.Route("/entries", func(r chi.Router) {
			r.Post("/", h.CreateEntry)
			r.Delete("/{id}", h.DeleteEntry)
		})

		// Payment routes
		r.Route("/payments", func(r chi.Router) {
			r.Get("/", h.ListPayments)
			r.Post("/cheques", h.CreateCheque)
			r.Post("/deposits", h.CreateDirectDeposit)
			r.Post("/etransfers", h.CreateETransfer)
			r.Delete("/{id}", h.DeletePayment)
		})

		// Dashboard routes
		r.Get("/balances", h.ListBalances)
		r.Get("/metrics/compare", h.CompareMetrics)

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetData)
		})
	})

	return r
}
