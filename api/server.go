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
  4. CORS:       Cross-origin requests for dashboards

ROUTE GROUPS:
  /api/cases/*          Case lifecycle and milestones
  /api/regions/*        Hierarchy management
  /api/projects/*       Project setup
  /api/admin/*          Sweep operations
  /api/reports/*        Compliance metrics
  /api/seed             Demo data (dev only)

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.
  Deploy behind a gateway in production.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

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
		// Case routes
		r.Route("/cases", func(r chi.Router) {
			r.Get("/", h.ListCases)
			r.Post("/", h.CreateCase)
			r.Get("/{id}", h.GetCase)
			r.Post("/{id}/acknowledge", h.AcknowledgeCase)
			r.Post("/{id}/resolve", h.ResolveCase)
			r.Post("/{id}/escalate", h.EscalateCase)
		})

		// Hierarchy routes
		r.Route("/regions", func(r chi.Router) {
			r.Get("/", h.ListRegions)
			r.Post("/", h.CreateRegion)
		})
		r.Post("/projects/setup", h.SetupProject)

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/sweep", h.RunSweep)
			r.Get("/sweeps", h.ListSweepRuns)
		})

		// Reporting routes
		r.Get("/reports/compliance", h.GetCompliance)

		// Demo data (dev only)
		r.Post("/seed", h.SeedDemo)

		r.Get("/health", h.Health)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Grievance SLA Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Grievance SLA Engine API</h1>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/cases">/api/cases</a> - List open cases</li>
<li><a href="/api/reports/compliance">/api/reports/compliance</a> - Compliance metrics</li>
<li><a href="/api/admin/sweeps">/api/admin/sweeps</a> - Sweep run history</li>
</ul>
</body>
</html>`))
	})

	return r
}
