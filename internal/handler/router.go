package handler

import (
	"net/http"

	"github.com/zenthra/zenthra-api/internal/infra/observability"
	"github.com/zenthra/zenthra-api/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// The public surface is the contact form; everything under /v1/admin
// sits behind the admin gate.
func NewRouter(auth *store.AuthStore, leads *store.LeadStore, metrics *observability.Metrics, allowedOrigins []string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(auth))
	r.Get("/readyz", readyzHandler(auth))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// Public contact form
		// POST /v1/contact
		// =============================================
		r.Post("/contact", contactHandler(leads, logger))

		// =============================================
		// Authentication
		// =============================================
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signin", authSignInHandler(auth, logger))
			r.Post("/signup", authSignUpHandler(auth, logger))
			r.Post("/signout", authSignOutHandler(auth, logger))
			r.Get("/me", authMeHandler(auth))

			// Password change needs a session but not the admin role.
			r.Group(func(r chi.Router) {
				r.Use(Gate(auth, false, logger))
				r.Put("/password", authPasswordHandler(auth, logger))
			})
		})

		// =============================================
		// Admin dashboard (gate-protected)
		// =============================================
		r.Route("/admin", func(r chi.Router) {
			r.Use(Gate(auth, true, logger))

			r.Get("/ops", opsHandler(metrics))

			r.Get("/leads", listLeadsHandler(leads))
			r.Get("/leads/stats", leadStatsHandler(leads))
			r.Post("/leads/refresh", refreshLeadsHandler(leads))
			r.Get("/leads/{leadId}", getLeadHandler(leads))
			r.Patch("/leads/{leadId}", updateLeadHandler(leads, logger))
			r.Delete("/leads/{leadId}", deleteLeadHandler(leads, logger))
		})
	})

	return r
}

// ============================================================
// Health
// ============================================================

func healthzHandler(auth *store.AuthStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "healthy",
		})
	}
}

// readyzHandler reports ready once auth restoration has settled, so a
// load balancer does not route dashboard traffic into the Wait window.
func readyzHandler(auth *store.AuthStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if auth.Loading() {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusServiceUnavailable, "auth state is still loading")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	}
}
