package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/keyward/keyward/app"
	"github.com/keyward/keyward/handlers"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	health := handlers.NewHealthHandler(deps.Handle)
	policy := handlers.NewPolicyHandler(deps.Handle, deps.Registry, deps.Config.Policy.Path, deps.Logger)
	quota := handlers.NewQuotaHandler(deps.Handle, deps.Logger)

	// audit.Service is optional; a typed nil must not reach the interface
	var recorder handlers.DecisionRecorder
	if deps.Audit != nil {
		recorder = deps.Audit
	}
	decisions := handlers.NewDecisionHandler(deps.Handle, recorder, deps.Logger)

	// Health check endpoints
	r.Get("/healthz", health.HandleHealth)
	r.Get("/readyz", health.HandleReady)

	// Administrative API (require admin role)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(deps.AuthMiddleware.RequireAuth)
		r.Use(deps.AuthMiddleware.RequireRole("admin"))

		r.Get("/policy", policy.HandleGetPolicy)
		r.Post("/policy/reload", policy.HandleReloadPolicy)
		r.Get("/rules", policy.HandleListRules)

		r.Post("/quota/clear", quota.HandleClearQuota)
		r.Post("/quota/check", quota.HandleCheckQuota)

		r.Post("/decisions/simulate", decisions.HandleSimulate)

		if deps.AuditRepo != nil {
			audit := handlers.NewAuditHandler(deps.AuditRepo, deps.Logger)
			r.Get("/decisions", audit.HandleListDecisions)
		}
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}
