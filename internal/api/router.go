package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/Compass/internal/advisor"
	"github.com/MikeSquared-Agency/Compass/internal/hermes"
	"github.com/MikeSquared-Agency/Compass/internal/metrics"
	"github.com/MikeSquared-Agency/Compass/internal/scoring"
	"github.com/MikeSquared-Agency/Compass/internal/store"
)

func NewRouter(s store.Store, h hermes.Client, adv advisor.Client, capacityTotals map[string]float64, adminToken string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(120))

	scorer := scoring.NewScorer(logger)

	initiatives := NewInitiativesHandler(s, h)
	models := NewModelsHandler(s, h)
	scores := NewScoresHandler(s, h, adv, scorer)
	explain := NewExplainHandler(s, scorer)
	deps := NewDependenciesHandler(s, h)
	capacity := NewCapacityHandler(s, h, capacityTotals)
	gates := NewGatesHandler(s, h)
	admin := NewAdminHandler(s)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ActorIDMiddleware)

		r.Post("/initiatives", initiatives.Create)
		r.Get("/initiatives", initiatives.List)
		r.Get("/initiatives/{id}", initiatives.Get)
		r.Patch("/initiatives/{id}", initiatives.Update)
		r.Delete("/initiatives/{id}", initiatives.Delete)

		r.Post("/initiatives/{id}/score", scores.Score)
		r.Get("/initiatives/{id}/score", scores.GetScore)
		r.Get("/initiatives/{id}/score/explain", explain.Explain)
		r.Get("/initiatives/{id}/score/history", scores.History)

		r.Post("/initiatives/{id}/allocations", capacity.CreateAllocation)
		r.Put("/initiatives/{id}/gate", gates.Put)
		r.Get("/initiatives/{id}/gate", gates.Get)

		r.Post("/models", models.Create)
		r.Get("/models", models.List)
		r.Get("/models/active", models.Active)
		r.Get("/models/{id}", models.Get)
		r.Post("/models/{id}/activate", models.Activate)
		r.Post("/models/{id}/recompute", scores.Recompute)
		r.Get("/models/{id}/rankings", scores.Rankings)

		r.Post("/dependencies", deps.Create)
		r.Get("/dependencies", deps.List)
		r.Get("/dependencies/cycles", deps.Cycles)
		r.Get("/dependencies/critical-path", deps.CriticalPath)
		r.Delete("/dependencies/{id}", deps.Delete)
		r.Post("/dependencies/{id}/resolve", deps.Resolve)

		r.Get("/capacity", capacity.Capacity)
		r.Get("/gate/factors", gates.Factors)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(adminToken))
			r.Get("/admin/stats", admin.Stats)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())
	return r
}
