package api

import (
	"net/http"
	"route-scenario-service/internal/api/handlers"
	"route-scenario-service/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps are the services exposed over HTTP.
type Deps struct {
	Scenarios   *services.ScenarioService
	Batches     *services.BatchOrchestrator
	Comparer    *services.Comparer
	CORSOrigins []string
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	scenarios := &handlers.ScenarioHandler{Scenarios: d.Scenarios}
	compare := &handlers.CompareHandler{Comparer: d.Comparer}
	batches := &handlers.BatchHandler{Orchestrator: d.Batches}

	r.Get("/health", handlers.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", scenarios.List)
			r.Post("/", scenarios.Create)
			r.Post("/compare", compare.Compare)
			r.Post("/tables", scenarios.SaveTables)
			r.Post("/tables/optimize", scenarios.OptimizeTables)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", scenarios.Get)
				r.Put("/", scenarios.Update)
				r.Delete("/", scenarios.Delete)
				r.Put("/name", scenarios.Rename)
				r.Post("/duplicate", scenarios.Duplicate)
				r.Get("/tables", scenarios.Tables)
				r.Put("/tables", scenarios.SaveTables)
				r.Post("/tables/optimize", scenarios.OptimizeTables)
				r.Get("/export", scenarios.Export)
			})
		})

		r.Post("/batches", batches.Run)
	})

	return r
}
