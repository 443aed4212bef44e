package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Birgy1002/rezept-pwa/internal/delivery/http/handler"
	"github.com/Birgy1002/rezept-pwa/internal/delivery/http/middleware"
)

// New wires the handler's endpoints. requestTimeout bounds each request and
// should exceed the fetch timeout.
func New(h *handler.Handler, logger *zap.Logger, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/proxy", h.HandleProxy)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealthCheck)
		r.Get("/import", h.HandlePreview)

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", h.HandleListRecipes)
			r.Post("/", h.HandleSave)
			r.Post("/import", h.HandleImport)
			r.Get("/{id}", h.HandleGetRecipe)
		})
	})

	return r
}
