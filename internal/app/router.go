package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dulpromax/catalog-api/internal/auth"
	"github.com/dulpromax/catalog-api/internal/catalog/categories"
	"github.com/dulpromax/catalog-api/internal/catalog/packs"
	"github.com/dulpromax/catalog-api/internal/catalog/products"
	"github.com/dulpromax/catalog-api/internal/observability"
	"github.com/dulpromax/catalog-api/internal/platform/httpx"
	"github.com/dulpromax/catalog-api/internal/pricing"
	"github.com/dulpromax/catalog-api/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	ProfileHandler    *auth.Handler
	CategoriesHandler *categories.Handler
	ProductsHandler   *products.Handler
	PacksHandler      *packs.Handler
	PricingHandler    *pricing.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with catalog defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	if !InTestMode() {
		r.Use(chimw.Logger)
	}

	service := "dulcepromax-api"
	if params.Config != nil && params.Config.AppName != "" {
		service = params.Config.AppName
	}
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"message": "pong", "status": "ok"})
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": service})
	})

	if params.ProfileHandler != nil {
		r.Route("/profiles", params.ProfileHandler.MountRoutes)
	}
	if params.CategoriesHandler != nil {
		r.Route("/categories", params.CategoriesHandler.MountRoutes)
	}
	r.Route("/products", func(r chi.Router) {
		if params.PricingHandler != nil {
			params.PricingHandler.MountProductRoutes(r)
		}
		if params.ProductsHandler != nil {
			params.ProductsHandler.MountRoutes(r)
		}
		if params.PacksHandler != nil {
			params.PacksHandler.MountRoutes(r)
		}
	})
	if params.PricingHandler != nil {
		r.Route("/admin", params.PricingHandler.MountAdminRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	return r
}
