package pricing

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dulpromax/catalog-api/internal/auth"
	"github.com/dulpromax/catalog-api/internal/platform/httpx"
)

// Guard authenticates callers for the quote route and gates admin routes.
type Guard interface {
	Authenticate(next http.Handler) http.Handler
	RequireAdmin(next http.Handler) http.Handler
}

type Handler struct {
	logger  *slog.Logger
	service *Service
	quoter  *Quoter
	proxy   *Proxy
	guard   Guard
	limiter func(http.Handler) http.Handler
}

// NewHandler wires pricing routes. limiter wraps the proxy route and may be nil.
func NewHandler(logger *slog.Logger, service *Service, quoter *Quoter, proxy *Proxy, guard Guard, limiter func(http.Handler) http.Handler) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, quoter: quoter, proxy: proxy, guard: guard, limiter: limiter}
}

// MountProductRoutes registers price reads relative to /products.
func (h *Handler) MountProductRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		if h.limiter != nil {
			r.Use(h.limiter)
		}
		r.Get("/prices", h.ResolvedPrices)
	})
	r.With(h.guard.Authenticate).Get("/{id}/price", h.Quote)
}

// MountAdminRoutes registers pricing administration relative to /admin.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAdmin)
		r.Get("/pricing/segments", h.ListSegments)
		r.Post("/pricing/segments", h.CreateSegment)
		r.Put("/pricing/segments/{id}", h.UpdateSegment)
		r.Delete("/pricing/segments/{id}", h.DeleteSegment)

		r.Get("/pricing/overrides", h.ListOverrides)
		r.Post("/pricing/overrides", h.CreateOverride)
		r.Put("/pricing/overrides/{id}", h.UpdateOverride)
		r.Delete("/pricing/overrides/{id}", h.DeleteOverride)

		r.Get("/user-types", h.UserTypes)
		r.Get("/organizations", h.Organizations)
	})
}

// ResolvedPrices passes the resolved price view through as the caller sees it.
func (h *Handler) ResolvedPrices(w http.ResponseWriter, r *http.Request) {
	fwd, err := ForwardFrom(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	body, err := h.proxy.ResolvedProducts(r.Context(), fwd)
	if err != nil {
		h.fail(w, "resolved prices failed", err)
		return
	}
	httpx.Raw(w, http.StatusOK, body)
}

func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CallerFromContext(r.Context())
	q, err := h.quoter.Quote(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "quote price failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) ListSegments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.service.ListSegments(r.Context(), SegmentFilter{
		ProductID:  q.Get("product_id"),
		UserTypeID: q.Get("user_type_id"),
	})
	if err != nil {
		h.fail(w, "list segment prices failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) CreateSegment(w http.ResponseWriter, r *http.Request) {
	var in SegmentInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	s, err := h.service.CreateSegment(r.Context(), in)
	if err != nil {
		h.fail(w, "create segment price failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, s)
}

func (h *Handler) UpdateSegment(w http.ResponseWriter, r *http.Request) {
	var in SegmentInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	s, err := h.service.UpdateSegment(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, "update segment price failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, s)
}

func (h *Handler) DeleteSegment(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSegment(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "delete segment price failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) ListOverrides(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.service.ListOverrides(r.Context(), OverrideFilter{
		ProductID:      q.Get("product_id"),
		OrganizationID: q.Get("organization_id"),
	})
	if err != nil {
		h.fail(w, "list overrides failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) CreateOverride(w http.ResponseWriter, r *http.Request) {
	var in OverrideInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	o, err := h.service.CreateOverride(r.Context(), in)
	if err != nil {
		h.fail(w, "create override failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, o)
}

func (h *Handler) UpdateOverride(w http.ResponseWriter, r *http.Request) {
	var in OverrideInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	o, err := h.service.UpdateOverride(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, "update override failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, o)
}

func (h *Handler) DeleteOverride(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteOverride(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "delete override failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) UserTypes(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.UserTypes(r.Context())
	if err != nil {
		h.fail(w, "list user types failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) Organizations(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Organizations(r.Context())
	if err != nil {
		h.fail(w, "list organizations failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	if httpx.IsServerError(err) {
		h.logger.Error(msg, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
