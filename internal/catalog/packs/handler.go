package packs

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dulpromax/catalog-api/internal/platform/httpx"
)

// Guard protects mutating routes.
type Guard interface {
	RequireAdmin(next http.Handler) http.Handler
}

type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   Guard
}

func NewHandler(logger *slog.Logger, service *Service, guard Guard) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes registers pack routes relative to /products.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{id}/packs", h.List)
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAdmin)
		r.Post("/{id}/packs", h.Create)
		r.Put("/{id}/packs/{packID}", h.Update)
		r.Delete("/{id}/packs/{packID}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "list packs failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := h.service.Create(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, "create pack failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "packID"), in)
	if err != nil {
		h.fail(w, "update pack failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "packID"))
	if err != nil {
		h.fail(w, "delete pack failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "Pack deleted", "data": p})
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	if httpx.IsServerError(err) {
		h.logger.Error(msg, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
