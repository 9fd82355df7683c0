package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dulpromax/catalog-api/internal/platform/httpx"
)

// Handler serves profile endpoints for authenticated callers.
type Handler struct {
	gate *Gate
}

// NewHandler constructs a Handler instance.
func NewHandler(gate *Gate) *Handler {
	return &Handler{gate: gate}
}

// MountRoutes registers profile routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.gate.Authenticate).Get("/me", h.me)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.Wrap(httpx.ErrUnauthorized, "Not authenticated", nil))
		return
	}
	httpx.JSON(w, http.StatusOK, caller)
}
