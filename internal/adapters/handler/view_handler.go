package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AchilleasB/pet-care/console-service/internal/core/domain"
	"github.com/AchilleasB/pet-care/console-service/internal/core/services"
)

type ViewHandler struct {
	session  *services.SessionStore
	policy   *services.Policy
	resolver *services.ViewResolver
}

func NewViewHandler(session *services.SessionStore, policy *services.Policy, resolver *services.ViewResolver) *ViewHandler {
	return &ViewHandler{session: session, policy: policy, resolver: resolver}
}

func (h *ViewHandler) View(w http.ResponseWriter, r *http.Request) {
	petID := r.URL.Query().Get("pet_id")
	if petID != "" {
		awaitCaches(r, h.session)
	}
	viewID := domain.ViewID(chi.URLParam(r, "viewID"))
	writeJSON(w, http.StatusOK, h.resolver.Render(h.session, viewID, petID))
}

func (h *ViewHandler) Capabilities(w http.ResponseWriter, r *http.Request) {
	petID := r.URL.Query().Get("pet_id")
	if petID != "" {
		awaitCaches(r, h.session)
	}
	writeJSON(w, http.StatusOK, h.policy.Capabilities(petID))
}

// awaitCaches blocks until the session's directory caches are loaded or the
// request ends, so per-pet ownership checks see the pet list.
func awaitCaches(r *http.Request, session *services.SessionStore) {
	select {
	case <-session.CachesLoaded():
	case <-r.Context().Done():
	}
}
