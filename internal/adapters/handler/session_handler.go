package handler

import (
	"net/http"

	"github.com/AchilleasB/pet-care/console-service/internal/core/domain"
	"github.com/AchilleasB/pet-care/console-service/internal/core/ports"
	"github.com/AchilleasB/pet-care/console-service/internal/core/services"
)

type SessionHandler struct {
	auth     ports.AuthService
	session  *services.SessionStore
	policy   *services.Policy
	resolver *services.ViewResolver
}

func NewSessionHandler(auth ports.AuthService, session *services.SessionStore, policy *services.Policy, resolver *services.ViewResolver) *SessionHandler {
	return &SessionHandler{auth: auth, session: session, policy: policy, resolver: resolver}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	domain.Session
	Capabilities services.Capabilities `json:"capabilities"`
}

type SetViewRequest struct {
	View domain.ViewID `json:"view"`
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Session: session, Capabilities: h.policy.Capabilities("")})
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SessionResponse{
		Session:      h.session.Snapshot(),
		Capabilities: h.policy.Capabilities(""),
	})
}

// SetView navigates the console. Views the caller may not see still resolve,
// the screen state reports the restriction.
func (h *SessionHandler) SetView(w http.ResponseWriter, r *http.Request) {
	var req SetViewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	screen := h.resolver.Resolve(req.View, h.session.CurrentIdentity())
	h.session.SetCurrentView(screen.View())
	writeJSON(w, http.StatusOK, h.resolver.Render(h.session, screen.View(), ""))
}
