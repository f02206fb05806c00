package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AchilleasB/pet-care/console-service/internal/core/domain"
	"github.com/AchilleasB/pet-care/console-service/internal/core/services"
)

type AppointmentHandler struct {
	machine *services.AppointmentMachine
}

func NewAppointmentHandler(machine *services.AppointmentMachine) *AppointmentHandler {
	return &AppointmentHandler{machine: machine}
}

// TransitionRequest names the requested status. Aliases are accepted.
type TransitionRequest struct {
	Status string `json:"status"`
}

func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.machine.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []domain.Appointment{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *AppointmentHandler) Transition(w http.ResponseWriter, r *http.Request) {
	var req TransitionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	to, err := domain.ParseAppointmentStatus(req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	current, err := h.machine.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.machine.Transition(r.Context(), current, to)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
