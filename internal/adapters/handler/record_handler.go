package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AchilleasB/pet-care/console-service/internal/core/domain"
	"github.com/AchilleasB/pet-care/console-service/internal/core/services"
)

// RecordHandler serves the health records a pet carries: prescriptions and
// vaccinations. Reads are gated by the health-record visibility rule.
type RecordHandler struct {
	session       *services.SessionStore
	policy        *services.Policy
	prescriptions *services.PrescriptionMachine
	vaccinations  *services.VaccinationMachine
}

func NewRecordHandler(
	session *services.SessionStore,
	policy *services.Policy,
	prescriptions *services.PrescriptionMachine,
	vaccinations *services.VaccinationMachine,
) *RecordHandler {
	return &RecordHandler{
		session:       session,
		policy:        policy,
		prescriptions: prescriptions,
		vaccinations:  vaccinations,
	}
}

type PrescriptionResponse struct {
	Prescription domain.Prescription `json:"prescription"`
	// Progress is omitted for ongoing courses.
	Progress *float64 `json:"progress,omitempty"`
}

type DueDateRequest struct {
	NextDueDate string `json:"next_due_date"`
}

func (h *RecordHandler) canView(w http.ResponseWriter, r *http.Request, petID string) bool {
	awaitCaches(r, h.session)
	if !h.policy.CanViewHealthRecords(petID) {
		writeError(w, domain.ErrForbidden)
		return false
	}
	return true
}

func (h *RecordHandler) prescriptionResponse(p domain.Prescription) PrescriptionResponse {
	resp := PrescriptionResponse{Prescription: p}
	if progress, ok := h.prescriptions.Progress(p); ok {
		resp.Progress = &progress
	}
	return resp
}

func (h *RecordHandler) GetPrescription(w http.ResponseWriter, r *http.Request) {
	p, err := h.prescriptions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !h.canView(w, r, p.PetID) {
		return
	}
	writeJSON(w, http.StatusOK, h.prescriptionResponse(p))
}

func (h *RecordHandler) TransitionPrescription(w http.ResponseWriter, r *http.Request) {
	var req TransitionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	to, err := domain.ParsePrescriptionStatus(req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	current, err := h.prescriptions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !h.canView(w, r, current.PetID) {
		return
	}
	updated, err := h.prescriptions.Transition(r.Context(), current, to)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.prescriptionResponse(updated))
}

func (h *RecordHandler) ReconcilePrescription(w http.ResponseWriter, r *http.Request) {
	current, err := h.prescriptions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !h.canView(w, r, current.PetID) {
		return
	}
	updated, err := h.prescriptions.Reconcile(r.Context(), current)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.prescriptionResponse(updated))
}

func (h *RecordHandler) GetVaccination(w http.ResponseWriter, r *http.Request) {
	v, err := h.vaccinations.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !h.canView(w, r, v.PatientID) {
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// TransitionVaccination exists so renderers get the same typed rejection as
// the other machines; vaccination status is never set directly.
func (h *RecordHandler) TransitionVaccination(w http.ResponseWriter, r *http.Request) {
	var req TransitionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	to, err := domain.ParseVaccinationStatus(req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	current, err := h.vaccinations.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	_, err = h.vaccinations.Transition(r.Context(), current, to)
	writeError(w, err)
}

func (h *RecordHandler) RescheduleVaccination(w http.ResponseWriter, r *http.Request) {
	var req DueDateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	due, err := domain.ParseDate(req.NextDueDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "next_due_date must be YYYY-MM-DD"})
		return
	}

	current, err := h.vaccinations.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.vaccinations.Reschedule(r.Context(), current, due)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
