package handler

import (
	"net/http"

	"github.com/AchilleasB/pet-care/console-service/internal/core/validation"
)

type ValidateRequest struct {
	Rules  validation.RuleSet `json:"rules"`
	Values map[string]string  `json:"values"`
}

type ValidateResponse struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
}

// Validate checks a form against declarative rules supplied by the renderer.
// Custom rules cannot travel as JSON and are never applied here.
func Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	form := validation.NewForm(req.Rules)
	valid := form.ValidateForm(req.Values)
	writeJSON(w, http.StatusOK, ValidateResponse{Valid: valid, Errors: form.Errors()})
}
