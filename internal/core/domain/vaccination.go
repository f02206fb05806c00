package domain

import (
	"encoding/json"
	"strings"
)

type VaccinationStatus string

const (
	VaccinationCompleted VaccinationStatus = "completed"
	VaccinationDueSoon   VaccinationStatus = "due-soon"
	VaccinationOverdue   VaccinationStatus = "overdue"
)

const DefaultVaccinationLookahead = 30

func ParseVaccinationStatus(s string) (VaccinationStatus, error) {
	norm := VaccinationStatus(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-"))
	switch norm {
	case VaccinationCompleted, VaccinationDueSoon, VaccinationOverdue:
		return norm, nil
	}
	return "", ErrInvalidStatus
}

func (s *VaccinationStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		*s = ""
		return nil
	}
	parsed, err := ParseVaccinationStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

type Vaccination struct {
	ID             string            `json:"id"`
	PatientID      string            `json:"patient_id"`
	Vaccine        string            `json:"vaccine,omitempty"`
	Status         VaccinationStatus `json:"status"`
	AdministeredAt Date              `json:"administered_date"`
	NextDueDate    Date              `json:"next_due_date"`
}

// DeriveVaccinationStatus computes the status from the next due date.
// A due date today or earlier is overdue; within lookaheadDays it is due soon.
// Without a due date nothing is pending, so the record reads as completed.
func DeriveVaccinationStatus(nextDue, today Date, lookaheadDays int) VaccinationStatus {
	if nextDue.IsZero() {
		return VaccinationCompleted
	}
	days := today.DaysUntil(nextDue)
	switch {
	case days <= 0:
		return VaccinationOverdue
	case days <= lookaheadDays:
		return VaccinationDueSoon
	default:
		return VaccinationCompleted
	}
}
