package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

type PrescriptionStatus string

const (
	PrescriptionActive       PrescriptionStatus = "active"
	PrescriptionCompleted    PrescriptionStatus = "completed"
	PrescriptionExpired      PrescriptionStatus = "expired"
	PrescriptionRefillNeeded PrescriptionStatus = "refill_needed"
	PrescriptionRefilled     PrescriptionStatus = "refilled"
)

// DurationOngoing marks a prescription without an end date.
const DurationOngoing = "Ongoing"

var prescriptionEdges = map[PrescriptionStatus]map[PrescriptionStatus]struct{}{
	PrescriptionActive:       toSet(PrescriptionRefillNeeded, PrescriptionExpired),
	PrescriptionRefillNeeded: toSet(PrescriptionRefilled, PrescriptionExpired),
	PrescriptionRefilled:     toSet(PrescriptionActive, PrescriptionExpired),
	PrescriptionCompleted:    {},
	PrescriptionExpired:      {},
}

func ParsePrescriptionStatus(s string) (PrescriptionStatus, error) {
	norm := PrescriptionStatus(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if _, ok := prescriptionEdges[norm]; !ok {
		return "", ErrInvalidStatus
	}
	return norm, nil
}

func (s PrescriptionStatus) CanTransitionTo(to PrescriptionStatus) bool {
	_, ok := prescriptionEdges[s][to]
	return ok
}

func (s *PrescriptionStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParsePrescriptionStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

type Prescription struct {
	ID               string             `json:"id"`
	PetID            string             `json:"petId"`
	Medication       string             `json:"medication,omitempty"`
	Dosage           string             `json:"dosage,omitempty"`
	Status           PrescriptionStatus `json:"status"`
	RefillsRemaining int                `json:"refills_remaining"`
	TotalRefills     int                `json:"total_refills"`
	StartDate        Date               `json:"start_date"`
	EndDate          Date               `json:"end_date"`
	Duration         string             `json:"duration"`
}

func (p Prescription) Ongoing() bool {
	return strings.EqualFold(strings.TrimSpace(p.Duration), DurationOngoing)
}

// ParseDurationDays reads "14", "14 days", "2 weeks" or "1 month" as a day
// count. Months count as 30 days.
func ParseDurationDays(s string) (int, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	if len(fields) == 0 || len(fields) > 2 {
		return 0, ErrInvalidDuration
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return 0, ErrInvalidDuration
	}
	if len(fields) == 1 {
		return n, nil
	}
	switch strings.TrimSuffix(fields[1], "s") {
	case "day":
		return n, nil
	case "week":
		return n * 7, nil
	case "month":
		return n * 30, nil
	default:
		return 0, ErrInvalidDuration
	}
}

// courseDays is the length of one course: the parsed duration, or the span
// of the previous course when the duration is not in days.
func (p Prescription) courseDays() (int, error) {
	days, err := ParseDurationDays(p.Duration)
	if err == nil {
		return days, nil
	}
	if !p.StartDate.IsZero() && !p.EndDate.IsZero() {
		if span := p.StartDate.DaysUntil(p.EndDate); span > 0 {
			return span, nil
		}
	}
	return 0, err
}

// Expirable reports whether the passive expiry edge applies on today.
func (p Prescription) Expirable(today Date) bool {
	if p.EndDate.IsZero() || p.Ongoing() {
		return false
	}
	return p.Status.CanTransitionTo(PrescriptionExpired) && today.After(p.EndDate)
}

// Progress returns the elapsed fraction of the course clamped to [0, 1].
// ok is false for ongoing prescriptions or when the dates are unset.
func (p Prescription) Progress(today Date) (float64, bool) {
	if p.Ongoing() || p.StartDate.IsZero() || p.EndDate.IsZero() {
		return 0, false
	}
	total := p.StartDate.DaysUntil(p.EndDate)
	if total <= 0 {
		if today.Before(p.EndDate) {
			return 0, true
		}
		return 1, true
	}
	frac := float64(p.StartDate.DaysUntil(today)) / float64(total)
	switch {
	case frac < 0:
		return 0, true
	case frac > 1:
		return 1, true
	}
	return frac, true
}

// NextPrescription applies a single edge of the prescription lifecycle and
// returns the resulting entity. Actor checks are the caller's concern.
func NextPrescription(p Prescription, to PrescriptionStatus, today Date) (Prescription, error) {
	if !p.Status.CanTransitionTo(to) {
		return p, ErrInvalidTransition
	}

	next := p
	switch to {
	case PrescriptionRefillNeeded:
		if p.RefillsRemaining <= 0 {
			return p, ErrNoRefillsRemaining
		}
	case PrescriptionRefilled:
		if p.RefillsRemaining <= 0 {
			return p, ErrNoRefillsRemaining
		}
	case PrescriptionActive:
		if p.RefillsRemaining <= 0 {
			return p, ErrNoRefillsRemaining
		}
		next.RefillsRemaining = p.RefillsRemaining - 1
		next.StartDate = today
		if p.Ongoing() {
			next.EndDate = Date{}
		} else {
			days, err := p.courseDays()
			if err != nil {
				return p, err
			}
			next.EndDate = today.AddDays(days)
		}
	case PrescriptionExpired:
		if !p.Expirable(today) {
			return p, ErrInvalidTransition
		}
	}
	next.Status = to
	return next, nil
}
