package domain

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

type AppointmentStatus string

const (
	AppointmentScheduled  AppointmentStatus = "scheduled"
	AppointmentConfirmed  AppointmentStatus = "confirmed"
	AppointmentInProgress AppointmentStatus = "in_progress"
	AppointmentCompleted  AppointmentStatus = "completed"
	AppointmentCancelled  AppointmentStatus = "cancelled"
	AppointmentNoShow     AppointmentStatus = "no_show"
)

var appointmentEdges = map[AppointmentStatus]map[AppointmentStatus]struct{}{
	AppointmentScheduled:  toSet(AppointmentConfirmed, AppointmentCancelled, AppointmentNoShow),
	AppointmentConfirmed:  toSet(AppointmentInProgress, AppointmentCancelled, AppointmentNoShow),
	AppointmentInProgress: toSet(AppointmentCompleted),
	AppointmentCompleted:  {},
	AppointmentCancelled:  {},
	AppointmentNoShow:     {},
}

// ParseAppointmentStatus maps the hyphenated spellings used by some screens
// onto the canonical underscore form.
func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	norm := AppointmentStatus(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if _, ok := appointmentEdges[norm]; !ok {
		return "", ErrInvalidStatus
	}
	return norm, nil
}

func (s AppointmentStatus) Terminal() bool {
	next, ok := appointmentEdges[s]
	return ok && len(next) == 0
}

func (s AppointmentStatus) CanTransitionTo(to AppointmentStatus) bool {
	_, ok := appointmentEdges[s][to]
	return ok
}

func (s *AppointmentStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseAppointmentStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

type Priority string

const (
	PriorityLow       Priority = "low"
	PriorityMedium    Priority = "medium"
	PriorityHigh      Priority = "high"
	PriorityEmergency Priority = "emergency"
)

// ParsePriority folds "urgent" into emergency. Unknown values read as medium.
func ParsePriority(s string) Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow
	case "high":
		return PriorityHigh
	case "emergency", "urgent":
		return PriorityEmergency
	default:
		return PriorityMedium
	}
}

func (p *Priority) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = ParsePriority(raw)
	return nil
}

func (p Priority) rank() int {
	switch p {
	case PriorityEmergency:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

type Appointment struct {
	ID             string            `json:"id"`
	PetID          string            `json:"petId"`
	Status         AppointmentStatus `json:"status"`
	Priority       Priority          `json:"priority"`
	Date           string            `json:"date"`
	Time           string            `json:"time"`
	VeterinarianID string            `json:"veterinarianId"`
	Reason         string            `json:"reason,omitempty"`
	Notes          string            `json:"notes,omitempty"`
}

func (a Appointment) scheduledAt() (time.Time, bool) {
	t, err := time.Parse("2006-01-02 15:04", strings.TrimSpace(a.Date)+" "+strings.TrimSpace(a.Time))
	if err == nil {
		return t, true
	}
	d, err := time.Parse(DateLayout, strings.TrimSpace(a.Date))
	if err == nil {
		return d, true
	}
	return time.Time{}, false
}

// SortAppointments orders emergencies first regardless of when they are
// scheduled, then by date and time. Entries without a parseable date go last.
// Priority breaks the remaining ties.
func SortAppointments(items []Appointment) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		ae, be := a.Priority == PriorityEmergency, b.Priority == PriorityEmergency
		if ae != be {
			return ae
		}

		at, aok := a.scheduledAt()
		bt, bok := b.scheduledAt()
		if aok != bok {
			return aok
		}
		if aok && !at.Equal(bt) {
			return at.Before(bt)
		}
		return a.Priority.rank() > b.Priority.rank()
	})
}

func toSet[T comparable](values ...T) map[T]struct{} {
	set := make(map[T]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
