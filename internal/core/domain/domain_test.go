package domain_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/AchilleasB/pet-care/console-service/internal/core/domain"
)

func TestIdentity_Validate(t *testing.T) {
	tests := []struct {
		name     string
		identity domain.Identity
		valid    bool
	}{
		{
			name:     "pet_owner",
			identity: domain.Identity{ID: "u1", Email: "o@x.com", Name: "Olive", Role: domain.RolePetOwner},
			valid:    true,
		},
		{
			name: "veterinarian_with_vet_fields",
			identity: domain.Identity{ID: "v1", Email: "v@x.com", Name: "Vera", Role: domain.RoleVeterinarian,
				ClinicID: "c1", LicenseNumber: "L-1", Specialization: "surgery"},
			valid: true,
		},
		{
			name:     "veterinarian_missing_license",
			identity: domain.Identity{ID: "v1", Email: "v@x.com", Name: "Vera", Role: domain.RoleVeterinarian, ClinicID: "c1", Specialization: "surgery"},
			valid:    false,
		},
		{
			name:     "admin_with_clinic",
			identity: domain.Identity{ID: "a1", Email: "a@x.com", Name: "Ada", Role: domain.RoleAdmin, ClinicID: "c1"},
			valid:    false,
		},
		{
			name:     "unknown_role",
			identity: domain.Identity{ID: "a1", Email: "a@x.com", Name: "Ada", Role: "superuser"},
			valid:    false,
		},
		{
			name:     "missing_email",
			identity: domain.Identity{ID: "a1", Name: "Ada", Role: domain.RoleAdmin},
			valid:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.identity.Validate()
			if tt.valid && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.valid && !errors.Is(err, domain.ErrInvalidIdentity) {
				t.Errorf("expected ErrInvalidIdentity, got %v", err)
			}
		})
	}
}

func TestAppointmentStatus_Edges(t *testing.T) {
	all := []domain.AppointmentStatus{
		domain.AppointmentScheduled, domain.AppointmentConfirmed, domain.AppointmentInProgress,
		domain.AppointmentCompleted, domain.AppointmentCancelled, domain.AppointmentNoShow,
	}
	legal := map[[2]domain.AppointmentStatus]bool{
		{domain.AppointmentScheduled, domain.AppointmentConfirmed}:  true,
		{domain.AppointmentScheduled, domain.AppointmentCancelled}:  true,
		{domain.AppointmentScheduled, domain.AppointmentNoShow}:     true,
		{domain.AppointmentConfirmed, domain.AppointmentInProgress}: true,
		{domain.AppointmentConfirmed, domain.AppointmentCancelled}:  true,
		{domain.AppointmentConfirmed, domain.AppointmentNoShow}:     true,
		{domain.AppointmentInProgress, domain.AppointmentCompleted}: true,
	}

	for _, from := range all {
		for _, to := range all {
			want := legal[[2]domain.AppointmentStatus{from, to}]
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("%s -> %s: expected %v, got %v", from, to, want, got)
			}
		}
	}

	for _, s := range []domain.AppointmentStatus{domain.AppointmentCompleted, domain.AppointmentCancelled, domain.AppointmentNoShow} {
		if !s.Terminal() {
			t.Errorf("expected %s to be terminal", s)
		}
	}
}

func TestParseAppointmentStatus_Aliases(t *testing.T) {
	tests := map[string]domain.AppointmentStatus{
		"in-progress": domain.AppointmentInProgress,
		"In_Progress": domain.AppointmentInProgress,
		"no-show":     domain.AppointmentNoShow,
		"scheduled":   domain.AppointmentScheduled,
	}
	for in, want := range tests {
		got, err := domain.ParseAppointmentStatus(in)
		if err != nil || got != want {
			t.Errorf("%q: expected %s, got %s (%v)", in, want, got, err)
		}
	}
	if _, err := domain.ParseAppointmentStatus("rescheduled"); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}

	var a domain.Appointment
	if err := json.Unmarshal([]byte(`{"id":"a1","status":"no-show","priority":"urgent"}`), &a); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if a.Status != domain.AppointmentNoShow || a.Priority != domain.PriorityEmergency {
		t.Errorf("aliases not normalized: %+v", a)
	}
}

func TestSortAppointments_EmergencyFirst(t *testing.T) {
	items := []domain.Appointment{
		{ID: "late-high", Priority: domain.PriorityHigh, Date: "2026-05-02", Time: "09:00"},
		{ID: "early-low", Priority: domain.PriorityLow, Date: "2026-05-01", Time: "08:00"},
		{ID: "undated", Priority: domain.PriorityHigh},
		{ID: "emergency-late", Priority: domain.PriorityEmergency, Date: "2026-06-01", Time: "17:00"},
		{ID: "emergency-early", Priority: domain.PriorityEmergency, Date: "2026-05-01", Time: "07:00"},
		{ID: "same-slot-medium", Priority: domain.PriorityMedium, Date: "2026-05-01", Time: "08:00"},
	}

	domain.SortAppointments(items)

	want := []string{"emergency-early", "emergency-late", "same-slot-medium", "early-low", "late-high", "undated"}
	for i, id := range want {
		if items[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, items[i].ID)
		}
	}
}

func TestParseDurationDays(t *testing.T) {
	tests := []struct {
		in      string
		days    int
		wantErr bool
	}{
		{"30", 30, false},
		{"30 days", 30, false},
		{"1 day", 1, false},
		{"2 weeks", 14, false},
		{"1 month", 30, false},
		{"Ongoing", 0, true},
		{"", 0, true},
		{"ten days", 0, true},
		{"3 fortnights", 0, true},
	}
	for _, tt := range tests {
		got, err := domain.ParseDurationDays(tt.in)
		if tt.wantErr {
			if !errors.Is(err, domain.ErrInvalidDuration) {
				t.Errorf("%q: expected ErrInvalidDuration, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.days {
			t.Errorf("%q: expected %d, got %d (%v)", tt.in, tt.days, got, err)
		}
	}
}

func TestNextPrescription(t *testing.T) {
	today := domain.NewDate(2026, time.March, 10)
	base := domain.Prescription{
		ID:               "rx1",
		Status:           domain.PrescriptionActive,
		RefillsRemaining: 2,
		TotalRefills:     3,
		StartDate:        domain.NewDate(2026, time.February, 1),
		EndDate:          domain.NewDate(2026, time.March, 3),
		Duration:         "30 days",
	}

	t.Run("refill_request_without_refills", func(t *testing.T) {
		p := base
		p.RefillsRemaining = 0
		_, err := domain.NextPrescription(p, domain.PrescriptionRefillNeeded, today)
		if !errors.Is(err, domain.ErrNoRefillsRemaining) {
			t.Errorf("expected ErrNoRefillsRemaining, got %v", err)
		}
	})

	t.Run("refilled_to_active_decrements_once", func(t *testing.T) {
		p := base
		p.Status = domain.PrescriptionRefilled
		next, err := domain.NextPrescription(p, domain.PrescriptionActive, today)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if next.RefillsRemaining != 1 {
			t.Errorf("expected 1 refill remaining, got %d", next.RefillsRemaining)
		}
		if next.StartDate != today {
			t.Errorf("expected start %s, got %s", today, next.StartDate)
		}
		if want := today.AddDays(30); next.EndDate != want {
			t.Errorf("expected end %s, got %s", want, next.EndDate)
		}
	})

	t.Run("unparsed_duration_reuses_previous_course", func(t *testing.T) {
		for _, d := range []string{"", "10 tablets"} {
			p := base
			p.Status = domain.PrescriptionRefilled
			p.Duration = d
			next, err := domain.NextPrescription(p, domain.PrescriptionActive, today)
			if err != nil {
				t.Fatalf("%q: unexpected error: %v", d, err)
			}
			if want := today.AddDays(30); next.EndDate != want {
				t.Errorf("%q: expected end %s, got %s", d, want, next.EndDate)
			}
		}

		p := base
		p.Status = domain.PrescriptionRefilled
		p.Duration = "10 tablets"
		p.StartDate, p.EndDate = domain.Date{}, domain.Date{}
		if _, err := domain.NextPrescription(p, domain.PrescriptionActive, today); !errors.Is(err, domain.ErrInvalidDuration) {
			t.Errorf("expected ErrInvalidDuration without a previous course, got %v", err)
		}
	})

	t.Run("expiry_requires_passed_end_date", func(t *testing.T) {
		p := base
		p.EndDate = domain.NewDate(2026, time.March, 10)
		if _, err := domain.NextPrescription(p, domain.PrescriptionExpired, today); !errors.Is(err, domain.ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition on end date itself, got %v", err)
		}
		next, err := domain.NextPrescription(base, domain.PrescriptionExpired, today)
		if err != nil || next.Status != domain.PrescriptionExpired {
			t.Errorf("expected expired, got %s (%v)", next.Status, err)
		}
	})

	t.Run("terminal_states_reject", func(t *testing.T) {
		for _, s := range []domain.PrescriptionStatus{domain.PrescriptionCompleted, domain.PrescriptionExpired} {
			p := base
			p.Status = s
			if _, err := domain.NextPrescription(p, domain.PrescriptionActive, today); !errors.Is(err, domain.ErrInvalidTransition) {
				t.Errorf("%s: expected ErrInvalidTransition, got %v", s, err)
			}
		}
	})
}

func TestPrescription_Progress(t *testing.T) {
	p := domain.Prescription{
		StartDate: domain.NewDate(2026, time.January, 1),
		EndDate:   domain.NewDate(2026, time.January, 11),
		Duration:  "10 days",
	}

	tests := []struct {
		today domain.Date
		want  float64
	}{
		{domain.NewDate(2025, time.December, 20), 0},
		{domain.NewDate(2026, time.January, 6), 0.5},
		{domain.NewDate(2026, time.February, 1), 1},
	}
	for _, tt := range tests {
		got, ok := p.Progress(tt.today)
		if !ok || got != tt.want {
			t.Errorf("%s: expected %v, got %v (ok=%v)", tt.today, tt.want, got, ok)
		}
	}

	p.Duration = "Ongoing"
	if _, ok := p.Progress(domain.NewDate(2026, time.January, 6)); ok {
		t.Error("expected progress to be suppressed for ongoing prescriptions")
	}
}

func TestDeriveVaccinationStatus(t *testing.T) {
	today := domain.NewDate(2026, time.April, 1)
	tests := []struct {
		name string
		due  domain.Date
		want domain.VaccinationStatus
	}{
		{"past_due", today.AddDays(-3), domain.VaccinationOverdue},
		{"due_today", today, domain.VaccinationOverdue},
		{"due_tomorrow", today.AddDays(1), domain.VaccinationDueSoon},
		{"edge_of_window", today.AddDays(30), domain.VaccinationDueSoon},
		{"beyond_window", today.AddDays(31), domain.VaccinationCompleted},
		{"no_due_date", domain.Date{}, domain.VaccinationCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := domain.DeriveVaccinationStatus(tt.due, today, 30); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestDate_JSON(t *testing.T) {
	var p domain.Prescription
	body := `{"id":"rx","status":"refill-needed","start_date":"2026-01-01T10:00:00Z","end_date":"2026-01-31","duration":"30 days"}`
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Status != domain.PrescriptionRefillNeeded {
		t.Errorf("expected refill_needed, got %s", p.Status)
	}
	if p.StartDate.String() != "2026-01-01" || p.EndDate.String() != "2026-01-31" {
		t.Errorf("unexpected dates %s %s", p.StartDate, p.EndDate)
	}

	out, err := json.Marshal(domain.Vaccination{ID: "v1"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	_ = json.Unmarshal(out, &decoded)
	if decoded["next_due_date"] != "" {
		t.Errorf("expected empty date string, got %v", decoded["next_due_date"])
	}
}
