package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/AchilleasB/pet-care/console-service/internal/adapters/handler"
	"github.com/AchilleasB/pet-care/console-service/internal/adapters/middleware"
	"github.com/AchilleasB/pet-care/console-service/internal/core/domain"
	"github.com/AchilleasB/pet-care/console-service/internal/core/services"
	"github.com/AchilleasB/pet-care/console-service/test/mocks"
)

var fixedNow = time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)

type testServer struct {
	router  http.Handler
	remote  *mocks.MockRemoteAPI
	kv      *mocks.MockKeyValueStore
	session *services.SessionStore
	breaker gobreaker.State
}

func newTestServer(t *testing.T, identity *domain.Identity) *testServer {
	t.Helper()
	logger := zerolog.Nop()
	ts := &testServer{
		remote:  mocks.NewMockRemoteAPI(),
		kv:      mocks.NewMockKeyValueStore(),
		breaker: gobreaker.StateClosed,
	}
	ts.remote.Pets = mocks.SamplePets()
	ts.session = services.NewSessionStore(ts.kv, ts.remote, nil, nil, logger)

	deps := services.MachineDeps{Session: ts.session, Logger: logger, Now: func() time.Time { return fixedNow }}
	appointments := services.NewAppointmentMachine(ts.remote, deps)
	prescriptions := services.NewPrescriptionMachine(ts.remote, deps)
	vaccinations := services.NewVaccinationMachine(ts.remote, deps, 30, services.VaccinationDerived)
	for _, c := range []services.Clearable{appointments, prescriptions, vaccinations} {
		ts.session.RegisterCache(c)
	}

	policy := services.NewPolicy(ts.session, nil)
	resolver := services.NewViewResolver()
	auth := services.NewAuthService(ts.remote, ts.session, nil, logger)

	health := handler.NewHealthHandler(ts.kv, map[string]handler.BreakerProbe{
		"remote_api": func() gobreaker.State { return ts.breaker },
	})

	ts.router = handler.NewRouter(handler.RouterConfig{
		Session:      handler.NewSessionHandler(auth, ts.session, policy, resolver),
		Views:        handler.NewViewHandler(ts.session, policy, resolver),
		Appointments: handler.NewAppointmentHandler(appointments),
		Records:      handler.NewRecordHandler(ts.session, policy, prescriptions, vaccinations),
		Health:       health,
		Guard:        middleware.NewSessionGuard(ts.session, logger),
		CORSOrigins:  []string{"*"},
		Logger:       logger,
	})

	if identity != nil {
		if err := ts.session.Login(context.Background(), *identity, "tok"); err != nil {
			t.Fatalf("login: %v", err)
		}
	}
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return out
}

func TestSession_LoginAndLogout(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.remote.Identity = mocks.AdminIdentity()
	ts.remote.Token = "signed-token"

	rec := ts.do(t, http.MethodPost, "/session/login", handler.LoginRequest{Email: "ada@example.com", Password: "secret123"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[handler.SessionResponse](t, rec)
	if !resp.Authenticated || resp.CurrentView != domain.ViewAdminDashboard || !resp.Capabilities.AdminPanel {
		t.Errorf("unexpected session %+v", resp)
	}

	if rec := ts.do(t, http.MethodPost, "/session/logout", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	resp = decode[handler.SessionResponse](t, ts.do(t, http.MethodGet, "/session", nil))
	if resp.Authenticated || resp.Identity != nil || resp.CurrentView != domain.NeutralView {
		t.Errorf("session survived logout: %+v", resp)
	}
}

func TestSession_LoginValidation(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/session/login", handler.LoginRequest{Email: "nope"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	resp := decode[handler.ErrorResponse](t, rec)
	if resp.Fields["email"] == "" || resp.Fields["password"] == "" {
		t.Errorf("expected field errors, got %+v", resp)
	}
	if ts.remote.AuthCalls != 0 {
		t.Error("invalid form reached the remote API")
	}
}

func TestSession_SetViewRestricted(t *testing.T) {
	owner := mocks.OwnerIdentity()
	ts := newTestServer(t, &owner)

	rec := ts.do(t, http.MethodPut, "/session/view", handler.SetViewRequest{View: domain.ViewUsers})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	state := decode[services.ScreenState](t, rec)
	if !state.Restricted {
		t.Errorf("expected users screen to be restricted for an owner, got %+v", state)
	}
	if ts.session.Snapshot().CurrentView != domain.ViewUsers {
		t.Errorf("expected current view users, got %s", ts.session.Snapshot().CurrentView)
	}
}

func TestCapabilities_PetScoped(t *testing.T) {
	owner := mocks.OwnerIdentity()
	ts := newTestServer(t, &owner)

	tests := []struct {
		petID    string
		wantView bool
	}{
		{"pet-1", true},
		{"pet-3", false},
		{"pet-unknown", false},
	}
	for _, tt := range tests {
		t.Run(tt.petID, func(t *testing.T) {
			caps := decode[services.Capabilities](t, ts.do(t, http.MethodGet, "/capabilities?pet_id="+tt.petID, nil))
			if caps.ViewHealthRecords != tt.wantView {
				t.Errorf("expected viewHealthRecords=%v, got %+v", tt.wantView, caps)
			}
			if caps.EditHealthRecords {
				t.Error("owner must never edit health records")
			}
		})
	}
}

func TestAppointments_RequireSession(t *testing.T) {
	ts := newTestServer(t, nil)
	if rec := ts.do(t, http.MethodGet, "/appointments", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAppointments_Transition(t *testing.T) {
	vet := mocks.VetIdentity()

	tests := []struct {
		name       string
		from       domain.AppointmentStatus
		to         string
		wantStatus int
	}{
		{"confirm", domain.AppointmentScheduled, "confirmed", http.StatusOK},
		{"alias", domain.AppointmentScheduled, "no-show", http.StatusOK},
		{"invalid_edge", domain.AppointmentCompleted, "scheduled", http.StatusConflict},
		{"unknown_status", domain.AppointmentScheduled, "teleported", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, &vet)
			ts.remote.Appointments["appt-1"] = domain.Appointment{ID: "appt-1", Status: tt.from}

			rec := ts.do(t, http.MethodPost, "/appointments/appt-1/transition", handler.TransitionRequest{Status: tt.to})
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAppointments_RemoteRejection(t *testing.T) {
	vet := mocks.VetIdentity()
	ts := newTestServer(t, &vet)
	ts.remote.Appointments["appt-1"] = domain.Appointment{ID: "appt-1", Status: domain.AppointmentScheduled}
	ts.remote.UpdateError = mocks.ErrNotFound

	rec := ts.do(t, http.MethodPost, "/appointments/appt-1/transition", handler.TransitionRequest{Status: "confirmed"})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestPrescriptions_RefillApproval(t *testing.T) {
	rx := domain.Prescription{
		ID:               "rx-1",
		PetID:            "pet-1",
		Status:           domain.PrescriptionRefillNeeded,
		RefillsRemaining: 2,
		TotalRefills:     3,
		Duration:         "14 days",
	}

	tests := []struct {
		name       string
		identity   domain.Identity
		wantStatus int
	}{
		{"vet_approves", mocks.VetIdentity(), http.StatusOK},
		{"owner_forbidden", mocks.OwnerIdentity(), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, &tt.identity)
			ts.remote.Prescriptions["rx-1"] = rx

			rec := ts.do(t, http.MethodPost, "/prescriptions/rx-1/transition", handler.TransitionRequest{Status: "refilled"})
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			resp := decode[handler.PrescriptionResponse](t, rec)
			if resp.Prescription.Status != domain.PrescriptionActive || resp.Prescription.RefillsRemaining != 1 {
				t.Errorf("unexpected prescription %+v", resp.Prescription)
			}
			if resp.Progress == nil {
				t.Error("expected progress for a bounded course")
			}
		})
	}
}

func TestPrescriptions_OtherOwnersPetHidden(t *testing.T) {
	owner := mocks.OwnerIdentity()
	ts := newTestServer(t, &owner)
	ts.remote.Prescriptions["rx-9"] = domain.Prescription{ID: "rx-9", PetID: "pet-3", Status: domain.PrescriptionActive, Duration: "Ongoing"}

	if rec := ts.do(t, http.MethodGet, "/prescriptions/rx-9", nil); rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestVaccinations(t *testing.T) {
	vet := mocks.VetIdentity()
	owner := mocks.OwnerIdentity()
	vacc := domain.Vaccination{ID: "vac-1", PatientID: "pet-1", NextDueDate: domain.NewDate(2026, time.March, 20)}

	t.Run("status_is_derived", func(t *testing.T) {
		ts := newTestServer(t, &owner)
		ts.remote.Vaccinations["vac-1"] = vacc

		got := decode[domain.Vaccination](t, ts.do(t, http.MethodGet, "/vaccinations/vac-1", nil))
		if got.Status != domain.VaccinationDueSoon {
			t.Errorf("expected due-soon, got %s", got.Status)
		}
	})

	t.Run("direct_transition_conflicts", func(t *testing.T) {
		ts := newTestServer(t, &vet)
		ts.remote.Vaccinations["vac-1"] = vacc

		rec := ts.do(t, http.MethodPost, "/vaccinations/vac-1/transition", handler.TransitionRequest{Status: "completed"})
		if rec.Code != http.StatusConflict {
			t.Errorf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("owner_cannot_reschedule", func(t *testing.T) {
		ts := newTestServer(t, &owner)
		ts.remote.Vaccinations["vac-1"] = vacc

		rec := ts.do(t, http.MethodPut, "/vaccinations/vac-1/due-date", handler.DueDateRequest{NextDueDate: "2026-09-01"})
		if rec.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("vet_reschedules", func(t *testing.T) {
		ts := newTestServer(t, &vet)
		ts.remote.Vaccinations["vac-1"] = vacc

		rec := ts.do(t, http.MethodPut, "/vaccinations/vac-1/due-date", handler.DueDateRequest{NextDueDate: "2026-09-01"})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		got := decode[domain.Vaccination](t, rec)
		if got.Status != domain.VaccinationCompleted {
			t.Errorf("expected completed once the due date is far out, got %s", got.Status)
		}
	})
}

func TestValidate(t *testing.T) {
	ts := newTestServer(t, nil)
	body := json.RawMessage(`{
		"rules": {"email": {"required": true, "email": true}, "phone": {"pattern": "^[0-9]+$"}},
		"values": {"email": "ada@example.com", "phone": "12a"}
	}`)

	rec := ts.do(t, http.MethodPost, "/validate", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decode[handler.ValidateResponse](t, rec)
	if resp.Valid || resp.Errors["phone"] == "" || resp.Errors["email"] != "" {
		t.Errorf("unexpected validation result %+v", resp)
	}
}

func TestHealth_Ready(t *testing.T) {
	ts := newTestServer(t, nil)
	if rec := ts.do(t, http.MethodGet, "/health/ready", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	ts.breaker = gobreaker.StateOpen
	rec := ts.do(t, http.MethodGet, "/health/ready", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with an open breaker, got %d", rec.Code)
	}
	resp := decode[handler.HealthResponse](t, rec)
	if resp.Checks["remote_api"].Status != "DOWN" {
		t.Errorf("unexpected checks %+v", resp.Checks)
	}
}
