package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/AchilleasB/pet-care/console-service/internal/core/domain"
	"github.com/AchilleasB/pet-care/console-service/internal/core/ports"
)

var ErrNotFound = errors.New("not found")

// MockRemoteAPI implements ports.RemoteAPI in memory. Updates echo the
// submitted entity back unless an error is injected.
type MockRemoteAPI struct {
	mu sync.Mutex

	// Authenticate results
	Identity  domain.Identity
	Token     string
	AuthError error
	AuthCalls int

	Pets          []domain.Pet
	Veterinarians []domain.Veterinarian
	Clinics       []domain.Clinic
	// PetsGate, when set, blocks ListPets until it is closed or ctx ends.
	PetsGate      chan struct{}
	ListPetsCalls []string
	DirectoryErr  error

	Appointments  map[string]domain.Appointment
	Prescriptions map[string]domain.Prescription
	Vaccinations  map[string]domain.Vaccination

	UpdateAppointmentCalls  []domain.Appointment
	UpdatePrescriptionCalls []domain.Prescription
	UpdateVaccinationCalls  []domain.Vaccination

	UpdateError error
}

var _ ports.RemoteAPI = (*MockRemoteAPI)(nil)

func NewMockRemoteAPI() *MockRemoteAPI {
	return &MockRemoteAPI{
		Appointments:  make(map[string]domain.Appointment),
		Prescriptions: make(map[string]domain.Prescription),
		Vaccinations:  make(map[string]domain.Vaccination),
	}
}

func (m *MockRemoteAPI) Authenticate(ctx context.Context, email, password string) (domain.Identity, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AuthCalls++
	if m.AuthError != nil {
		return domain.Identity{}, "", m.AuthError
	}
	return m.Identity, m.Token, nil
}

func (m *MockRemoteAPI) ListPets(ctx context.Context, ownerID string) ([]domain.Pet, error) {
	m.mu.Lock()
	m.ListPetsCalls = append(m.ListPetsCalls, ownerID)
	gate := m.PetsGate
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DirectoryErr != nil {
		return nil, m.DirectoryErr
	}
	var out []domain.Pet
	for _, p := range m.Pets {
		if ownerID == "" || p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockRemoteAPI) ListVeterinarians(ctx context.Context) ([]domain.Veterinarian, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Veterinarian(nil), m.Veterinarians...), m.DirectoryErr
}

func (m *MockRemoteAPI) ListClinics(ctx context.Context) ([]domain.Clinic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Clinic(nil), m.Clinics...), m.DirectoryErr
}

func (m *MockRemoteAPI) GetAppointment(ctx context.Context, id string) (domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Appointments[id]
	if !ok {
		return domain.Appointment{}, ErrNotFound
	}
	return a, nil
}

func (m *MockRemoteAPI) ListAppointments(ctx context.Context) ([]domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Appointment, 0, len(m.Appointments))
	for _, a := range m.Appointments {
		out = append(out, a)
	}
	return out, nil
}

func (m *MockRemoteAPI) UpdateAppointment(ctx context.Context, a domain.Appointment) (domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateAppointmentCalls = append(m.UpdateAppointmentCalls, a)
	if m.UpdateError != nil {
		return domain.Appointment{}, m.UpdateError
	}
	m.Appointments[a.ID] = a
	return a, nil
}

func (m *MockRemoteAPI) GetPrescription(ctx context.Context, id string) (domain.Prescription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Prescriptions[id]
	if !ok {
		return domain.Prescription{}, ErrNotFound
	}
	return p, nil
}

func (m *MockRemoteAPI) UpdatePrescription(ctx context.Context, p domain.Prescription) (domain.Prescription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdatePrescriptionCalls = append(m.UpdatePrescriptionCalls, p)
	if m.UpdateError != nil {
		return domain.Prescription{}, m.UpdateError
	}
	m.Prescriptions[p.ID] = p
	return p, nil
}

func (m *MockRemoteAPI) GetVaccination(ctx context.Context, id string) (domain.Vaccination, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.Vaccinations[id]
	if !ok {
		return domain.Vaccination{}, ErrNotFound
	}
	return v, nil
}

func (m *MockRemoteAPI) UpdateVaccination(ctx context.Context, v domain.Vaccination) (domain.Vaccination, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateVaccinationCalls = append(m.UpdateVaccinationCalls, v)
	if m.UpdateError != nil {
		return domain.Vaccination{}, m.UpdateError
	}
	m.Vaccinations[v.ID] = v
	return v, nil
}

// UpdateCallCount totals the update calls across all three entity kinds.
func (m *MockRemoteAPI) UpdateCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.UpdateAppointmentCalls) + len(m.UpdatePrescriptionCalls) + len(m.UpdateVaccinationCalls)
}

// MockTokenVerifier implements ports.TokenVerifier with an injectable result.
type MockTokenVerifier struct {
	Err   error
	Calls []string
}

var _ ports.TokenVerifier = (*MockTokenVerifier)(nil)

func (m *MockTokenVerifier) Verify(token string, identity domain.Identity) error {
	m.Calls = append(m.Calls, token)
	return m.Err
}
