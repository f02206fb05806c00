package ports

import (
	"context"

	"github.com/AchilleasB/pet-care/console-service/internal/core/domain"
)

// AuthGateway exchanges credentials for an identity and a bearer credential.
type AuthGateway interface {
	Authenticate(ctx context.Context, email, password string) (domain.Identity, string, error)
}

// Directory serves the collections behind the role-scoped caches.
// An empty ownerID lists every pet.
type Directory interface {
	ListPets(ctx context.Context, ownerID string) ([]domain.Pet, error)
	ListVeterinarians(ctx context.Context) ([]domain.Veterinarian, error)
	ListClinics(ctx context.Context) ([]domain.Clinic, error)
}

type AppointmentAPI interface {
	GetAppointment(ctx context.Context, id string) (domain.Appointment, error)
	ListAppointments(ctx context.Context) ([]domain.Appointment, error)
	UpdateAppointment(ctx context.Context, a domain.Appointment) (domain.Appointment, error)
}

type PrescriptionAPI interface {
	GetPrescription(ctx context.Context, id string) (domain.Prescription, error)
	UpdatePrescription(ctx context.Context, p domain.Prescription) (domain.Prescription, error)
}

type VaccinationAPI interface {
	GetVaccination(ctx context.Context, id string) (domain.Vaccination, error)
	UpdateVaccination(ctx context.Context, v domain.Vaccination) (domain.Vaccination, error)
}

// RemoteAPI is the full collaborator surface served by the remote client.
type RemoteAPI interface {
	AuthGateway
	Directory
	AppointmentAPI
	PrescriptionAPI
	VaccinationAPI
}

// CredentialSource hands the transport the bearer credential to attach.
// An empty string means no credential is held.
type CredentialSource interface {
	BearerToken() string
}

// TokenVerifier checks a bearer credential against the identity it was issued for.
type TokenVerifier interface {
	Verify(token string, identity domain.Identity) error
}
