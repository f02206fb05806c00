package domain

import "strings"

type Role string

const (
	RoleAdmin        Role = "admin"
	RoleVeterinarian Role = "veterinarian"
	RolePetOwner     Role = "pet_owner"
)

// Known reports whether r is one of the roles the console understands.
func (r Role) Known() bool {
	switch r {
	case RoleAdmin, RoleVeterinarian, RolePetOwner:
		return true
	}
	return false
}

// Identity is the authenticated user held for the duration of a session.
// ClinicID, LicenseNumber and Specialization are only set for veterinarians.
type Identity struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	Role           Role   `json:"role"`
	ClinicID       string `json:"clinicId,omitempty"`
	LicenseNumber  string `json:"licenseNumber,omitempty"`
	Specialization string `json:"specialization,omitempty"`
}

// Validate checks the structural invariants of an identity.
func (i Identity) Validate() error {
	if strings.TrimSpace(i.ID) == "" || strings.TrimSpace(i.Email) == "" || strings.TrimSpace(i.Name) == "" {
		return ErrInvalidIdentity
	}
	if !i.Role.Known() {
		return ErrInvalidIdentity
	}

	vetFields := []string{i.ClinicID, i.LicenseNumber, i.Specialization}
	for _, f := range vetFields {
		present := strings.TrimSpace(f) != ""
		if present != (i.Role == RoleVeterinarian) {
			return ErrInvalidIdentity
		}
	}
	return nil
}

// Clone returns a copy that callers may hold without aliasing session state.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}

// RoleOf returns the identity's role, or the empty role for nil.
func RoleOf(i *Identity) Role {
	if i == nil {
		return ""
	}
	return i.Role
}
