package mocks

import (
	"github.com/AchilleasB/pet-care/console-service/internal/core/domain"
)

func OwnerIdentity() domain.Identity {
	return domain.Identity{
		ID:    "owner-1",
		Email: "olive@example.com",
		Name:  "Olive Owner",
		Role:  domain.RolePetOwner,
	}
}

func AdminIdentity() domain.Identity {
	return domain.Identity{
		ID:    "admin-1",
		Email: "ada@example.com",
		Name:  "Ada Admin",
		Role:  domain.RoleAdmin,
	}
}

func VetIdentity() domain.Identity {
	return domain.Identity{
		ID:             "vet-1",
		Email:          "vera@example.com",
		Name:           "Vera Vet",
		Role:           domain.RoleVeterinarian,
		ClinicID:       "clinic-1",
		LicenseNumber:  "LIC-001",
		Specialization: "surgery",
	}
}

// SamplePets returns two pets for owner-1 and one for another owner.
func SamplePets() []domain.Pet {
	return []domain.Pet{
		{ID: "pet-1", OwnerID: "owner-1", Name: "Rex", Species: "dog"},
		{ID: "pet-2", OwnerID: "owner-1", Name: "Tom", Species: "cat"},
		{ID: "pet-3", OwnerID: "owner-2", Name: "Bubbles", Species: "fish"},
	}
}
