package domain

// Pet is the slice of a pet record the core needs for ownership checks.
type Pet struct {
	ID      string `json:"id"`
	OwnerID string `json:"ownerId"`
	Name    string `json:"name"`
	Species string `json:"species,omitempty"`
}

type Veterinarian struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ClinicID       string `json:"clinicId"`
	Specialization string `json:"specialization,omitempty"`
}

type Clinic struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
