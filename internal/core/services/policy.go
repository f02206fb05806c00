package services

import (
	"github.com/AchilleasB/pet-care/console-service/internal/core/domain"
	"github.com/AchilleasB/pet-care/console-service/internal/core/ports"
)

// The predicates below are total over their inputs and never touch shared
// state. A nil identity is denied everything.

func CanAccessAdminPanel(identity *domain.Identity) bool {
	return domain.RoleOf(identity) == domain.RoleAdmin
}

func CanViewAllPets(identity *domain.Identity) bool {
	role := domain.RoleOf(identity)
	return role == domain.RoleAdmin || role == domain.RoleVeterinarian
}

func CanManageAppointments(identity *domain.Identity) bool {
	return identity != nil
}

// CanViewHealthRecords lets staff see every record. An owner sees records
// generally, and a specific pet's records only when petOwner lists that pet
// as theirs. An unknown pet is denied.
func CanViewHealthRecords(identity *domain.Identity, petID string, petOwner map[string]string) bool {
	switch domain.RoleOf(identity) {
	case domain.RoleAdmin, domain.RoleVeterinarian:
		return true
	case domain.RolePetOwner:
		if petID == "" {
			return true
		}
		owner, ok := petOwner[petID]
		return ok && owner == identity.ID
	default:
		return false
	}
}

func CanEditHealthRecords(identity *domain.Identity, petID string) bool {
	switch domain.RoleOf(identity) {
	case domain.RoleAdmin, domain.RoleVeterinarian:
		return true
	default:
		return false
	}
}

// Capabilities is the full predicate set evaluated against one snapshot.
type Capabilities struct {
	Authenticated      bool        `json:"authenticated"`
	Role               domain.Role `json:"role,omitempty"`
	PetID              string      `json:"petId,omitempty"`
	AdminPanel         bool        `json:"canAccessAdminPanel"`
	ViewAllPets        bool        `json:"canViewAllPets"`
	ManageAppointments bool        `json:"canManageAppointments"`
	ViewHealthRecords  bool        `json:"canViewHealthRecords"`
	EditHealthRecords  bool        `json:"canEditHealthRecords"`
}

func capabilitiesOf(view sessionView, petID string) Capabilities {
	return Capabilities{
		Authenticated:      view.identity != nil,
		Role:               domain.RoleOf(view.identity),
		PetID:              petID,
		AdminPanel:         CanAccessAdminPanel(view.identity),
		ViewAllPets:        CanViewAllPets(view.identity),
		ManageAppointments: CanManageAppointments(view.identity),
		ViewHealthRecords:  CanViewHealthRecords(view.identity, petID, view.petOwner),
		EditHealthRecords:  CanEditHealthRecords(view.identity, petID),
	}
}

// Policy evaluates the predicates against the live session. Every call reads
// a fresh snapshot, so a concurrent logout is seen either fully or not at all.
type Policy struct {
	session *SessionStore
	metrics ports.MetricsRecorder
}

func NewPolicy(session *SessionStore, metrics ports.MetricsRecorder) *Policy {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &Policy{session: session, metrics: metrics}
}

func (p *Policy) check(predicate string, allowed bool) bool {
	if !allowed {
		p.metrics.AuthorizationDenied(predicate)
	}
	return allowed
}

func (p *Policy) CanAccessAdminPanel() bool {
	return p.check("canAccessAdminPanel", CanAccessAdminPanel(p.session.snapshot().identity))
}

func (p *Policy) CanViewAllPets() bool {
	return p.check("canViewAllPets", CanViewAllPets(p.session.snapshot().identity))
}

func (p *Policy) CanManageAppointments() bool {
	return p.check("canManageAppointments", CanManageAppointments(p.session.snapshot().identity))
}

func (p *Policy) CanViewHealthRecords(petID string) bool {
	view := p.session.snapshot()
	return p.check("canViewHealthRecords", CanViewHealthRecords(view.identity, petID, view.petOwner))
}

func (p *Policy) CanEditHealthRecords(petID string) bool {
	return p.check("canEditHealthRecords", CanEditHealthRecords(p.session.snapshot().identity, petID))
}

// Capabilities evaluates every predicate against the same snapshot.
func (p *Policy) Capabilities(petID string) Capabilities {
	return capabilitiesOf(p.session.snapshot(), petID)
}
