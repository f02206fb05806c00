package services

import (
	"github.com/AchilleasB/pet-care/console-service/internal/core/domain"
)

// DefaultView is the landing screen for a role. Unknown roles land on the
// neutral dashboard.
func DefaultView(role domain.Role) domain.ViewID {
	switch role {
	case domain.RoleAdmin:
		return domain.ViewAdminDashboard
	case domain.RoleVeterinarian:
		return domain.ViewVetDashboard
	default:
		return domain.ViewDashboard
	}
}

// ScreenState is what a screen renders for the current capabilities.
type ScreenState struct {
	View        domain.ViewID   `json:"view"`
	Restricted  bool            `json:"restricted"`
	Reason      string          `json:"reason,omitempty"`
	Scope       string          `json:"scope,omitempty"`
	Affordances map[string]bool `json:"affordances,omitempty"`
}

// Screen is one entry of the view table. Build performs the screen's own
// authorization check and returns a restricted state when it is denied.
type Screen interface {
	View() domain.ViewID
	Build(caps Capabilities) ScreenState
}

const reasonDenied = "You do not have permission to view this page"

type openScreen struct {
	view domain.ViewID
}

func (s openScreen) View() domain.ViewID { return s.view }

func (s openScreen) Build(caps Capabilities) ScreenState {
	return ScreenState{View: s.view}
}

// gatedScreen renders only when allow holds.
type gatedScreen struct {
	view  domain.ViewID
	allow func(Capabilities) bool
}

func (s gatedScreen) View() domain.ViewID { return s.view }

func (s gatedScreen) Build(caps Capabilities) ScreenState {
	if !s.allow(caps) {
		return ScreenState{View: s.view, Restricted: true, Reason: reasonDenied}
	}
	return ScreenState{View: s.view}
}

type petsScreen struct{}

func (petsScreen) View() domain.ViewID { return domain.ViewPets }

func (petsScreen) Build(caps Capabilities) ScreenState {
	if !caps.Authenticated {
		return ScreenState{View: domain.ViewPets, Restricted: true, Reason: reasonDenied}
	}
	scope := "own"
	if caps.ViewAllPets {
		scope = "all"
	}
	return ScreenState{
		View:  domain.ViewPets,
		Scope: scope,
		Affordances: map[string]bool{
			"editHealthRecords": caps.EditHealthRecords,
		},
	}
}

// recordsScreen covers the clinical record screens, which share the
// view and edit predicates.
type recordsScreen struct {
	view domain.ViewID
}

func (s recordsScreen) View() domain.ViewID { return s.view }

func (s recordsScreen) Build(caps Capabilities) ScreenState {
	if !caps.ViewHealthRecords {
		return ScreenState{View: s.view, Restricted: true, Reason: reasonDenied}
	}
	return ScreenState{
		View: s.view,
		Affordances: map[string]bool{
			"edit": caps.EditHealthRecords,
		},
	}
}

type appointmentsScreen struct{}

func (appointmentsScreen) View() domain.ViewID { return domain.ViewAppointments }

func (appointmentsScreen) Build(caps Capabilities) ScreenState {
	if !caps.ManageAppointments {
		return ScreenState{View: domain.ViewAppointments, Restricted: true, Reason: reasonDenied}
	}
	return ScreenState{
		View: domain.ViewAppointments,
		Affordances: map[string]bool{
			"transition": true,
			"viewAll":    caps.ViewAllPets,
		},
	}
}

func adminOnly(caps Capabilities) bool { return caps.AdminPanel }
func staffOnly(caps Capabilities) bool { return caps.ViewAllPets }

// ViewResolver maps view ids to screens. The table itself encodes no
// authorization.
type ViewResolver struct {
	screens map[domain.ViewID]Screen
}

func NewViewResolver() *ViewResolver {
	table := []Screen{
		openScreen{view: domain.ViewDashboard},
		gatedScreen{view: domain.ViewAdminDashboard, allow: adminOnly},
		gatedScreen{view: domain.ViewVetDashboard, allow: staffOnly},
		petsScreen{},
		appointmentsScreen{},
		recordsScreen{view: domain.ViewHealthRecords},
		recordsScreen{view: domain.ViewPrescriptions},
		recordsScreen{view: domain.ViewVaccinations},
		openScreen{view: domain.ViewVeterinarians},
		openScreen{view: domain.ViewClinics},
		gatedScreen{view: domain.ViewUsers, allow: adminOnly},
		gatedScreen{view: domain.ViewReports, allow: staffOnly},
		openScreen{view: domain.ViewChatbot},
		openScreen{view: domain.ViewProfile},
	}

	screens := make(map[domain.ViewID]Screen, len(table))
	for _, s := range table {
		screens[s.View()] = s
	}
	return &ViewResolver{screens: screens}
}

// Resolve returns the screen for viewID. An unknown view or a missing
// identity falls back to the role's default view.
func (r *ViewResolver) Resolve(viewID domain.ViewID, identity *domain.Identity) Screen {
	if identity != nil {
		if s, ok := r.screens[viewID]; ok {
			return s
		}
	}
	return r.screens[DefaultView(domain.RoleOf(identity))]
}

// Render resolves viewID for the current session and builds it against the
// session's capabilities. Both read the same snapshot.
func (r *ViewResolver) Render(session *SessionStore, viewID domain.ViewID, petID string) ScreenState {
	view := session.snapshot()
	return r.Resolve(viewID, view.identity).Build(capabilitiesOf(view, petID))
}
