package domain

// ViewID names a console screen.
type ViewID string

const (
	ViewDashboard      ViewID = "dashboard"
	ViewAdminDashboard ViewID = "admin-dashboard"
	ViewVetDashboard   ViewID = "vet-dashboard"
	ViewPets           ViewID = "pets"
	ViewAppointments   ViewID = "appointments"
	ViewHealthRecords  ViewID = "health-records"
	ViewPrescriptions  ViewID = "prescriptions"
	ViewVaccinations   ViewID = "vaccinations"
	ViewVeterinarians  ViewID = "veterinarians"
	ViewClinics        ViewID = "clinics"
	ViewUsers          ViewID = "users"
	ViewReports        ViewID = "reports"
	ViewChatbot        ViewID = "chatbot"
	ViewProfile        ViewID = "profile"
)

// NeutralView is where the console lands when nobody is logged in.
const NeutralView = ViewDashboard

// Session is a point-in-time copy of the session state.
type Session struct {
	Identity      *Identity `json:"identity"`
	Authenticated bool      `json:"authenticated"`
	CurrentView   ViewID    `json:"currentView"`
}
