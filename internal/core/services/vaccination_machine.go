package services

import (
	"context"

	"github.com/AchilleasB/pet-care/console-service/internal/core/domain"
	"github.com/AchilleasB/pet-care/console-service/internal/core/ports"
)

// VaccinationSource selects who decides a vaccination's status.
type VaccinationSource string

const (
	// VaccinationDerived recomputes status from the due date on every read.
	VaccinationDerived VaccinationSource = "derived"
	// VaccinationRemote trusts the collaborator's status as-is.
	VaccinationRemote VaccinationSource = "remote"
)

// VaccinationMachine has no user-requested edges. Status follows the next due
// date unless the collaborator is configured as the source of truth.
type VaccinationMachine struct {
	machineBase
	api       ports.VaccinationAPI
	state     *localState[domain.Vaccination]
	lookahead int
	source    VaccinationSource
}

func NewVaccinationMachine(api ports.VaccinationAPI, deps MachineDeps, lookaheadDays int, source VaccinationSource) *VaccinationMachine {
	if lookaheadDays <= 0 {
		lookaheadDays = domain.DefaultVaccinationLookahead
	}
	if source != VaccinationRemote {
		source = VaccinationDerived
	}
	return &VaccinationMachine{
		machineBase: newMachineBase("vaccination", deps),
		api:         api,
		state:       newLocalState[domain.Vaccination](),
		lookahead:   lookaheadDays,
		source:      source,
	}
}

// Recompute returns v with its status derived from the next due date. In
// remote mode v is returned untouched.
func (m *VaccinationMachine) Recompute(v domain.Vaccination) domain.Vaccination {
	if m.source == VaccinationRemote {
		return v
	}
	v.Status = domain.DeriveVaccinationStatus(v.NextDueDate, m.today(), m.lookahead)
	return v
}

func (m *VaccinationMachine) Get(ctx context.Context, id string) (domain.Vaccination, error) {
	if v, ok := m.state.get(id); ok {
		return m.Recompute(v), nil
	}
	v, err := m.api.GetVaccination(ctx, id)
	if err != nil {
		return domain.Vaccination{}, err
	}
	m.state.put(id, v)
	return m.Recompute(v), nil
}

// Transition always fails: vaccination status is never set directly.
func (m *VaccinationMachine) Transition(ctx context.Context, v domain.Vaccination, to domain.VaccinationStatus) (domain.Vaccination, error) {
	return v, m.reject(v.ID, string(v.Status), string(to), domain.ErrInvalidTransition)
}

// Reschedule moves the next due date and lets the status follow it. Only
// staff may change clinical records.
func (m *VaccinationMachine) Reschedule(ctx context.Context, v domain.Vaccination, due domain.Date) (domain.Vaccination, error) {
	current := m.Recompute(v)
	next := current
	next.NextDueDate = due
	next = m.Recompute(next)
	from, to := string(current.Status), string(next.Status)

	actor, err := m.actor()
	if err != nil {
		return v, m.reject(v.ID, from, to, err)
	}
	if !CanEditHealthRecords(actor, v.PatientID) {
		return v, m.reject(v.ID, from, to, domain.ErrForbidden)
	}

	epoch, err := m.state.begin(v.ID, next)
	if err != nil {
		return v, m.reject(v.ID, from, to, err)
	}
	updated, err := m.api.UpdateVaccination(ctx, next)
	if err != nil {
		m.state.rollback(v.ID, epoch)
		return v, m.rolledBack(v.ID, from, to, err)
	}

	m.state.commit(v.ID, updated, epoch)
	updated = m.Recompute(updated)
	m.confirmed(ctx, actor, v.ID, from, string(updated.Status))
	return updated, nil
}

func (m *VaccinationMachine) Clear() { m.state.Clear() }
