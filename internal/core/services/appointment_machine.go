package services

import (
	"context"

	"github.com/AchilleasB/pet-care/console-service/internal/core/domain"
	"github.com/AchilleasB/pet-care/console-service/internal/core/ports"
)

type AppointmentMachine struct {
	machineBase
	api   ports.AppointmentAPI
	state *localState[domain.Appointment]
}

func NewAppointmentMachine(api ports.AppointmentAPI, deps MachineDeps) *AppointmentMachine {
	return &AppointmentMachine{
		machineBase: newMachineBase("appointment", deps),
		api:         api,
		state:       newLocalState[domain.Appointment](),
	}
}

// List fetches the appointments and orders them emergency first.
func (m *AppointmentMachine) List(ctx context.Context) ([]domain.Appointment, error) {
	if _, err := m.actor(); err != nil {
		return nil, err
	}
	items, err := m.api.ListAppointments(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range items {
		if !m.state.isPending(a.ID) {
			m.state.put(a.ID, a)
		}
	}
	domain.SortAppointments(items)
	return items, nil
}

// Get returns the local copy when one is held, tentative or confirmed.
func (m *AppointmentMachine) Get(ctx context.Context, id string) (domain.Appointment, error) {
	if a, ok := m.state.get(id); ok {
		return a, nil
	}
	a, err := m.api.GetAppointment(ctx, id)
	if err != nil {
		return domain.Appointment{}, err
	}
	m.state.put(id, a)
	return a, nil
}

// Transition moves a to status to. Illegal edges are rejected without calling
// the remote collaborator; legal ones are held as tentative state until the
// collaborator confirms or rejects them.
func (m *AppointmentMachine) Transition(ctx context.Context, a domain.Appointment, to domain.AppointmentStatus) (domain.Appointment, error) {
	from := string(a.Status)
	actor, err := m.actor()
	if err != nil {
		return a, m.reject(a.ID, from, string(to), err)
	}
	if !CanManageAppointments(actor) {
		return a, m.reject(a.ID, from, string(to), domain.ErrForbidden)
	}
	if !a.Status.CanTransitionTo(to) {
		return a, m.reject(a.ID, from, string(to), domain.ErrInvalidTransition)
	}

	tentative := a
	tentative.Status = to
	epoch, err := m.state.begin(a.ID, tentative)
	if err != nil {
		return a, m.reject(a.ID, from, string(to), err)
	}

	updated, err := m.api.UpdateAppointment(ctx, tentative)
	if err != nil {
		m.state.rollback(a.ID, epoch)
		return a, m.rolledBack(a.ID, from, string(to), err)
	}

	m.state.commit(a.ID, updated, epoch)
	m.confirmed(ctx, actor, a.ID, from, string(updated.Status))
	return updated, nil
}

func (m *AppointmentMachine) Clear() { m.state.Clear() }
