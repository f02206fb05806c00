package services

import (
	"context"

	"github.com/AchilleasB/pet-care/console-service/internal/core/domain"
	"github.com/AchilleasB/pet-care/console-service/internal/core/ports"
)

type PrescriptionMachine struct {
	machineBase
	api   ports.PrescriptionAPI
	state *localState[domain.Prescription]
}

func NewPrescriptionMachine(api ports.PrescriptionAPI, deps MachineDeps) *PrescriptionMachine {
	return &PrescriptionMachine{
		machineBase: newMachineBase("prescription", deps),
		api:         api,
		state:       newLocalState[domain.Prescription](),
	}
}

func (m *PrescriptionMachine) Get(ctx context.Context, id string) (domain.Prescription, error) {
	if p, ok := m.state.get(id); ok {
		return p, nil
	}
	p, err := m.api.GetPrescription(ctx, id)
	if err != nil {
		return domain.Prescription{}, err
	}
	m.state.put(id, p)
	return p, nil
}

// Progress is the elapsed fraction of the course as of today.
func (m *PrescriptionMachine) Progress(p domain.Prescription) (float64, bool) {
	return p.Progress(m.today())
}

func approvesRefills(role domain.Role) bool {
	return role == domain.RoleVeterinarian || role == domain.RoleAdmin
}

// plan computes the entity the collaborator should end up holding. Approving
// a refill request activates the refill in the same update, so refilled is
// only ever observed transiently.
// The role gate runs before any lifecycle check: an owner asking for an
// approval edge is forbidden whatever state the prescription is in.
func (m *PrescriptionMachine) plan(actor *domain.Identity, p domain.Prescription, to domain.PrescriptionStatus) (domain.Prescription, error) {
	switch to {
	case domain.PrescriptionRefilled, domain.PrescriptionActive:
		if !approvesRefills(actor.Role) {
			return p, domain.ErrForbidden
		}
	}

	today := m.today()
	next, err := domain.NextPrescription(p, to, today)
	if err != nil {
		return p, err
	}
	if to == domain.PrescriptionRefilled {
		return domain.NextPrescription(next, domain.PrescriptionActive, today)
	}
	return next, nil
}

// Transition applies a requested status change. refill_needed -> refilled
// requires a veterinarian or admin and yields an active prescription with one
// refill consumed and a fresh course.
func (m *PrescriptionMachine) Transition(ctx context.Context, p domain.Prescription, to domain.PrescriptionStatus) (domain.Prescription, error) {
	from := string(p.Status)
	actor, err := m.actor()
	if err != nil {
		return p, m.reject(p.ID, from, string(to), err)
	}

	next, err := m.plan(actor, p, to)
	if err != nil {
		return p, m.reject(p.ID, from, string(to), err)
	}
	return m.apply(ctx, actor, p, next)
}

func (m *PrescriptionMachine) apply(ctx context.Context, actor *domain.Identity, p, next domain.Prescription) (domain.Prescription, error) {
	from, to := string(p.Status), string(next.Status)
	epoch, err := m.state.begin(p.ID, next)
	if err != nil {
		return p, m.reject(p.ID, from, to, err)
	}

	updated, err := m.api.UpdatePrescription(ctx, next)
	if err != nil {
		m.state.rollback(p.ID, epoch)
		return p, m.rolledBack(p.ID, from, to, err)
	}

	m.state.commit(p.ID, updated, epoch)
	m.confirmed(ctx, actor, p.ID, from, string(updated.Status))
	return updated, nil
}

// Reconcile applies the passive expiry edge when the end date has passed.
// Prescriptions that are not yet expirable come back unchanged.
func (m *PrescriptionMachine) Reconcile(ctx context.Context, p domain.Prescription) (domain.Prescription, error) {
	if !p.Expirable(m.today()) {
		return p, nil
	}
	actor, err := m.actor()
	if err != nil {
		return p, m.reject(p.ID, string(p.Status), string(domain.PrescriptionExpired), err)
	}
	next, err := domain.NextPrescription(p, domain.PrescriptionExpired, m.today())
	if err != nil {
		return p, m.reject(p.ID, string(p.Status), string(domain.PrescriptionExpired), err)
	}
	return m.apply(ctx, actor, p, next)
}

func (m *PrescriptionMachine) Clear() { m.state.Clear() }
