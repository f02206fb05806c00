package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AchilleasB/pet-care/console-service/internal/core/domain"
	"github.com/AchilleasB/pet-care/console-service/internal/core/ports"
)

// Transition outcomes reported to the metrics recorder.
const (
	OutcomeConfirmed  = "confirmed"
	OutcomeRejected   = "rejected"
	OutcomeRolledBack = "rolled_back"
)

// identitySource is the read side of the session the machines act for.
type identitySource interface {
	CurrentIdentity() *domain.Identity
}

// MachineDeps are the collaborators every status machine shares.
type MachineDeps struct {
	Session   identitySource
	Publisher ports.StatusEventPublisher
	Metrics   ports.MetricsRecorder
	Logger    zerolog.Logger
	Now       func() time.Time
}

// machineBase carries the shared transition bookkeeping: typed rejection,
// remote failure wrapping, event publication and metrics.
type machineBase struct {
	name      string
	session   identitySource
	publisher ports.StatusEventPublisher
	metrics   ports.MetricsRecorder
	logger    zerolog.Logger
	now       func() time.Time
}

func newMachineBase(name string, deps MachineDeps) machineBase {
	b := machineBase{
		name:      name,
		session:   deps.Session,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		logger:    deps.Logger.With().Str("machine", name).Logger(),
		now:       deps.Now,
	}
	if b.metrics == nil {
		b.metrics = ports.NopMetrics{}
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

func (b *machineBase) today() domain.Date {
	return domain.DateOf(b.now())
}

func (b *machineBase) actor() (*domain.Identity, error) {
	if b.session == nil {
		return nil, domain.ErrNotAuthenticated
	}
	identity := b.session.CurrentIdentity()
	if identity == nil {
		return nil, domain.ErrNotAuthenticated
	}
	return identity, nil
}

// reject builds the error for a transition refused before any remote call.
func (b *machineBase) reject(id, from, to string, cause error) error {
	b.metrics.Transition(b.name, OutcomeRejected)
	b.logger.Debug().
		Str("entity_id", id).
		Str("from", from).
		Str("to", to).
		Err(cause).
		Msg("Transition rejected")
	return &domain.TransitionError{Machine: b.name, EntityID: id, From: from, To: to, Err: cause}
}

// rolledBack wraps a remote failure. The collaborator's own error stays in
// the chain so callers can still inspect its code.
func (b *machineBase) rolledBack(id, from, to string, cause error) error {
	b.metrics.Transition(b.name, OutcomeRolledBack)
	b.logger.Warn().
		Str("entity_id", id).
		Str("from", from).
		Str("to", to).
		Err(cause).
		Msg("Remote rejected transition, rolled back")
	return &domain.TransitionError{
		Machine:  b.name,
		EntityID: id,
		From:     from,
		To:       to,
		Err:      fmt.Errorf("%w: %w", domain.ErrRemoteRejected, cause),
	}
}

// confirmed records a transition the collaborator accepted. A failed publish
// is logged and does not undo the change.
func (b *machineBase) confirmed(ctx context.Context, actor *domain.Identity, id, from, to string) {
	b.metrics.Transition(b.name, OutcomeConfirmed)
	b.logger.Info().
		Str("entity_id", id).
		Str("from", from).
		Str("to", to).
		Str("user_id", actor.ID).
		Msg("Transition confirmed")

	if b.publisher == nil || from == to {
		return
	}
	evt := ports.StatusChangedEvent{
		EventID:    uuid.NewString(),
		EntityType: b.name,
		EntityID:   id,
		From:       from,
		To:         to,
		ActorID:    actor.ID,
		ActorRole:  string(actor.Role),
		OccurredAt: b.now().UTC(),
	}
	if err := b.publisher.PublishStatusChanged(ctx, evt); err != nil {
		b.logger.Error().Err(err).Str("entity_id", id).Msg("Failed to publish status change")
	}
}
