package ports

import (
	"context"
	"time"
)

// StatusChangedEvent is emitted once the remote collaborator confirms a transition.
type StatusChangedEvent struct {
	EventID    string    `json:"event_id"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	ActorID    string    `json:"actor_id"`
	ActorRole  string    `json:"actor_role"`
	OccurredAt time.Time `json:"occurred_at"`
}

type StatusEventPublisher interface {
	PublishStatusChanged(ctx context.Context, evt StatusChangedEvent) error
}
