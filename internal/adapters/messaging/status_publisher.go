package messaging

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/AchilleasB/pet-care/console-service/internal/core/ports"
)

var _ ports.StatusEventPublisher = (*RabbitMQBroker)(nil)

func routingKey(entityType string) string {
	if entityType == "" {
		return "status.unknown"
	}
	return "status." + entityType
}

// PublishStatusChanged sends evt as a persistent JSON message routed by its
// entity type.
func (rmq *RabbitMQBroker) PublishStatusChanged(ctx context.Context, evt ports.StatusChangedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	_, err = rmq.cb.Execute(func() (interface{}, error) {
		return nil, rmq.ch.PublishWithContext(ctx, rmq.exchange, routingKey(evt.EntityType), false, false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    evt.EventID,
				Type:         evt.EntityType + ".status_changed",
				Timestamp:    evt.OccurredAt,
				AppId:        "console",
				Body:         body,
			})
	})
	return err
}
