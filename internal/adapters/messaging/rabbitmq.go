package messaging

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker"

	"github.com/AchilleasB/pet-care/console-service/internal/config"
)

// StatusExchange is the topic exchange status events are published to.
// Routing keys are "status.<entity type>".
const StatusExchange = "console.status"

// amqpChannel is the part of *amqp.Channel the broker publishes through.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQBroker implements ports.StatusEventPublisher using RabbitMQ.
type RabbitMQBroker struct {
	conn     *amqp.Connection
	ch       amqpChannel
	exchange string
	cb       *gobreaker.CircuitBreaker
}

// NewRabbitMQBroker connects and declares the status topology: a durable
// topic exchange and a durable queue bound to every status routing key.
func NewRabbitMQBroker(amqpURL, queueName string) (*RabbitMQBroker, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareTopology(ch, queueName); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	b := newBroker(ch, StatusExchange)
	b.conn = conn
	return b, nil
}

func declareTopology(ch *amqp.Channel, queueName string) error {
	if err := ch.ExchangeDeclare(StatusExchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", StatusExchange, err)
	}
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", queueName, err)
	}
	if err := ch.QueueBind(queueName, "status.#", StatusExchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", queueName, err)
	}
	return nil
}

func newBroker(ch amqpChannel, exchange string) *RabbitMQBroker {
	return &RabbitMQBroker{
		ch:       ch,
		exchange: exchange,
		cb:       config.NewCircuitBreaker(config.BreakerRabbitMQ),
	}
}

func (rmq *RabbitMQBroker) BreakerState() gobreaker.State { return rmq.cb.State() }

func (rmq *RabbitMQBroker) Close() error {
	var chErr error
	if rmq.ch != nil {
		chErr = rmq.ch.Close()
	}
	if rmq.conn != nil && !rmq.conn.IsClosed() {
		if err := rmq.conn.Close(); err != nil {
			return err
		}
	}
	return chErr
}
