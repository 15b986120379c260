package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// Имена объектов topology.
const (
	ExchangeEvents Exchange = "camunda-demo.events"
	QueueEvents    Queue    = "demo.events"

	// BindingAll — все события exchange.
	BindingAll = "#"
)

// SetupTopology объявляет exchange событий, очередь и binding.
// Объявления идемпотентны: вызывать можно при каждом старте.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.ExchangeDeclare(
			string(ExchangeEvents), // name
			amqp.ExchangeTopic,     // type
			true,                   // durable
			false,                  // auto-deleted
			false,                  // internal
			false,                  // no-wait
			nil,                    // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ExchangeEvents, err)
		}

		_, err = ch.QueueDeclare(
			string(QueueEvents), // name
			true,                // durable
			false,               // delete when unused
			false,               // exclusive
			false,               // no-wait
			nil,                 // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", QueueEvents, err)
		}

		if err := ch.QueueBind(string(QueueEvents), BindingAll, string(ExchangeEvents), false, nil); err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", QueueEvents, ExchangeEvents, err)
		}

		return nil
	})
}
