package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// EventType — тип события, он же routing key.
type EventType string

// Типы событий.
const (
	EventDeploymentCreated EventType = "deployment.created"
	EventInstanceStarted   EventType = "instance.started"
	EventUserTaskCompleted EventType = "user_task.completed"
	EventJobCompleted      EventType = "job.completed"
	EventJobFailed         EventType = "job.failed"
	EventRunFinished       EventType = "run.finished"
)

// Event — событие demo-сценария.
type Event struct {
	// ID — уникальный идентификатор события (MessageId).
	ID string `json:"id"`

	Type EventType `json:"type"`

	// RunID — run, в котором произошло событие. uuid.Nil вне run.
	RunID uuid.UUID `json:"run_id"`

	// Payload — deployment, instance, task, job или run.
	Payload any `json:"payload"`

	Timestamp time.Time `json:"timestamp"`
}

// NewEvent создаёт событие с новым ID.
func NewEvent(eventType EventType, runID uuid.UUID, payload any) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		RunID:     runID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// Publisher публикует события в exchange camunda-demo.events.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// PublishEvent публикует событие с routing key = тип события.
func (p *Publisher) PublishEvent(ctx context.Context, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(ExchangeEvents), // exchange
			string(event.Type),     // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    event.ID,
				Timestamp:    event.Timestamp,
				Type:         string(event.Type),
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish %s: %w", event.Type, err)
		}

		p.logger.Debug("published event",
			"event_id", event.ID,
			"type", event.Type,
			"run_id", event.RunID,
		)

		return nil
	})
}
