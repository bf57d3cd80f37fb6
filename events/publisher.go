// Package events publishes table session lifecycle events to RabbitMQ.
// Publish failures are logged and returned; callers usually ignore them so
// the HTTP request is never interrupted by the broker.
package events

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"

	"github.com/yeremiapane/venue-app/utils"
)

const QueueSessionEvents = "table_session.events"

const (
	TypeSessionBooked    = "session.booked"
	TypeSessionStarted   = "session.started"
	TypeSessionRecharged = "session.recharged"
	TypeSessionStopped   = "session.stopped"
	TypeSessionExpired   = "session.expired"
)

type SessionEvent struct {
	Type             string           `json:"type"`
	CompanyUUID      string           `json:"companyUuid"`
	TableUUID        string           `json:"tableUuid"`
	TableSessionUUID string           `json:"tableSessionUuid"`
	CustomerUUID     string           `json:"customerUuid,omitempty"`
	Status           string           `json:"status"`
	PaymentMethod    string           `json:"paymentMethod,omitempty"`
	TotalAmount      *decimal.Decimal `json:"totalAmount,omitempty"`
	StartTime        *time.Time       `json:"startTime,omitempty"`
	OccurredAt       time.Time        `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, event SessionEvent) error
}

// NewPublisher returns an AMQP publisher, or a no-op one when url is empty.
func NewPublisher(url string) Publisher {
	if url == "" {
		return NoopPublisher{}
	}
	return &AMQPPublisher{URL: url, Queue: QueueSessionEvents}
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, SessionEvent) error { return nil }

// AMQPPublisher opens a connection per publish. Session mutations are rare
// enough that a pooled connection is not needed.
type AMQPPublisher struct {
	URL   string
	Queue string
}

func (p *AMQPPublisher) Publish(ctx context.Context, event SessionEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	conn, err := amqp.Dial(p.URL)
	if err != nil {
		utils.ErrorLogger.Warnf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		utils.ErrorLogger.Warnf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		p.Queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		utils.ErrorLogger.Warnf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
		Type:         event.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, pub); err != nil {
		utils.ErrorLogger.Warnf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}

// Recorder keeps published events in memory, used by tests and local runs.
type Recorder struct {
	events chan SessionEvent
}

func NewRecorder(size int) *Recorder {
	return &Recorder{events: make(chan SessionEvent, size)}
}

func (r *Recorder) Publish(_ context.Context, event SessionEvent) error {
	select {
	case r.events <- event:
	default:
	}
	return nil
}

func (r *Recorder) Events() <-chan SessionEvent {
	return r.events
}
