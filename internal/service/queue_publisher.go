// Package queue_publisher publishes domain events to RabbitMQ.  Errors are
// logged and returned so callers can ignore them without failing the
// request that produced the event.
package queue_publisher

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/iliyamo/bqomis-portal/internal/queue"
	"github.com/iliyamo/bqomis-portal/pkg/logging"
)

// Publisher dials the broker per publish.  Booking volume is low enough
// that a pooled connection is not needed.
type Publisher struct {
	URL    string
	Logger *logging.Logger
}

// New returns a publisher, or nil when url is empty.  A nil publisher
// silently drops events.
func New(url string, logger *logging.Logger) *Publisher {
	if url == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{URL: url, Logger: logger}
}

// PublishAppointmentBooked sends a persistent message to the
// appointment.booked queue.
func (p *Publisher) PublishAppointmentBooked(ctx context.Context, event q.AppointmentBookedEvent) error {
	if p == nil {
		return nil
	}
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		p.Logger.Warn("rabbitmq: dial failed", "error", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.Logger.Warn("rabbitmq: channel open failed", "error", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(q.AppointmentBookedQueue, true, false, false, false, nil); err != nil {
		p.Logger.Warn("rabbitmq: queue declare failed", "error", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", q.AppointmentBookedQueue, false, false, pub); err != nil {
		p.Logger.Warn("rabbitmq: publish failed", "error", err, "appointment_id", event.AppointmentID)
		return err
	}
	return nil
}
