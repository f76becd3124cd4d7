// Package service holds outbound integrations used by the encounter
// workflow.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/iliyamo/dental-clinic-desk/internal/encounter"
	q "github.com/iliyamo/dental-clinic-desk/internal/queue"
)

var _ encounter.Sink = (*Publisher)(nil)

// Publisher sends encounter outcomes to RabbitMQ. An empty URL disables it.
// Each publish dials its own connection; the desk commits a handful of
// encounters per hour.
type Publisher struct {
	URL   string
	Queue string
	Log   zerolog.Logger
}

// EventFromOutcome converts a commit outcome into its wire form.
func EventFromOutcome(o encounter.Outcome) q.EncounterEvent {
	return q.EncounterEvent{
		SessionID:     o.SessionID,
		Stage:         string(o.Stage),
		AppointmentID: o.AppointmentID,
		Reference:     o.Reference,
		PatientID:     o.PatientID,
		DentistID:     o.DentistID,
		Total:         o.Total.StringFixed(2),
		Tendered:      o.Tendered.StringFixed(2),
		Error:         o.Error,
		OccurredAt:    o.At.UTC().Format(time.RFC3339),
	}
}

// Publish implements encounter.Sink. Messages are persistent.
func (p *Publisher) Publish(ctx context.Context, o encounter.Outcome) error {
	if p == nil || p.URL == "" {
		return nil
	}
	body, err := json.Marshal(EventFromOutcome(o))
	if err != nil {
		return err
	}

	conn, err := amqp.Dial(p.URL)
	if err != nil {
		p.Log.Warn().Err(err).Msg("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.Log.Warn().Err(err).Msg("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// durable so events survive broker restarts
	if _, err := ch.QueueDeclare(p.Queue, true, false, false, false, nil); err != nil {
		p.Log.Warn().Err(err).Msg("rabbitmq: queue declare failed")
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err = ch.PublishWithContext(ctx, "", p.Queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		p.Log.Warn().Err(err).Msg("rabbitmq: publish failed")
	}
	return err
}
