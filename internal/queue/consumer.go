package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Consumer drains the encounter events queue into an append-only log file.
type Consumer struct {
	URL     string
	Queue   string
	LogPath string
	Log     zerolog.Logger
}

// Run connects to RabbitMQ, declares the durable queue and appends one line
// per message to LogPath. It reconnects with backoff until ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Log.Warn().Err(err).Dur("retry_in", backoff).Msg("encounter-consumer: dial failed")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Log.Warn().Err(err).Msg("encounter-consumer: consume loop ended; reconnecting")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Log.Warn().Err(err).Msg("encounter-consumer: set QoS failed")
	}
	if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(c.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handleMessage(d.Body); err != nil {
				c.Log.Error().Err(err).Msg("encounter-consumer: handle message failed")
				// reject without requeue to avoid tight loops
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handleMessage(body []byte) error {
	var ev EncounterEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.LogPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(c.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	if ev.NeedsReconciliation() {
		c.Log.Warn().Uint64("appointment_id", ev.AppointmentID).Msg("appointment booked without payment")
	}
	return nil
}

// FormatLine renders one encounter log line, newline included.
func FormatLine(ev EncounterEvent) string {
	switch {
	case ev.Stage == "none":
		return fmt.Sprintf("[%s] Encounter committed | session=%s | appointment_id=%d | reference=%s | patient_id=%d | dentist_id=%d | total=%s | tendered=%s\n",
			ev.OccurredAt, ev.SessionID, ev.AppointmentID, ev.Reference, ev.PatientID, ev.DentistID, ev.Total, ev.Tendered)
	case ev.NeedsReconciliation():
		return fmt.Sprintf("[%s] RECONCILE appointment booked, payment not recorded | session=%s | appointment_id=%d | reference=%s | patient_id=%d | dentist_id=%d | total=%s | tendered=%s | error=%q\n",
			ev.OccurredAt, ev.SessionID, ev.AppointmentID, ev.Reference, ev.PatientID, ev.DentistID, ev.Total, ev.Tendered, ev.Error)
	default:
		return fmt.Sprintf("[%s] Encounter failed at %s | session=%s | patient_id=%d | dentist_id=%d | total=%s | error=%q\n",
			ev.OccurredAt, ev.Stage, ev.SessionID, ev.PatientID, ev.DentistID, ev.Total, ev.Error)
	}
}
