package event

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/streadway/amqp"
)

// Routing keys for attempt lifecycle events.
const (
	AttemptStarted   = "exam.attempt.started"
	AttemptSubmitted = "exam.attempt.submitted"
	AttemptExpired   = "exam.attempt.expired"
	ProgressSaved    = "exam.progress.saved"
)

// AttemptEvent is the payload published on attempt lifecycle routing keys.
// Downstream consumers (analytics, notifications) key on the ids; fields
// not known at the publish site stay empty.
type AttemptEvent struct {
	AttemptID string    `json:"attempt_id,omitempty"`
	StudentID string    `json:"student_id,omitempty"`
	SeriesID  string    `json:"series_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type EventPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewEventPublisher(amqpURL, exchange string) (*EventPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, err
	}
	return &EventPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

// envelope wraps a payload in the on-wire shape consumers expect.
func envelope(eventType string, payload interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	}
}

// PublishAttempt publishes an attempt lifecycle event, stamping the
// timestamp when the caller left it zero.
func (p *EventPublisher) PublishAttempt(eventType string, ev AttemptEvent) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	return p.Publish(eventType, ev)
}

// Publish sends a payload on the topic exchange, using the event type as
// the routing key, and mirrors it to the console and event.log.
func (p *EventPublisher) Publish(eventType string, payload interface{}) error {
	body, err := json.Marshal(envelope(eventType, payload))
	if err != nil {
		return err
	}

	line := fmt.Sprintf("[EVENT] %s: %v\n", eventType, payload)
	fmt.Print(line)
	if f, ferr := os.OpenFile("event.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); ferr == nil {
		f.WriteString(line)
		f.Close()
	}

	return p.channel.Publish(
		p.exchange,
		eventType,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (p *EventPublisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
