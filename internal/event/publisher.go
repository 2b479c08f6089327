package event

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const (
	QuizAttemptSubmitted = "quiz.attempt.submitted"
	ProgressUpdated      = "progress.updated"
	ModuleCompleted      = "module.completed"
	AchievementAwarded   = "achievement.awarded"
	CertificateGenerated = "certificate.generated"
	CertificateRevoked   = "certificate.revoked"
	ExamSubmitted        = "exam.attempt.submitted"
	UserRegistered       = "user.registered"
)

type Publisher interface {
	Publish(eventType string, payload any) error
	Close() error
}

// EventPublisher pushes domain events onto a RabbitMQ topic exchange, using
// the event type as the routing key. Publishing is disabled (but not an
// error) when no broker is configured.
type EventPublisher struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	enabled  bool
}

func NewEventPublisher(rabbitURI, exchange string) (*EventPublisher, error) {
	if rabbitURI == "" {
		log.Println("RabbitMQ not configured, event publishing is disabled")
		return &EventPublisher{exchange: exchange, enabled: false}, nil
	}

	conn, err := amqp091.Dial(rabbitURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	if err := channel.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	log.Printf("Event publisher initialized with exchange: %s", exchange)
	return &EventPublisher{conn: conn, channel: channel, exchange: exchange, enabled: true}, nil
}

func (p *EventPublisher) Publish(eventType string, payload any) error {
	if !p.enabled {
		return nil
	}

	body, err := json.Marshal(map[string]any{
		"type":    eventType,
		"payload": payload,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.channel.Publish(
		p.exchange,
		eventType, // routing key
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	log.Printf("[EVENT] %s", eventType)
	return nil
}

func (p *EventPublisher) Close() error {
	if !p.enabled {
		return nil
	}
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			log.Printf("Error closing RabbitMQ channel: %v", err)
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("error closing RabbitMQ connection: %w", err)
		}
	}
	return nil
}

// MockPublisher records events in memory for tests.
type MockPublisher struct {
	Events []MockEvent
}

type MockEvent struct {
	Type    string
	Payload any
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{Events: make([]MockEvent, 0)}
}

func (m *MockPublisher) Publish(eventType string, payload any) error {
	m.Events = append(m.Events, MockEvent{Type: eventType, Payload: payload})
	return nil
}

func (m *MockPublisher) Close() error { return nil }
