// Package events describes the ticket lifecycle notifications and routes them
// to a message broker.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ms-rsvp/internal/config"
	"ms-rsvp/internal/models"
)

type Type string

const (
	TicketCreated        Type = "ticket.created"
	PreferencesSubmitted Type = "ticket.preferences_submitted"
	PreferencesUpdated   Type = "ticket.preferences_updated"
)

// TicketEvent is the message body written to the broker.
type TicketEvent struct {
	ID           string               `json:"event_id"`
	Type         Type                 `json:"event_type"`
	OccurredAt   time.Time            `json:"occurred_at"`
	Code         string               `json:"code"`
	Category     models.Category      `json:"type"`
	Price        int64                `json:"price"`
	DietaryNeeds []models.DietaryNeed `json:"dietary_needs,omitempty"`
	MealChoice   *models.MealChoice   `json:"meal_choice,omitempty"`
}

func NewTicketEvent(eventType Type, ticket *models.Ticket) TicketEvent {
	return TicketEvent{
		ID:           uuid.NewString(),
		Type:         eventType,
		OccurredAt:   time.Now().UTC(),
		Code:         ticket.Code,
		Category:     ticket.Category,
		Price:        ticket.Price,
		DietaryNeeds: ticket.DietaryNeeds,
		MealChoice:   ticket.MealChoice,
	}
}

// PreferencesEvent builds a submission or update event for a code whose stored
// row has not been re-read.
func PreferencesEvent(eventType Type, code string, prefs models.Preferences) TicketEvent {
	meal := prefs.MealChoice
	return TicketEvent{
		ID:           uuid.NewString(),
		Type:         eventType,
		OccurredAt:   time.Now().UTC(),
		Code:         code,
		DietaryNeeds: prefs.DietaryNeeds,
		MealChoice:   &meal,
	}
}

type Publisher interface {
	Publish(ctx context.Context, event TicketEvent) error
}

// Sender is implemented by *kafka.Producer.
type Sender interface {
	Publish(ctx context.Context, topic, key string, value any) error
}

// KafkaPublisher routes each event type to its configured topic, keyed by
// ticket code.
type KafkaPublisher struct {
	Sender Sender
	Topics config.TopicConfig
}

func NewKafkaPublisher(sender Sender, topics config.TopicConfig) *KafkaPublisher {
	return &KafkaPublisher{Sender: sender, Topics: topics}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event TicketEvent) error {
	topic, err := p.topicFor(event.Type)
	if err != nil {
		return err
	}
	return p.Sender.Publish(ctx, topic, event.Code, event)
}

func (p *KafkaPublisher) topicFor(eventType Type) (string, error) {
	switch eventType {
	case TicketCreated:
		return p.Topics.TicketCreated, nil
	case PreferencesSubmitted:
		return p.Topics.PreferencesSubmitted, nil
	case PreferencesUpdated:
		return p.Topics.PreferencesUpdated, nil
	}
	return "", fmt.Errorf("no topic for event type %q", eventType)
}

// Noop discards every event. Used when the broker is disabled.
type Noop struct{}

func (Noop) Publish(context.Context, TicketEvent) error { return nil }
