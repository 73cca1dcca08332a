package events_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ms-rsvp/internal/config"
	"ms-rsvp/internal/models"
	"ms-rsvp/internal/tickets/events"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Publish(ctx context.Context, topic, key string, value any) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

var topics = config.TopicConfig{
	TicketCreated:        "created",
	PreferencesSubmitted: "submitted",
	PreferencesUpdated:   "updated",
}

func TestNewTicketEvent(t *testing.T) {
	meal := models.MealBeef
	ticket := &models.Ticket{
		Code:         "ABC12345",
		Category:     models.CategoryVIP,
		Price:        20000,
		DietaryNeeds: []models.DietaryNeed{models.DietaryNoRestrictions},
		MealChoice:   &meal,
	}

	event := events.NewTicketEvent(events.TicketCreated, ticket)

	_, err := uuid.Parse(event.ID)
	require.NoError(t, err)
	assert.Equal(t, events.TicketCreated, event.Type)
	assert.Equal(t, "ABC12345", event.Code)
	assert.Equal(t, models.CategoryVIP, event.Category)
	assert.Equal(t, int64(20000), event.Price)
	assert.False(t, event.OccurredAt.IsZero())
	assert.NotEqual(t, event.ID, events.NewTicketEvent(events.TicketCreated, ticket).ID)
}

func TestKafkaPublisherRoutesByType(t *testing.T) {
	cases := []struct {
		eventType events.Type
		topic     string
	}{
		{events.TicketCreated, "created"},
		{events.PreferencesSubmitted, "submitted"},
		{events.PreferencesUpdated, "updated"},
	}

	for _, tc := range cases {
		t.Run(string(tc.eventType), func(t *testing.T) {
			sender := new(MockSender)
			publisher := events.NewKafkaPublisher(sender, topics)
			event := events.PreferencesEvent(tc.eventType, "ABC12345", models.Preferences{
				DietaryNeeds: []models.DietaryNeed{models.DietaryVegan},
				MealChoice:   models.MealFish,
			})

			sender.On("Publish", mock.Anything, tc.topic, "ABC12345", event).Return(nil)

			assert.NoError(t, publisher.Publish(context.Background(), event))
			sender.AssertExpectations(t)
		})
	}
}

func TestKafkaPublisherRejectsUnknownType(t *testing.T) {
	sender := new(MockSender)
	publisher := events.NewKafkaPublisher(sender, topics)

	err := publisher.Publish(context.Background(), events.TicketEvent{Type: "ticket.deleted", Code: "ABC12345"})
	assert.Error(t, err)
	sender.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestNoopPublisher(t *testing.T) {
	var publisher events.Publisher = events.Noop{}
	assert.NoError(t, publisher.Publish(context.Background(), events.TicketEvent{}))
}
