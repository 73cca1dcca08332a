package tickets

import (
	"context"
	"errors"
	"fmt"

	"ms-rsvp/internal/logger"
	"ms-rsvp/internal/metrics"
	"ms-rsvp/internal/models"
	"ms-rsvp/internal/tickets/codegen"
	"ms-rsvp/internal/tickets/events"
	"ms-rsvp/internal/tickets/pricing"
)

const (
	// MaxCodeAttempts bounds how many codes are tried for one ticket.
	MaxCodeAttempts = 10
	// MaxBatchQuantity is the largest bulk creation request.
	MaxBatchQuantity = 100
)

type TicketDBLayer interface {
	CreateTicket(ctx context.Context, code string, category models.Category, price int64) (*models.Ticket, error)
	GetTicketByCode(ctx context.Context, code string) (*models.Ticket, error)
	ListTickets(ctx context.Context) ([]models.Ticket, error)
	SetPreferencesIfUnsubmitted(ctx context.Context, code string, prefs models.Preferences) (bool, error)
	SetPreferences(ctx context.Context, code string, prefs models.Preferences) (bool, error)
	CountTickets(ctx context.Context) (models.TicketCounts, error)
}

type CodeGenerator interface {
	Generate() (string, error)
}

type TicketService struct {
	DB      TicketDBLayer
	Codes   CodeGenerator
	Events  events.Publisher
	Metrics *metrics.Metrics
	Logger  *logger.Logger
}

func NewTicketService(db TicketDBLayer, log *logger.Logger) *TicketService {
	if log == nil {
		log = logger.Discard()
	}
	return &TicketService{
		DB:     db,
		Codes:  codegen.New(),
		Events: events.Noop{},
		Logger: log,
	}
}

// RequestTicket issues one ticket of the given category with a fresh code.
// Only code collisions are retried.
func (s *TicketService) RequestTicket(ctx context.Context, category models.Category) (*models.Ticket, error) {
	price, err := pricing.PriceFor(category)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= MaxCodeAttempts; attempt++ {
		code, err := s.codes().Generate()
		if err != nil {
			return nil, fmt.Errorf("failed to generate ticket code: %w", err)
		}

		ticket, err := s.DB.CreateTicket(ctx, code, category, price)
		if errors.Is(err, models.ErrDuplicateCode) {
			s.Metrics.RecordCodeCollision()
			s.log().LogTicket("CODE_COLLISION", code, fmt.Sprintf("attempt %d of %d", attempt, MaxCodeAttempts))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create ticket: %w", err)
		}

		s.Metrics.RecordTicketCreated(string(category))
		s.log().LogTicket("CREATED", ticket.Code, fmt.Sprintf("%s ticket at %s", category, pricing.FormatPrice(price)))
		s.publish(ctx, events.NewTicketEvent(events.TicketCreated, ticket))
		return ticket, nil
	}

	s.log().Error("TICKET", fmt.Sprintf("No unique code found after %d attempts", MaxCodeAttempts))
	return nil, models.ErrCodeExhaustion
}

// CreateTickets issues quantity tickets one after another. The first failure
// stops the batch; tickets created before it remain stored.
func (s *TicketService) CreateTickets(ctx context.Context, category models.Category, quantity int) ([]models.Ticket, error) {
	if quantity < 1 || quantity > MaxBatchQuantity {
		return nil, fmt.Errorf("%w: got %d", models.ErrInvalidQuantity, quantity)
	}
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidCategory, category)
	}

	created := make([]models.Ticket, 0, quantity)
	for i := 0; i < quantity; i++ {
		ticket, err := s.RequestTicket(ctx, category)
		if err != nil {
			s.log().Error("TICKET", fmt.Sprintf("Batch stopped after %d of %d %s tickets: %v", len(created), quantity, category, err))
			return nil, err
		}
		created = append(created, *ticket)
	}

	s.log().Info("TICKET", fmt.Sprintf("Created %d %s tickets", len(created), category))
	return created, nil
}

// SubmitInitialPreferences stores preferences only if none were submitted yet.
// false means the code is unknown or already submitted.
func (s *TicketService) SubmitInitialPreferences(ctx context.Context, code string, prefs models.Preferences) (bool, error) {
	return s.writePreferences(ctx, code, prefs, metrics.KindInitial)
}

// UpdatePreferences replaces preferences. false means the code is unknown.
func (s *TicketService) UpdatePreferences(ctx context.Context, code string, prefs models.Preferences) (bool, error) {
	return s.writePreferences(ctx, code, prefs, metrics.KindUpdate)
}

func (s *TicketService) writePreferences(ctx context.Context, code string, prefs models.Preferences, kind string) (bool, error) {
	if !codegen.Valid(code) {
		return false, fmt.Errorf("%w: %q", models.ErrInvalidCode, code)
	}
	if err := prefs.Validate(); err != nil {
		return false, err
	}

	var (
		ok        bool
		err       error
		eventType events.Type
	)
	if kind == metrics.KindInitial {
		ok, err = s.DB.SetPreferencesIfUnsubmitted(ctx, code, prefs)
		eventType = events.PreferencesSubmitted
	} else {
		ok, err = s.DB.SetPreferences(ctx, code, prefs)
		eventType = events.PreferencesUpdated
	}

	switch {
	case err != nil:
		s.Metrics.RecordPreferenceSubmission(kind, metrics.ResultError)
		return false, fmt.Errorf("failed to save preferences for %s: %w", code, err)
	case !ok:
		s.Metrics.RecordPreferenceSubmission(kind, metrics.ResultRejected)
		s.log().LogTicket("PREFERENCES_REJECTED", code, kind)
		return false, nil
	}

	s.Metrics.RecordPreferenceSubmission(kind, metrics.ResultApplied)
	s.log().LogTicket("PREFERENCES_SAVED", code, fmt.Sprintf("%s: %d dietary needs, meal %s", kind, len(prefs.DietaryNeeds), prefs.MealChoice))
	s.publish(ctx, events.PreferencesEvent(eventType, code, prefs))
	return true, nil
}

func (s *TicketService) GetTicket(ctx context.Context, code string) (*models.Ticket, error) {
	if !codegen.Valid(code) {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidCode, code)
	}
	ticket, err := s.DB.GetTicketByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("ticket %s: %w", code, err)
	}
	return ticket, nil
}

// ListTickets returns every ticket, newest first. Rows with unreadable
// dietary needs are logged and returned without them.
func (s *TicketService) ListTickets(ctx context.Context) ([]models.Ticket, error) {
	tickets, err := s.DB.ListTickets(ctx)
	if err != nil && !errors.Is(err, models.ErrMalformedPreferences) {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	if err != nil {
		s.log().Warn("TICKET", err.Error())
	}
	return tickets, nil
}

func (s *TicketService) CountTickets(ctx context.Context) (models.TicketCounts, error) {
	counts, err := s.DB.CountTickets(ctx)
	if err != nil {
		return counts, fmt.Errorf("failed to count tickets: %w", err)
	}
	return counts, nil
}

func (s *TicketService) publish(ctx context.Context, event events.TicketEvent) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, event); err != nil {
		s.log().Warn("KAFKA", fmt.Sprintf("Failed to publish %s for %s: %v", event.Type, event.Code, err))
	}
}

func (s *TicketService) codes() CodeGenerator {
	if s.Codes == nil {
		s.Codes = codegen.New()
	}
	return s.Codes
}

func (s *TicketService) log() *logger.Logger {
	if s.Logger == nil {
		return logger.Discard()
	}
	return s.Logger
}
