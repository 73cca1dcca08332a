package analytics

import (
	"context"
	"errors"
	"fmt"

	"ms-rsvp/internal/logger"
	"ms-rsvp/internal/models"
	"ms-rsvp/internal/tickets/pricing"
)

// SubmittedLister is implemented by the ticket store.
type SubmittedLister interface {
	ListSubmittedTickets(ctx context.Context) ([]models.Ticket, error)
}

// Service aggregates attendee statistics over submitted tickets
type Service struct {
	DB     SubmittedLister
	Logger *logger.Logger
}

func NewService(db SubmittedLister, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{DB: db, Logger: log}
}

// Report is the admin attendee view: every submitted ticket plus the
// statistics computed from the same rows.
type Report struct {
	Attendees []models.Ticket       `json:"attendees"`
	Stats     *models.AttendeeStats `json:"stats"`
}

// ComputeStats counts submitted tickets by category, dietary tag and meal.
// Every dietary and meal key is present, zero when unused.
func (s *Service) ComputeStats(ctx context.Context) (*models.AttendeeStats, error) {
	report, err := s.AttendeeReport(ctx)
	if err != nil {
		return nil, err
	}
	return report.Stats, nil
}

func (s *Service) AttendeeReport(ctx context.Context) (*Report, error) {
	submitted, err := s.DB.ListSubmittedTickets(ctx)
	if err != nil {
		if !errors.Is(err, models.ErrMalformedPreferences) {
			return nil, fmt.Errorf("failed to load submitted tickets: %w", err)
		}
		s.Logger.Warn("ANALYTICS", err.Error())
	}

	return &Report{
		Attendees: submitted,
		Stats:     s.aggregate(submitted),
	}, nil
}

func (s *Service) aggregate(submitted []models.Ticket) *models.AttendeeStats {
	stats := models.NewAttendeeStats()
	stats.Total = len(submitted)
	stats.Submitted = len(submitted)

	for _, ticket := range submitted {
		switch ticket.Category {
		case models.CategoryRegular:
			stats.Regular++
		case models.CategoryVIP:
			stats.VIP++
		default:
			s.Logger.Warn("ANALYTICS", fmt.Sprintf("Ticket %s has unknown category %q", ticket.Code, ticket.Category))
		}

		counted := make(map[models.DietaryNeed]bool, len(ticket.DietaryNeeds))
		for _, need := range ticket.DietaryNeeds {
			if !need.Valid() {
				s.Logger.Warn("ANALYTICS", fmt.Sprintf("Ticket %s has unknown dietary need %q", ticket.Code, need))
				continue
			}
			// A tag counts once per ticket.
			if counted[need] {
				continue
			}
			counted[need] = true
			stats.DietaryCounts[need]++
		}

		if ticket.MealChoice != nil {
			if ticket.MealChoice.Valid() {
				stats.MealCounts[*ticket.MealChoice]++
			} else {
				s.Logger.Warn("ANALYTICS", fmt.Sprintf("Ticket %s has unknown meal choice %q", ticket.Code, *ticket.MealChoice))
			}
		}
	}
	return stats
}

// Revenue prices the submitted tickets with the current pricing table.
func Revenue(stats *models.AttendeeStats) int64 {
	if stats == nil {
		return 0
	}
	return int64(stats.Regular)*pricing.RegularPrice + int64(stats.VIP)*pricing.VIPPrice
}
