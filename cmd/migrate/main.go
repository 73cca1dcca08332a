// Command migrate manages the RSVP database schema and can seed sample
// tickets for local development.
//
//	migrate up
//	migrate down
//	migrate version
//	migrate seed [count]
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"ms-rsvp/internal/config"
	"ms-rsvp/internal/database"
	"ms-rsvp/internal/database/migrations"
	"ms-rsvp/internal/logger"
	"ms-rsvp/internal/models"
	ticket_db "ms-rsvp/internal/tickets/db"
	tickets "ms-rsvp/internal/tickets/service"
)

const defaultSeedCount = 10

func main() {
	_ = godotenv.Load()
	log := logger.NewLogger()
	code := run(context.Background(), os.Args[1:], log)
	log.Close()
	os.Exit(code)
}

// run executes one command and returns the process exit code. Resources are
// released before it returns.
func run(ctx context.Context, args []string, log *logger.Logger) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: migrate up|down|version|seed [count]")
		return 2
	}

	count := defaultSeedCount
	switch args[0] {
	case "up", "down", "version":
	case "seed":
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 0 {
				log.Error("SEED", fmt.Sprintf("Invalid count %q", args[1]))
				return 2
			}
			count = n
		}
	default:
		log.Error("MIGRATION", fmt.Sprintf("Unknown command %q", args[0]))
		return 2
	}

	cfg := config.Load()
	cfg.Database.AutoMigrate = false

	bunDB, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Error("DATABASE", fmt.Sprintf("Failed to open database: %v", err))
		return 1
	}
	runner := migrations.NewRunner(bunDB, log)
	// Closing the runner closes bunDB as well.
	defer runner.Close()

	switch args[0] {
	case "up":
		err = runner.RunMigrations()
	case "down":
		err = runner.MigrateDown()
	case "version":
		var version uint
		version, err = runner.Version()
		if err == nil {
			log.Info("MIGRATION", fmt.Sprintf("Schema version: %d", version))
		}
	case "seed":
		if err = runner.RunMigrations(); err == nil {
			err = seed(ctx, tickets.NewTicketService(ticket_db.New(bunDB), log), count, log)
		}
	}

	if err != nil {
		log.Error("MIGRATION", err.Error())
		return 1
	}
	return 0
}

// seed issues count tickets, alternating categories, and submits preferences
// for every other one so the attendee view has data.
func seed(ctx context.Context, svc *tickets.TicketService, count int, log *logger.Logger) error {
	for i := 0; i < count; i++ {
		category := models.Categories[i%len(models.Categories)]
		ticket, err := svc.RequestTicket(ctx, category)
		if err != nil {
			return fmt.Errorf("seed ticket %d: %w", i+1, err)
		}
		if i%2 == 1 {
			continue
		}
		prefs := models.Preferences{
			DietaryNeeds: []models.DietaryNeed{models.DietaryNeeds[i%len(models.DietaryNeeds)]},
			MealChoice:   models.MealChoices[i%len(models.MealChoices)],
		}
		ok, err := svc.SubmitInitialPreferences(ctx, ticket.Code, prefs)
		if err != nil {
			return fmt.Errorf("seed preferences for %s: %w", ticket.Code, err)
		}
		if !ok {
			return fmt.Errorf("seed preferences for %s: submission rejected", ticket.Code)
		}
	}
	log.Info("SEED", fmt.Sprintf("Seeded %d tickets", count))
	return nil
}
