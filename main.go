package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"ms-rsvp/internal/analytics"
	analytics_api "ms-rsvp/internal/analytics/api"
	"ms-rsvp/internal/config"
	"ms-rsvp/internal/database"
	"ms-rsvp/internal/kafka"
	"ms-rsvp/internal/logger"
	"ms-rsvp/internal/metrics"
	"ms-rsvp/internal/server"
	ticket_db "ms-rsvp/internal/tickets/db"
	"ms-rsvp/internal/tickets/events"
	tickets "ms-rsvp/internal/tickets/service"
	"ms-rsvp/internal/tickets/ticket_api"
)

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()

	level, levelErr := logger.ParseLevel(cfg.Log.Level)
	log, err := logger.New(logger.Options{
		Service: "rsvp",
		Dir:     cfg.Log.Dir,
		Level:   level,
		NoColor: cfg.Log.NoColor,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("APP", "Starting RSVP service initialization")
	if envErr != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}
	if levelErr != nil {
		log.Warn("CONFIG", fmt.Sprintf("%v, using INFO", levelErr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bunDB, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to open database: %v", err))
	}
	defer bunDB.Close()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	store := ticket_db.New(bunDB)
	ticketService := tickets.NewTicketService(store, log)
	ticketService.Metrics = m

	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
		defer producer.Close()
		if err := kafka.EnsureTopicsExist(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topics.All(), log); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		}
		ticketService.Events = events.NewKafkaPublisher(producer, cfg.Kafka.Topics)
		log.Info("KAFKA", fmt.Sprintf("Publishing ticket events to %v", cfg.Kafka.Brokers))
	} else {
		log.Info("KAFKA", "Kafka disabled, ticket events are dropped")
	}

	analyticsService := analytics.NewService(store, log)

	router := server.NewRouter(server.Deps{
		Logger:           log,
		Metrics:          m,
		MetricsPath:      cfg.Metrics.Path,
		Store:            store,
		TicketHandler:    ticket_api.NewHandler(ticketService, log),
		AnalyticsHandler: analytics_api.NewHandler(analyticsService, log),
	})
	srv := server.NewHTTPServer(cfg.Server, router)

	go func() {
		log.Info("HTTP", fmt.Sprintf("RSVP service running on %s", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-ctx.Done()

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "RSVP service shutdown complete")
	}
}
