package cmd

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"gamenight/application"
	"gamenight/config"
	"gamenight/database"
	"gamenight/infrastructure"
	"gamenight/infrastructure/observability"
)

// Run initializes and starts the wagering engine
func Run(ctx context.Context) error {
	log.Println("Starting gamenight wagering engine...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize metrics
	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	// Initialize NATS event publishing
	log.Println("Connecting to NATS...")
	natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
	if err := natsClient.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	eventPublisher := infrastructure.NewNATSEventPublisher(natsClient, infrastructure.NewEventSubjectMapper())
	if err := eventPublisher.EnsureDomainEventStream(); err != nil {
		return fmt.Errorf("failed to ensure domain event stream: %w", err)
	}
	log.Println("NATS event publishing initialized successfully")

	// Initialize unit of work factory
	uowFactory := infrastructure.NewUnitOfWorkFactory(db, cfg.StartingBalance, eventPublisher)

	// Initialize the wagering service and settlement worker
	clock := infrastructure.NewSystemClock()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	wageringService := application.NewWageringService(uowFactory, clock, rng)

	settlementWorker := application.NewSettlementWorker(wageringService, uowFactory, clock)
	stopWorker, err := settlementWorker.Start(ctx, cfg.SettlementIntervalMinutes)
	if err != nil {
		return fmt.Errorf("failed to start settlement worker: %w", err)
	}

	// Wait for context cancellation
	log.Printf("Wagering engine is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down...")

	stopWorker()

	if err := natsClient.Close(); err != nil {
		log.Printf("Error closing NATS connection: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
		log.Printf("Error shutting down metrics: %v", err)
	}

	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}
