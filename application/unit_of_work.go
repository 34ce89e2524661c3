package application

import (
	"context"

	"gamenight/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	ContestantRepository() interfaces.ContestantRepository
	OutcomeRepository() interfaces.OutcomeRepository
	OddsQuoteRepository() interfaces.OddsQuoteRepository
	WagerRepository() interfaces.WagerRepository
	CurrencyLedger() interfaces.CurrencyLedger
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance with a fresh transactional
	// event publisher
	Create() UnitOfWork
}
