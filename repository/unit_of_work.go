package repository

import (
	"context"
	"fmt"

	"gamenight/application"
	"gamenight/database"
	"gamenight/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db                     *database.DB
	tx                     pgx.Tx
	ctx                    context.Context
	startingBalance        int64
	transactionalPublisher interfaces.TransactionalEventPublisher
	contestantRepo         interfaces.ContestantRepository
	outcomeRepo            interfaces.OutcomeRepository
	oddsQuoteRepo          interfaces.OddsQuoteRepository
	wagerRepo              interfaces.WagerRepository
	currencyLedger         interfaces.CurrencyLedger
}

type unitOfWorkFactory struct {
	db              *database.DB
	startingBalance int64
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, startingBalance int64) *unitOfWorkFactory {
	return &unitOfWorkFactory{
		db:              db,
		startingBalance: startingBalance,
	}
}

// CreateWithPublisher creates a new UnitOfWork with a specific transactional publisher
func (f *unitOfWorkFactory) CreateWithPublisher(transactionalPublisher interfaces.TransactionalEventPublisher) application.UnitOfWork {
	return &unitOfWork{
		db:                     f.db,
		startingBalance:        f.startingBalance,
		transactionalPublisher: transactionalPublisher,
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories bound to the transaction
	u.contestantRepo = newContestantRepository(tx)
	u.outcomeRepo = newOutcomeRepository(tx)
	u.oddsQuoteRepo = newOddsQuoteRepository(tx)
	u.wagerRepo = newWagerRepository(tx)
	u.currencyLedger = newMemberLedger(tx, u.startingBalance)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Flush pending events after successful commit
	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	// Discard pending events on rollback
	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Discard()
	}

	return nil
}

// ContestantRepository returns the contestant repository for this unit of work
func (u *unitOfWork) ContestantRepository() interfaces.ContestantRepository {
	if u.contestantRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.contestantRepo
}

// OutcomeRepository returns the outcome repository for this unit of work
func (u *unitOfWork) OutcomeRepository() interfaces.OutcomeRepository {
	if u.outcomeRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.outcomeRepo
}

// OddsQuoteRepository returns the odds quote repository for this unit of work
func (u *unitOfWork) OddsQuoteRepository() interfaces.OddsQuoteRepository {
	if u.oddsQuoteRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.oddsQuoteRepo
}

// WagerRepository returns the wager repository for this unit of work
func (u *unitOfWork) WagerRepository() interfaces.WagerRepository {
	if u.wagerRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.wagerRepo
}

// CurrencyLedger returns the currency ledger for this unit of work
func (u *unitOfWork) CurrencyLedger() interfaces.CurrencyLedger {
	if u.currencyLedger == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.currencyLedger
}

// EventBus returns the transactional event publisher for this unit of work
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	if u.transactionalPublisher == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalPublisher
}
