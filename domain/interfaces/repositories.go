package interfaces

import (
	"context"
	"time"

	"gamenight/domain/entities"
	"gamenight/domain/events"
)

// ContestantRepository defines the interface for skill rating data access
type ContestantRepository interface {
	// GetByMember retrieves a contestant by member id, nil if never rated
	GetByMember(ctx context.Context, memberID int64) (*entities.Contestant, error)

	// GetByMembers retrieves contestants for a set of members; members with
	// no row are absent from the result
	GetByMembers(ctx context.Context, memberIDs []int64) (map[int64]*entities.Contestant, error)

	// Upsert creates or updates a contestant's rating row
	Upsert(ctx context.Context, contestant *entities.Contestant) error
}

// OutcomeRepository reads game instances owned by the scheduling subsystem.
// The wagering engine never creates or deletes these rows.
type OutcomeRepository interface {
	// GetByID retrieves an outcome with its full roster, nil if missing
	GetByID(ctx context.Context, id int64) (*entities.GameOutcome, error)

	// GetAwaitingSettlement returns outcomes past their scheduled date with
	// a recorded result and at least one open wager
	GetAwaitingSettlement(ctx context.Context, now time.Time) ([]*entities.GameOutcome, error)
}

// OddsQuoteRepository defines the interface for odds quote data access
type OddsQuoteRepository interface {
	// GetByOutcome returns all quotes for an outcome in roster order
	GetByOutcome(ctx context.Context, outcomeID int64) ([]*entities.OddsQuote, error)

	// ReplaceForOutcome deletes any existing quotes for the outcome and
	// inserts the given set in one statement batch
	ReplaceForOutcome(ctx context.Context, outcomeID int64, quotes []*entities.OddsQuote) error

	// UpdateOdds updates quoted odds in place for the given members
	UpdateOdds(ctx context.Context, outcomeID int64, odds map[int64]int64, setAt time.Time) error
}

// WagerRepository defines the interface for wager data access
type WagerRepository interface {
	// Create records a new wager
	Create(ctx context.Context, wager *entities.Wager) error

	// GetOpenByOutcome returns all unresolved wagers on an outcome,
	// locked against concurrent settlement passes
	GetOpenByOutcome(ctx context.Context, outcomeID int64) ([]*entities.Wager, error)

	// GetOpenByBettor returns the bettor's open wager on an outcome, nil if none
	GetOpenByBettor(ctx context.Context, outcomeID, bettorMemberID int64) (*entities.Wager, error)

	// GetByOutcomeAndBettor returns all of a bettor's wagers on an outcome
	GetByOutcomeAndBettor(ctx context.Context, outcomeID, bettorMemberID int64) ([]*entities.Wager, error)

	// HasResolvedForOutcome reports whether any wager on the outcome has settled
	HasResolvedForOutcome(ctx context.Context, outcomeID int64) (bool, error)

	// MarkResolved persists the resolve transition for the given wagers
	MarkResolved(ctx context.Context, wagers []*entities.Wager) error

	// DeleteOpenByOutcome removes all open wagers on an outcome and returns
	// the removed wagers so their stakes can be refunded
	DeleteOpenByOutcome(ctx context.Context, outcomeID int64) ([]*entities.Wager, error)
}

// CurrencyLedger is the community shop currency, an external collaborator
// that participates in the caller's transaction.
type CurrencyLedger interface {
	// GetBalance returns the member's current balance
	GetBalance(ctx context.Context, memberID int64) (int64, error)

	// TryDebit atomically checks and debits the balance; false means
	// insufficient funds and no state change
	TryDebit(ctx context.Context, memberID int64, amount int64) (bool, error)

	// TryCredit adds to the member's balance
	TryCredit(ctx context.Context, memberID int64, amount int64) (bool, error)
}

// Clock abstracts current time for deadline checks and timestamps
type Clock interface {
	Now() time.Time
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher buffers events during a transaction. Flush is
// called after commit, Discard on rollback.
type TransactionalEventPublisher interface {
	EventPublisher
	Flush(ctx context.Context) error
	Discard()
}
