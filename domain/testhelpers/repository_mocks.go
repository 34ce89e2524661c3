package testhelpers

import (
	"context"
	"time"

	"gamenight/domain/entities"
	"gamenight/domain/events"

	"github.com/stretchr/testify/mock"
)

// MockContestantRepository is a mock implementation of ContestantRepository
type MockContestantRepository struct {
	mock.Mock
}

func (m *MockContestantRepository) GetByMember(ctx context.Context, memberID int64) (*entities.Contestant, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Contestant), args.Error(1)
}

func (m *MockContestantRepository) GetByMembers(ctx context.Context, memberIDs []int64) (map[int64]*entities.Contestant, error) {
	args := m.Called(ctx, memberIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]*entities.Contestant), args.Error(1)
}

func (m *MockContestantRepository) Upsert(ctx context.Context, contestant *entities.Contestant) error {
	args := m.Called(ctx, contestant)
	return args.Error(0)
}

// MockOutcomeRepository is a mock implementation of OutcomeRepository
type MockOutcomeRepository struct {
	mock.Mock
}

func (m *MockOutcomeRepository) GetByID(ctx context.Context, id int64) (*entities.GameOutcome, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GameOutcome), args.Error(1)
}

func (m *MockOutcomeRepository) GetAwaitingSettlement(ctx context.Context, now time.Time) ([]*entities.GameOutcome, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.GameOutcome), args.Error(1)
}

// MockOddsQuoteRepository is a mock implementation of OddsQuoteRepository
type MockOddsQuoteRepository struct {
	mock.Mock
}

func (m *MockOddsQuoteRepository) GetByOutcome(ctx context.Context, outcomeID int64) ([]*entities.OddsQuote, error) {
	args := m.Called(ctx, outcomeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.OddsQuote), args.Error(1)
}

func (m *MockOddsQuoteRepository) ReplaceForOutcome(ctx context.Context, outcomeID int64, quotes []*entities.OddsQuote) error {
	args := m.Called(ctx, outcomeID, quotes)
	return args.Error(0)
}

func (m *MockOddsQuoteRepository) UpdateOdds(ctx context.Context, outcomeID int64, odds map[int64]int64, setAt time.Time) error {
	args := m.Called(ctx, outcomeID, odds, setAt)
	return args.Error(0)
}

// MockWagerRepository is a mock implementation of WagerRepository
type MockWagerRepository struct {
	mock.Mock
}

func (m *MockWagerRepository) Create(ctx context.Context, wager *entities.Wager) error {
	args := m.Called(ctx, wager)
	return args.Error(0)
}

func (m *MockWagerRepository) GetOpenByOutcome(ctx context.Context, outcomeID int64) ([]*entities.Wager, error) {
	args := m.Called(ctx, outcomeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Wager), args.Error(1)
}

func (m *MockWagerRepository) GetOpenByBettor(ctx context.Context, outcomeID, bettorMemberID int64) (*entities.Wager, error) {
	args := m.Called(ctx, outcomeID, bettorMemberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wager), args.Error(1)
}

func (m *MockWagerRepository) GetByOutcomeAndBettor(ctx context.Context, outcomeID, bettorMemberID int64) ([]*entities.Wager, error) {
	args := m.Called(ctx, outcomeID, bettorMemberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Wager), args.Error(1)
}

func (m *MockWagerRepository) HasResolvedForOutcome(ctx context.Context, outcomeID int64) (bool, error) {
	args := m.Called(ctx, outcomeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockWagerRepository) MarkResolved(ctx context.Context, wagers []*entities.Wager) error {
	args := m.Called(ctx, wagers)
	return args.Error(0)
}

func (m *MockWagerRepository) DeleteOpenByOutcome(ctx context.Context, outcomeID int64) ([]*entities.Wager, error) {
	args := m.Called(ctx, outcomeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Wager), args.Error(1)
}

// MockCurrencyLedger is a mock implementation of CurrencyLedger
type MockCurrencyLedger struct {
	mock.Mock
}

func (m *MockCurrencyLedger) GetBalance(ctx context.Context, memberID int64) (int64, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCurrencyLedger) TryDebit(ctx context.Context, memberID int64, amount int64) (bool, error) {
	args := m.Called(ctx, memberID, amount)
	return args.Bool(0), args.Error(1)
}

func (m *MockCurrencyLedger) TryCredit(ctx context.Context, memberID int64, amount int64) (bool, error) {
	args := m.Called(ctx, memberID, amount)
	return args.Bool(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// FixedClock returns a constant time, for deterministic deadline checks
type FixedClock struct {
	Time time.Time
}

func (c FixedClock) Now() time.Time {
	return c.Time
}
