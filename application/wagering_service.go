package application

import (
	"context"
	"fmt"
	"math/rand"

	"gamenight/domain/entities"
	"gamenight/domain/interfaces"
	"gamenight/domain/services"
	"gamenight/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// WageringService is the transactional entry point for the rating and
// wagering engine. Each operation runs inside its own unit of work; domain
// events publish only after the commit succeeds.
type WageringService struct {
	uowFactory UnitOfWorkFactory
	clock      interfaces.Clock
	rng        *rand.Rand
}

// NewWageringService creates a new wagering service. The rand source feeds
// initial odds jitter and is injected so tests can seed it.
func NewWageringService(uowFactory UnitOfWorkFactory, clock interfaces.Clock, rng *rand.Rand) *WageringService {
	return &WageringService{
		uowFactory: uowFactory,
		clock:      clock,
		rng:        rng,
	}
}

// ledgerFor wires the domain services against the unit of work's repositories
func (s *WageringService) ledgerFor(uow UnitOfWork) interfaces.WagerLedger {
	ratingEngine := services.NewRatingEngine(uow.ContestantRepository(), uow.EventBus())
	oddsEngine := services.NewOddsEngine(ratingEngine, uow.OddsQuoteRepository(), uow.EventBus(), s.clock, s.rng)
	return services.NewWagerLedger(
		uow.OutcomeRepository(),
		uow.WagerRepository(),
		uow.OddsQuoteRepository(),
		uow.CurrencyLedger(),
		oddsEngine,
		ratingEngine,
		s.clock,
		uow.EventBus(),
	)
}

// PlaceWager places a bet on an outcome inside a fresh transaction
func (s *WageringService) PlaceWager(ctx context.Context, outcomeID int64, pick entities.Pick, amount, bettorMemberID int64) (*entities.Wager, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	wager, err := s.ledgerFor(uow).PlaceWager(ctx, outcomeID, pick, amount, bettorMemberID)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if metrics := observability.GetMetrics(); metrics != nil {
		metrics.RecordWagerPlaced()
		metrics.RecordOddsRepricing()
	}

	log.WithFields(log.Fields{
		"outcome_id": outcomeID,
		"bettor_id":  bettorMemberID,
		"amount":     amount,
		"odds":       wager.LockedOdds,
	}).Info("Wager placed")

	return wager, nil
}

// ResolveOutcome settles all open wagers on an outcome inside a fresh
// transaction. Safe to call repeatedly.
func (s *WageringService) ResolveOutcome(ctx context.Context, outcomeID int64) (*entities.SettlementResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	result, err := s.ledgerFor(uow).ResolveOutcome(ctx, outcomeID)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if metrics := observability.GetMetrics(); metrics != nil {
		for range result.Winners {
			metrics.RecordWagerSettled(observability.ResultWon)
		}
		for range result.Losers {
			if result.NoContest {
				metrics.RecordWagerSettled(observability.ResultNoContest)
			} else {
				metrics.RecordWagerSettled(observability.ResultLost)
			}
		}
	}

	log.WithFields(log.Fields{
		"outcome_id":   outcomeID,
		"winners":      len(result.Winners),
		"losers":       len(result.Losers),
		"total_payout": result.TotalPayout,
		"no_contest":   result.NoContest,
	}).Info("Outcome settled")

	return result, nil
}

// CancelOpenWagers refunds and removes all open wagers on a retracted outcome
func (s *WageringService) CancelOpenWagers(ctx context.Context, outcomeID int64) (int, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	cancelled, err := s.ledgerFor(uow).CancelOpenWagers(ctx, outcomeID)
	if err != nil {
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if metrics := observability.GetMetrics(); metrics != nil {
		for i := 0; i < cancelled; i++ {
			metrics.RecordWagerSettled(observability.ResultRefunded)
		}
	}

	log.WithFields(log.Fields{
		"outcome_id": outcomeID,
		"cancelled":  cancelled,
	}).Info("Open wagers cancelled")

	return cancelled, nil
}

// ConfirmOutcome generates and persists initial odds for a newly confirmed
// outcome. The scheduling subsystem flips the outcome state before calling.
func (s *WageringService) ConfirmOutcome(ctx context.Context, outcomeID int64) ([]*entities.OddsQuote, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	outcome, err := uow.OutcomeRepository().GetByID(ctx, outcomeID)
	if err != nil {
		return nil, err
	}
	if outcome == nil {
		return nil, entities.ErrNotFound
	}
	if !outcome.IsConfirmed() {
		return nil, entities.ErrNotConfirmed
	}

	ratingEngine := services.NewRatingEngine(uow.ContestantRepository(), uow.EventBus())
	oddsEngine := services.NewOddsEngine(ratingEngine, uow.OddsQuoteRepository(), uow.EventBus(), s.clock, s.rng)

	quotes, err := oddsEngine.GenerateInitialOdds(ctx, outcome)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"outcome_id": outcomeID,
		"quotes":     len(quotes),
	}).Info("Initial odds generated")

	return quotes, nil
}

// GetOddsForOutcome returns current quotes keyed by member id
func (s *WageringService) GetOddsForOutcome(ctx context.Context, outcomeID int64) (map[int64]int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return s.ledgerFor(uow).GetOddsForOutcome(ctx, outcomeID)
}

// GetUserWagers returns a bettor's wagers on an outcome
func (s *WageringService) GetUserWagers(ctx context.Context, outcomeID, bettorMemberID int64) ([]*entities.Wager, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return s.ledgerFor(uow).GetUserWagers(ctx, outcomeID, bettorMemberID)
}
