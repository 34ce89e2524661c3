package services

import (
	"context"
	"fmt"

	"gamenight/domain/entities"
	"gamenight/domain/events"
	"gamenight/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type wagerLedger struct {
	outcomeRepo    interfaces.OutcomeRepository
	wagerRepo      interfaces.WagerRepository
	quoteRepo      interfaces.OddsQuoteRepository
	currencyLedger interfaces.CurrencyLedger
	oddsEngine     interfaces.OddsEngine
	ratingEngine   interfaces.RatingEngine
	clock          interfaces.Clock
	eventPublisher interfaces.EventPublisher
}

// NewWagerLedger creates a new wager ledger. All mutating operations
// expect to run inside the caller's unit of work; nothing here commits.
func NewWagerLedger(
	outcomeRepo interfaces.OutcomeRepository,
	wagerRepo interfaces.WagerRepository,
	quoteRepo interfaces.OddsQuoteRepository,
	currencyLedger interfaces.CurrencyLedger,
	oddsEngine interfaces.OddsEngine,
	ratingEngine interfaces.RatingEngine,
	clock interfaces.Clock,
	eventPublisher interfaces.EventPublisher,
) interfaces.WagerLedger {
	return &wagerLedger{
		outcomeRepo:    outcomeRepo,
		wagerRepo:      wagerRepo,
		quoteRepo:      quoteRepo,
		currencyLedger: currencyLedger,
		oddsEngine:     oddsEngine,
		ratingEngine:   ratingEngine,
		clock:          clock,
		eventPublisher: eventPublisher,
	}
}

// PlaceWager validates the bet, debits the stake, records the wager with
// odds locked at the current quote and reprices the outcome's odds.
func (l *wagerLedger) PlaceWager(ctx context.Context, outcomeID int64, pick entities.Pick, amount, bettorMemberID int64) (*entities.Wager, error) {
	if amount <= 0 {
		return nil, entities.ErrInvalidAmount
	}
	if err := pick.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrInvalidWinner, err)
	}

	outcome, err := l.outcomeRepo.GetByID(ctx, outcomeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get outcome %d: %w", outcomeID, err)
	}
	if outcome == nil {
		return nil, entities.ErrNotFound
	}
	if !outcome.IsConfirmed() {
		return nil, entities.ErrNotConfirmed
	}
	if outcome.IsPast(l.clock.Now()) {
		return nil, entities.ErrPastDeadline
	}

	existing, err := l.wagerRepo.GetOpenByBettor(ctx, outcomeID, bettorMemberID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for open wager: %w", err)
	}
	if existing != nil {
		return nil, entities.ErrAlreadyWagered
	}

	if pick.MemberID != nil {
		if outcome.ParticipantByMember(*pick.MemberID) == nil {
			return nil, entities.ErrInvalidWinner
		}
	} else if !outcome.HasTeam(*pick.Team) {
		return nil, entities.ErrInvalidWinner
	}

	quote, err := l.quoteForPick(ctx, outcome, pick)
	if err != nil {
		return nil, err
	}

	// The conditional debit is a single atomic statement: two concurrent
	// placements by one bettor cannot both pass a stale balance check.
	debited, err := l.currencyLedger.TryDebit(ctx, bettorMemberID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to debit stake: %w", err)
	}
	if !debited {
		return nil, entities.ErrInsufficientFunds
	}

	wager := &entities.Wager{
		OutcomeID:      outcomeID,
		BettorMemberID: bettorMemberID,
		PickMemberID:   pick.MemberID,
		PickTeam:       pick.Team,
		Amount:         amount,
		LockedOdds:     quote.Odds,
		PlacedAt:       l.clock.Now(),
	}
	if err := l.wagerRepo.Create(ctx, wager); err != nil {
		return nil, fmt.Errorf("failed to create wager: %w", err)
	}

	// Reprice from the full open set, the new wager included.
	open, err := l.wagerRepo.GetOpenByOutcome(ctx, outcomeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load open wagers: %w", err)
	}
	if _, err := l.oddsEngine.RecalculateForCashflow(ctx, outcome, open); err != nil {
		return nil, fmt.Errorf("failed to reprice odds: %w", err)
	}

	if err := l.eventPublisher.Publish(events.WagerPlacedEvent{
		WagerID:        wager.ID,
		OutcomeID:      outcomeID,
		BettorMemberID: bettorMemberID,
		Amount:         amount,
		LockedOdds:     wager.LockedOdds,
	}); err != nil {
		log.WithError(err).Error("Failed to publish wager placed event")
	}

	return wager, nil
}

// ResolveOutcome settles every open wager on an outcome. The open-wager
// check doubles as the idempotence guard: a second pass finds nothing open
// and reports ErrAlreadyResolved without touching balances or ratings.
func (l *wagerLedger) ResolveOutcome(ctx context.Context, outcomeID int64) (*entities.SettlementResult, error) {
	outcome, err := l.outcomeRepo.GetByID(ctx, outcomeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get outcome %d: %w", outcomeID, err)
	}
	if outcome == nil {
		return nil, entities.ErrNotFound
	}
	now := l.clock.Now()
	if !outcome.IsPast(now) {
		return nil, entities.ErrNotPast
	}
	if !outcome.HasRecordedResult() {
		return nil, entities.ErrMissingWinner
	}

	open, err := l.wagerRepo.GetOpenByOutcome(ctx, outcomeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load open wagers: %w", err)
	}
	if len(open) == 0 {
		return nil, entities.ErrAlreadyResolved
	}

	winningKey := outcome.WinningBranchKey()
	result := &entities.SettlementResult{
		Outcome:   outcome,
		NoContest: outcome.NoContest,
	}
	for _, wager := range open {
		if !outcome.NoContest && wager.Pick().BranchKey(outcome) == winningKey {
			wager.SettleWin(now)
			result.Winners = append(result.Winners, wager)
			result.TotalPayout += wager.Payout
		} else {
			wager.SettleLoss(now)
			result.Losers = append(result.Losers, wager)
		}
	}

	if err := l.wagerRepo.MarkResolved(ctx, open); err != nil {
		return nil, fmt.Errorf("failed to mark wagers resolved: %w", err)
	}

	// Credit winners, batched per bettor.
	payouts := make(map[int64]int64)
	var order []int64
	for _, winner := range result.Winners {
		if _, seen := payouts[winner.BettorMemberID]; !seen {
			order = append(order, winner.BettorMemberID)
		}
		payouts[winner.BettorMemberID] += winner.Payout
	}
	for _, bettorID := range order {
		credited, err := l.currencyLedger.TryCredit(ctx, bettorID, payouts[bettorID])
		if err != nil {
			return nil, fmt.Errorf("failed to credit payout for member %d: %w", bettorID, err)
		}
		if !credited {
			return nil, fmt.Errorf("payout credit rejected for member %d", bettorID)
		}
	}

	if err := l.updateRatings(ctx, outcome); err != nil {
		return nil, err
	}

	for _, wager := range open {
		if err := l.eventPublisher.Publish(events.WagerResolvedEvent{
			WagerID:        wager.ID,
			OutcomeID:      outcomeID,
			BettorMemberID: wager.BettorMemberID,
			Won:            wager.Payout > 0,
			Payout:         wager.Payout,
		}); err != nil {
			log.WithError(err).Error("Failed to publish wager resolved event")
		}
	}
	if err := l.eventPublisher.Publish(events.OutcomeSettledEvent{
		OutcomeID:   outcomeID,
		WagersPaid:  len(result.Winners),
		WagersLost:  len(result.Losers),
		TotalPayout: result.TotalPayout,
	}); err != nil {
		log.WithError(err).Error("Failed to publish outcome settled event")
	}

	return result, nil
}

// CancelOpenWagers refunds every open wager on a retracted outcome. Legal
// only before any wager has settled.
func (l *wagerLedger) CancelOpenWagers(ctx context.Context, outcomeID int64) (int, error) {
	outcome, err := l.outcomeRepo.GetByID(ctx, outcomeID)
	if err != nil {
		return 0, fmt.Errorf("failed to get outcome %d: %w", outcomeID, err)
	}
	if outcome == nil {
		return 0, entities.ErrNotFound
	}

	settled, err := l.wagerRepo.HasResolvedForOutcome(ctx, outcomeID)
	if err != nil {
		return 0, fmt.Errorf("failed to check settled wagers: %w", err)
	}
	if settled {
		return 0, entities.ErrBetsAlreadySettled
	}

	removed, err := l.wagerRepo.DeleteOpenByOutcome(ctx, outcomeID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete open wagers: %w", err)
	}
	for _, wager := range removed {
		credited, err := l.currencyLedger.TryCredit(ctx, wager.BettorMemberID, wager.Amount)
		if err != nil {
			return 0, fmt.Errorf("failed to refund stake for member %d: %w", wager.BettorMemberID, err)
		}
		if !credited {
			return 0, fmt.Errorf("stake refund rejected for member %d", wager.BettorMemberID)
		}
	}

	if len(removed) > 0 {
		if err := l.eventPublisher.Publish(events.WagersCancelledEvent{
			OutcomeID: outcomeID,
			Refunded:  len(removed),
		}); err != nil {
			log.WithError(err).Error("Failed to publish wagers cancelled event")
		}
	}
	return len(removed), nil
}

// GetOddsForOutcome returns the current quotes keyed by member id
func (l *wagerLedger) GetOddsForOutcome(ctx context.Context, outcomeID int64) (map[int64]int64, error) {
	outcome, err := l.outcomeRepo.GetByID(ctx, outcomeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get outcome %d: %w", outcomeID, err)
	}
	if outcome == nil {
		return nil, entities.ErrNotFound
	}

	quotes, err := l.quoteRepo.GetByOutcome(ctx, outcomeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quotes for outcome %d: %w", outcomeID, err)
	}
	odds := make(map[int64]int64, len(quotes))
	for _, q := range quotes {
		odds[q.MemberID] = q.Odds
	}
	return odds, nil
}

// GetUserWagers returns a bettor's wagers on an outcome
func (l *wagerLedger) GetUserWagers(ctx context.Context, outcomeID, bettorMemberID int64) ([]*entities.Wager, error) {
	wagers, err := l.wagerRepo.GetByOutcomeAndBettor(ctx, outcomeID, bettorMemberID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wagers: %w", err)
	}
	return wagers, nil
}

// quoteForPick finds the current quote backing a pick. Team picks read any
// member's quote since team members always share one value.
func (l *wagerLedger) quoteForPick(ctx context.Context, outcome *entities.GameOutcome, pick entities.Pick) (*entities.OddsQuote, error) {
	quotes, err := l.quoteRepo.GetByOutcome(ctx, outcome.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quotes for outcome %d: %w", outcome.ID, err)
	}
	for _, q := range quotes {
		if pick.MemberID != nil && q.MemberID == *pick.MemberID {
			return q, nil
		}
		if pick.Team != nil {
			if p := outcome.ParticipantByMember(q.MemberID); p != nil && p.Team != nil && *p.Team == *pick.Team {
				return q, nil
			}
		}
	}
	return nil, entities.ErrMissingOdds
}

// updateRatings applies the rating movement implied by the recorded
// result. Uniform branch treatment: a roster of singleton branches takes
// the individual pairwise path, anything else the team-average path.
func (l *wagerLedger) updateRatings(ctx context.Context, outcome *entities.GameOutcome) error {
	if outcome.NoContest {
		players := make([]int64, 0, len(outcome.Participants))
		for _, p := range outcome.Participants {
			players = append(players, p.MemberID)
		}
		return l.ratingEngine.UpdateForNoContest(ctx, outcome.ID, players)
	}

	winningKey := outcome.WinningBranchKey()
	branches := outcome.Branches()

	var winning *entities.Branch
	allSingles := true
	for i := range branches {
		if branches[i].Key == winningKey {
			winning = &branches[i]
		}
		if len(branches[i].Members) > 1 {
			allSingles = false
		}
	}
	if winning == nil {
		return fmt.Errorf("recorded winner %q is not a branch of outcome %d", winningKey, outcome.ID)
	}

	if allSingles {
		var losers []int64
		for _, branch := range branches {
			if branch.Key == winningKey {
				continue
			}
			for _, member := range branch.Members {
				losers = append(losers, member.MemberID)
			}
		}
		return l.ratingEngine.UpdateForIndividualWin(ctx, outcome.ID, winning.Members[0].MemberID, losers)
	}

	winners := make([]int64, 0, len(winning.Members))
	for _, member := range winning.Members {
		winners = append(winners, member.MemberID)
	}
	var losingTeams [][]int64
	for _, branch := range branches {
		if branch.Key == winningKey {
			continue
		}
		team := make([]int64, 0, len(branch.Members))
		for _, member := range branch.Members {
			team = append(team, member.MemberID)
		}
		losingTeams = append(losingTeams, team)
	}
	return l.ratingEngine.UpdateForTeamWin(ctx, outcome.ID, winners, losingTeams)
}
