package services

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"gamenight/domain/entities"
	"gamenight/domain/events"
	"gamenight/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

const (
	// targetMargin divides the fair price so the aggregate implied
	// probability across an outcome's quotes lands near 125%.
	targetMargin = 1.25

	// Acceptable overround band after cashflow repricing, in percent.
	overroundMinPercent    = 120.0
	overroundMaxPercent    = 130.0
	overroundTargetPercent = 125.0

	// liabilityWindow bounds how far one repricing pass may move a branch:
	// the max-liability branch moves down by this fraction, a zero-share
	// branch up by the same fraction.
	liabilityWindow = 0.25

	// jitterSpan is the bounded random wobble applied once at initial
	// generation, for game-night novelty. Never applied during repricing.
	jitterSpan = 0.08
)

type oddsEngine struct {
	ratingEngine   interfaces.RatingEngine
	quoteRepo      interfaces.OddsQuoteRepository
	eventPublisher interfaces.EventPublisher
	clock          interfaces.Clock
	rng            *rand.Rand
}

// NewOddsEngine creates a new odds engine. The rand source is injected so
// game-night jitter is seedable in tests.
func NewOddsEngine(
	ratingEngine interfaces.RatingEngine,
	quoteRepo interfaces.OddsQuoteRepository,
	eventPublisher interfaces.EventPublisher,
	clock interfaces.Clock,
	rng *rand.Rand,
) interfaces.OddsEngine {
	return &oddsEngine{
		ratingEngine:   ratingEngine,
		quoteRepo:      quoteRepo,
		eventPublisher: eventPublisher,
		clock:          clock,
		rng:            rng,
	}
}

// CalculateWinProbabilities sums each contestant's pairwise expected score
// against every other contestant and normalizes by the pool total. A
// heuristic strength share, not a calibrated choice model; kept simple on
// purpose so downstream odds stay deterministic and explainable.
func (e *oddsEngine) CalculateWinProbabilities(contestants []int64, ratings map[int64]int) map[int64]float64 {
	probs := make(map[int64]float64, len(contestants))
	if len(contestants) == 0 {
		return probs
	}
	if len(contestants) == 1 {
		probs[contestants[0]] = 1
		return probs
	}

	values := make([]float64, len(contestants))
	for i, id := range contestants {
		values[i] = float64(ratingOf(ratings, id))
	}
	strengths := normalizedStrengths(values)
	for i, id := range contestants {
		probs[id] = strengths[i]
	}
	return probs
}

// ProbabilityToOdds converts a win probability into decimal odds x100:
// fair price 1/p, shaved by the house margin, clamped to the quotable
// range and snapped to the appealing-fraction catalog.
func (e *oddsEngine) ProbabilityToOdds(probability float64) int64 {
	if probability <= 0 {
		return entities.MaxOdds
	}
	priced := (1 / probability) / targetMargin
	odds := int64(math.Round(priced * 100))
	return snapToCatalog(entities.ClampOdds(odds))
}

// GenerateInitialOdds computes quotes for a freshly confirmed outcome and
// replaces any previous quote set wholesale. Team members share one value.
func (e *oddsEngine) GenerateInitialOdds(ctx context.Context, outcome *entities.GameOutcome) ([]*entities.OddsQuote, error) {
	if len(outcome.Participants) == 0 {
		return nil, fmt.Errorf("outcome %d has no participants", outcome.ID)
	}

	ratings, err := e.participantRatings(ctx, outcome)
	if err != nil {
		return nil, err
	}

	branchProbs := e.branchProbabilities(outcome, ratings)
	now := e.clock.Now()

	// Branches() order is roster order, which keeps the jitter draws
	// deterministic for a seeded source.
	branchOdds := make(map[string]int64)
	for _, branch := range outcome.Branches() {
		base := e.ProbabilityToOdds(branchProbs[branch.Key])
		branchOdds[branch.Key] = e.jitter(base)
	}

	quotes := make([]*entities.OddsQuote, 0, len(outcome.Participants))
	for _, p := range outcome.Participants {
		quotes = append(quotes, &entities.OddsQuote{
			OutcomeID: outcome.ID,
			MemberID:  p.MemberID,
			Odds:      branchOdds[entities.BranchKeyForParticipant(p)],
			SetAt:     now,
		})
	}

	if err := e.quoteRepo.ReplaceForOutcome(ctx, outcome.ID, quotes); err != nil {
		return nil, fmt.Errorf("failed to replace quotes for outcome %d: %w", outcome.ID, err)
	}

	e.publishOddsUpdated(outcome.ID, quotes, true)
	return quotes, nil
}

// RecalculateForCashflow reprices an outcome's quotes from its open-wager
// exposure. Each wagered branch is repriced from a freshly computed
// no-jitter base, scaled down in proportion to its share of the maximum
// branch liability; that base makes the pass idempotent for a fixed wager
// set. Branches with no open wagers keep their stored quotes.
func (e *oddsEngine) RecalculateForCashflow(ctx context.Context, outcome *entities.GameOutcome, openWagers []*entities.Wager) ([]*entities.OddsQuote, error) {
	existing, err := e.quoteRepo.GetByOutcome(ctx, outcome.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quotes for outcome %d: %w", outcome.ID, err)
	}
	if len(openWagers) == 0 {
		return existing, nil
	}
	if len(existing) == 0 {
		return nil, fmt.Errorf("outcome %d has open wagers but no quotes", outcome.ID)
	}

	ratings, err := e.participantRatings(ctx, outcome)
	if err != nil {
		return nil, err
	}
	branchProbs := e.branchProbabilities(outcome, ratings)
	branches := outcome.Branches()

	// House liability per branch across the open wager set.
	potential := make(map[string]int64)
	for _, w := range openWagers {
		potential[w.Pick().BranchKey(outcome)] += w.PotentialPayout()
	}
	maxLiability := int64(0)
	for _, p := range potential {
		if p > maxLiability {
			maxLiability = p
		}
	}

	quoteByMember := make(map[int64]*entities.OddsQuote, len(existing))
	for _, q := range existing {
		quoteByMember[q.MemberID] = q
	}

	// Reprice wagered branches; track implied probability on both sides so
	// the aggregate can be nudged back into the overround band.
	repriced := make(map[string]float64)
	adjustedImplied := 0.0
	untouchedImplied := 0.0
	for _, branch := range branches {
		if liability, ok := potential[branch.Key]; ok {
			share := float64(liability) / float64(maxLiability)
			factor := (1 + liabilityWindow) - 2*liabilityWindow*share
			raw := float64(e.ProbabilityToOdds(branchProbs[branch.Key])) * factor
			repriced[branch.Key] = raw
			adjustedImplied += 10000 / raw
		} else if q, ok := quoteByMember[branch.Members[0].MemberID]; ok {
			untouchedImplied += entities.ImpliedPercent(q.Odds)
		}
	}

	total := adjustedImplied + untouchedImplied
	if total < overroundMinPercent || total > overroundMaxPercent {
		// Rescale only the repriced branches; untouched quotes stay put.
		targetAdjusted := overroundTargetPercent - untouchedImplied
		if targetAdjusted > 0 && adjustedImplied > 0 {
			scale := adjustedImplied / targetAdjusted
			for key := range repriced {
				repriced[key] *= scale
			}
		}
	}

	now := e.clock.Now()
	updates := make(map[int64]int64)
	for _, branch := range branches {
		raw, ok := repriced[branch.Key]
		if !ok {
			continue
		}
		odds := snapToCatalog(entities.ClampOdds(int64(math.Round(raw))))
		// Team members share one quote value at all times.
		for _, member := range branch.Members {
			updates[member.MemberID] = odds
		}
	}

	if err := e.quoteRepo.UpdateOdds(ctx, outcome.ID, updates, now); err != nil {
		return nil, fmt.Errorf("failed to update quotes for outcome %d: %w", outcome.ID, err)
	}

	result := make([]*entities.OddsQuote, 0, len(existing))
	for _, q := range existing {
		updated := *q
		if odds, ok := updates[q.MemberID]; ok {
			updated.Odds = odds
			updated.SetAt = now
		}
		result = append(result, &updated)
	}

	e.publishOddsUpdated(outcome.ID, result, false)
	return result, nil
}

// branchProbabilities computes the win probability of each wagerable
// branch. Team branches compete on their average rating. A co-op roster is
// priced as a two-way contest against a nominal opponent at the default
// rating.
func (e *oddsEngine) branchProbabilities(outcome *entities.GameOutcome, ratings map[int64]int) map[string]float64 {
	branches := outcome.Branches()
	probs := make(map[string]float64, len(branches))

	if outcome.Kind() == entities.ContestKindCoop {
		branch := branches[0]
		probs[branch.Key] = expectedScore(branchAverage(branch, ratings), entities.DefaultRating)
		return probs
	}

	values := make([]float64, len(branches))
	for i, branch := range branches {
		values[i] = branchAverage(branch, ratings)
	}
	strengths := normalizedStrengths(values)
	for i, branch := range branches {
		probs[branch.Key] = strengths[i]
	}
	return probs
}

// normalizedStrengths sums each entrant's pairwise expected score against
// every other entrant and normalizes by the pool total.
func normalizedStrengths(ratings []float64) []float64 {
	if len(ratings) == 1 {
		return []float64{1}
	}
	strengths := make([]float64, len(ratings))
	total := 0.0
	for i, rating := range ratings {
		sum := 0.0
		for j, opponent := range ratings {
			if i == j {
				continue
			}
			sum += expectedScore(rating, opponent)
		}
		strengths[i] = sum
		total += sum
	}
	for i := range strengths {
		strengths[i] /= total
	}
	return strengths
}

// jitter wobbles odds by up to +/-jitterSpan, then re-clamps and re-snaps
func (e *oddsEngine) jitter(odds int64) int64 {
	factor := 1 + (e.rng.Float64()*2-1)*jitterSpan
	wobbled := int64(math.Round(float64(odds) * factor))
	return snapToCatalog(entities.ClampOdds(wobbled))
}

func (e *oddsEngine) participantRatings(ctx context.Context, outcome *entities.GameOutcome) (map[int64]int, error) {
	memberIDs := make([]int64, 0, len(outcome.Participants))
	for _, p := range outcome.Participants {
		memberIDs = append(memberIDs, p.MemberID)
	}
	ratings, err := e.ratingEngine.GetRatings(ctx, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get ratings for outcome %d: %w", outcome.ID, err)
	}
	return ratings, nil
}

func (e *oddsEngine) publishOddsUpdated(outcomeID int64, quotes []*entities.OddsQuote, initial bool) {
	byMember := make(map[int64]int64, len(quotes))
	for _, q := range quotes {
		byMember[q.MemberID] = q.Odds
	}
	if err := e.eventPublisher.Publish(events.OddsUpdatedEvent{
		OutcomeID: outcomeID,
		Quotes:    byMember,
		Initial:   initial,
	}); err != nil {
		log.WithError(err).Error("Failed to publish odds update event")
	}
}

func ratingOf(ratings map[int64]int, memberID int64) int {
	if r, ok := ratings[memberID]; ok {
		return r
	}
	return entities.DefaultRating
}

func branchAverage(branch entities.Branch, ratings map[int64]int) float64 {
	sum := 0
	for _, member := range branch.Members {
		sum += ratingOf(ratings, member.MemberID)
	}
	return float64(sum) / float64(len(branch.Members))
}
