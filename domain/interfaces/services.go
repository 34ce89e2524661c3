package interfaces

import (
	"context"

	"gamenight/domain/entities"
)

// RatingEngine maintains per-member skill ratings, updated after each
// finalized game outcome.
type RatingEngine interface {
	// GetRating returns the member's rating, or the default for members
	// who have never played
	GetRating(ctx context.Context, memberID int64) (int, error)

	// GetRatings is the batched form of GetRating
	GetRatings(ctx context.Context, memberIDs []int64) (map[int64]int, error)

	// UpdateForIndividualWin applies pairwise ELO deltas for an individual
	// game: the winner gains against every loser, each loser loses its own
	// pairwise delta independently
	UpdateForIndividualWin(ctx context.Context, outcomeID, winnerID int64, loserIDs []int64) error

	// UpdateForTeamWin applies ELO deltas computed on team average ratings,
	// each delta applied uniformly to the team's members
	UpdateForTeamWin(ctx context.Context, outcomeID int64, winningTeam []int64, losingTeams [][]int64) error

	// UpdateForNoContest applies the flat no-winner penalty to every player
	UpdateForNoContest(ctx context.Context, outcomeID int64, playerIDs []int64) error
}

// OddsEngine converts skill ratings into betting odds and reprices them as
// wagers accumulate.
type OddsEngine interface {
	// CalculateWinProbabilities returns the normalized pairwise
	// expected-score strength of each contestant in the pool; values sum
	// to 1 across the pool
	CalculateWinProbabilities(contestants []int64, ratings map[int64]int) map[int64]float64

	// ProbabilityToOdds converts a win probability into house-margined
	// decimal odds x100, clamped and snapped to the appealing-odds catalog
	ProbabilityToOdds(probability float64) int64

	// GenerateInitialOdds computes and persists fresh quotes for a newly
	// confirmed outcome, with the generation-time jitter applied
	GenerateInitialOdds(ctx context.Context, outcome *entities.GameOutcome) ([]*entities.OddsQuote, error)

	// RecalculateForCashflow reprices quotes from the open-wager liability
	// per branch. Idempotent for a fixed wager set; never jitters. A nil
	// or empty wager set is a no-op.
	RecalculateForCashflow(ctx context.Context, outcome *entities.GameOutcome, openWagers []*entities.Wager) ([]*entities.OddsQuote, error)
}

// WagerLedger validates and records bets, resolves them when results are
// known, and computes payouts.
type WagerLedger interface {
	// PlaceWager debits the stake, records the wager at current odds and
	// reprices the outcome's quotes, all within the ambient transaction
	PlaceWager(ctx context.Context, outcomeID int64, pick entities.Pick, amount, bettorMemberID int64) (*entities.Wager, error)

	// ResolveOutcome settles every open wager on the outcome, credits
	// winners and updates ratings. Safe to call repeatedly; later calls
	// return ErrAlreadyResolved
	ResolveOutcome(ctx context.Context, outcomeID int64) (*entities.SettlementResult, error)

	// CancelOpenWagers refunds and removes all open wagers on a retracted
	// outcome; fails once any wager has settled
	CancelOpenWagers(ctx context.Context, outcomeID int64) (int, error)

	// GetOddsForOutcome returns current quotes keyed by member id
	GetOddsForOutcome(ctx context.Context, outcomeID int64) (map[int64]int64, error)

	// GetUserWagers returns a bettor's wagers on an outcome
	GetUserWagers(ctx context.Context, outcomeID, bettorMemberID int64) ([]*entities.Wager, error)
}
