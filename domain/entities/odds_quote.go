package entities

import (
	"time"
)

const (
	// MinOdds is the lowest quotable decimal odds, scaled by 100 (1.05x).
	MinOdds = 105

	// MaxOdds is the highest quotable decimal odds, scaled by 100 (20.00x).
	MaxOdds = 2000
)

// OddsQuote holds the current decimal odds for one (outcome, contestant)
// pair. Odds are stored multiplied by 100 so 300 means a 3.00x return.
// Contestants sharing a team always carry identical odds.
type OddsQuote struct {
	ID        int64     `db:"id"`
	OutcomeID int64     `db:"outcome_id"`
	MemberID  int64     `db:"member_id"`
	Odds      int64     `db:"odds"`
	SetAt     time.Time `db:"set_at"`
}

// Decimal returns the odds as a float multiplier (300 -> 3.00)
func (q *OddsQuote) Decimal() float64 {
	return float64(q.Odds) / 100
}

// ImpliedPercent returns the implied win probability of odds as a
// percentage (odds 200 -> 50.0). Summed across an outcome's branches this
// is the overround the repricing pass keeps inside its target band.
func ImpliedPercent(odds int64) float64 {
	if odds <= 0 {
		return 0
	}
	return 10000 / float64(odds)
}

// ClampOdds bounds odds to the quotable range
func ClampOdds(odds int64) int64 {
	if odds < MinOdds {
		return MinOdds
	}
	if odds > MaxOdds {
		return MaxOdds
	}
	return odds
}
