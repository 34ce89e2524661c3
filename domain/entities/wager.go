package entities

import (
	"errors"
	"fmt"
	"time"
)

// Pick identifies the branch a bettor backed: a single contestant or a
// whole team. Exactly one field is set.
type Pick struct {
	MemberID *int64
	Team     *string
}

// MemberPick builds a pick backing a single contestant
func MemberPick(memberID int64) Pick {
	return Pick{MemberID: &memberID}
}

// TeamPick builds a pick backing a team
func TeamPick(team string) Pick {
	return Pick{Team: &team}
}

// Validate checks that exactly one side of the pick is set
func (p Pick) Validate() error {
	if (p.MemberID == nil) == (p.Team == nil) {
		return errors.New("pick must name exactly one contestant or one team")
	}
	return nil
}

// String renders the pick for logs and messages
func (p Pick) String() string {
	if p.Team != nil {
		return "team " + *p.Team
	}
	if p.MemberID != nil {
		return fmt.Sprintf("member %d", *p.MemberID)
	}
	return "unset"
}

// BranchKey returns the pick's branch key within the given outcome. A pick
// on a contestant who plays for a team resolves to the team branch, which
// keeps pick matching team-aware.
func (p Pick) BranchKey(outcome *GameOutcome) string {
	if p.Team != nil {
		return "team:" + *p.Team
	}
	if participant := outcome.ParticipantByMember(*p.MemberID); participant != nil {
		return BranchKeyForParticipant(participant)
	}
	return fmt.Sprintf("member:%d", *p.MemberID)
}

// Wager is a single bet on an outcome branch with odds locked at placement
// time. Rows are immutable after creation except for the one resolve
// transition performed during settlement.
type Wager struct {
	ID             int64      `db:"id"`
	OutcomeID      int64      `db:"outcome_id"`
	BettorMemberID int64      `db:"bettor_member_id"`
	PickMemberID   *int64     `db:"pick_member_id"`
	PickTeam       *string    `db:"pick_team"`
	Amount         int64      `db:"amount"`
	LockedOdds     int64      `db:"locked_odds"`
	Resolved       bool       `db:"resolved"`
	Payout         int64      `db:"payout"`
	PlacedAt       time.Time  `db:"placed_at"`
	ResolvedAt     *time.Time `db:"resolved_at"`
}

// Pick returns the wager's pick
func (w *Wager) Pick() Pick {
	return Pick{MemberID: w.PickMemberID, Team: w.PickTeam}
}

// PotentialPayout is the total return (stake plus profit) the wager pays
// if it wins, from the odds locked at placement.
func (w *Wager) PotentialPayout() int64 {
	return w.Amount + ProfitFromOdds(w.Amount, w.LockedOdds)
}

// SettleWin marks the wager resolved with the winning payout
func (w *Wager) SettleWin(at time.Time) {
	w.Resolved = true
	w.Payout = w.PotentialPayout()
	w.ResolvedAt = &at
}

// SettleLoss marks the wager resolved with no payout
func (w *Wager) SettleLoss(at time.Time) {
	w.Resolved = true
	w.Payout = 0
	w.ResolvedAt = &at
}

// ProfitFromOdds computes the profit on a winning stake from odds x100.
// The (odds-100)/100 multiplier is reduced to lowest terms before the
// integer multiply-then-divide so display math and payout math never
// disagree by a rounding step.
func ProfitFromOdds(stake, odds int64) int64 {
	num := odds - 100
	den := int64(100)
	if num <= 0 || stake <= 0 {
		return 0
	}
	g := gcd(num, den)
	num /= g
	den /= g
	return stake * num / den
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
