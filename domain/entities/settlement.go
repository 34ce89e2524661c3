package entities

// SettlementResult summarizes one resolution pass over an outcome's
// open wagers.
type SettlementResult struct {
	Outcome     *GameOutcome
	Winners     []*Wager
	Losers      []*Wager
	TotalPayout int64
	NoContest   bool
}
