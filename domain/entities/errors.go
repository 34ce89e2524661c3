package entities

import "errors"

// Business-rule violations surfaced directly to callers for user-facing
// messaging. Matched with errors.Is; they never indicate storage failure.
var (
	ErrNotFound           = errors.New("game outcome not found")
	ErrNotConfirmed       = errors.New("game outcome is not confirmed")
	ErrPastDeadline       = errors.New("game outcome is past its scheduled date")
	ErrInvalidAmount      = errors.New("stake must be positive")
	ErrInvalidWinner      = errors.New("predicted winner is not a participant")
	ErrMissingOdds        = errors.New("no odds quote for predicted winner")
	ErrAlreadyWagered     = errors.New("bettor already has an open wager on this outcome")
	ErrInsufficientFunds  = errors.New("insufficient balance for stake")
	ErrAlreadyResolved    = errors.New("outcome has no open wagers to resolve")
	ErrNotPast            = errors.New("game outcome has not reached its scheduled date")
	ErrMissingWinner      = errors.New("no winner recorded for outcome")
	ErrBetsAlreadySettled = errors.New("wagers on this outcome have already been settled")
)
