package events

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeOddsUpdated     EventType = "odds_updated"
	EventTypeWagerPlaced     EventType = "wager_placed"
	EventTypeWagerResolved   EventType = "wager_resolved"
	EventTypeWagersCancelled EventType = "wagers_cancelled"
	EventTypeOutcomeSettled  EventType = "outcome_settled"
	EventTypeRatingChanged   EventType = "rating_changed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// OddsUpdatedEvent is emitted whenever an outcome's quotes are generated
// or repriced. Quotes maps member id to decimal odds x100.
type OddsUpdatedEvent struct {
	OutcomeID int64
	Quotes    map[int64]int64
	Initial   bool
}

func (e OddsUpdatedEvent) Type() EventType {
	return EventTypeOddsUpdated
}

// WagerPlacedEvent is emitted after a wager is recorded and the stake debited
type WagerPlacedEvent struct {
	WagerID        int64
	OutcomeID      int64
	BettorMemberID int64
	Amount         int64
	LockedOdds     int64
}

func (e WagerPlacedEvent) Type() EventType {
	return EventTypeWagerPlaced
}

// WagerResolvedEvent is emitted for each wager settled during resolution
type WagerResolvedEvent struct {
	WagerID        int64
	OutcomeID      int64
	BettorMemberID int64
	Won            bool
	Payout         int64
}

func (e WagerResolvedEvent) Type() EventType {
	return EventTypeWagerResolved
}

// WagersCancelledEvent is emitted when an outcome's open wagers are refunded
type WagersCancelledEvent struct {
	OutcomeID int64
	Refunded  int
}

func (e WagersCancelledEvent) Type() EventType {
	return EventTypeWagersCancelled
}

// OutcomeSettledEvent is emitted once per settlement pass
type OutcomeSettledEvent struct {
	OutcomeID   int64
	WagersPaid  int
	WagersLost  int
	TotalPayout int64
}

func (e OutcomeSettledEvent) Type() EventType {
	return EventTypeOutcomeSettled
}

// RatingChangedEvent is emitted for each contestant whose rating moved
type RatingChangedEvent struct {
	MemberID  int64
	OutcomeID int64
	OldRating int
	NewRating int
}

func (e RatingChangedEvent) Type() EventType {
	return EventTypeRatingChanged
}
