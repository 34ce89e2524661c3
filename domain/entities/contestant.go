package entities

import (
	"time"
)

const (
	// DefaultRating is the rating assigned to a member who has never played.
	DefaultRating = 1200

	// MinRating is the floor below which a rating is never allowed to fall.
	MinRating = 100
)

// Contestant represents a member's current skill rating. Rows are created
// lazily on first rating lookup or update and are never deleted.
type Contestant struct {
	MemberID    int64     `db:"member_id"`
	Rating      int       `db:"rating"`
	GamesPlayed int       `db:"games_played"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// NewContestant creates a contestant at the default rating.
func NewContestant(memberID int64) *Contestant {
	return &Contestant{
		MemberID: memberID,
		Rating:   DefaultRating,
	}
}

// ApplyDelta adjusts the rating by delta, clamped at the minimum rating.
func (c *Contestant) ApplyDelta(delta int) {
	c.Rating += delta
	if c.Rating < MinRating {
		c.Rating = MinRating
	}
	c.GamesPlayed++
}
