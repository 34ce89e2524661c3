package services

import (
	"context"
	"fmt"
	"math"

	"gamenight/domain/entities"
	"gamenight/domain/events"
	"gamenight/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

const (
	// kFactor is deliberately higher than chess defaults: with the low
	// game count of a casual meetup, ratings need to move meaningfully.
	kFactor = 32

	// noContestPenalty is the flat deduction for a lost co-op game or any
	// other no-winner result. Not ELO-derived, a fun penalty.
	noContestPenalty = 10
)

type ratingEngine struct {
	contestantRepo interfaces.ContestantRepository
	eventPublisher interfaces.EventPublisher
}

// NewRatingEngine creates a new rating engine
func NewRatingEngine(contestantRepo interfaces.ContestantRepository, eventPublisher interfaces.EventPublisher) interfaces.RatingEngine {
	return &ratingEngine{
		contestantRepo: contestantRepo,
		eventPublisher: eventPublisher,
	}
}

// expectedScore is the ELO expected score of a player at rating against an
// opponent at opponent: 1 / (1 + 10^((opponent-rating)/400)).
func expectedScore(rating, opponent float64) float64 {
	return 1 / (1 + math.Pow(10, (opponent-rating)/400))
}

func (e *ratingEngine) GetRating(ctx context.Context, memberID int64) (int, error) {
	contestant, err := e.contestantRepo.GetByMember(ctx, memberID)
	if err != nil {
		return 0, fmt.Errorf("failed to get contestant %d: %w", memberID, err)
	}
	if contestant == nil {
		return entities.DefaultRating, nil
	}
	return contestant.Rating, nil
}

func (e *ratingEngine) GetRatings(ctx context.Context, memberIDs []int64) (map[int64]int, error) {
	contestants, err := e.contestantRepo.GetByMembers(ctx, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get contestants: %w", err)
	}

	ratings := make(map[int64]int, len(memberIDs))
	for _, id := range memberIDs {
		if c, ok := contestants[id]; ok {
			ratings[id] = c.Rating
		} else {
			ratings[id] = entities.DefaultRating
		}
	}
	return ratings, nil
}

// UpdateForIndividualWin applies pairwise deltas: for each loser the delta
// is round(K * (1 - E)) where E is the winner's expected score against
// that loser. The winner gains the sum, each loser loses its own delta.
func (e *ratingEngine) UpdateForIndividualWin(ctx context.Context, outcomeID, winnerID int64, loserIDs []int64) error {
	if len(loserIDs) == 0 {
		// Single-contestant pool: win probability 1, nothing moves.
		return nil
	}

	ids := append([]int64{winnerID}, loserIDs...)
	ratings, err := e.GetRatings(ctx, ids)
	if err != nil {
		return err
	}

	winnerRating := float64(ratings[winnerID])
	winnerGain := 0
	for _, loserID := range loserIDs {
		delta := int(math.Round(kFactor * (1 - expectedScore(winnerRating, float64(ratings[loserID])))))
		winnerGain += delta
		if err := e.applyDelta(ctx, outcomeID, loserID, -delta); err != nil {
			return err
		}
	}

	return e.applyDelta(ctx, outcomeID, winnerID, winnerGain)
}

// UpdateForTeamWin computes a single delta from each pair of team average
// ratings and applies it uniformly to every member of the teams involved.
func (e *ratingEngine) UpdateForTeamWin(ctx context.Context, outcomeID int64, winningTeam []int64, losingTeams [][]int64) error {
	if len(winningTeam) == 0 || len(losingTeams) == 0 {
		return nil
	}

	var all []int64
	all = append(all, winningTeam...)
	for _, team := range losingTeams {
		all = append(all, team...)
	}
	ratings, err := e.GetRatings(ctx, all)
	if err != nil {
		return err
	}

	winnerAvg := averageRating(ratings, winningTeam)
	winnerGain := 0
	for _, team := range losingTeams {
		if len(team) == 0 {
			continue
		}
		delta := int(math.Round(kFactor * (1 - expectedScore(winnerAvg, averageRating(ratings, team)))))
		winnerGain += delta
		for _, memberID := range team {
			if err := e.applyDelta(ctx, outcomeID, memberID, -delta); err != nil {
				return err
			}
		}
	}

	for _, memberID := range winningTeam {
		if err := e.applyDelta(ctx, outcomeID, memberID, winnerGain); err != nil {
			return err
		}
	}
	return nil
}

func (e *ratingEngine) UpdateForNoContest(ctx context.Context, outcomeID int64, playerIDs []int64) error {
	for _, memberID := range playerIDs {
		if err := e.applyDelta(ctx, outcomeID, memberID, -noContestPenalty); err != nil {
			return err
		}
	}
	return nil
}

// applyDelta adjusts one contestant's rating, creating the row lazily at
// the default rating for first-time players.
func (e *ratingEngine) applyDelta(ctx context.Context, outcomeID, memberID int64, delta int) error {
	contestant, err := e.contestantRepo.GetByMember(ctx, memberID)
	if err != nil {
		return fmt.Errorf("failed to get contestant %d: %w", memberID, err)
	}
	if contestant == nil {
		contestant = entities.NewContestant(memberID)
	}

	oldRating := contestant.Rating
	contestant.ApplyDelta(delta)

	if err := e.contestantRepo.Upsert(ctx, contestant); err != nil {
		return fmt.Errorf("failed to update rating for member %d: %w", memberID, err)
	}

	if err := e.eventPublisher.Publish(events.RatingChangedEvent{
		MemberID:  memberID,
		OutcomeID: outcomeID,
		OldRating: oldRating,
		NewRating: contestant.Rating,
	}); err != nil {
		log.WithError(err).Error("Failed to publish rating change event")
	}
	return nil
}

func averageRating(ratings map[int64]int, memberIDs []int64) float64 {
	if len(memberIDs) == 0 {
		return entities.DefaultRating
	}
	sum := 0
	for _, id := range memberIDs {
		sum += ratings[id]
	}
	return float64(sum) / float64(len(memberIDs))
}
