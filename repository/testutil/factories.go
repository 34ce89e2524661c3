package testutil

import (
	"context"
	"testing"
	"time"

	"gamenight/database"
	"gamenight/domain/entities"

	"github.com/stretchr/testify/require"
)

// CreateTestOutcome creates an unconfirmed outcome entity with no roster
func CreateTestOutcome(gameName string, scheduledAt time.Time) *entities.GameOutcome {
	return &entities.GameOutcome{
		GameName:    gameName,
		State:       entities.OutcomeStatePlanned,
		ScheduledAt: scheduledAt,
	}
}

// CreateTestConfirmedOutcome creates a confirmed outcome entity with the
// given free-for-all roster
func CreateTestConfirmedOutcome(gameName string, scheduledAt time.Time, memberIDs ...int64) *entities.GameOutcome {
	outcome := CreateTestOutcome(gameName, scheduledAt)
	outcome.State = entities.OutcomeStateConfirmed
	for _, memberID := range memberIDs {
		outcome.Participants = append(outcome.Participants, &entities.OutcomeParticipant{
			MemberID: memberID,
		})
	}
	return outcome
}

// AddTeam appends a team of members to the outcome's roster
func AddTeam(outcome *entities.GameOutcome, team string, memberIDs ...int64) {
	for _, memberID := range memberIDs {
		t := team
		outcome.Participants = append(outcome.Participants, &entities.OutcomeParticipant{
			MemberID: memberID,
			Team:     &t,
		})
	}
}

// InsertOutcome persists an outcome and its roster, filling in generated IDs
func InsertOutcome(t *testing.T, db *database.DB, outcome *entities.GameOutcome) {
	t.Helper()
	ctx := context.Background()

	err := db.Pool.QueryRow(ctx, `
		INSERT INTO game_outcomes (game_name, state, scheduled_at, winner_member_id, winner_team, no_contest)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, outcome.GameName, outcome.State, outcome.ScheduledAt, outcome.WinnerMemberID, outcome.WinnerTeam, outcome.NoContest).
		Scan(&outcome.ID, &outcome.CreatedAt)
	require.NoError(t, err)

	for _, p := range outcome.Participants {
		p.OutcomeID = outcome.ID
		err := db.Pool.QueryRow(ctx, `
			INSERT INTO outcome_participants (outcome_id, member_id, team)
			VALUES ($1, $2, $3)
			RETURNING id
		`, p.OutcomeID, p.MemberID, p.Team).Scan(&p.ID)
		require.NoError(t, err)
	}
}

// RecordWinner marks the persisted outcome's result
func RecordWinner(t *testing.T, db *database.DB, outcomeID int64, winnerMemberID *int64, winnerTeam *string, noContest bool) {
	t.Helper()

	_, err := db.Pool.Exec(context.Background(), `
		UPDATE game_outcomes
		SET winner_member_id = $2, winner_team = $3, no_contest = $4
		WHERE id = $1
	`, outcomeID, winnerMemberID, winnerTeam, noContest)
	require.NoError(t, err)
}

// InsertMember seeds a member's currency row with a specific balance
func InsertMember(t *testing.T, db *database.DB, memberID int64, balance int64) {
	t.Helper()

	_, err := db.Pool.Exec(context.Background(), `
		INSERT INTO members (member_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (member_id) DO UPDATE SET balance = EXCLUDED.balance
	`, memberID, balance)
	require.NoError(t, err)
}

// CreateTestWager creates a member-pick wager entity with sensible defaults
func CreateTestWager(outcomeID, bettorMemberID, pickMemberID int64, amount int64) *entities.Wager {
	return &entities.Wager{
		OutcomeID:      outcomeID,
		BettorMemberID: bettorMemberID,
		PickMemberID:   &pickMemberID,
		Amount:         amount,
		LockedOdds:     200,
		PlacedAt:       time.Now(),
	}
}

// CreateTestTeamWager creates a team-pick wager entity
func CreateTestTeamWager(outcomeID, bettorMemberID int64, team string, amount int64) *entities.Wager {
	return &entities.Wager{
		OutcomeID:      outcomeID,
		BettorMemberID: bettorMemberID,
		PickTeam:       &team,
		Amount:         amount,
		LockedOdds:     200,
		PlacedAt:       time.Now(),
	}
}

// CreateTestQuote creates an odds quote entity
func CreateTestQuote(outcomeID, memberID, odds int64, setAt time.Time) *entities.OddsQuote {
	return &entities.OddsQuote{
		OutcomeID: outcomeID,
		MemberID:  memberID,
		Odds:      odds,
		SetAt:     setAt,
	}
}
