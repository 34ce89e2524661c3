package repository

import (
	"context"
	"fmt"
	"time"

	"gamenight/database"
	"gamenight/domain/entities"

	"github.com/jackc/pgx/v5"
)

// OutcomeRepository implements read access to game outcomes. The scheduling
// subsystem owns these rows; the wagering engine only records results on them.
type OutcomeRepository struct {
	q Queryable
}

// NewOutcomeRepository creates a new outcome repository
func NewOutcomeRepository(db *database.DB) *OutcomeRepository {
	return &OutcomeRepository{q: db.Pool}
}

func newOutcomeRepository(tx Queryable) *OutcomeRepository {
	return &OutcomeRepository{q: tx}
}

// GetByID retrieves an outcome with its full roster, nil if missing
func (r *OutcomeRepository) GetByID(ctx context.Context, id int64) (*entities.GameOutcome, error) {
	query := `
		SELECT id, game_name, state, scheduled_at, winner_member_id, winner_team, no_contest, created_at
		FROM game_outcomes
		WHERE id = $1
	`

	var outcome entities.GameOutcome
	err := r.q.QueryRow(ctx, query, id).Scan(
		&outcome.ID,
		&outcome.GameName,
		&outcome.State,
		&outcome.ScheduledAt,
		&outcome.WinnerMemberID,
		&outcome.WinnerTeam,
		&outcome.NoContest,
		&outcome.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get outcome %d: %w", id, err)
	}

	if err := r.loadParticipants(ctx, &outcome); err != nil {
		return nil, err
	}

	return &outcome, nil
}

// GetAwaitingSettlement returns confirmed outcomes past their scheduled date
// with a recorded result and at least one open wager
func (r *OutcomeRepository) GetAwaitingSettlement(ctx context.Context, now time.Time) ([]*entities.GameOutcome, error) {
	query := `
		SELECT DISTINCT o.id, o.game_name, o.state, o.scheduled_at, o.winner_member_id, o.winner_team, o.no_contest, o.created_at
		FROM game_outcomes o
		JOIN wagers w ON w.outcome_id = o.id AND NOT w.resolved
		WHERE o.state = 'confirmed'
		  AND o.scheduled_at < $1
		  AND (o.winner_member_id IS NOT NULL OR o.winner_team IS NOT NULL OR o.no_contest)
		ORDER BY o.scheduled_at
	`

	rows, err := r.q.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get outcomes awaiting settlement: %w", err)
	}
	defer rows.Close()

	var outcomes []*entities.GameOutcome
	for rows.Next() {
		var outcome entities.GameOutcome
		err := rows.Scan(
			&outcome.ID,
			&outcome.GameName,
			&outcome.State,
			&outcome.ScheduledAt,
			&outcome.WinnerMemberID,
			&outcome.WinnerTeam,
			&outcome.NoContest,
			&outcome.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		outcomes = append(outcomes, &outcome)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outcomes: %w", err)
	}

	for _, outcome := range outcomes {
		if err := r.loadParticipants(ctx, outcome); err != nil {
			return nil, err
		}
	}

	return outcomes, nil
}

// loadParticipants fills the outcome's roster in insertion order
func (r *OutcomeRepository) loadParticipants(ctx context.Context, outcome *entities.GameOutcome) error {
	query := `
		SELECT id, outcome_id, member_id, team
		FROM outcome_participants
		WHERE outcome_id = $1
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, outcome.ID)
	if err != nil {
		return fmt.Errorf("failed to get participants for outcome %d: %w", outcome.ID, err)
	}
	defer rows.Close()

	var participants []*entities.OutcomeParticipant
	for rows.Next() {
		var p entities.OutcomeParticipant
		if err := rows.Scan(&p.ID, &p.OutcomeID, &p.MemberID, &p.Team); err != nil {
			return fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, &p)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate participants: %w", err)
	}

	outcome.Participants = participants
	return nil
}
