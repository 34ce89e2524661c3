package repository

import (
	"context"
	"fmt"

	"gamenight/database"
	"gamenight/domain/entities"

	"github.com/jackc/pgx/v5"
)

// ContestantRepository implements the ContestantRepository interface
type ContestantRepository struct {
	q Queryable
}

// NewContestantRepository creates a new contestant repository
func NewContestantRepository(db *database.DB) *ContestantRepository {
	return &ContestantRepository{q: db.Pool}
}

func newContestantRepository(tx Queryable) *ContestantRepository {
	return &ContestantRepository{q: tx}
}

// GetByMember retrieves a contestant by member ID, nil if the member has never been rated
func (r *ContestantRepository) GetByMember(ctx context.Context, memberID int64) (*entities.Contestant, error) {
	query := `
		SELECT member_id, rating, games_played, created_at, updated_at
		FROM contestants
		WHERE member_id = $1
	`

	var contestant entities.Contestant
	err := r.q.QueryRow(ctx, query, memberID).Scan(
		&contestant.MemberID,
		&contestant.Rating,
		&contestant.GamesPlayed,
		&contestant.CreatedAt,
		&contestant.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contestant for member %d: %w", memberID, err)
	}

	return &contestant, nil
}

// GetByMembers retrieves contestants for a set of members. Members with no
// rating row are simply absent from the result map.
func (r *ContestantRepository) GetByMembers(ctx context.Context, memberIDs []int64) (map[int64]*entities.Contestant, error) {
	result := make(map[int64]*entities.Contestant)
	if len(memberIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT member_id, rating, games_played, created_at, updated_at
		FROM contestants
		WHERE member_id = ANY($1)
	`

	rows, err := r.q.Query(ctx, query, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get contestants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var contestant entities.Contestant
		err := rows.Scan(
			&contestant.MemberID,
			&contestant.Rating,
			&contestant.GamesPlayed,
			&contestant.CreatedAt,
			&contestant.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contestant: %w", err)
		}
		result[contestant.MemberID] = &contestant
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contestants: %w", err)
	}

	return result, nil
}

// Upsert creates or updates a contestant's rating row
func (r *ContestantRepository) Upsert(ctx context.Context, contestant *entities.Contestant) error {
	query := `
		INSERT INTO contestants (member_id, rating, games_played)
		VALUES ($1, $2, $3)
		ON CONFLICT (member_id) DO UPDATE
		SET rating = EXCLUDED.rating,
		    games_played = EXCLUDED.games_played,
		    updated_at = NOW()
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query, contestant.MemberID, contestant.Rating, contestant.GamesPlayed).Scan(
		&contestant.CreatedAt,
		&contestant.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert contestant for member %d: %w", contestant.MemberID, err)
	}

	return nil
}
