package repository

import (
	"context"
	"fmt"

	"gamenight/database"
	"gamenight/domain/entities"

	"github.com/jackc/pgx/v5"
)

// WagerRepository implements the WagerRepository interface
type WagerRepository struct {
	q Queryable
}

// NewWagerRepository creates a new wager repository
func NewWagerRepository(db *database.DB) *WagerRepository {
	return &WagerRepository{q: db.Pool}
}

func newWagerRepository(tx Queryable) *WagerRepository {
	return &WagerRepository{q: tx}
}

const wagerColumns = `id, outcome_id, bettor_member_id, pick_member_id, pick_team, amount, locked_odds, resolved, payout, placed_at, resolved_at`

func scanWager(row pgx.Row) (*entities.Wager, error) {
	var wager entities.Wager
	err := row.Scan(
		&wager.ID,
		&wager.OutcomeID,
		&wager.BettorMemberID,
		&wager.PickMemberID,
		&wager.PickTeam,
		&wager.Amount,
		&wager.LockedOdds,
		&wager.Resolved,
		&wager.Payout,
		&wager.PlacedAt,
		&wager.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &wager, nil
}

func collectWagers(rows pgx.Rows) ([]*entities.Wager, error) {
	defer rows.Close()

	var wagers []*entities.Wager
	for rows.Next() {
		wager, err := scanWager(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wager: %w", err)
		}
		wagers = append(wagers, wager)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wagers: %w", err)
	}

	return wagers, nil
}

// Create records a new wager
func (r *WagerRepository) Create(ctx context.Context, wager *entities.Wager) error {
	query := `
		INSERT INTO wagers (outcome_id, bettor_member_id, pick_member_id, pick_team, amount, locked_odds, placed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.q.QueryRow(ctx, query,
		wager.OutcomeID,
		wager.BettorMemberID,
		wager.PickMemberID,
		wager.PickTeam,
		wager.Amount,
		wager.LockedOdds,
		wager.PlacedAt,
	).Scan(&wager.ID)

	if err != nil {
		return fmt.Errorf("failed to create wager for bettor %d on outcome %d: %w", wager.BettorMemberID, wager.OutcomeID, err)
	}

	return nil
}

// GetOpenByOutcome returns all unresolved wagers on an outcome, locked
// against concurrent settlement passes
func (r *WagerRepository) GetOpenByOutcome(ctx context.Context, outcomeID int64) ([]*entities.Wager, error) {
	query := `
		SELECT ` + wagerColumns + `
		FROM wagers
		WHERE outcome_id = $1 AND NOT resolved
		ORDER BY placed_at, id
		FOR UPDATE
	`

	rows, err := r.q.Query(ctx, query, outcomeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get open wagers for outcome %d: %w", outcomeID, err)
	}

	return collectWagers(rows)
}

// GetOpenByBettor returns the bettor's open wager on an outcome, nil if none
func (r *WagerRepository) GetOpenByBettor(ctx context.Context, outcomeID, bettorMemberID int64) (*entities.Wager, error) {
	query := `
		SELECT ` + wagerColumns + `
		FROM wagers
		WHERE outcome_id = $1 AND bettor_member_id = $2 AND NOT resolved
	`

	wager, err := scanWager(r.q.QueryRow(ctx, query, outcomeID, bettorMemberID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get open wager for bettor %d on outcome %d: %w", bettorMemberID, outcomeID, err)
	}

	return wager, nil
}

// GetByOutcomeAndBettor returns all of a bettor's wagers on an outcome
func (r *WagerRepository) GetByOutcomeAndBettor(ctx context.Context, outcomeID, bettorMemberID int64) ([]*entities.Wager, error) {
	query := `
		SELECT ` + wagerColumns + `
		FROM wagers
		WHERE outcome_id = $1 AND bettor_member_id = $2
		ORDER BY placed_at, id
	`

	rows, err := r.q.Query(ctx, query, outcomeID, bettorMemberID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wagers for bettor %d on outcome %d: %w", bettorMemberID, outcomeID, err)
	}

	return collectWagers(rows)
}

// HasResolvedForOutcome reports whether any wager on the outcome has settled
func (r *WagerRepository) HasResolvedForOutcome(ctx context.Context, outcomeID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM wagers WHERE outcome_id = $1 AND resolved)`

	var exists bool
	if err := r.q.QueryRow(ctx, query, outcomeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check resolved wagers for outcome %d: %w", outcomeID, err)
	}

	return exists, nil
}

// MarkResolved persists the resolve transition for the given wagers
func (r *WagerRepository) MarkResolved(ctx context.Context, wagers []*entities.Wager) error {
	query := `
		UPDATE wagers
		SET resolved = TRUE, payout = $1, resolved_at = $2
		WHERE id = $3 AND NOT resolved
	`

	for _, wager := range wagers {
		result, err := r.q.Exec(ctx, query, wager.Payout, wager.ResolvedAt, wager.ID)
		if err != nil {
			return fmt.Errorf("failed to resolve wager %d: %w", wager.ID, err)
		}
		if result.RowsAffected() == 0 {
			return fmt.Errorf("wager %d already resolved", wager.ID)
		}
	}

	return nil
}

// DeleteOpenByOutcome removes all open wagers on an outcome and returns the
// removed wagers so their stakes can be refunded
func (r *WagerRepository) DeleteOpenByOutcome(ctx context.Context, outcomeID int64) ([]*entities.Wager, error) {
	query := `
		DELETE FROM wagers
		WHERE outcome_id = $1 AND NOT resolved
		RETURNING ` + wagerColumns + `
	`

	rows, err := r.q.Query(ctx, query, outcomeID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete open wagers for outcome %d: %w", outcomeID, err)
	}

	return collectWagers(rows)
}
