package repository

import (
	"context"
	"fmt"
	"time"

	"gamenight/database"
	"gamenight/domain/entities"
)

// OddsQuoteRepository implements the OddsQuoteRepository interface
type OddsQuoteRepository struct {
	q Queryable
}

// NewOddsQuoteRepository creates a new odds quote repository
func NewOddsQuoteRepository(db *database.DB) *OddsQuoteRepository {
	return &OddsQuoteRepository{q: db.Pool}
}

func newOddsQuoteRepository(tx Queryable) *OddsQuoteRepository {
	return &OddsQuoteRepository{q: tx}
}

// GetByOutcome returns all quotes for an outcome in roster order
func (r *OddsQuoteRepository) GetByOutcome(ctx context.Context, outcomeID int64) ([]*entities.OddsQuote, error) {
	query := `
		SELECT q.id, q.outcome_id, q.member_id, q.odds, q.set_at
		FROM odds_quotes q
		JOIN outcome_participants p ON p.outcome_id = q.outcome_id AND p.member_id = q.member_id
		WHERE q.outcome_id = $1
		ORDER BY p.id
	`

	rows, err := r.q.Query(ctx, query, outcomeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get odds quotes for outcome %d: %w", outcomeID, err)
	}
	defer rows.Close()

	var quotes []*entities.OddsQuote
	for rows.Next() {
		var quote entities.OddsQuote
		err := rows.Scan(
			&quote.ID,
			&quote.OutcomeID,
			&quote.MemberID,
			&quote.Odds,
			&quote.SetAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan odds quote: %w", err)
		}
		quotes = append(quotes, &quote)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate odds quotes: %w", err)
	}

	return quotes, nil
}

// ReplaceForOutcome deletes any existing quotes for the outcome and inserts
// the given set
func (r *OddsQuoteRepository) ReplaceForOutcome(ctx context.Context, outcomeID int64, quotes []*entities.OddsQuote) error {
	deleteQuery := `DELETE FROM odds_quotes WHERE outcome_id = $1`
	if _, err := r.q.Exec(ctx, deleteQuery, outcomeID); err != nil {
		return fmt.Errorf("failed to clear odds quotes for outcome %d: %w", outcomeID, err)
	}

	insertQuery := `
		INSERT INTO odds_quotes (outcome_id, member_id, odds, set_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	for _, quote := range quotes {
		err := r.q.QueryRow(ctx, insertQuery, outcomeID, quote.MemberID, quote.Odds, quote.SetAt).Scan(&quote.ID)
		if err != nil {
			return fmt.Errorf("failed to insert odds quote for member %d on outcome %d: %w", quote.MemberID, outcomeID, err)
		}
		quote.OutcomeID = outcomeID
	}

	return nil
}

// UpdateOdds updates quoted odds in place for the given members
func (r *OddsQuoteRepository) UpdateOdds(ctx context.Context, outcomeID int64, odds map[int64]int64, setAt time.Time) error {
	query := `
		UPDATE odds_quotes
		SET odds = $1, set_at = $2
		WHERE outcome_id = $3 AND member_id = $4
	`

	for memberID, value := range odds {
		result, err := r.q.Exec(ctx, query, value, setAt, outcomeID, memberID)
		if err != nil {
			return fmt.Errorf("failed to update odds for member %d on outcome %d: %w", memberID, outcomeID, err)
		}
		if result.RowsAffected() == 0 {
			return fmt.Errorf("no odds quote for member %d on outcome %d", memberID, outcomeID)
		}
	}

	return nil
}
