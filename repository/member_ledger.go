package repository

import (
	"context"
	"fmt"

	"gamenight/database"

	"github.com/jackc/pgx/v5"
)

// MemberLedger implements the CurrencyLedger interface over the community
// currency table. Members are seeded with the starting balance on first use.
type MemberLedger struct {
	q               Queryable
	startingBalance int64
}

// NewMemberLedger creates a new member ledger
func NewMemberLedger(db *database.DB, startingBalance int64) *MemberLedger {
	return &MemberLedger{q: db.Pool, startingBalance: startingBalance}
}

func newMemberLedger(tx Queryable, startingBalance int64) *MemberLedger {
	return &MemberLedger{q: tx, startingBalance: startingBalance}
}

// ensureMember creates the member's currency row if it does not exist yet
func (l *MemberLedger) ensureMember(ctx context.Context, memberID int64) error {
	query := `
		INSERT INTO members (member_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (member_id) DO NOTHING
	`
	if _, err := l.q.Exec(ctx, query, memberID, l.startingBalance); err != nil {
		return fmt.Errorf("failed to ensure member %d: %w", memberID, err)
	}
	return nil
}

// GetBalance returns the member's current balance
func (l *MemberLedger) GetBalance(ctx context.Context, memberID int64) (int64, error) {
	query := `SELECT balance FROM members WHERE member_id = $1`

	var balance int64
	err := l.q.QueryRow(ctx, query, memberID).Scan(&balance)
	if err == pgx.ErrNoRows {
		return l.startingBalance, l.ensureMember(ctx, memberID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get balance for member %d: %w", memberID, err)
	}

	return balance, nil
}

// TryDebit atomically checks and debits the balance. A false return means
// insufficient funds and no state change.
func (l *MemberLedger) TryDebit(ctx context.Context, memberID int64, amount int64) (bool, error) {
	if err := l.ensureMember(ctx, memberID); err != nil {
		return false, err
	}

	query := `
		UPDATE members
		SET balance = balance - $2, updated_at = NOW()
		WHERE member_id = $1 AND balance >= $2
	`

	result, err := l.q.Exec(ctx, query, memberID, amount)
	if err != nil {
		return false, fmt.Errorf("failed to debit member %d: %w", memberID, err)
	}

	return result.RowsAffected() > 0, nil
}

// TryCredit adds to the member's balance
func (l *MemberLedger) TryCredit(ctx context.Context, memberID int64, amount int64) (bool, error) {
	if err := l.ensureMember(ctx, memberID); err != nil {
		return false, err
	}

	query := `
		UPDATE members
		SET balance = balance + $2, updated_at = NOW()
		WHERE member_id = $1
	`

	result, err := l.q.Exec(ctx, query, memberID, amount)
	if err != nil {
		return false, fmt.Errorf("failed to credit member %d: %w", memberID, err)
	}

	return result.RowsAffected() > 0, nil
}
