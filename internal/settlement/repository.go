package settlement

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jharmon/splittab/internal/roster"
)

// Repository reads split rows for balance math and flips their settled flag
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new settlement repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ListByGroup loads every split in a group as a settlement record, including
// settled rows. The pure balance functions decide what counts.
func (r *Repository) ListByGroup(ctx context.Context, groupID int64) ([]SplitRecord, error) {
	query := `
		SELECT s.id, s.expense_id,
		       e.payer_user_id, e.payer_guest_id,
		       s.user_id, s.guest_id,
		       s.amount, s.is_settled
		FROM splits s
		JOIN expenses e ON s.expense_id = e.id
		WHERE e.group_id = $1
		ORDER BY s.id
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}
	defer rows.Close()

	var records []SplitRecord
	for rows.Next() {
		var rec SplitRecord
		var payerUser, payerGuest, debtorUser, debtorGuest sql.NullInt64
		if err := rows.Scan(
			&rec.SplitID,
			&rec.ExpenseID,
			&payerUser,
			&payerGuest,
			&debtorUser,
			&debtorGuest,
			&rec.Amount,
			&rec.IsSettled,
		); err != nil {
			return nil, fmt.Errorf("failed to scan split record: %w", err)
		}
		rec.Payer = refFromColumns(payerUser, payerGuest)
		rec.Debtor = refFromColumns(debtorUser, debtorGuest)
		records = append(records, rec)
	}

	return records, rows.Err()
}

func refFromColumns(userID, guestID sql.NullInt64) roster.ParticipantRef {
	if guestID.Valid {
		return roster.ParticipantRef{Kind: roster.KindGuest, ID: guestID.Int64}
	}
	return roster.ParticipantRef{Kind: roster.KindUser, ID: userID.Int64}
}

// SetSettled flips one split's settled flag. The write is idempotent: setting
// an already-settled split settled again succeeds without changing anything.
func (r *Repository) SetSettled(ctx context.Context, splitID int64, settled bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE splits SET is_settled = $2, updated_at = NOW() WHERE id = $1`,
		splitID, settled,
	)
	if err != nil {
		return fmt.Errorf("failed to update split: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrSplitNotFound
	}
	return nil
}

// ApplyToggles flips a batch of settled flags in one transaction. Each update
// carries the settled state the caller observed; if any row has changed in
// the meantime the whole batch rolls back and a ConflictError names the rows
// that moved.
func (r *Repository) ApplyToggles(ctx context.Context, toggles []SplitToggle) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var conflicts []int64
	for _, t := range toggles {
		result, err := tx.ExecContext(ctx,
			`UPDATE splits SET is_settled = $2, updated_at = NOW() WHERE id = $1 AND is_settled = $3`,
			t.SplitID, t.Settled, t.Expected,
		)
		if err != nil {
			return fmt.Errorf("failed to update split %d: %w", t.SplitID, err)
		}
		rowsAffected, _ := result.RowsAffected()
		if rowsAffected == 0 {
			conflicts = append(conflicts, t.SplitID)
		}
	}

	if len(conflicts) > 0 {
		return &ConflictError{SplitIDs: conflicts}
	}

	return tx.Commit()
}
