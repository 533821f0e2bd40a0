package expense

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jharmon/splittab/internal/roster"
)

// Repository handles expense and split data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new expense repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// participantColumns maps a ParticipantRef to the (user_id, guest_id) column
// pair; exactly one side is non-NULL.
func participantColumns(ref roster.ParticipantRef) (userID, guestID sql.NullInt64) {
	if ref.Kind == roster.KindGuest {
		return sql.NullInt64{}, sql.NullInt64{Int64: ref.ID, Valid: true}
	}
	return sql.NullInt64{Int64: ref.ID, Valid: true}, sql.NullInt64{}
}

// refFromColumns rebuilds a ParticipantRef from the column pair
func refFromColumns(userID, guestID sql.NullInt64) roster.ParticipantRef {
	if guestID.Valid {
		return roster.ParticipantRef{Kind: roster.KindGuest, ID: guestID.Int64}
	}
	return roster.ParticipantRef{Kind: roster.KindUser, ID: userID.Int64}
}

// CreateWithSplits inserts an expense and every one of its splits in a
// single transaction. An expense is never partially persisted.
func (r *Repository) CreateWithSplits(ctx context.Context, expense *Expense, splits []*Split) (*ExpenseWithSplits, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	payerUser, payerGuest := participantColumns(expense.Payer)

	expenseQuery := `
		INSERT INTO expenses (group_id, description, total, currency, payer_user_id, payer_guest_id, expense_date, split_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	err = tx.QueryRowContext(ctx, expenseQuery,
		expense.GroupID,
		expense.Description,
		expense.Total,
		expense.Currency,
		payerUser,
		payerGuest,
		expense.Date,
		expense.SplitType,
	).Scan(&expense.ID, &expense.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	splitQuery := `
		INSERT INTO splits (expense_id, user_id, guest_id, amount, percentage, is_settled)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, updated_at
	`
	for _, s := range splits {
		s.ExpenseID = expense.ID
		userID, guestID := participantColumns(s.Participant)
		var pct decimal.NullDecimal
		if s.Percentage != nil {
			pct = decimal.NullDecimal{Decimal: *s.Percentage, Valid: true}
		}
		err = tx.QueryRowContext(ctx, splitQuery,
			expense.ID,
			userID,
			guestID,
			s.Amount,
			pct,
			s.IsSettled,
		).Scan(&s.ID, &s.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to create split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit expense: %w", err)
	}

	return &ExpenseWithSplits{Expense: expense, Splits: splits}, nil
}

const expenseSelect = `
	SELECT e.id, e.group_id, e.description, e.total, e.currency,
	       e.payer_user_id, e.payer_guest_id, e.expense_date, e.split_type, e.created_at,
	       COALESCE(u.username, g.name, '')
	FROM expenses e
	LEFT JOIN users u ON e.payer_user_id = u.id
	LEFT JOIN guests g ON e.payer_guest_id = g.id
`

// scanExpense reads one expense row from the shared select
func scanExpense(row interface{ Scan(...interface{}) error }) (*Expense, error) {
	e := &Expense{}
	var payerUser, payerGuest sql.NullInt64
	err := row.Scan(
		&e.ID,
		&e.GroupID,
		&e.Description,
		&e.Total,
		&e.Currency,
		&payerUser,
		&payerGuest,
		&e.Date,
		&e.SplitType,
		&e.CreatedAt,
		&e.PayerName,
	)
	if err != nil {
		return nil, err
	}
	e.Payer = refFromColumns(payerUser, payerGuest)
	return e, nil
}

// GetByID retrieves an expense by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Expense, error) {
	expense, err := scanExpense(r.db.QueryRowContext(ctx, expenseSelect+` WHERE e.id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return expense, nil
}

// GetSplitsByExpenseID retrieves all splits for an expense
func (r *Repository) GetSplitsByExpenseID(ctx context.Context, expenseID int64) ([]*Split, error) {
	query := `
		SELECT s.id, s.expense_id, s.user_id, s.guest_id, s.amount, s.percentage, s.is_settled, s.updated_at,
		       COALESCE(u.username, g.name, '')
		FROM splits s
		LEFT JOIN users u ON s.user_id = u.id
		LEFT JOIN guests g ON s.guest_id = g.id
		WHERE s.expense_id = $1
		ORDER BY s.id
	`

	rows, err := r.db.QueryContext(ctx, query, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	var splits []*Split
	for rows.Next() {
		s := &Split{}
		var userID, guestID sql.NullInt64
		var pct decimal.NullDecimal
		if err := rows.Scan(
			&s.ID,
			&s.ExpenseID,
			&userID,
			&guestID,
			&s.Amount,
			&pct,
			&s.IsSettled,
			&s.UpdatedAt,
			&s.ParticipantName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		s.Participant = refFromColumns(userID, guestID)
		if pct.Valid {
			s.Percentage = &pct.Decimal
		}
		splits = append(splits, s)
	}

	return splits, rows.Err()
}

// ListByGroupID retrieves expenses for a group, newest first
func (r *Repository) ListByGroupID(ctx context.Context, groupID int64, filter ListExpensesFilter, limit, offset int) ([]*Expense, int, error) {
	where := ` WHERE e.group_id = $1`
	args := []interface{}{groupID}

	if filter.Payer != nil {
		userID, guestID := participantColumns(*filter.Payer)
		if userID.Valid {
			args = append(args, userID.Int64)
			where += fmt.Sprintf(` AND e.payer_user_id = $%d`, len(args))
		} else {
			args = append(args, guestID.Int64)
			where += fmt.Sprintf(` AND e.payer_guest_id = $%d`, len(args))
		}
	}
	if filter.Settled != nil {
		args = append(args, *filter.Settled)
		where += fmt.Sprintf(` AND EXISTS (SELECT 1 FROM splits s WHERE s.expense_id = e.id AND s.is_settled = $%d)`, len(args))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM expenses e` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	args = append(args, limit, offset)
	query := expenseSelect + where + fmt.Sprintf(` ORDER BY e.created_at DESC, e.id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}

	return expenses, total, rows.Err()
}

// Delete removes an expense and cascades to its splits. Settled-state
// bookkeeping disappears with the splits; nothing else is rewritten.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM splits WHERE expense_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete splits: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return tx.Commit()
}
