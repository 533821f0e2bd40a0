package expense

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jharmon/splittab/internal/roster"
)

// Expense is a finalized, committed expense. Created atomically with all of
// its splits; amounts are immutable afterwards.
type Expense struct {
	ID          int64                 `json:"id"`
	GroupID     int64                 `json:"group_id"`
	Description string                `json:"description"`
	Total       decimal.Decimal       `json:"total"`
	Currency    string                `json:"currency"`
	Payer       roster.ParticipantRef `json:"payer"`
	Date        time.Time             `json:"date"`
	SplitType   string                `json:"split_type"`
	CreatedAt   time.Time             `json:"created_at"`

	// Populated via JOIN
	PayerName string `json:"payer_name,omitempty"`
}

// Split is one participant's share of an expense. IsSettled is the only
// field that may change after creation; the toggle is reversible and the
// record itself is never edited or merged.
type Split struct {
	ID          int64                 `json:"id"`
	ExpenseID   int64                 `json:"expense_id"`
	Participant roster.ParticipantRef `json:"participant"`
	Amount      decimal.Decimal       `json:"amount"`
	Percentage  *decimal.Decimal      `json:"percentage,omitempty"`
	IsSettled   bool                  `json:"is_settled"`
	UpdatedAt   time.Time             `json:"updated_at"`

	// Populated via JOIN
	ParticipantName string `json:"participant_name,omitempty"`
}

// ExpenseWithSplits combines an expense with its splits
type ExpenseWithSplits struct {
	Expense *Expense
	Splits  []*Split
}
