package settlement

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jharmon/splittab/internal/roster"
)

// Common errors
var (
	ErrSplitNotFound    = errors.New("split not found")
	ErrCannotSettleSelf = errors.New("cannot settle up with yourself")
	ErrNothingToSettle  = errors.New("no matching splits to update")
)

// Direction expresses a pair balance from the asking participant's side
type Direction string

const (
	DirectionYouOwe    Direction = "you_owe"
	DirectionOwedToYou Direction = "owed_to_you"
	DirectionEven      Direction = "even"
)

// SplitRecord is the minimal split view the balance math needs. The ledger
// stores nothing itself; these rows are read fresh from the expense splits
// every time a balance is asked for.
type SplitRecord struct {
	SplitID   int64
	ExpenseID int64
	Payer     roster.ParticipantRef
	Debtor    roster.ParticipantRef
	Amount    decimal.Decimal
	IsSettled bool
}

// PairBalance is the single signed amount summarizing all unsettled
// obligations between two participants, seen from "self"
type PairBalance struct {
	Other     roster.ParticipantRef `json:"other"`
	OtherName string                `json:"other_name,omitempty"`
	Amount    decimal.Decimal       `json:"amount"`
	Direction Direction             `json:"direction"`
}

// MemberSummary aggregates a member's pair balances across the whole group
type MemberSummary struct {
	YouOwe    decimal.Decimal `json:"you_owe"`
	OwedToYou decimal.Decimal `json:"owed_to_you"`
	Balances  []PairBalance   `json:"balances"`
}

// SplitToggle is one optimistic settled-flag update: flip to Settled only if
// the row still carries the expected pre-image.
type SplitToggle struct {
	SplitID  int64
	Expected bool
	Settled  bool
}

// SettleUpResult reports what a bulk settle/unsettle changed
type SettleUpResult struct {
	SplitIDs []int64         `json:"split_ids"`
	Amount   decimal.Decimal `json:"amount"`
	Settled  bool            `json:"settled"`
}

// ConflictError reports a concurrent settle collision. The transaction was
// rolled back: nothing was applied, and the listed splits had already been
// flipped by someone else. Callers should refresh and retry.
type ConflictError struct {
	SplitIDs []int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("settlement conflict on %d split(s); refresh and retry", len(e.SplitIDs))
}
