package split

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jharmon/splittab/internal/roster"
)

// SplitType defines the type of split strategy
type SplitType string

const (
	SplitTypeEqual      SplitType = "EQUAL"
	SplitTypeItemized   SplitType = "ITEMIZED"
	SplitTypePercentage SplitType = "PERCENTAGE"
	SplitTypeCustom     SplitType = "CUSTOM"
)

// SplitInput represents a participant in a split with optional values
type SplitInput struct {
	Participant roster.ParticipantRef `json:"participant"`
	Percentage  *decimal.Decimal      `json:"percentage,omitempty"` // For PERCENTAGE split
	Amount      *decimal.Decimal      `json:"amount,omitempty"`     // For CUSTOM split
}

// SplitOutput represents the calculated share for a single participant.
// Every participant appears, the payer included; persistence marks the
// payer's own row settled at creation.
type SplitOutput struct {
	Participant roster.ParticipantRef `json:"participant"`
	Amount      decimal.Decimal       `json:"amount"`
	Percentage  *decimal.Decimal      `json:"percentage,omitempty"`
}

// Strategy is the interface that all split strategies must implement
type Strategy interface {
	// Calculate computes each participant's pre-tax-and-tip share
	Calculate(total decimal.Decimal, participants []SplitInput) ([]SplitOutput, error)

	// Type returns the type identifier for this strategy
	Type() SplitType

	// Validate checks if the inputs are valid for this strategy
	Validate(total decimal.Decimal, participants []SplitInput) error
}

// Factory creates split strategies based on the requested type
type Factory struct {
	exponent int32
}

// NewFactory creates a strategy factory rounding to the given minor-unit
// exponent (2 for cent currencies)
func NewFactory(exponent int32) *Factory {
	return &Factory{exponent: exponent}
}

// Create returns the strategy implementation for flat-total splits. The
// itemized strategy needs the item list and is built with Itemized instead.
func (f *Factory) Create(splitType SplitType) (Strategy, error) {
	switch splitType {
	case SplitTypeEqual:
		return &EqualStrategy{exponent: f.exponent}, nil
	case SplitTypePercentage:
		return &PercentageStrategy{exponent: f.exponent}, nil
	case SplitTypeCustom:
		return &CustomStrategy{exponent: f.exponent}, nil
	case SplitTypeItemized:
		return nil, ErrItemizedNeedsItems
	default:
		return nil, fmt.Errorf("unknown split type: %s", splitType)
	}
}

// CreateFromString creates a strategy from a string type (useful for API requests)
func (f *Factory) CreateFromString(splitType string) (Strategy, error) {
	return f.Create(SplitType(strings.ToUpper(splitType)))
}

// Itemized builds the itemized strategy over assigned receipt items
func (f *Factory) Itemized(items []AssignedItem) Strategy {
	return &ItemizedStrategy{exponent: f.exponent, items: items}
}

var (
	ErrNoParticipants       = errors.New("at least one participant is required")
	ErrNegativeTotal        = errors.New("total cannot be negative")
	ErrMissingPercentage    = errors.New("percentage value required for all participants")
	ErrMissingAmount        = errors.New("amount required for all participants")
	ErrNegativeAmount       = errors.New("amounts cannot be negative")
	ErrPercentageOutOfRange = errors.New("percentage must be between 0 and 100")
	ErrItemizedNeedsItems   = errors.New("itemized split requires the item list")
	ErrUnknownAssignee      = errors.New("item assigned to someone outside the participant list")
)

// percentageTolerance is how far the entered percentages may drift from 100
var percentageTolerance = decimal.RequireFromString("0.1")

// PercentageMismatchError reports percentages that do not sum to 100
type PercentageMismatchError struct {
	Sum decimal.Decimal
}

func (e *PercentageMismatchError) Error() string {
	return fmt.Sprintf("percentages must sum to 100, got %s", e.Sum)
}

// AmountMismatchError reports entered amounts that do not reconcile with the
// total; both values are surfaced so the user can correct their input.
type AmountMismatchError struct {
	Expected decimal.Decimal
	Actual   decimal.Decimal
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("amounts must sum to %s, got %s", e.Expected, e.Actual)
}

// UnassignedItemsError blocks an itemized split while any item lacks an
// assignee. Items are never auto-assigned.
type UnassignedItemsError struct {
	ItemIDs []string
}

func (e *UnassignedItemsError) Error() string {
	return fmt.Sprintf("%d item(s) have no assignee", len(e.ItemIDs))
}

// validateRoster runs the checks shared by every strategy
func validateRoster(total decimal.Decimal, participants []SplitInput) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if total.IsNegative() {
		return ErrNegativeTotal
	}
	return nil
}
