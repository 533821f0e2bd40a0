package draft

import (
	"github.com/shopspring/decimal"

	"github.com/jharmon/splittab/internal/expense"
	"github.com/jharmon/splittab/internal/receipt"
)

// CreateSessionRequest opens a draft, optionally seeded with a parsed receipt
type CreateSessionRequest struct {
	GroupID  int64         `json:"group_id" validate:"required,gt=0"`
	Currency string        `json:"currency" validate:"required,len=3"`
	Seed     *receipt.Data `json:"seed,omitempty"`
}

// AdvanceRequest moves the wizard to another step
type AdvanceRequest struct {
	State string `json:"state" validate:"required,oneof=enter_items choose_mode assign tip summary"`
}

// ItemRequest adds or updates a draft item
type ItemRequest struct {
	Name     string          `json:"name" validate:"required,min=1,max=50"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category,omitempty" validate:"omitempty,oneof=drink appetizer pizza entree other"`
}

// StrategyRequest chooses the split strategy and participant entries
type StrategyRequest struct {
	SplitType    string                      `json:"split_type" validate:"required,oneof=EQUAL ITEMIZED PERCENTAGE CUSTOM"`
	Participants []*expense.SplitParticipant `json:"participants" validate:"required,min=1,dive"`
}

// ToggleAssignmentRequest flips one participant on one item
type ToggleAssignmentRequest struct {
	Participant expense.ParticipantRefRequest `json:"participant" validate:"required"`
}

// ChargesRequest records the tip-step amounts
type ChargesRequest struct {
	Subtotal       decimal.Decimal              `json:"subtotal"`
	Tax            decimal.Decimal              `json:"tax"`
	TaxMode        string                       `json:"tax_mode,omitempty" validate:"omitempty,oneof=PROPORTIONAL EQUAL"`
	Gratuity       decimal.Decimal              `json:"gratuity"`
	GratuityMode   string                       `json:"gratuity_mode,omitempty" validate:"omitempty,oneof=PROPORTIONAL EQUAL CUSTOM"`
	CustomGratuity []*expense.ParticipantAmount `json:"custom_gratuity,omitempty" validate:"omitempty,dive"`
}

// CommitRequest finalizes the draft into a persisted expense
type CommitRequest struct {
	Description string                        `json:"description" validate:"required,min=1,max=255"`
	Payer       expense.ParticipantRefRequest `json:"payer" validate:"required"`
	Date        string                        `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}
