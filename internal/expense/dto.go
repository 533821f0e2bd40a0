package expense

import (
	"github.com/shopspring/decimal"

	"github.com/jharmon/splittab/internal/expense/split"
	"github.com/jharmon/splittab/internal/roster"
	"github.com/jharmon/splittab/pkg/money"
)

// ParticipantRefRequest names one side of a split in requests
type ParticipantRefRequest struct {
	Kind string `json:"kind" validate:"required,oneof=user guest"`
	ID   int64  `json:"id" validate:"required,gt=0"`
}

// ToRef converts the request shape to a roster reference
func (p *ParticipantRefRequest) ToRef() roster.ParticipantRef {
	return roster.ParticipantRef{Kind: roster.ParticipantKind(p.Kind), ID: p.ID}
}

// SplitParticipant is one participant entry when creating an expense
type SplitParticipant struct {
	Participant ParticipantRefRequest `json:"participant" validate:"required"`
	Percentage  *decimal.Decimal      `json:"percentage,omitempty"` // For PERCENTAGE split
	Amount      *decimal.Decimal      `json:"amount,omitempty"`     // For CUSTOM split
}

// ToSplitInput converts to the split package's input type
func (p *SplitParticipant) ToSplitInput() split.SplitInput {
	return split.SplitInput{
		Participant: p.Participant.ToRef(),
		Percentage:  p.Percentage,
		Amount:      p.Amount,
	}
}

// AssignedItemRequest is one finalized receipt item with its assignees
// (ITEMIZED split only)
type AssignedItemRequest struct {
	ID        string                  `json:"id" validate:"required"`
	Name      string                  `json:"name" validate:"required,min=1,max=50"`
	Price     decimal.Decimal         `json:"price"`
	Assignees []ParticipantRefRequest `json:"assignees"`
}

// ToAssignedItem converts to the split package's item type
func (i *AssignedItemRequest) ToAssignedItem() split.AssignedItem {
	assignees := make([]roster.ParticipantRef, len(i.Assignees))
	for j, a := range i.Assignees {
		assignees[j] = a.ToRef()
	}
	return split.AssignedItem{
		ID:        i.ID,
		Name:      i.Name,
		Price:     i.Price,
		Assignees: assignees,
	}
}

// ParticipantAmount pairs a participant with an explicit amount (custom
// gratuity entries)
type ParticipantAmount struct {
	Participant ParticipantRefRequest `json:"participant" validate:"required"`
	Amount      decimal.Decimal       `json:"amount"`
}

// CreateExpenseRequest represents the request to create an expense with its
// splits in one shot
type CreateExpenseRequest struct {
	GroupID        int64                  `json:"group_id" validate:"required,gt=0"`
	Description    string                 `json:"description" validate:"required,min=1,max=255"`
	Currency       string                 `json:"currency" validate:"required,len=3"`
	Date           string                 `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Payer          ParticipantRefRequest  `json:"payer" validate:"required"`
	SplitType      string                 `json:"split_type" validate:"required,oneof=EQUAL ITEMIZED PERCENTAGE CUSTOM"`
	Subtotal       decimal.Decimal        `json:"subtotal"`
	Participants   []*SplitParticipant    `json:"participants" validate:"required,min=1,dive"`
	Items          []*AssignedItemRequest `json:"items,omitempty" validate:"omitempty,dive"`
	Tax            decimal.Decimal        `json:"tax"`
	TaxMode        string                 `json:"tax_mode,omitempty" validate:"omitempty,oneof=PROPORTIONAL EQUAL"`
	Gratuity       decimal.Decimal        `json:"gratuity"`
	GratuityMode   string                 `json:"gratuity_mode,omitempty" validate:"omitempty,oneof=PROPORTIONAL EQUAL CUSTOM"`
	CustomGratuity []*ParticipantAmount   `json:"custom_gratuity,omitempty" validate:"omitempty,dive"`
}

// ListExpensesFilter narrows group expense listings
type ListExpensesFilter struct {
	Payer   *roster.ParticipantRef
	Settled *bool // filter expenses having any split in this settled state
}

// ExpenseResponse represents the response for an expense
type ExpenseResponse struct {
	ID          int64                 `json:"id"`
	GroupID     int64                 `json:"group_id"`
	Description string                `json:"description"`
	Total       decimal.Decimal       `json:"total"`
	Currency    string                `json:"currency"`
	Display     string                `json:"display"`
	Payer       roster.ParticipantRef `json:"payer"`
	PayerName   string                `json:"payer_name,omitempty"`
	SplitType   string                `json:"split_type"`
	Date        string                `json:"date"`
	CreatedAt   string                `json:"created_at"`
	Splits      []*SplitResponse      `json:"splits,omitempty"`
}

// SplitResponse represents the response for a split
type SplitResponse struct {
	ID              int64                 `json:"id"`
	ExpenseID       int64                 `json:"expense_id"`
	Participant     roster.ParticipantRef `json:"participant"`
	ParticipantName string                `json:"participant_name,omitempty"`
	Amount          decimal.Decimal       `json:"amount"`
	Percentage      *decimal.Decimal      `json:"percentage,omitempty"`
	IsSettled       bool                  `json:"is_settled"`
	UpdatedAt       string                `json:"updated_at"`
}

// ToResponse converts an Expense model to an ExpenseResponse DTO
func (e *Expense) ToResponse() *ExpenseResponse {
	return &ExpenseResponse{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Description: e.Description,
		Total:       e.Total,
		Currency:    e.Currency,
		Display:     money.Format(e.Total, e.Currency),
		Payer:       e.Payer,
		PayerName:   e.PayerName,
		SplitType:   e.SplitType,
		Date:        e.Date.Format("2006-01-02"),
		CreatedAt:   e.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse converts a Split model to a SplitResponse DTO
func (s *Split) ToResponse() *SplitResponse {
	return &SplitResponse{
		ID:              s.ID,
		ExpenseID:       s.ExpenseID,
		Participant:     s.Participant,
		ParticipantName: s.ParticipantName,
		Amount:          s.Amount,
		Percentage:      s.Percentage,
		IsSettled:       s.IsSettled,
		UpdatedAt:       s.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
