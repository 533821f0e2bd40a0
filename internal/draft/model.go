package draft

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jharmon/splittab/internal/expense"
	"github.com/jharmon/splittab/internal/receipt"
	"github.com/jharmon/splittab/internal/roster"
)

// Common errors
var (
	ErrSessionNotFound = errors.New("draft session not found")
	ErrItemNotFound    = errors.New("draft item not found")
	ErrItemInvalid     = errors.New("item needs a name and a strictly positive price")
	ErrStrategyNotSet  = errors.New("split strategy has not been chosen")
	ErrNotAtSummary    = errors.New("draft must reach the summary step before commit")
)

// State is a wizard step. A draft moves through the steps in order and may
// step back; it never skips forward past an unvisited step.
type State string

const (
	StateEnterItems State = "enter_items"
	StateChooseMode State = "choose_mode"
	StateAssign     State = "assign"
	StateTip        State = "tip"
	StateSummary    State = "summary"
)

// transitions is the wizard edge list. Non-itemized drafts have nothing to
// assign, so choose_mode connects straight to tip as well.
var transitions = map[State][]State{
	StateEnterItems: {StateChooseMode},
	StateChooseMode: {StateEnterItems, StateAssign, StateTip},
	StateAssign:     {StateChooseMode, StateTip},
	StateTip:        {StateChooseMode, StateAssign, StateSummary},
	StateSummary:    {StateTip},
}

// InvalidTransitionError reports a wizard step the current state does not
// allow
type InvalidTransitionError struct {
	From State
	To   State
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move from %s to %s", e.From, e.To)
}

// Session is one in-progress expense draft. It lives in memory only: the
// expense and its splits are persisted atomically at commit, and nothing
// before that survives a restart.
type Session struct {
	ID       string `json:"id"`
	GroupID  int64  `json:"group_id"`
	Currency string `json:"currency"`
	State    State  `json:"state"`

	Restaurant  string                             `json:"restaurant,omitempty"`
	Items       []receipt.Item                     `json:"items"`
	Assignments map[string][]roster.ParticipantRef `json:"assignments"`

	SplitType    string                      `json:"split_type,omitempty"`
	Participants []*expense.SplitParticipant `json:"participants,omitempty"`

	Subtotal       decimal.Decimal              `json:"subtotal"`
	Tax            decimal.Decimal              `json:"tax"`
	TaxMode        string                       `json:"tax_mode,omitempty"`
	Gratuity       decimal.Decimal              `json:"gratuity"`
	GratuityMode   string                       `json:"gratuity_mode,omitempty"`
	CustomGratuity []*expense.ParticipantAmount `json:"custom_gratuity,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
