package split

import (
	"github.com/shopspring/decimal"

	"github.com/jharmon/splittab/internal/roster"
	"github.com/jharmon/splittab/pkg/money"
)

// AssignedItem is a finalized receipt item with the participants who share it
type AssignedItem struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	Assignees []roster.ParticipantRef
}

// ItemizedStrategy divides each item's price among its assignees. An item
// shared by k people contributes price/k to each of them, never the full
// price more than once.
type ItemizedStrategy struct {
	exponent int32
	items    []AssignedItem
}

// Type returns the split type identifier
func (s *ItemizedStrategy) Type() SplitType {
	return SplitTypeItemized
}

// Validate enforces the hard precondition that every item has at least one
// assignee, and that each assignee is on the participant list. The error
// names the offending items; nothing is ever auto-assigned.
func (s *ItemizedStrategy) Validate(total decimal.Decimal, participants []SplitInput) error {
	if err := validateRoster(total, participants); err != nil {
		return err
	}

	known := make(map[roster.ParticipantRef]bool, len(participants))
	for _, p := range participants {
		known[p.Participant] = true
	}

	var unassigned []string
	for _, item := range s.items {
		if len(item.Assignees) == 0 {
			unassigned = append(unassigned, item.ID)
			continue
		}
		for _, a := range item.Assignees {
			if !known[a] {
				return ErrUnknownAssignee
			}
		}
	}
	if len(unassigned) > 0 {
		return &UnassignedItemsError{ItemIDs: unassigned}
	}

	itemSum := decimal.Zero
	for _, item := range s.items {
		itemSum = itemSum.Add(item.Price)
	}
	if !money.WithinTolerance(itemSum, total, s.exponent) {
		return &AmountMismatchError{Expected: total, Actual: itemSum}
	}

	return nil
}

// Calculate sums each participant's per-item shares. Per item, the assignee
// shares are produced with the same residual rule as everything else, so
// they conserve the item price exactly and need no rounding afterwards.
func (s *ItemizedStrategy) Calculate(total decimal.Decimal, participants []SplitInput) ([]SplitOutput, error) {
	if err := s.Validate(total, participants); err != nil {
		return nil, err
	}

	subtotals := make(map[roster.ParticipantRef]decimal.Decimal, len(participants))
	for _, item := range s.items {
		shares := money.Split(item.Price, len(item.Assignees), s.exponent)
		for i, a := range item.Assignees {
			subtotals[a] = subtotals[a].Add(shares[i])
		}
	}

	outputs := make([]SplitOutput, len(participants))
	for i, p := range participants {
		outputs[i] = SplitOutput{
			Participant: p.Participant,
			Amount:      subtotals[p.Participant],
		}
	}

	return outputs, nil
}
