package split

import (
	"github.com/shopspring/decimal"

	"github.com/jharmon/splittab/pkg/money"
)

// EqualStrategy divides the total evenly among all participants
type EqualStrategy struct {
	exponent int32
}

// Type returns the split type identifier
func (s *EqualStrategy) Type() SplitType {
	return SplitTypeEqual
}

// Validate checks if the inputs are valid for an equal split
func (s *EqualStrategy) Validate(total decimal.Decimal, participants []SplitInput) error {
	return validateRoster(total, participants)
}

// Calculate gives each participant total/n, rounded to the minor unit, with
// the residual cent(s) landing on a single deterministic participant so the
// shares sum to the total exactly.
func (s *EqualStrategy) Calculate(total decimal.Decimal, participants []SplitInput) ([]SplitOutput, error) {
	if err := s.Validate(total, participants); err != nil {
		return nil, err
	}

	shares := money.Split(total, len(participants), s.exponent)

	outputs := make([]SplitOutput, len(participants))
	for i, p := range participants {
		outputs[i] = SplitOutput{
			Participant: p.Participant,
			Amount:      shares[i],
		}
	}

	return outputs, nil
}
