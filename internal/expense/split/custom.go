package split

import (
	"github.com/shopspring/decimal"

	"github.com/jharmon/splittab/pkg/money"
)

// CustomStrategy takes explicit per-participant amounts
type CustomStrategy struct {
	exponent int32
}

// Type returns the split type identifier
func (s *CustomStrategy) Type() SplitType {
	return SplitTypeCustom
}

// Validate checks that every participant has a non-negative amount and that
// the amounts reconcile with the total within one minor unit
func (s *CustomStrategy) Validate(total decimal.Decimal, participants []SplitInput) error {
	if err := validateRoster(total, participants); err != nil {
		return err
	}

	sum := decimal.Zero
	for _, p := range participants {
		if p.Amount == nil {
			return ErrMissingAmount
		}
		if p.Amount.IsNegative() {
			return ErrNegativeAmount
		}
		sum = sum.Add(*p.Amount)
	}

	if !money.WithinTolerance(sum, total, s.exponent) {
		return &AmountMismatchError{Expected: total, Actual: sum}
	}

	return nil
}

// Calculate returns the amounts exactly as entered, rounded to the minor unit
func (s *CustomStrategy) Calculate(total decimal.Decimal, participants []SplitInput) ([]SplitOutput, error) {
	if err := s.Validate(total, participants); err != nil {
		return nil, err
	}

	outputs := make([]SplitOutput, len(participants))
	for i, p := range participants {
		outputs[i] = SplitOutput{
			Participant: p.Participant,
			Amount:      money.Round(*p.Amount, s.exponent),
		}
	}

	return outputs, nil
}
