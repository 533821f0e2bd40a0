package split

import (
	"github.com/shopspring/decimal"

	"github.com/jharmon/splittab/pkg/money"
)

// PercentageStrategy divides the total by explicit per-participant percentages
type PercentageStrategy struct {
	exponent int32
}

// Type returns the split type identifier
func (s *PercentageStrategy) Type() SplitType {
	return SplitTypePercentage
}

// Validate checks that every participant has a percentage in range and that
// the percentages sum to 100 within tolerance
func (s *PercentageStrategy) Validate(total decimal.Decimal, participants []SplitInput) error {
	if err := validateRoster(total, participants); err != nil {
		return err
	}

	sum := decimal.Zero
	for _, p := range participants {
		if p.Percentage == nil {
			return ErrMissingPercentage
		}
		if p.Percentage.IsNegative() || p.Percentage.GreaterThan(decimal.NewFromInt(100)) {
			return ErrPercentageOutOfRange
		}
		sum = sum.Add(*p.Percentage)
	}

	if sum.Sub(decimal.NewFromInt(100)).Abs().GreaterThan(percentageTolerance) {
		return &PercentageMismatchError{Sum: sum}
	}

	return nil
}

// Calculate computes total * percentage / 100 per participant, reconciled so
// the rounded shares sum to the total exactly
func (s *PercentageStrategy) Calculate(total decimal.Decimal, participants []SplitInput) ([]SplitOutput, error) {
	if err := s.Validate(total, participants); err != nil {
		return nil, err
	}

	hundred := decimal.NewFromInt(100)
	raws := make([]decimal.Decimal, len(participants))
	for i, p := range participants {
		raws[i] = total.Mul(*p.Percentage).Div(hundred)
	}

	shares := money.Reconcile(total, raws, s.exponent)

	outputs := make([]SplitOutput, len(participants))
	for i, p := range participants {
		outputs[i] = SplitOutput{
			Participant: p.Participant,
			Amount:      shares[i],
			Percentage:  p.Percentage,
		}
	}

	return outputs, nil
}
