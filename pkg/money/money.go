package money

import (
	"github.com/shopspring/decimal"
)

// Tolerance is the largest acceptable gap between a target total and the sum
// of its parts: one minor currency unit (e.g. one cent).
func Tolerance(exponent int32) decimal.Decimal {
	return decimal.New(1, -exponent)
}

// Round rounds an amount to the currency's minor unit, half away from zero
// (half-up for the non-negative amounts money deals in).
func Round(amount decimal.Decimal, exponent int32) decimal.Decimal {
	return amount.Round(exponent)
}

// WithinTolerance reports whether two amounts agree within one minor unit.
func WithinTolerance(a, b decimal.Decimal, exponent int32) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance(exponent))
}

// Reconcile rounds each raw share to the minor unit and then applies the
// signed difference to the target onto a single share, so the result sums to
// target exactly. The absorber is the share with the largest pre-rounding
// fractional remainder; ties go to the earliest position.
func Reconcile(target decimal.Decimal, raws []decimal.Decimal, exponent int32) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(raws))
	sum := decimal.Zero
	for i, raw := range raws {
		shares[i] = Round(raw, exponent)
		sum = sum.Add(shares[i])
	}

	diff := target.Sub(sum)
	if diff.IsZero() || len(shares) == 0 {
		return shares
	}

	idx := 0
	best := raws[0].Sub(raws[0].RoundFloor(exponent))
	for i := 1; i < len(raws); i++ {
		rem := raws[i].Sub(raws[i].RoundFloor(exponent))
		if rem.GreaterThan(best) {
			best = rem
			idx = i
		}
	}
	shares[idx] = shares[idx].Add(diff)

	return shares
}

// Split divides an amount into n shares that sum to the amount exactly,
// using the same single-absorber residual rule as Reconcile.
func Split(amount decimal.Decimal, n int, exponent int32) []decimal.Decimal {
	raws := make([]decimal.Decimal, n)
	raw := amount.Div(decimal.NewFromInt(int64(n)))
	for i := range raws {
		raws[i] = raw
	}
	return Reconcile(amount, raws, exponent)
}
