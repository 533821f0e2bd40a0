package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSplitResidualGoesToOneShare(t *testing.T) {
	shares := Split(d("100.00"), 3, 2)
	require.Len(t, shares, 3)

	assert.True(t, shares[0].Equal(d("33.34")), "first share absorbs the cent, got %s", shares[0])
	assert.True(t, shares[1].Equal(d("33.33")))
	assert.True(t, shares[2].Equal(d("33.33")))

	sum := decimal.Sum(shares[0], shares[1:]...)
	assert.True(t, sum.Equal(d("100.00")), "shares must sum exactly, got %s", sum)
}

func TestSplitEvenAmountNeedsNoCorrection(t *testing.T) {
	shares := Split(d("20.00"), 4, 2)
	for _, s := range shares {
		assert.True(t, s.Equal(d("5.00")))
	}
}

func TestReconcileSumsToTarget(t *testing.T) {
	tests := []struct {
		name   string
		target string
		raws   []string
		want   []string
	}{
		{
			name:   "negative residual lands on largest remainder",
			target: "2.00",
			raws:   []string{"0.666666", "0.666666", "0.666666"},
			want:   []string{"0.66", "0.67", "0.67"},
		},
		{
			name:   "already exact",
			target: "10.00",
			raws:   []string{"2.50", "7.50"},
			want:   []string{"2.50", "7.50"},
		},
		{
			name:   "tie broken by earliest position",
			target: "1.00",
			raws:   []string{"0.333333", "0.333333", "0.333333"},
			want:   []string{"0.34", "0.33", "0.33"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raws := make([]decimal.Decimal, len(tt.raws))
			for i, r := range tt.raws {
				raws[i] = d(r)
			}

			got := Reconcile(d(tt.target), raws, 2)

			require.Len(t, got, len(tt.want))
			sum := decimal.Zero
			for i, g := range got {
				assert.True(t, g.Equal(d(tt.want[i])), "share %d = %s, want %s", i, g, tt.want[i])
				sum = sum.Add(g)
			}
			assert.True(t, sum.Equal(d(tt.target)))
		})
	}
}

func TestWithinTolerance(t *testing.T) {
	assert.True(t, WithinTolerance(d("10.00"), d("10.01"), 2))
	assert.True(t, WithinTolerance(d("10.00"), d("10.00"), 2))
	assert.False(t, WithinTolerance(d("10.00"), d("10.02"), 2))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$14.50", Format(d("14.5"), "USD"))
	assert.Equal(t, "€9.99", Format(d("9.99"), "EUR"))
	assert.Equal(t, "¥1200", Format(d("1200"), "JPY"))
	assert.Equal(t, "12.00 SAR", Format(d("12"), "SAR"))
	assert.Equal(t, "XXX 3.00", Format(d("3"), "XXX"))
}
