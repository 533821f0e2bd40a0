package split

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jharmon/splittab/internal/roster"
)

func subtotalsFor(amounts map[roster.ParticipantRef]string, order ...roster.ParticipantRef) []SplitOutput {
	out := make([]SplitOutput, len(order))
	for i, ref := range order {
		out[i] = SplitOutput{Participant: ref, Amount: decimal.RequireFromString(amounts[ref])}
	}
	return out
}

func TestAllocateProportional(t *testing.T) {
	a := NewAllocator(2)
	subs := subtotalsFor(map[roster.ParticipantRef]string{
		user(1): "20.00",
		user(2): "10.00",
	}, user(1), user(2))

	allocs, err := a.Allocate(subs, ChargeConfig{
		Tax:          d("3.00"),
		TaxMode:      ChargeProportional,
		Gratuity:     d("6.00"),
		GratuityMode: ChargeProportional,
	})
	require.NoError(t, err)

	// user 1 consumed 2/3 of the bill
	assert.True(t, allocs[0].Tax.Equal(d("2.00")))
	assert.True(t, allocs[0].Gratuity.Equal(d("4.00")))
	assert.True(t, allocs[0].Total.Equal(d("26.00")))
	assert.True(t, allocs[1].Tax.Equal(d("1.00")))
	assert.True(t, allocs[1].Gratuity.Equal(d("2.00")))
	assert.True(t, allocs[1].Total.Equal(d("13.00")))
}

func TestAllocateEqual(t *testing.T) {
	a := NewAllocator(2)
	subs := subtotalsFor(map[roster.ParticipantRef]string{
		user(1): "25.00",
		user(2): "5.00",
		user(3): "0.00",
	}, user(1), user(2), user(3))

	allocs, err := a.Allocate(subs, ChargeConfig{
		Tax:          d("2.00"),
		TaxMode:      ChargeEqual,
		Gratuity:     d("5.00"),
		GratuityMode: ChargeEqual,
	})
	require.NoError(t, err)

	// 2.00/3 -> first share absorbs the residual; 5.00/3 likewise
	assert.True(t, allocs[0].Tax.Equal(d("0.66")))
	assert.True(t, allocs[1].Tax.Equal(d("0.67")))
	assert.True(t, allocs[2].Tax.Equal(d("0.67")))
	assert.True(t, allocs[0].Gratuity.Equal(d("1.66")))
	assert.True(t, allocs[1].Gratuity.Equal(d("1.67")))
	assert.True(t, allocs[2].Gratuity.Equal(d("1.67")))

	sum := decimal.Zero
	for _, al := range allocs {
		sum = sum.Add(al.Total)
	}
	assert.True(t, sum.Equal(d("37.00")), "totals must sum to subtotal+tax+gratuity, got %s", sum)
}

func TestAllocateZeroSubtotalProportional(t *testing.T) {
	a := NewAllocator(2)
	subs := subtotalsFor(map[roster.ParticipantRef]string{
		user(1): "0.00",
		user(2): "0.00",
	}, user(1), user(2))

	allocs, err := a.Allocate(subs, ChargeConfig{
		Tax:          d("3.00"),
		TaxMode:      ChargeProportional,
		Gratuity:     d("0.00"),
		GratuityMode: ChargeProportional,
	})
	require.NoError(t, err)

	for _, al := range allocs {
		assert.True(t, al.Tax.IsZero(), "no consumption means no tax share")
		assert.True(t, al.Total.IsZero())
	}
}

func TestAllocateCustomGratuity(t *testing.T) {
	a := NewAllocator(2)
	subs := subtotalsFor(map[roster.ParticipantRef]string{
		user(1): "20.00",
		guest(1): "10.00",
	}, user(1), guest(1))

	allocs, err := a.Allocate(subs, ChargeConfig{
		Tax:          d("3.00"),
		TaxMode:      ChargeEqual,
		GratuityMode: ChargeCustom,
		CustomGratuity: map[roster.ParticipantRef]decimal.Decimal{
			user(1): d("5.00"),
			// guest left nothing; their share is simply zero
		},
	})
	require.NoError(t, err)

	assert.True(t, allocs[0].Gratuity.Equal(d("5.00")))
	assert.True(t, allocs[1].Gratuity.Equal(d("0.00")))
	assert.True(t, allocs[0].Total.Equal(d("26.50")))
	assert.True(t, allocs[1].Total.Equal(d("11.50")))
}

func TestAllocateRejectsCustomTax(t *testing.T) {
	a := NewAllocator(2)
	subs := subtotalsFor(map[roster.ParticipantRef]string{user(1): "10.00"}, user(1))

	_, err := a.Allocate(subs, ChargeConfig{TaxMode: ChargeCustom, GratuityMode: ChargeEqual})
	assert.ErrorIs(t, err, ErrCustomTaxMode)
}

func TestAllocateRejectsUnknownMode(t *testing.T) {
	a := NewAllocator(2)
	subs := subtotalsFor(map[roster.ParticipantRef]string{user(1): "10.00"}, user(1))

	_, err := a.Allocate(subs, ChargeConfig{TaxMode: ChargeMode("WEIRD"), GratuityMode: ChargeEqual})
	assert.ErrorIs(t, err, ErrUnknownChargeMode)
}

func TestAllocateNoParticipants(t *testing.T) {
	a := NewAllocator(2)
	_, err := a.Allocate(nil, ChargeConfig{TaxMode: ChargeEqual, GratuityMode: ChargeEqual})
	assert.ErrorIs(t, err, ErrNoParticipants)
}
