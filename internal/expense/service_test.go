package expense

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jharmon/splittab/internal/expense/split"
	"github.com/jharmon/splittab/internal/roster"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dptr(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func userRef(id int64) ParticipantRefRequest {
	return ParticipantRefRequest{Kind: "user", ID: id}
}

func guestRef(id int64) ParticipantRefRequest {
	return ParticipantRefRequest{Kind: "guest", ID: id}
}

func TestComputeBreakdownEqualWithProportionalCharges(t *testing.T) {
	svc := NewService(nil)

	req := &CreateExpenseRequest{
		GroupID:     1,
		Description: "Dinner",
		Currency:    "USD",
		Payer:       userRef(1),
		SplitType:   "EQUAL",
		Subtotal:    d("30.00"),
		Participants: []*SplitParticipant{
			{Participant: userRef(1)},
			{Participant: userRef(2)},
		},
		Tax:      d("3.00"),
		Gratuity: d("6.00"),
	}

	breakdown, err := svc.ComputeBreakdown(req)
	require.NoError(t, err)
	require.Len(t, breakdown.Allocations, 2)

	for _, a := range breakdown.Allocations {
		assert.True(t, a.Subtotal.Equal(d("15.00")))
		assert.True(t, a.Tax.Equal(d("1.50")))
		assert.True(t, a.Gratuity.Equal(d("3.00")))
		assert.True(t, a.Total.Equal(d("19.50")))
	}
	assert.True(t, breakdown.Total.Equal(d("39.00")))
}

func TestComputeBreakdownItemizedDerivesSubtotal(t *testing.T) {
	svc := NewService(nil)

	req := &CreateExpenseRequest{
		GroupID:     1,
		Description: "Pizza night",
		Currency:    "USD",
		Payer:       userRef(1),
		SplitType:   "ITEMIZED",
		Participants: []*SplitParticipant{
			{Participant: userRef(1)},
			{Participant: guestRef(1)},
		},
		Items: []*AssignedItemRequest{
			{ID: "a", Name: "Margherita Pizza", Price: d("14.50"), Assignees: []ParticipantRefRequest{userRef(1), guestRef(1)}},
			{ID: "b", Name: "Craft IPA", Price: d("7.25"), Assignees: []ParticipantRefRequest{userRef(1)}},
		},
	}

	breakdown, err := svc.ComputeBreakdown(req)
	require.NoError(t, err)

	byRef := map[roster.ParticipantRef]split.Allocation{}
	for _, a := range breakdown.Allocations {
		byRef[a.Participant] = a
	}
	assert.True(t, byRef[roster.ParticipantRef{Kind: roster.KindUser, ID: 1}].Total.Equal(d("14.50")))
	assert.True(t, byRef[roster.ParticipantRef{Kind: roster.KindGuest, ID: 1}].Total.Equal(d("7.25")))
	assert.True(t, breakdown.Total.Equal(d("21.75")))
}

func TestComputeBreakdownItemizedRequiresItems(t *testing.T) {
	svc := NewService(nil)

	req := &CreateExpenseRequest{
		Currency:     "USD",
		SplitType:    "ITEMIZED",
		Participants: []*SplitParticipant{{Participant: userRef(1)}},
	}

	_, err := svc.ComputeBreakdown(req)
	assert.ErrorIs(t, err, ErrItemsRequired)
}

func TestComputeBreakdownSurfacesUnassignedItems(t *testing.T) {
	svc := NewService(nil)

	req := &CreateExpenseRequest{
		Currency:  "USD",
		SplitType: "ITEMIZED",
		Participants: []*SplitParticipant{
			{Participant: userRef(1)},
		},
		Items: []*AssignedItemRequest{
			{ID: "orphan", Name: "Salad", Price: d("10.00")},
		},
	}

	_, err := svc.ComputeBreakdown(req)

	var unassigned *split.UnassignedItemsError
	require.ErrorAs(t, err, &unassigned)
	assert.Equal(t, []string{"orphan"}, unassigned.ItemIDs)
}

func TestComputeBreakdownCustomGratuity(t *testing.T) {
	svc := NewService(nil)

	req := &CreateExpenseRequest{
		Currency:  "USD",
		SplitType: "CUSTOM",
		Payer:     userRef(1),
		Subtotal:  d("20.00"),
		Participants: []*SplitParticipant{
			{Participant: userRef(1), Amount: dptr("12.00")},
			{Participant: userRef(2), Amount: dptr("8.00")},
		},
		TaxMode:      "EQUAL",
		Tax:          d("2.00"),
		GratuityMode: "CUSTOM",
		CustomGratuity: []*ParticipantAmount{
			{Participant: userRef(1), Amount: d("3.00")},
		},
	}

	breakdown, err := svc.ComputeBreakdown(req)
	require.NoError(t, err)

	// 20 subtotal + 2 tax + 3 custom tip
	assert.True(t, breakdown.Total.Equal(d("25.00")))
	assert.True(t, breakdown.Allocations[0].Total.Equal(d("16.00")))
	assert.True(t, breakdown.Allocations[1].Total.Equal(d("9.00")))
}

func TestSumInvariantCatchesDriftedAllocations(t *testing.T) {
	svc := NewService(nil)

	req := &CreateExpenseRequest{
		GroupID:     1,
		Description: "Dinner",
		Currency:    "USD",
		Payer:       userRef(1),
		SplitType:   "EQUAL",
		Subtotal:    d("30.00"),
		Participants: []*SplitParticipant{
			{Participant: userRef(1)},
			{Participant: userRef(2)},
		},
		Tax:      d("3.00"),
		Gratuity: d("6.00"),
	}

	breakdown, err := svc.ComputeBreakdown(req)
	require.NoError(t, err)
	require.NoError(t, verifySumInvariant(req, breakdown))

	breakdown.Allocations[0].Total = breakdown.Allocations[0].Total.Add(d("0.05"))
	assert.ErrorIs(t, verifySumInvariant(req, breakdown), ErrSumInvariant)
}

func TestSumInvariantZeroSubtotalProportionalCharges(t *testing.T) {
	svc := NewService(nil)

	// proportional charges have nothing to spread over, so zero shares
	// reconcile with a zero total
	req := &CreateExpenseRequest{
		GroupID:     1,
		Description: "Voided tab",
		Currency:    "USD",
		Payer:       userRef(1),
		SplitType:   "EQUAL",
		Subtotal:    d("0"),
		Participants: []*SplitParticipant{
			{Participant: userRef(1)},
			{Participant: userRef(2)},
		},
		Tax: d("2.00"),
	}

	breakdown, err := svc.ComputeBreakdown(req)
	require.NoError(t, err)
	assert.True(t, breakdown.Total.IsZero())
	assert.NoError(t, verifySumInvariant(req, breakdown))
}

func TestComputeBreakdownPercentageMismatch(t *testing.T) {
	svc := NewService(nil)

	req := &CreateExpenseRequest{
		Currency:  "USD",
		SplitType: "PERCENTAGE",
		Subtotal:  d("20.00"),
		Participants: []*SplitParticipant{
			{Participant: userRef(1), Percentage: dptr("60")},
			{Participant: userRef(2), Percentage: dptr("30")},
		},
	}

	_, err := svc.ComputeBreakdown(req)

	var mismatch *split.PercentageMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.True(t, mismatch.Sum.Equal(d("90")))
}
