package split

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jharmon/splittab/internal/roster"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dptr(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func user(id int64) roster.ParticipantRef {
	return roster.ParticipantRef{Kind: roster.KindUser, ID: id}
}

func guest(id int64) roster.ParticipantRef {
	return roster.ParticipantRef{Kind: roster.KindGuest, ID: id}
}

func inputs(refs ...roster.ParticipantRef) []SplitInput {
	out := make([]SplitInput, len(refs))
	for i, r := range refs {
		out[i] = SplitInput{Participant: r}
	}
	return out
}

func sumOutputs(t *testing.T, outputs []SplitOutput) decimal.Decimal {
	t.Helper()
	sum := decimal.Zero
	for _, o := range outputs {
		sum = sum.Add(o.Amount)
	}
	return sum
}

func TestFactoryCreate(t *testing.T) {
	f := NewFactory(2)

	for _, st := range []SplitType{SplitTypeEqual, SplitTypePercentage, SplitTypeCustom} {
		s, err := f.Create(st)
		require.NoError(t, err)
		assert.Equal(t, st, s.Type())
	}

	_, err := f.Create(SplitTypeItemized)
	assert.ErrorIs(t, err, ErrItemizedNeedsItems)

	_, err = f.CreateFromString("SOMETHING_ELSE")
	assert.Error(t, err)

	s, err := f.CreateFromString("equal")
	require.NoError(t, err)
	assert.Equal(t, SplitTypeEqual, s.Type())
}

func TestEqualSplitDeterministicResidual(t *testing.T) {
	f := NewFactory(2)
	s, _ := f.Create(SplitTypeEqual)

	outputs, err := s.Calculate(d("100.00"), inputs(user(1), user(2), guest(1)))
	require.NoError(t, err)
	require.Len(t, outputs, 3)

	assert.True(t, outputs[0].Amount.Equal(d("33.34")))
	assert.True(t, outputs[1].Amount.Equal(d("33.33")))
	assert.True(t, outputs[2].Amount.Equal(d("33.33")))
	assert.True(t, sumOutputs(t, outputs).Equal(d("100.00")))
}

func TestEqualSplitValidation(t *testing.T) {
	f := NewFactory(2)
	s, _ := f.Create(SplitTypeEqual)

	_, err := s.Calculate(d("10.00"), nil)
	assert.ErrorIs(t, err, ErrNoParticipants)

	_, err = s.Calculate(d("-1.00"), inputs(user(1)))
	assert.ErrorIs(t, err, ErrNegativeTotal)
}

func TestPercentageSplit(t *testing.T) {
	f := NewFactory(2)
	s, _ := f.Create(SplitTypePercentage)

	participants := []SplitInput{
		{Participant: user(1), Percentage: dptr("50")},
		{Participant: user(2), Percentage: dptr("50")},
	}

	outputs, err := s.Calculate(d("20.00"), participants)
	require.NoError(t, err)
	assert.True(t, outputs[0].Amount.Equal(d("10.00")))
	assert.True(t, outputs[1].Amount.Equal(d("10.00")))
}

func TestPercentageMismatchReported(t *testing.T) {
	f := NewFactory(2)
	s, _ := f.Create(SplitTypePercentage)

	participants := []SplitInput{
		{Participant: user(1), Percentage: dptr("60")},
		{Participant: user(2), Percentage: dptr("30")},
	}

	_, err := s.Calculate(d("20.00"), participants)

	var mismatch *PercentageMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.True(t, mismatch.Sum.Equal(d("90")))
}

func TestPercentageSplitOddShares(t *testing.T) {
	f := NewFactory(2)
	s, _ := f.Create(SplitTypePercentage)

	participants := []SplitInput{
		{Participant: user(1), Percentage: dptr("33.33")},
		{Participant: user(2), Percentage: dptr("33.33")},
		{Participant: user(3), Percentage: dptr("33.34")},
	}

	outputs, err := s.Calculate(d("50.00"), participants)
	require.NoError(t, err)
	assert.True(t, sumOutputs(t, outputs).Equal(d("50.00")), "reconciled shares must hit the total exactly")
}

func TestPercentageValidation(t *testing.T) {
	f := NewFactory(2)
	s, _ := f.Create(SplitTypePercentage)

	_, err := s.Calculate(d("20.00"), inputs(user(1)))
	assert.ErrorIs(t, err, ErrMissingPercentage)

	_, err = s.Calculate(d("20.00"), []SplitInput{{Participant: user(1), Percentage: dptr("120")}})
	assert.ErrorIs(t, err, ErrPercentageOutOfRange)
}

func TestCustomSplit(t *testing.T) {
	f := NewFactory(2)
	s, _ := f.Create(SplitTypeCustom)

	participants := []SplitInput{
		{Participant: user(1), Amount: dptr("12.75")},
		{Participant: guest(1), Amount: dptr("7.25")},
	}

	outputs, err := s.Calculate(d("20.00"), participants)
	require.NoError(t, err)
	assert.True(t, outputs[0].Amount.Equal(d("12.75")))
	assert.True(t, outputs[1].Amount.Equal(d("7.25")))
}

func TestCustomSplitMismatchShowsBothValues(t *testing.T) {
	f := NewFactory(2)
	s, _ := f.Create(SplitTypeCustom)

	participants := []SplitInput{
		{Participant: user(1), Amount: dptr("12.00")},
		{Participant: user(2), Amount: dptr("5.00")},
	}

	_, err := s.Calculate(d("20.00"), participants)

	var mismatch *AmountMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.True(t, mismatch.Expected.Equal(d("20.00")))
	assert.True(t, mismatch.Actual.Equal(d("17.00")))
}

func TestCustomSplitWithinToleranceAccepted(t *testing.T) {
	f := NewFactory(2)
	s, _ := f.Create(SplitTypeCustom)

	participants := []SplitInput{
		{Participant: user(1), Amount: dptr("10.00")},
		{Participant: user(2), Amount: dptr("10.01")},
	}

	_, err := s.Calculate(d("20.00"), participants)
	assert.NoError(t, err)
}

func TestItemizedConservation(t *testing.T) {
	f := NewFactory(2)
	items := []AssignedItem{
		{ID: "a", Name: "Margherita Pizza", Price: d("14.50"), Assignees: []roster.ParticipantRef{user(1), user(2), guest(1)}},
		{ID: "b", Name: "Craft IPA", Price: d("7.25"), Assignees: []roster.ParticipantRef{user(2)}},
		{ID: "c", Name: "House Salad", Price: d("10.00"), Assignees: []roster.ParticipantRef{user(1), guest(1)}},
	}
	s := f.Itemized(items)

	outputs, err := s.Calculate(d("31.75"), inputs(user(1), user(2), guest(1)))
	require.NoError(t, err)

	// 14.50/3 = [4.84, 4.83, 4.83]; salad 10.00/2 = [5.00, 5.00]
	byRef := map[roster.ParticipantRef]decimal.Decimal{}
	for _, o := range outputs {
		byRef[o.Participant] = o.Amount
	}
	assert.True(t, byRef[user(1)].Equal(d("9.84")), "user 1 got %s", byRef[user(1)])
	assert.True(t, byRef[user(2)].Equal(d("12.08")), "user 2 got %s", byRef[user(2)])
	assert.True(t, byRef[guest(1)].Equal(d("9.83")), "guest got %s", byRef[guest(1)])

	assert.True(t, sumOutputs(t, outputs).Equal(d("31.75")), "item prices must be conserved exactly")
}

func TestItemizedSharedItemDividedNotDuplicated(t *testing.T) {
	f := NewFactory(2)
	items := []AssignedItem{
		{ID: "a", Name: "Nachos", Price: d("12.00"), Assignees: []roster.ParticipantRef{user(1), user(2)}},
	}
	s := f.Itemized(items)

	outputs, err := s.Calculate(d("12.00"), inputs(user(1), user(2)))
	require.NoError(t, err)
	assert.True(t, outputs[0].Amount.Equal(d("6.00")))
	assert.True(t, outputs[1].Amount.Equal(d("6.00")))
}

func TestItemizedUnassignedItemsBlockComputation(t *testing.T) {
	f := NewFactory(2)
	items := []AssignedItem{
		{ID: "a", Name: "Pizza", Price: d("14.50"), Assignees: []roster.ParticipantRef{user(1)}},
		{ID: "b", Name: "Salad", Price: d("10.00")},
		{ID: "c", Name: "Beer", Price: d("7.00")},
	}
	s := f.Itemized(items)

	outputs, err := s.Calculate(d("31.50"), inputs(user(1), user(2)))

	assert.Nil(t, outputs, "no partial split may be returned")
	var unassigned *UnassignedItemsError
	require.ErrorAs(t, err, &unassigned)
	assert.Equal(t, []string{"b", "c"}, unassigned.ItemIDs)
}

func TestItemizedUnknownAssigneeRejected(t *testing.T) {
	f := NewFactory(2)
	items := []AssignedItem{
		{ID: "a", Name: "Pizza", Price: d("14.50"), Assignees: []roster.ParticipantRef{user(99)}},
	}
	s := f.Itemized(items)

	_, err := s.Calculate(d("14.50"), inputs(user(1)))
	assert.True(t, errors.Is(err, ErrUnknownAssignee))
}

func TestItemizedItemSumMustMatchTotal(t *testing.T) {
	f := NewFactory(2)
	items := []AssignedItem{
		{ID: "a", Name: "Pizza", Price: d("14.50"), Assignees: []roster.ParticipantRef{user(1)}},
	}
	s := f.Itemized(items)

	_, err := s.Calculate(d("99.00"), inputs(user(1)))

	var mismatch *AmountMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.True(t, mismatch.Actual.Equal(d("14.50")))
}
