package settlement

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jharmon/splittab/internal/roster"
)

// Pure balance math over split records. Balances are a derived view: they
// are never stored, so they cannot drift from the splits they summarize.

// NetBetween nets every unsettled obligation between self and other into one
// signed amount: positive means other owes self.
func NetBetween(self, other roster.ParticipantRef, records []SplitRecord) decimal.Decimal {
	net := decimal.Zero
	for _, rec := range records {
		if rec.IsSettled {
			continue
		}
		switch {
		case rec.Payer == self && rec.Debtor == other:
			net = net.Add(rec.Amount)
		case rec.Payer == other && rec.Debtor == self:
			net = net.Sub(rec.Amount)
		}
	}
	return net
}

// PairBalanceBetween collapses the net into an amount and a direction from
// self's point of view
func PairBalanceBetween(self, other roster.ParticipantRef, records []SplitRecord) PairBalance {
	net := NetBetween(self, other, records)

	balance := PairBalance{Other: other, Amount: net.Abs(), Direction: DirectionEven}
	switch {
	case net.IsPositive():
		balance.Direction = DirectionOwedToYou
	case net.IsNegative():
		balance.Direction = DirectionYouOwe
	}
	return balance
}

// Summarize aggregates self's unsettled position against every counterparty
// in the records into "you owe" and "owed to you" totals. Even balances are
// dropped from the per-pair list.
func Summarize(self roster.ParticipantRef, records []SplitRecord) *MemberSummary {
	others := make(map[roster.ParticipantRef]bool)
	for _, rec := range records {
		if rec.IsSettled {
			continue
		}
		if rec.Payer == self && rec.Debtor != self {
			others[rec.Debtor] = true
		}
		if rec.Debtor == self && rec.Payer != self {
			others[rec.Payer] = true
		}
	}

	refs := make([]roster.ParticipantRef, 0, len(others))
	for ref := range others {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Kind != refs[j].Kind {
			return refs[i].Kind < refs[j].Kind
		}
		return refs[i].ID < refs[j].ID
	})

	summary := &MemberSummary{
		YouOwe:    decimal.Zero,
		OwedToYou: decimal.Zero,
		Balances:  []PairBalance{},
	}
	for _, other := range refs {
		balance := PairBalanceBetween(self, other, records)
		if balance.Direction == DirectionEven {
			continue
		}
		if balance.Direction == DirectionYouOwe {
			summary.YouOwe = summary.YouOwe.Add(balance.Amount)
		} else {
			summary.OwedToYou = summary.OwedToYou.Add(balance.Amount)
		}
		summary.Balances = append(summary.Balances, balance)
	}

	return summary
}

// PlanSettleUp selects every split between the pair currently in the
// opposite settled state and produces the optimistic toggles that flip them.
// The expected pre-image makes concurrent settle attempts collide instead of
// double-booking.
func PlanSettleUp(self, other roster.ParticipantRef, records []SplitRecord, settled bool) ([]SplitToggle, decimal.Decimal) {
	var toggles []SplitToggle
	amount := decimal.Zero

	for _, rec := range records {
		betweenPair := (rec.Payer == self && rec.Debtor == other) ||
			(rec.Payer == other && rec.Debtor == self)
		if !betweenPair || rec.IsSettled == settled {
			continue
		}
		toggles = append(toggles, SplitToggle{
			SplitID:  rec.SplitID,
			Expected: rec.IsSettled,
			Settled:  settled,
		})
		amount = amount.Add(rec.Amount)
	}

	return toggles, amount
}
