package split

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/jharmon/splittab/internal/roster"
	"github.com/jharmon/splittab/pkg/money"
)

// ChargeMode selects how a tax or gratuity amount is spread across people
type ChargeMode string

const (
	ChargeProportional ChargeMode = "PROPORTIONAL"
	ChargeEqual        ChargeMode = "EQUAL"
	ChargeCustom       ChargeMode = "CUSTOM" // gratuity only
)

var (
	ErrCustomTaxMode     = errors.New("tax supports proportional or equal allocation only")
	ErrUnknownChargeMode = errors.New("unknown charge allocation mode")
)

// ChargeConfig describes the tax and gratuity to distribute on top of the
// per-person subtotals
type ChargeConfig struct {
	Tax            decimal.Decimal
	TaxMode        ChargeMode
	Gratuity       decimal.Decimal
	GratuityMode   ChargeMode
	CustomGratuity map[roster.ParticipantRef]decimal.Decimal
}

// Allocation is one participant's final breakdown
type Allocation struct {
	Participant roster.ParticipantRef `json:"participant"`
	Subtotal    decimal.Decimal       `json:"subtotal"`
	Tax         decimal.Decimal       `json:"tax"`
	Gratuity    decimal.Decimal       `json:"gratuity"`
	Total       decimal.Decimal       `json:"total"`
}

// Allocator distributes tax and gratuity over computed subtotals
type Allocator struct {
	exponent int32
}

// NewAllocator creates an allocator rounding to the given minor-unit exponent
func NewAllocator(exponent int32) *Allocator {
	return &Allocator{exponent: exponent}
}

// Allocate distributes the configured charges and returns per-person totals
// that sum exactly to subtotal + tax + gratuity. A custom gratuity is taken
// as entered, so its sum is whatever the user typed; callers surface that
// figure before commit rather than absorbing a shortfall silently.
func (a *Allocator) Allocate(subtotals []SplitOutput, cfg ChargeConfig) ([]Allocation, error) {
	if len(subtotals) == 0 {
		return nil, ErrNoParticipants
	}
	if cfg.TaxMode == ChargeCustom {
		return nil, ErrCustomTaxMode
	}

	grand := decimal.Zero
	for _, s := range subtotals {
		grand = grand.Add(s.Amount)
	}

	taxShares, taxTotal, err := a.spread(subtotals, grand, cfg.Tax, cfg.TaxMode, nil)
	if err != nil {
		return nil, err
	}
	tipShares, tipTotal, err := a.spread(subtotals, grand, cfg.Gratuity, cfg.GratuityMode, cfg.CustomGratuity)
	if err != nil {
		return nil, err
	}

	allocations := make([]Allocation, len(subtotals))
	raws := make([]decimal.Decimal, len(subtotals))
	for i, s := range subtotals {
		raws[i] = s.Amount.Add(taxShares[i]).Add(tipShares[i])
	}

	// Whole-expense residual pass so the persisted totals reconcile even
	// when an upstream share was not minor-unit exact.
	target := grand.Add(taxTotal).Add(tipTotal)
	totals := money.Reconcile(target, raws, a.exponent)

	for i, s := range subtotals {
		allocations[i] = Allocation{
			Participant: s.Participant,
			Subtotal:    s.Amount,
			Tax:         taxShares[i],
			Gratuity:    tipShares[i],
			Total:       totals[i],
		}
	}

	return allocations, nil
}

// spread divides one charge under the selected mode. It returns the shares
// and the effective charge total (for custom gratuity, the sum of what was
// entered).
func (a *Allocator) spread(subtotals []SplitOutput, grand, charge decimal.Decimal, mode ChargeMode, custom map[roster.ParticipantRef]decimal.Decimal) ([]decimal.Decimal, decimal.Decimal, error) {
	n := len(subtotals)

	switch mode {
	case ChargeProportional:
		shares := make([]decimal.Decimal, n)
		if grand.IsZero() {
			// Nothing was consumed; nobody owes a share of this charge.
			return shares, decimal.Zero, nil
		}
		raws := make([]decimal.Decimal, n)
		for i, s := range subtotals {
			raws[i] = s.Amount.Mul(charge).Div(grand)
		}
		return money.Reconcile(charge, raws, a.exponent), charge, nil

	case ChargeEqual:
		return money.Split(charge, n, a.exponent), charge, nil

	case ChargeCustom:
		shares := make([]decimal.Decimal, n)
		total := decimal.Zero
		for i, s := range subtotals {
			if amt, ok := custom[s.Participant]; ok {
				shares[i] = money.Round(amt, a.exponent)
			} else {
				shares[i] = decimal.Zero
			}
			total = total.Add(shares[i])
		}
		return shares, total, nil

	default:
		return nil, decimal.Zero, ErrUnknownChargeMode
	}
}
