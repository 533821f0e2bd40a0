package expense

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jharmon/splittab/internal/expense/split"
	"github.com/jharmon/splittab/internal/roster"
	"github.com/jharmon/splittab/pkg/money"
)

// Common errors
var (
	ErrExpenseNotFound = errors.New("expense not found")
	ErrItemsRequired   = errors.New("itemized split requires at least one item")
	ErrSumInvariant    = errors.New("splits do not sum to the expense total")
	ErrInvalidDate     = errors.New("invalid expense date")
)

// Breakdown is the fully computed per-person view of an expense before it is
// persisted: strategy subtotals plus allocated tax and gratuity.
type Breakdown struct {
	Subtotals   []split.SplitOutput `json:"subtotals"`
	Allocations []split.Allocation  `json:"allocations"`
	Total       decimal.Decimal     `json:"total"`
}

// Service handles expense business logic
type Service struct {
	repo *Repository
}

// NewService creates a new expense service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// ComputeBreakdown runs the split strategy and the charge allocator over a
// request without touching storage. It is pure: draft previews and the
// commit path both go through here so they can never disagree.
func (s *Service) ComputeBreakdown(req *CreateExpenseRequest) (*Breakdown, error) {
	exponent := money.Exponent(req.Currency)
	factory := split.NewFactory(exponent)

	subtotal := req.Subtotal
	var strategy split.Strategy
	var err error

	if split.SplitType(req.SplitType) == split.SplitTypeItemized {
		if len(req.Items) == 0 {
			return nil, ErrItemsRequired
		}
		items := make([]split.AssignedItem, len(req.Items))
		itemSum := decimal.Zero
		for i, item := range req.Items {
			items[i] = item.ToAssignedItem()
			itemSum = itemSum.Add(item.Price)
		}
		if subtotal.IsZero() {
			subtotal = itemSum
		}
		strategy = factory.Itemized(items)
	} else {
		strategy, err = factory.CreateFromString(req.SplitType)
		if err != nil {
			return nil, err
		}
	}

	inputs := make([]split.SplitInput, len(req.Participants))
	for i, p := range req.Participants {
		inputs[i] = p.ToSplitInput()
	}

	subtotals, err := strategy.Calculate(subtotal, inputs)
	if err != nil {
		return nil, err
	}

	cfg := split.ChargeConfig{
		Tax:          req.Tax,
		TaxMode:      chargeModeOrDefault(req.TaxMode),
		Gratuity:     req.Gratuity,
		GratuityMode: chargeModeOrDefault(req.GratuityMode),
	}
	if cfg.GratuityMode == split.ChargeCustom {
		cfg.CustomGratuity = make(map[roster.ParticipantRef]decimal.Decimal, len(req.CustomGratuity))
		for _, cg := range req.CustomGratuity {
			cfg.CustomGratuity[cg.Participant.ToRef()] = cg.Amount
		}
	}

	allocations, err := split.NewAllocator(exponent).Allocate(subtotals, cfg)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, a := range allocations {
		total = total.Add(a.Total)
	}

	return &Breakdown{
		Subtotals:   subtotals,
		Allocations: allocations,
		Total:       total,
	}, nil
}

func chargeModeOrDefault(mode string) split.ChargeMode {
	if mode == "" {
		return split.ChargeProportional
	}
	return split.ChargeMode(mode)
}

// expectedTotal recomputes what the expense must come to from the request's
// own amounts: strategy subtotals plus tax and gratuity. Proportional
// charges contribute nothing when there is no subtotal to spread them over,
// mirroring the allocator.
func expectedTotal(req *CreateExpenseRequest, breakdown *Breakdown) decimal.Decimal {
	grand := decimal.Zero
	for _, sub := range breakdown.Subtotals {
		grand = grand.Add(sub.Amount)
	}

	total := grand
	if chargeModeOrDefault(req.TaxMode) != split.ChargeProportional || grand.IsPositive() {
		total = total.Add(req.Tax)
	}
	switch chargeModeOrDefault(req.GratuityMode) {
	case split.ChargeCustom:
		for _, cg := range req.CustomGratuity {
			total = total.Add(cg.Amount)
		}
	case split.ChargeProportional:
		if grand.IsPositive() {
			total = total.Add(req.Gratuity)
		}
	default:
		total = total.Add(req.Gratuity)
	}
	return total
}

// verifySumInvariant rejects a breakdown whose split amounts do not
// reconcile with the requested amounts within one minor unit. The totals are
// computed through independent paths, so a regression in any strategy or in
// the allocator fails here instead of persisting bad splits.
func verifySumInvariant(req *CreateExpenseRequest, breakdown *Breakdown) error {
	sum := decimal.Zero
	for _, a := range breakdown.Allocations {
		sum = sum.Add(a.Total)
	}
	if !money.WithinTolerance(sum, expectedTotal(req, breakdown), money.Exponent(req.Currency)) {
		return ErrSumInvariant
	}
	return nil
}

// Create computes the full breakdown and persists the expense with every
// split atomically. The payer's own split is created settled, so the sum of
// splits always equals the expense total while balances only count what is
// actually owed.
func (s *Service) Create(ctx context.Context, req *CreateExpenseRequest) (*ExpenseWithSplits, error) {
	breakdown, err := s.ComputeBreakdown(req)
	if err != nil {
		return nil, err
	}

	if err := verifySumInvariant(req, breakdown); err != nil {
		return nil, err
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if req.Date != "" {
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, ErrInvalidDate
		}
	}

	payer := req.Payer.ToRef()
	expense := &Expense{
		GroupID:     req.GroupID,
		Description: req.Description,
		Total:       breakdown.Total,
		Currency:    req.Currency,
		Payer:       payer,
		Date:        date,
		SplitType:   req.SplitType,
	}

	percentages := make(map[roster.ParticipantRef]*decimal.Decimal, len(breakdown.Subtotals))
	for _, sub := range breakdown.Subtotals {
		percentages[sub.Participant] = sub.Percentage
	}

	splits := make([]*Split, len(breakdown.Allocations))
	for i, alloc := range breakdown.Allocations {
		splits[i] = &Split{
			Participant: alloc.Participant,
			Amount:      alloc.Total,
			Percentage:  percentages[alloc.Participant],
			IsSettled:   alloc.Participant == payer,
		}
	}

	return s.repo.CreateWithSplits(ctx, expense, splits)
}

// GetByID retrieves an expense with its splits
func (s *Service) GetByID(ctx context.Context, id int64) (*ExpenseWithSplits, error) {
	expense, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, ErrExpenseNotFound
	}

	splits, err := s.repo.GetSplitsByExpenseID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &ExpenseWithSplits{Expense: expense, Splits: splits}, nil
}

// ListByGroupID retrieves expenses for a group
func (s *Service) ListByGroupID(ctx context.Context, groupID int64, filter ListExpensesFilter, page, perPage int) ([]*Expense, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByGroupID(ctx, groupID, filter, perPage, offset)
}

// Delete removes an expense and its splits
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrExpenseNotFound
	}
	return err
}
