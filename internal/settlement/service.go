package settlement

import (
	"context"

	"github.com/jharmon/splittab/internal/roster"
)

// Service handles settlement business logic
type Service struct {
	repo *Repository
}

// NewService creates a new settlement service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// BalanceBetween returns the single net amount owed between two participants
// in a group
func (s *Service) BalanceBetween(ctx context.Context, groupID int64, self, other roster.ParticipantRef) (*PairBalance, error) {
	records, err := s.repo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	balance := PairBalanceBetween(self, other, records)
	return &balance, nil
}

// Summary returns a member's aggregate position across the group
func (s *Service) Summary(ctx context.Context, groupID int64, self roster.ParticipantRef) (*MemberSummary, error) {
	records, err := s.repo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	return Summarize(self, records), nil
}

// SetSplitSettled marks one split settled or unsettled. Idempotent in both
// directions.
func (s *Service) SetSplitSettled(ctx context.Context, splitID int64, settled bool) error {
	return s.repo.SetSettled(ctx, splitID, settled)
}

// SettleUp flips every split between the pair to the requested state in one
// transaction. With settled=true it clears the debt both ways; with
// settled=false it reinstates it. A concurrent flip on any of the rows fails
// the whole batch with a ConflictError.
func (s *Service) SettleUp(ctx context.Context, groupID int64, self, other roster.ParticipantRef, settled bool) (*SettleUpResult, error) {
	if self == other {
		return nil, ErrCannotSettleSelf
	}

	records, err := s.repo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	toggles, amount := PlanSettleUp(self, other, records, settled)
	if len(toggles) == 0 {
		return nil, ErrNothingToSettle
	}

	if err := s.repo.ApplyToggles(ctx, toggles); err != nil {
		return nil, err
	}

	result := &SettleUpResult{
		SplitIDs: make([]int64, len(toggles)),
		Amount:   amount,
		Settled:  settled,
	}
	for i, t := range toggles {
		result.SplitIDs[i] = t.SplitID
	}
	return result, nil
}
