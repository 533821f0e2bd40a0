package draft

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jharmon/splittab/internal/expense"
	"github.com/jharmon/splittab/internal/receipt"
	"github.com/jharmon/splittab/internal/roster"
)

// Service owns the in-memory draft sessions and drives the wizard. All
// computation is delegated to the expense service so a preview can never
// disagree with what commit persists.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	expenses *expense.Service
}

// NewService creates a new draft service
func NewService(expenses *expense.Service) *Service {
	return &Service{
		sessions: make(map[string]*Session),
		expenses: expenses,
	}
}

// Create opens a draft session, optionally seeded with parsed receipt data.
// Seeded or not, the draft starts at item entry: parser output is a guess
// the user has to confirm.
func (s *Service) Create(groupID int64, currency string, seed *receipt.Data) *Session {
	now := time.Now().UTC()
	session := &Session{
		ID:          uuid.NewString(),
		GroupID:     groupID,
		Currency:    strings.ToUpper(currency),
		State:       StateEnterItems,
		Items:       []receipt.Item{},
		Assignments: make(map[string][]roster.ParticipantRef),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if seed != nil {
		session.Items = append(session.Items, seed.Items...)
		session.Subtotal = seed.Subtotal
		session.Tax = seed.Tax
		session.Gratuity = seed.Gratuity
		if seed.Restaurant != nil {
			session.Restaurant = *seed.Restaurant
		}
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session
}

// Get returns a session, or (nil, ErrSessionNotFound)
func (s *Service) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Delete abandons a session
func (s *Service) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// withSession runs fn under the write lock and bumps the session timestamp
func (s *Service) withSession(id string, fn func(*Session) error) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	session.UpdatedAt = time.Now().UTC()
	return session, nil
}

// Advance moves the wizard to the requested step if the transition table
// allows it
func (s *Service) Advance(id string, to State) (*Session, error) {
	return s.withSession(id, func(session *Session) error {
		for _, next := range transitions[session.State] {
			if next == to {
				session.State = to
				return nil
			}
		}
		return &InvalidTransitionError{From: session.State, To: to}
	})
}

func validItem(name string, price decimal.Decimal) bool {
	return strings.TrimSpace(name) != "" && price.IsPositive()
}

// AddItem appends a draft item. Duplicate names are allowed; two colas are
// two items.
func (s *Service) AddItem(id, name string, price decimal.Decimal, category receipt.Category) (*Session, error) {
	return s.withSession(id, func(session *Session) error {
		if !validItem(name, price) {
			return ErrItemInvalid
		}
		if category == "" {
			category = receipt.GuessCategory(name)
		}
		session.Items = append(session.Items, receipt.Item{
			ID:       uuid.NewString(),
			Name:     strings.TrimSpace(name),
			Price:    price,
			Category: category,
		})
		return nil
	})
}

// UpdateItem replaces an item's fields in place
func (s *Service) UpdateItem(id, itemID, name string, price decimal.Decimal, category receipt.Category) (*Session, error) {
	return s.withSession(id, func(session *Session) error {
		if !validItem(name, price) {
			return ErrItemInvalid
		}
		for i := range session.Items {
			if session.Items[i].ID == itemID {
				session.Items[i].Name = strings.TrimSpace(name)
				session.Items[i].Price = price
				if category != "" {
					session.Items[i].Category = category
				}
				return nil
			}
		}
		return ErrItemNotFound
	})
}

// RemoveItem drops an item and any assignments referencing it
func (s *Service) RemoveItem(id, itemID string) (*Session, error) {
	return s.withSession(id, func(session *Session) error {
		for i := range session.Items {
			if session.Items[i].ID == itemID {
				session.Items = append(session.Items[:i], session.Items[i+1:]...)
				delete(session.Assignments, itemID)
				return nil
			}
		}
		return ErrItemNotFound
	})
}

// SetStrategy chooses the split strategy and the participant entries.
// Choosing a strategy resets assignments and the charge configuration; both
// only mean something under the strategy they were made for.
func (s *Service) SetStrategy(id, splitType string, participants []*expense.SplitParticipant) (*Session, error) {
	return s.withSession(id, func(session *Session) error {
		session.SplitType = strings.ToUpper(splitType)
		session.Participants = participants
		session.Assignments = make(map[string][]roster.ParticipantRef)
		session.TaxMode = ""
		session.GratuityMode = ""
		session.CustomGratuity = nil
		return nil
	})
}

// ToggleAssignment adds or removes one participant on one item
func (s *Service) ToggleAssignment(id, itemID string, ref roster.ParticipantRef) (*Session, error) {
	return s.withSession(id, func(session *Session) error {
		found := false
		for i := range session.Items {
			if session.Items[i].ID == itemID {
				found = true
				break
			}
		}
		if !found {
			return ErrItemNotFound
		}

		assignees := session.Assignments[itemID]
		for i, a := range assignees {
			if a == ref {
				session.Assignments[itemID] = append(assignees[:i], assignees[i+1:]...)
				return nil
			}
		}
		session.Assignments[itemID] = append(assignees, ref)
		return nil
	})
}

// ChargesUpdate carries the tip-step amounts
type ChargesUpdate struct {
	Subtotal       decimal.Decimal
	Tax            decimal.Decimal
	TaxMode        string
	Gratuity       decimal.Decimal
	GratuityMode   string
	CustomGratuity []*expense.ParticipantAmount
}

// SetCharges records subtotal, tax and gratuity amounts and modes
func (s *Service) SetCharges(id string, update ChargesUpdate) (*Session, error) {
	return s.withSession(id, func(session *Session) error {
		session.Subtotal = update.Subtotal
		session.Tax = update.Tax
		session.TaxMode = update.TaxMode
		session.Gratuity = update.Gratuity
		session.GratuityMode = update.GratuityMode
		session.CustomGratuity = update.CustomGratuity
		return nil
	})
}

// buildRequest assembles the expense request a session describes
func buildRequest(session *Session, description string, payer expense.ParticipantRefRequest, date string) *expense.CreateExpenseRequest {
	req := &expense.CreateExpenseRequest{
		GroupID:        session.GroupID,
		Description:    description,
		Currency:       session.Currency,
		Date:           date,
		Payer:          payer,
		SplitType:      session.SplitType,
		Subtotal:       session.Subtotal,
		Participants:   session.Participants,
		Tax:            session.Tax,
		TaxMode:        session.TaxMode,
		Gratuity:       session.Gratuity,
		GratuityMode:   session.GratuityMode,
		CustomGratuity: session.CustomGratuity,
	}

	if req.SplitType == "ITEMIZED" {
		req.Items = make([]*expense.AssignedItemRequest, len(session.Items))
		for i, item := range session.Items {
			assignees := make([]expense.ParticipantRefRequest, len(session.Assignments[item.ID]))
			for j, ref := range session.Assignments[item.ID] {
				assignees[j] = expense.ParticipantRefRequest{Kind: string(ref.Kind), ID: ref.ID}
			}
			req.Items[i] = &expense.AssignedItemRequest{
				ID:        item.ID,
				Name:      item.Name,
				Price:     item.Price,
				Assignees: assignees,
			}
		}
	}

	return req
}

// Preview computes the current breakdown without persisting anything. It
// shares the commit computation, so what the user reviews is what gets
// stored.
func (s *Service) Preview(id string) (*expense.Breakdown, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.SplitType == "" {
		return nil, ErrStrategyNotSet
	}

	return s.expenses.ComputeBreakdown(buildRequest(session, "preview", expense.ParticipantRefRequest{}, ""))
}

// Commit persists the draft as an expense. The session is removed only after
// the expense is stored; on any failure the draft survives untouched so the
// user can retry.
func (s *Service) Commit(ctx context.Context, id, description string, payer expense.ParticipantRefRequest, date string) (*expense.ExpenseWithSplits, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.SplitType == "" {
		return nil, ErrStrategyNotSet
	}
	if session.State != StateSummary {
		return nil, ErrNotAtSummary
	}

	result, err := s.expenses.Create(ctx, buildRequest(session, description, payer, date))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()

	return result, nil
}
