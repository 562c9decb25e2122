package expense

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for development and tests. One mutex
// guards all three event sets, so expense-plus-shares writes and deletes are
// single critical sections and readers always see a consistent snapshot.
type MemoryStore struct {
	mu       sync.RWMutex
	expenses map[uuid.UUID]*Expense
	shares   map[uuid.UUID][]*ExpenseShare
	payments []*Payment
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		expenses: make(map[uuid.UUID]*Expense),
		shares:   make(map[uuid.UUID][]*ExpenseShare),
	}
}

var _ Store = (*MemoryStore)(nil)

// CreateExpenseWithShares stores the expense and its shares atomically
func (m *MemoryStore) CreateExpenseWithShares(_ context.Context, expense *Expense, shares []*ExpenseShare) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := *expense
	m.expenses[e.ID] = &e

	copied := make([]*ExpenseShare, len(shares))
	for i, s := range shares {
		c := *s
		copied[i] = &c
	}
	m.shares[e.ID] = copied
	return nil
}

// GetExpenseByID retrieves an expense, or nil when absent
func (m *MemoryStore) GetExpenseByID(_ context.Context, id uuid.UUID) (*Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	expense, ok := m.expenses[id]
	if !ok {
		return nil, nil
	}
	e := *expense
	return &e, nil
}

// GetExpenseShares retrieves the shares of one expense
func (m *MemoryStore) GetExpenseShares(_ context.Context, expenseID uuid.UUID) ([]*ExpenseShare, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyShares(m.shares[expenseID]), nil
}

// ListSharesForExpenses retrieves the shares of a set of expenses
func (m *MemoryStore) ListSharesForExpenses(_ context.Context, expenseIDs []uuid.UUID) ([]*ExpenseShare, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var shares []*ExpenseShare
	for _, id := range expenseIDs {
		shares = append(shares, copyShares(m.shares[id])...)
	}
	return shares, nil
}

// SearchExpenses retrieves expenses matching the filter, newest first
func (m *MemoryStore) SearchExpenses(_ context.Context, filter *Filter) ([]*Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var expenses []*Expense
	for _, expense := range m.expenses {
		if !m.matches(expense, filter) {
			continue
		}
		e := *expense
		expenses = append(expenses, &e)
	}

	sort.Slice(expenses, func(i, j int) bool {
		if !expenses[i].Date.Equal(expenses[j].Date) {
			return expenses[i].Date.After(expenses[j].Date)
		}
		return expenses[i].ID.String() < expenses[j].ID.String()
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(expenses) {
			return nil, nil
		}
		expenses = expenses[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(expenses) {
		expenses = expenses[:filter.Limit]
	}
	return expenses, nil
}

func (m *MemoryStore) matches(expense *Expense, filter *Filter) bool {
	if filter.GroupID != nil && expense.GroupID != *filter.GroupID {
		return false
	}
	if filter.PaidBy != nil && expense.PaidBy != *filter.PaidBy {
		return false
	}
	if filter.Category != nil && (expense.Category == nil || *expense.Category != *filter.Category) {
		return false
	}
	if filter.DateFrom != nil && expense.Date.Before(*filter.DateFrom) {
		return false
	}
	if filter.DateTo != nil && expense.Date.After(*filter.DateTo) {
		return false
	}
	if filter.InvolvingUser != nil {
		userID := *filter.InvolvingUser
		if expense.PaidBy != userID && expense.CreatedBy != userID && !m.hasShare(expense.ID, userID) {
			return false
		}
	}
	return true
}

func (m *MemoryStore) hasShare(expenseID, userID uuid.UUID) bool {
	for _, share := range m.shares[expenseID] {
		if share.UserID == userID {
			return true
		}
	}
	return false
}

// CountGroupExpenses counts a group's expenses
func (m *MemoryStore) CountGroupExpenses(_ context.Context, groupID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := 0
	for _, expense := range m.expenses {
		if expense.GroupID == groupID {
			total++
		}
	}
	return total, nil
}

// DeleteExpense removes the expense and its shares together
func (m *MemoryStore) DeleteExpense(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.expenses[id]; !ok {
		return ErrExpenseNotFound
	}
	delete(m.expenses, id)
	delete(m.shares, id)
	return nil
}

// CreatePayment appends a payment event
func (m *MemoryStore) CreatePayment(_ context.Context, payment *Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := *payment
	m.payments = append(m.payments, &p)
	return nil
}

// ListGroupPayments retrieves all payments for a group, oldest first
func (m *MemoryStore) ListGroupPayments(_ context.Context, groupID uuid.UUID) ([]*Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var payments []*Payment
	for _, payment := range m.payments {
		if payment.GroupID == groupID {
			p := *payment
			payments = append(payments, &p)
		}
	}
	return payments, nil
}

func copyShares(shares []*ExpenseShare) []*ExpenseShare {
	copied := make([]*ExpenseShare, len(shares))
	for i, s := range shares {
		c := *s
		copied[i] = &c
	}
	return copied
}
