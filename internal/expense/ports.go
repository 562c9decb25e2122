package expense

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence boundary for the ledger. The core depends only on
// this interface, never on a concrete database.
type Store interface {
	// CreateExpenseWithShares persists an expense and its full share set as
	// one atomic unit: a concurrent balance computation must never observe
	// the expense without its shares.
	CreateExpenseWithShares(ctx context.Context, expense *Expense, shares []*ExpenseShare) error
	GetExpenseByID(ctx context.Context, id uuid.UUID) (*Expense, error)
	GetExpenseShares(ctx context.Context, expenseID uuid.UUID) ([]*ExpenseShare, error)
	ListSharesForExpenses(ctx context.Context, expenseIDs []uuid.UUID) ([]*ExpenseShare, error)
	SearchExpenses(ctx context.Context, filter *Filter) ([]*Expense, error)
	CountGroupExpenses(ctx context.Context, groupID uuid.UUID) (int, error)
	// DeleteExpense removes an expense together with its shares.
	DeleteExpense(ctx context.Context, id uuid.UUID) error

	CreatePayment(ctx context.Context, payment *Payment) error
	ListGroupPayments(ctx context.Context, groupID uuid.UUID) ([]*Payment, error)
}

// UserDirectory resolves display names. Used only for presentation, never
// for computation correctness.
type UserDirectory interface {
	ResolveUsername(ctx context.Context, userID uuid.UUID) (string, error)
}

// GroupDirectory exposes the group facts the ledger presents alongside its
// computed results.
type GroupDirectory interface {
	GroupName(ctx context.Context, groupID uuid.UUID) (string, error)
	GroupCurrency(ctx context.Context, groupID uuid.UUID) (string, error)
	ListUserGroupIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	// IsMember reports whether the user belongs to the group. Ledger writes
	// are restricted to members.
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
}

// BalanceCache caches the balance projection per group. Implementations must
// tolerate misses; the service invalidates synchronously on every write that
// touches the group's events.
type BalanceCache interface {
	Get(ctx context.Context, groupID uuid.UUID) (*GroupBalance, bool)
	Set(ctx context.Context, groupID uuid.UUID, balance *GroupBalance)
	Invalidate(ctx context.Context, groupID uuid.UUID)
}

// Notifier receives ledger events for delivery to users. Failures are the
// notifier's concern; the ledger does not fail a write over a notification.
type Notifier interface {
	ExpenseAdded(ctx context.Context, recipientID uuid.UUID, expense *Expense)
	DebtSettled(ctx context.Context, recipientID uuid.UUID, payment *Payment)
}
