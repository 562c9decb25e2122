package expense

import (
	"time"

	"github.com/google/uuid"
)

// Expense represents a shared cost paid by one group member
type Expense struct {
	ID          uuid.UUID `json:"id"`
	GroupID     uuid.UUID `json:"group_id"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	PaidBy      uuid.UUID `json:"paid_by"`
	CreatedBy   uuid.UUID `json:"created_by"`
	Category    *string   `json:"category,omitempty"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Populated via JOIN
	PayerUsername string `json:"payer_username,omitempty"`
}

// ExpenseShare is one user's portion of an expense. For a given expense the
// share amounts sum to the expense total within the one-cent tolerance, and
// each user appears at most once.
type ExpenseShare struct {
	ExpenseID uuid.UUID `json:"expense_id"`
	UserID    uuid.UUID `json:"user_id"`
	Amount    float64   `json:"amount"`
	IsSettled bool      `json:"is_settled"`

	// Populated via JOIN
	Username string `json:"username,omitempty"`
}

// Payment records a real-world transfer between two users that offsets
// ledger balances. Payments are append-only: corrections are modeled as new
// offsetting payments, never updates or deletes.
type Payment struct {
	ID          uuid.UUID `json:"id"`
	GroupID     uuid.UUID `json:"group_id"`
	FromUser    uuid.UUID `json:"from_user"`
	ToUser      uuid.UUID `json:"to_user"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserBalance is a user's net position within a group. Positive means the
// group owes this user money, negative means the user owes the group.
// Derived, never persisted.
type UserBalance struct {
	UserID     uuid.UUID `json:"user_id"`
	Username   string    `json:"username"`
	NetBalance float64   `json:"net_balance"`
}

// GroupBalance is the complete set of user balances for a group. The net
// balances sum to zero within tolerance: the ledger neither creates nor
// destroys money.
type GroupBalance struct {
	GroupID   uuid.UUID     `json:"group_id"`
	GroupName string        `json:"group_name"`
	Balances  []UserBalance `json:"balances"`
}

// DebtSummary is one recommended transfer. Applying a full summary list as
// payments zeroes every balance in the group.
type DebtSummary struct {
	CreditorID   uuid.UUID `json:"creditor_id"`
	CreditorName string    `json:"creditor_name"`
	DebtorID     uuid.UUID `json:"debtor_id"`
	DebtorName   string    `json:"debtor_name"`
	Amount       float64   `json:"amount"`
	Currency     string    `json:"currency"`
}

// ExpenseWithShares combines an expense with its share set
type ExpenseWithShares struct {
	Expense *Expense
	Shares  []*ExpenseShare
}

// Filter narrows an expense search
type Filter struct {
	GroupID       *uuid.UUID
	PaidBy        *uuid.UUID
	InvolvingUser *uuid.UUID
	Category      *string
	DateFrom      *time.Time
	DateTo        *time.Time
	Limit         int
	Offset        int
}
