package expense

import (
	"time"

	"github.com/google/uuid"

	"github.com/hearthshare/hearthshare/internal/expense/split"
)

// CreateExpenseRequest represents the request to create an expense
type CreateExpenseRequest struct {
	GroupID      uuid.UUID     `json:"group_id" validate:"required"`
	Description  string        `json:"description" validate:"required,min=1,max=255"`
	Amount       float64       `json:"amount" validate:"required,gt=0"`
	Currency     string        `json:"currency,omitempty"`
	PaidBy       uuid.UUID     `json:"paid_by" validate:"required"`
	SplitType    string        `json:"split_type" validate:"required,oneof=EQUAL EXACT PERCENTAGE SHARES"`
	Participants []split.Input `json:"participants" validate:"required,min=1"`
	Category     *string       `json:"category,omitempty"`
	Date         *time.Time    `json:"date,omitempty"`
}

// SettleDebtRequest records a real-world transfer from debtor to creditor
type SettleDebtRequest struct {
	CreditorID uuid.UUID `json:"creditor_id" validate:"required"`
	DebtorID   uuid.UUID `json:"debtor_id" validate:"required"`
	Amount     float64   `json:"amount" validate:"required,gt=0"`
	Currency   string    `json:"currency,omitempty"`
}

// ExpenseResponse represents the response for an expense
type ExpenseResponse struct {
	ID            uuid.UUID        `json:"id"`
	GroupID       uuid.UUID        `json:"group_id"`
	Description   string           `json:"description"`
	Amount        float64          `json:"amount"`
	Currency      string           `json:"currency"`
	PaidBy        uuid.UUID        `json:"paid_by"`
	PayerUsername string           `json:"payer_username,omitempty"`
	CreatedBy     uuid.UUID        `json:"created_by"`
	Category      *string          `json:"category,omitempty"`
	Date          string           `json:"date"`
	CreatedAt     string           `json:"created_at"`
	Shares        []*ShareResponse `json:"shares,omitempty"`
}

// ShareResponse represents the response for an expense share
type ShareResponse struct {
	ExpenseID uuid.UUID `json:"expense_id"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Amount    float64   `json:"amount"`
	IsSettled bool      `json:"is_settled"`
}

// PaymentResponse represents the response for a recorded payment
type PaymentResponse struct {
	ID          uuid.UUID `json:"id"`
	GroupID     uuid.UUID `json:"group_id"`
	FromUser    uuid.UUID `json:"from_user"`
	ToUser      uuid.UUID `json:"to_user"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	Description string    `json:"description"`
	CreatedAt   string    `json:"created_at"`
}

// ToResponse converts an Expense model to an ExpenseResponse DTO
func (e *Expense) ToResponse() *ExpenseResponse {
	return &ExpenseResponse{
		ID:            e.ID,
		GroupID:       e.GroupID,
		Description:   e.Description,
		Amount:        e.Amount,
		Currency:      e.Currency,
		PaidBy:        e.PaidBy,
		PayerUsername: e.PayerUsername,
		CreatedBy:     e.CreatedBy,
		Category:      e.Category,
		Date:          e.Date.Format(time.RFC3339),
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
	}
}

// ToResponse converts an ExpenseShare model to a ShareResponse DTO
func (s *ExpenseShare) ToResponse() *ShareResponse {
	return &ShareResponse{
		ExpenseID: s.ExpenseID,
		UserID:    s.UserID,
		Username:  s.Username,
		Amount:    s.Amount,
		IsSettled: s.IsSettled,
	}
}

// ToResponse converts a Payment model to a PaymentResponse DTO
func (p *Payment) ToResponse() *PaymentResponse {
	return &PaymentResponse{
		ID:          p.ID,
		GroupID:     p.GroupID,
		FromUser:    p.FromUser,
		ToUser:      p.ToUser,
		Amount:      p.Amount,
		Currency:    p.Currency,
		Description: p.Description,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}
