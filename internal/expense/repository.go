package expense

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Repository is the Postgres-backed Store
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new expense repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

var _ Store = (*Repository)(nil)

// CreateExpenseWithShares inserts the expense and its full share set in one
// transaction. A reader can never observe the expense without its shares.
func (r *Repository) CreateExpenseWithShares(ctx context.Context, expense *Expense, shares []*ExpenseShare) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO expenses (id, group_id, description, amount, currency, paid_by, created_by, category, date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		expense.ID,
		expense.GroupID,
		expense.Description,
		expense.Amount,
		expense.Currency,
		expense.PaidBy,
		expense.CreatedBy,
		expense.Category,
		expense.Date,
		expense.CreatedAt,
		expense.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}

	for _, share := range shares {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO expense_shares (expense_id, user_id, amount, is_settled)
			VALUES ($1, $2, $3, $4)
		`, share.ExpenseID, share.UserID, share.Amount, share.IsSettled)
		if err != nil {
			return fmt.Errorf("failed to create expense share: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit expense: %w", err)
	}
	return nil
}

// GetExpenseByID retrieves an expense by its ID
func (r *Repository) GetExpenseByID(ctx context.Context, id uuid.UUID) (*Expense, error) {
	query := `
		SELECT e.id, e.group_id, e.description, e.amount, e.currency, e.paid_by, e.created_by, e.category, e.date, e.created_at, e.updated_at, u.username
		FROM expenses e
		JOIN users u ON e.paid_by = u.id
		WHERE e.id = $1
	`

	expense := &Expense{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&expense.ID,
		&expense.GroupID,
		&expense.Description,
		&expense.Amount,
		&expense.Currency,
		&expense.PaidBy,
		&expense.CreatedBy,
		&expense.Category,
		&expense.Date,
		&expense.CreatedAt,
		&expense.UpdatedAt,
		&expense.PayerUsername,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	return expense, nil
}

// GetExpenseShares retrieves all shares for an expense
func (r *Repository) GetExpenseShares(ctx context.Context, expenseID uuid.UUID) ([]*ExpenseShare, error) {
	query := `
		SELECT s.expense_id, s.user_id, s.amount, s.is_settled, u.username
		FROM expense_shares s
		JOIN users u ON s.user_id = u.id
		WHERE s.expense_id = $1
		ORDER BY u.username
	`

	rows, err := r.db.QueryContext(ctx, query, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense shares: %w", err)
	}
	defer rows.Close()

	return scanShares(rows)
}

// ListSharesForExpenses retrieves the shares for a set of expenses
func (r *Repository) ListSharesForExpenses(ctx context.Context, expenseIDs []uuid.UUID) ([]*ExpenseShare, error) {
	if len(expenseIDs) == 0 {
		return nil, nil
	}

	ids := make([]string, len(expenseIDs))
	for i, id := range expenseIDs {
		ids[i] = id.String()
	}

	query := `
		SELECT s.expense_id, s.user_id, s.amount, s.is_settled, u.username
		FROM expense_shares s
		JOIN users u ON s.user_id = u.id
		WHERE s.expense_id = ANY($1)
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	defer rows.Close()

	return scanShares(rows)
}

func scanShares(rows *sql.Rows) ([]*ExpenseShare, error) {
	var shares []*ExpenseShare
	for rows.Next() {
		share := &ExpenseShare{}
		if err := rows.Scan(
			&share.ExpenseID,
			&share.UserID,
			&share.Amount,
			&share.IsSettled,
			&share.Username,
		); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		shares = append(shares, share)
	}
	return shares, rows.Err()
}

// SearchExpenses retrieves expenses matching the filter, newest first
func (r *Repository) SearchExpenses(ctx context.Context, filter *Filter) ([]*Expense, error) {
	query := `
		SELECT e.id, e.group_id, e.description, e.amount, e.currency, e.paid_by, e.created_by, e.category, e.date, e.created_at, e.updated_at, u.username
		FROM expenses e
		JOIN users u ON e.paid_by = u.id
		WHERE 1=1
	`
	args := []interface{}{}

	if filter.GroupID != nil {
		args = append(args, *filter.GroupID)
		query += fmt.Sprintf(" AND e.group_id = $%d", len(args))
	}
	if filter.PaidBy != nil {
		args = append(args, *filter.PaidBy)
		query += fmt.Sprintf(" AND e.paid_by = $%d", len(args))
	}
	if filter.InvolvingUser != nil {
		args = append(args, *filter.InvolvingUser)
		query += fmt.Sprintf(` AND (e.paid_by = $%d OR e.created_by = $%d OR EXISTS (
			SELECT 1 FROM expense_shares s WHERE s.expense_id = e.id AND s.user_id = $%d
		))`, len(args), len(args), len(args))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		query += fmt.Sprintf(" AND e.category = $%d", len(args))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		query += fmt.Sprintf(" AND e.date >= $%d", len(args))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		query += fmt.Sprintf(" AND e.date <= $%d", len(args))
	}

	query += " ORDER BY e.date DESC, e.created_at DESC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*Expense
	for rows.Next() {
		expense := &Expense{}
		if err := rows.Scan(
			&expense.ID,
			&expense.GroupID,
			&expense.Description,
			&expense.Amount,
			&expense.Currency,
			&expense.PaidBy,
			&expense.CreatedBy,
			&expense.Category,
			&expense.Date,
			&expense.CreatedAt,
			&expense.UpdatedAt,
			&expense.PayerUsername,
		); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}

	return expenses, rows.Err()
}

// CountGroupExpenses counts a group's expenses
func (r *Repository) CountGroupExpenses(ctx context.Context, groupID uuid.UUID) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM expenses WHERE group_id = $1`, groupID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count expenses: %w", err)
	}
	return total, nil
}

// DeleteExpense removes an expense and its shares in one transaction
func (r *Repository) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM expense_shares WHERE expense_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete expense shares: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrExpenseNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

// CreatePayment appends a payment event
func (r *Repository) CreatePayment(ctx context.Context, payment *Payment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payments (id, group_id, from_user, to_user, amount, currency, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		payment.ID,
		payment.GroupID,
		payment.FromUser,
		payment.ToUser,
		payment.Amount,
		payment.Currency,
		payment.Description,
		payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// ListGroupPayments retrieves all payments for a group, oldest first
func (r *Repository) ListGroupPayments(ctx context.Context, groupID uuid.UUID) ([]*Payment, error) {
	query := `
		SELECT id, group_id, from_user, to_user, amount, currency, description, created_at
		FROM payments
		WHERE group_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*Payment
	for rows.Next() {
		payment := &Payment{}
		if err := rows.Scan(
			&payment.ID,
			&payment.GroupID,
			&payment.FromUser,
			&payment.ToUser,
			&payment.Amount,
			&payment.Currency,
			&payment.Description,
			&payment.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, payment)
	}

	return payments, rows.Err()
}
