package expense

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hearthshare/hearthshare/internal/expense/split"
)

// Common errors
var (
	ErrExpenseNotFound = errors.New("expense not found")
	ErrNotAuthorized   = errors.New("not authorized to perform this action")
	ErrNotGroupMember  = errors.New("user is not a member of this group")
	ErrSelfSettlement  = errors.New("cannot settle a debt with yourself")
)

const defaultCurrency = "USD"

// Service is the expense-sharing ledger: it turns expense requests into
// share sets, projects the group's events into net balances, reduces those
// into settlement transfers and records completed payments.
type Service struct {
	store        Store
	splitFactory *split.Factory
	users        UserDirectory
	groups       GroupDirectory
	cache        BalanceCache // optional
	notifier     Notifier     // optional
}

// NewService creates a new expense service with dependencies injected.
// cache and notifier may be nil.
func NewService(store Store, splitFactory *split.Factory, users UserDirectory, groups GroupDirectory, cache BalanceCache, notifier Notifier) *Service {
	return &Service{
		store:        store,
		splitFactory: splitFactory,
		users:        users,
		groups:       groups,
		cache:        cache,
		notifier:     notifier,
	}
}

// CreateExpense validates the request, computes the share set with the
// chosen split strategy and persists expense plus shares as one atomic
// write. The expense id is allocated before share calculation and passed
// into it, so a share with a mismatched expense id can never exist.
func (s *Service) CreateExpense(ctx context.Context, createdBy uuid.UUID, req *CreateExpenseRequest) (*ExpenseWithShares, error) {
	if strings.TrimSpace(req.Description) == "" {
		return nil, split.ErrEmptyDescription
	}
	if req.Amount <= 0 {
		return nil, split.ErrNonPositiveAmount
	}
	if len(req.Participants) == 0 {
		return nil, split.ErrNoParticipants
	}
	payerIncluded := false
	seen := make(map[uuid.UUID]struct{}, len(req.Participants))
	for _, p := range req.Participants {
		if _, dup := seen[p.UserID]; dup {
			return nil, split.ErrDuplicateParticipant
		}
		seen[p.UserID] = struct{}{}
		if p.UserID == req.PaidBy {
			payerIncluded = true
		}
	}
	if !payerIncluded {
		return nil, split.ErrPayerNotParticipant
	}
	if err := s.requireMembership(ctx, req.GroupID, createdBy); err != nil {
		return nil, err
	}

	strategy, err := s.splitFactory.CreateFromString(req.SplitType)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	exp := &Expense{
		ID:          uuid.New(),
		GroupID:     req.GroupID,
		Description: strings.TrimSpace(req.Description),
		Amount:      req.Amount,
		Currency:    s.currencyFor(ctx, req.GroupID, req.Currency),
		PaidBy:      req.PaidBy,
		CreatedBy:   createdBy,
		Category:    req.Category,
		Date:        now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Date != nil {
		exp.Date = *req.Date
	}

	calculated, err := strategy.Calculate(exp.ID, exp.Amount, req.Participants)
	if err != nil {
		return nil, err
	}

	shares := make([]*ExpenseShare, len(calculated))
	for i, c := range calculated {
		shares[i] = &ExpenseShare{
			ExpenseID: c.ExpenseID,
			UserID:    c.UserID,
			Amount:    c.Amount,
			IsSettled: c.IsSettled,
		}
	}

	if err := s.store.CreateExpenseWithShares(ctx, exp, shares); err != nil {
		return nil, err
	}
	s.invalidate(ctx, exp.GroupID)

	if s.notifier != nil {
		for _, share := range shares {
			if share.UserID != createdBy {
				s.notifier.ExpenseAdded(ctx, share.UserID, exp)
			}
		}
	}

	return &ExpenseWithShares{Expense: exp, Shares: shares}, nil
}

// GetExpense retrieves an expense with its shares
func (s *Service) GetExpense(ctx context.Context, id uuid.UUID) (*ExpenseWithShares, error) {
	exp, err := s.store.GetExpenseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if exp == nil {
		return nil, ErrExpenseNotFound
	}

	shares, err := s.store.GetExpenseShares(ctx, id)
	if err != nil {
		return nil, err
	}

	return &ExpenseWithShares{Expense: exp, Shares: shares}, nil
}

// ListGroupExpenses retrieves a page of a group's expenses, newest first
func (s *Service) ListGroupExpenses(ctx context.Context, groupID uuid.UUID, page, perPage int) ([]*Expense, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	expenses, err := s.store.SearchExpenses(ctx, &Filter{
		GroupID: &groupID,
		Limit:   perPage,
		Offset:  (page - 1) * perPage,
	})
	if err != nil {
		return nil, 0, err
	}

	total, err := s.store.CountGroupExpenses(ctx, groupID)
	if err != nil {
		return nil, 0, err
	}

	return expenses, total, nil
}

// SearchExpenses retrieves expenses matching the filter
func (s *Service) SearchExpenses(ctx context.Context, filter *Filter) ([]*Expense, error) {
	return s.store.SearchExpenses(ctx, filter)
}

// DeleteExpense removes an expense and its shares together. Only the payer
// or the creator of the expense may delete it.
func (s *Service) DeleteExpense(ctx context.Context, id, userID uuid.UUID) error {
	exp, err := s.store.GetExpenseByID(ctx, id)
	if err != nil {
		return err
	}
	if exp == nil {
		return ErrExpenseNotFound
	}
	if exp.PaidBy != userID && exp.CreatedBy != userID {
		return ErrNotAuthorized
	}

	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, exp.GroupID)
	return nil
}

// GetGroupBalances projects the group's full event set into net balances.
// The projection is recomputed on every call unless a cache is configured;
// every mutation path invalidates the cache before returning.
func (s *Service) GetGroupBalances(ctx context.Context, groupID uuid.UUID) (*GroupBalance, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, groupID); ok {
			return cached, nil
		}
	}

	expenses, err := s.store.SearchExpenses(ctx, &Filter{GroupID: &groupID})
	if err != nil {
		return nil, err
	}

	expenseIDs := make([]uuid.UUID, len(expenses))
	for i, e := range expenses {
		expenseIDs[i] = e.ID
	}
	shares, err := s.store.ListSharesForExpenses(ctx, expenseIDs)
	if err != nil {
		return nil, err
	}

	payments, err := s.store.ListGroupPayments(ctx, groupID)
	if err != nil {
		return nil, err
	}

	balance := ComputeGroupBalances(groupID, expenses, shares, payments)

	if name, err := s.groups.GroupName(ctx, groupID); err == nil {
		balance.GroupName = name
	}
	for i := range balance.Balances {
		balance.Balances[i].Username = s.resolveUsername(ctx, balance.Balances[i].UserID)
	}

	if s.cache != nil {
		s.cache.Set(ctx, groupID, &balance)
	}
	return &balance, nil
}

// GetUserBalance returns one user's net balance within a group
func (s *Service) GetUserBalance(ctx context.Context, userID, groupID uuid.UUID) (float64, error) {
	balance, err := s.GetGroupBalances(ctx, groupID)
	if err != nil {
		return 0, err
	}
	return UserNetBalance(*balance, userID), nil
}

// GetDebtSummary returns the recommended transfers that would settle the
// group's balances
func (s *Service) GetDebtSummary(ctx context.Context, groupID uuid.UUID) ([]DebtSummary, error) {
	balance, err := s.GetGroupBalances(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return ResolveDebts(*balance, s.currencyFor(ctx, groupID, ""))
}

// GetUserDebts returns the debt summaries across all of the user's groups
// that involve the user as debtor or creditor
func (s *Service) GetUserDebts(ctx context.Context, userID uuid.UUID) ([]DebtSummary, error) {
	groupIDs, err := s.groups.ListUserGroupIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	debts := []DebtSummary{}
	for _, groupID := range groupIDs {
		summaries, err := s.GetDebtSummary(ctx, groupID)
		if err != nil {
			return nil, err
		}
		for _, d := range summaries {
			if d.DebtorID == userID || d.CreditorID == userID {
				debts = append(debts, d)
			}
		}
	}
	return debts, nil
}

// SettleDebt records a completed real-world transfer as an append-only
// payment event. It does not verify the transfer happened and it does not
// mark any expense share as settled: settlement is a ledger-level netting
// concern, per-share reconciliation stays with the caller.
func (s *Service) SettleDebt(ctx context.Context, groupID, settledBy uuid.UUID, req *SettleDebtRequest) (*Payment, error) {
	if req.Amount <= 0 {
		return nil, split.ErrNonPositiveAmount
	}
	if req.CreditorID == req.DebtorID {
		return nil, ErrSelfSettlement
	}
	if err := s.requireMembership(ctx, groupID, settledBy); err != nil {
		return nil, err
	}

	currency := s.currencyFor(ctx, groupID, req.Currency)
	payment := &Payment{
		ID:          uuid.New(),
		GroupID:     groupID,
		FromUser:    req.DebtorID,
		ToUser:      req.CreditorID,
		Amount:      req.Amount,
		Currency:    currency,
		Description: fmt.Sprintf("Debt settlement: %.2f %s", req.Amount, currency),
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}
	s.invalidate(ctx, groupID)

	if s.notifier != nil {
		s.notifier.DebtSettled(ctx, req.CreditorID, payment)
	}
	return payment, nil
}

// ListGroupPayments retrieves all recorded payments for a group
func (s *Service) ListGroupPayments(ctx context.Context, groupID uuid.UUID) ([]*Payment, error) {
	return s.store.ListGroupPayments(ctx, groupID)
}

// requireMembership rejects ledger writes from users outside the group
func (s *Service) requireMembership(ctx context.Context, groupID, userID uuid.UUID) error {
	member, err := s.groups.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !member {
		return ErrNotGroupMember
	}
	return nil
}

// invalidate drops the cached balance projection before any reader can mix
// stale and new events
func (s *Service) invalidate(ctx context.Context, groupID uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, groupID)
	}
}

func (s *Service) resolveUsername(ctx context.Context, userID uuid.UUID) string {
	name, err := s.users.ResolveUsername(ctx, userID)
	if err != nil {
		return "unknown"
	}
	return name
}

// currencyFor picks the request currency, then the group default, then USD
func (s *Service) currencyFor(ctx context.Context, groupID uuid.UUID, requested string) string {
	if requested != "" {
		return requested
	}
	if currency, err := s.groups.GroupCurrency(ctx, groupID); err == nil && currency != "" {
		return currency
	}
	return defaultCurrency
}
