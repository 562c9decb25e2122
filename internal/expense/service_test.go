package expense

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthshare/hearthshare/internal/expense/split"
)

type stubUsers struct {
	names map[uuid.UUID]string
}

func (s *stubUsers) ResolveUsername(_ context.Context, userID uuid.UUID) (string, error) {
	if name, ok := s.names[userID]; ok {
		return name, nil
	}
	return "", errors.New("user not found")
}

type stubGroups struct {
	name     string
	currency string
	groupIDs []uuid.UUID
	members  map[uuid.UUID]bool
}

func (s *stubGroups) GroupName(context.Context, uuid.UUID) (string, error) {
	return s.name, nil
}

func (s *stubGroups) GroupCurrency(context.Context, uuid.UUID) (string, error) {
	return s.currency, nil
}

func (s *stubGroups) ListUserGroupIDs(context.Context, uuid.UUID) ([]uuid.UUID, error) {
	return s.groupIDs, nil
}

func (s *stubGroups) IsMember(_ context.Context, _ uuid.UUID, userID uuid.UUID) (bool, error) {
	return s.members[userID], nil
}

type countingCache struct {
	data          map[uuid.UUID]*GroupBalance
	invalidations int
}

func newCountingCache() *countingCache {
	return &countingCache{data: make(map[uuid.UUID]*GroupBalance)}
}

func (c *countingCache) Get(_ context.Context, groupID uuid.UUID) (*GroupBalance, bool) {
	balance, ok := c.data[groupID]
	return balance, ok
}

func (c *countingCache) Set(_ context.Context, groupID uuid.UUID, balance *GroupBalance) {
	c.data[groupID] = balance
}

func (c *countingCache) Invalidate(_ context.Context, groupID uuid.UUID) {
	delete(c.data, groupID)
	c.invalidations++
}

type recordingNotifier struct {
	expenseRecipients []uuid.UUID
	paymentRecipients []uuid.UUID
}

func (n *recordingNotifier) ExpenseAdded(_ context.Context, recipientID uuid.UUID, _ *Expense) {
	n.expenseRecipients = append(n.expenseRecipients, recipientID)
}

func (n *recordingNotifier) DebtSettled(_ context.Context, recipientID uuid.UUID, _ *Payment) {
	n.paymentRecipients = append(n.paymentRecipients, recipientID)
}

func newTestService(groupID uuid.UUID, cache BalanceCache, notifier Notifier) *Service {
	users := &stubUsers{names: map[uuid.UUID]string{
		userA: "alice",
		userB: "bob",
		userC: "carol",
	}}
	groups := &stubGroups{
		name:     "Flat 4B",
		currency: "EUR",
		groupIDs: []uuid.UUID{groupID},
		members:  map[uuid.UUID]bool{userA: true, userB: true, userC: true},
	}
	return NewService(NewMemoryStore(), split.NewFactory(), users, groups, cache, notifier)
}

func equalDinner(groupID uuid.UUID) *CreateExpenseRequest {
	return &CreateExpenseRequest{
		GroupID:     groupID,
		Description: "Dinner",
		Amount:      30.0,
		Currency:    "USD",
		PaidBy:      userA,
		SplitType:   "EQUAL",
		Participants: []split.Input{
			{UserID: userA}, {UserID: userB}, {UserID: userC},
		},
	}
}

func TestCreateExpenseComputesShares(t *testing.T) {
	ctx := context.Background()
	groupID := uuid.New()
	service := newTestService(groupID, nil, nil)

	result, err := service.CreateExpense(ctx, userA, equalDinner(groupID))
	require.NoError(t, err)

	require.Len(t, result.Shares, 3)
	for _, share := range result.Shares {
		assert.Equal(t, result.Expense.ID, share.ExpenseID)
		assert.InDelta(t, 10.0, share.Amount, 0.01)
		assert.False(t, share.IsSettled)
	}
}

func TestCreateExpenseValidation(t *testing.T) {
	ctx := context.Background()
	groupID := uuid.New()
	service := newTestService(groupID, nil, nil)

	req := equalDinner(groupID)
	req.Description = "   "
	_, err := service.CreateExpense(ctx, userA, req)
	assert.ErrorIs(t, err, split.ErrEmptyDescription)

	req = equalDinner(groupID)
	req.Amount = -5.0
	_, err = service.CreateExpense(ctx, userA, req)
	assert.ErrorIs(t, err, split.ErrNonPositiveAmount)

	req = equalDinner(groupID)
	req.Participants = nil
	_, err = service.CreateExpense(ctx, userA, req)
	assert.ErrorIs(t, err, split.ErrNoParticipants)

	req = equalDinner(groupID)
	req.PaidBy = uuid.New()
	_, err = service.CreateExpense(ctx, userA, req)
	assert.ErrorIs(t, err, split.ErrPayerNotParticipant)

	req = equalDinner(groupID)
	req.SplitType = "equal"
	_, err = service.CreateExpense(ctx, userA, req)
	assert.ErrorIs(t, err, split.ErrUnknownSplitType)
}

func TestCreateExpenseRejectsDuplicateParticipants(t *testing.T) {
	ctx := context.Background()
	groupID := uuid.New()
	service := newTestService(groupID, nil, nil)

	req := equalDinner(groupID)
	req.Participants = []split.Input{{UserID: userA}, {UserID: userB}, {UserID: userB}}
	_, err := service.CreateExpense(ctx, userA, req)
	assert.ErrorIs(t, err, split.ErrDuplicateParticipant)
}

func TestCreateExpenseRequiresMembership(t *testing.T) {
	ctx := context.Background()
	groupID := uuid.New()
	service := newTestService(groupID, nil, nil)

	_, err := service.CreateExpense(ctx, uuid.New(), equalDinner(groupID))
	assert.ErrorIs(t, err, ErrNotGroupMember)
}

func TestSettleDebtRequiresMembership(t *testing.T) {
	ctx := context.Background()
	groupID := uuid.New()
	service := newTestService(groupID, nil, nil)

	_, err := service.SettleDebt(ctx, groupID, uuid.New(), &SettleDebtRequest{
		CreditorID: userA,
		DebtorID:   userB,
		Amount:     10.0,
	})
	assert.ErrorIs(t, err, ErrNotGroupMember)
}

func TestCreateExpenseCurrencyFallsBackToGroup(t *testing.T) {
	ctx := context.Background()
	groupID := uuid.New()
	service := newTestService(groupID, nil, nil)

	req := equalDinner(groupID)
	req.Currency = ""
	result, err := service.CreateExpense(ctx, userA, req)
	require.NoError(t, err)
	assert.Equal(t, "EUR", result.Expense.Currency)
}

func TestCreateExpenseNotifiesShareHolders(t *testing.T) {
	ctx := context.Background()
	groupID := uuid.New()
	notifier := &recordingNotifier{}
	service := newTestService(groupID, nil, notifier)

	_, err := service.CreateExpense(ctx, userA, equalDinner(groupID))
	require.NoError(t, err)

	// everyone with a share is notified except the creator
	assert.ElementsMatch(t, []uuid.UUID{userB, userC}, notifier.expenseRecipients)
}

func TestGetExpenseNotFound(t *testing.T) {
	ctx := context.Background()
	groupID := uuid.New()
	service := newTestService(groupID, nil, nil)

	_, err := service.GetExpense(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrExpenseNotFound)
}

func TestDeleteExpenseRemovesShares(t *testing.T) {
	ctx := context.Background()
	groupID := uuid.New()
	service := newTestService(groupID, nil, nil)

	created, err := service.CreateExpense(ctx, userA, equalDinner(groupID))
	require.NoError(t, err)

	require.NoError(t, service.DeleteExpense(ctx, created.Expense.ID, userA))

	_, err = service.GetExpense(ctx, created.Expense.ID)
	assert.ErrorIs(t, err, ErrExpenseNotFound)

	balance, err := service.GetGroupBalances(ctx, groupID)
	require.NoError(t, err)
	assert.Empty(t, balance.Balances)
}

func TestDeleteExpenseAuthorization(t *testing.T) {
	ctx := context.Background()
	groupID := uuid.New()
	service := newTestService(groupID, nil, nil)

	created, err := service.CreateExpense(ctx, userA, equalDinner(groupID))
	require.NoError(t, err)

	err = service.DeleteExpense(ctx, created.Expense.ID, userB)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestGroupBalancesAfterExpense(t *testing.T) {
	ctx := context.Background()
	groupID := uuid.New()
	service := newTestService(groupID, nil, nil)

	_, err := service.CreateExpense(ctx, userA, equalDinner(groupID))
	require.NoError(t, err)

	balance, err := service.GetGroupBalances(ctx, groupID)
	require.NoError(t, err)

	assert.Equal(t, "Flat 4B", balance.GroupName)
	assert.InDelta(t, 20.0, UserNetBalance(*balance, userA), 0.01)
	assert.InDelta(t, -10.0, UserNetBalance(*balance, userB), 0.01)
	assert.InDelta(t, -10.0, UserNetBalance(*balance, userC), 0.01)

	for _, b := range balance.Balances {
		assert.NotEmpty(t, b.Username)
	}
}

func TestGetUserBalance(t *testing.T) {
	ctx := context.Background()
	groupID := uuid.New()
	service := newTestService(groupID, nil, nil)

	_, err := service.CreateExpense(ctx, userA, equalDinner(groupID))
	require.NoError(t, err)

	net, err := service.GetUserBalance(ctx, userB, groupID)
	require.NoError(t, err)
	assert.InDelta(t, -10.0, net, 0.01)

	// a stranger to the group owes nothing
	net, err = service.GetUserBalance(ctx, uuid.New(), groupID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, net)
}

func TestSettleDebtShiftsBalances(t *testing.T) {
	ctx := context.Background()
	groupID := uuid.New()
	service := newTestService(groupID, nil, nil)

	_, err := service.CreateExpense(ctx, userA, equalDinner(groupID))
	require.NoError(t, err)

	payment, err := service.SettleDebt(ctx, groupID, userB, &SettleDebtRequest{
		CreditorID: userA,
		DebtorID:   userB,
		Amount:     10.0,
		Currency:   "USD",
	})
	require.NoError(t, err)
	assert.Equal(t, userB, payment.FromUser)
	assert.Equal(t, userA, payment.ToUser)
	assert.Equal(t, "Debt settlement: 10.00 USD", payment.Description)

	balance, err := service.GetGroupBalances(ctx, groupID)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, UserNetBalance(*balance, userA), 0.01)
	assert.InDelta(t, 0.0, UserNetBalance(*balance, userB), 0.01)
	assert.InDelta(t, -10.0, UserNetBalance(*balance, userC), 0.01)
}

func TestSettleDebtValidation(t *testing.T) {
	ctx := context.Background()
	groupID := uuid.New()
	service := newTestService(groupID, nil, nil)

	_, err := service.SettleDebt(ctx, groupID, userA, &SettleDebtRequest{
		CreditorID: userA,
		DebtorID:   userB,
		Amount:     0,
	})
	assert.ErrorIs(t, err, split.ErrNonPositiveAmount)

	_, err = service.SettleDebt(ctx, groupID, userA, &SettleDebtRequest{
		CreditorID: userA,
		DebtorID:   userA,
		Amount:     5.0,
	})
	assert.ErrorIs(t, err, ErrSelfSettlement)
}

func TestSettleDebtNotifiesCreditor(t *testing.T) {
	ctx := context.Background()
	groupID := uuid.New()
	notifier := &recordingNotifier{}
	service := newTestService(groupID, nil, notifier)

	_, err := service.SettleDebt(ctx, groupID, userB, &SettleDebtRequest{
		CreditorID: userA,
		DebtorID:   userB,
		Amount:     10.0,
	})
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{userA}, notifier.paymentRecipients)
}

func TestDebtSummaryAfterSettlement(t *testing.T) {
	ctx := context.Background()
	groupID := uuid.New()
	service := newTestService(groupID, nil, nil)

	_, err := service.CreateExpense(ctx, userA, equalDinner(groupID))
	require.NoError(t, err)

	debts, err := service.GetDebtSummary(ctx, groupID)
	require.NoError(t, err)
	require.Len(t, debts, 2)

	_, err = service.SettleDebt(ctx, groupID, userB, &SettleDebtRequest{
		CreditorID: userA,
		DebtorID:   userB,
		Amount:     10.0,
	})
	require.NoError(t, err)

	debts, err = service.GetDebtSummary(ctx, groupID)
	require.NoError(t, err)
	require.Len(t, debts, 1)
	assert.Equal(t, userC, debts[0].DebtorID)
	assert.Equal(t, userA, debts[0].CreditorID)
	assert.InDelta(t, 10.0, debts[0].Amount, 0.01)
}

func TestGetUserDebtsFiltersByInvolvement(t *testing.T) {
	ctx := context.Background()
	groupID := uuid.New()
	service := newTestService(groupID, nil, nil)

	_, err := service.CreateExpense(ctx, userA, equalDinner(groupID))
	require.NoError(t, err)

	debts, err := service.GetUserDebts(ctx, userB)
	require.NoError(t, err)
	require.Len(t, debts, 1)
	assert.Equal(t, userB, debts[0].DebtorID)
}

func TestBalanceCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	groupID := uuid.New()
	cache := newCountingCache()
	service := newTestService(groupID, cache, nil)

	_, err := service.CreateExpense(ctx, userA, equalDinner(groupID))
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidations)

	first, err := service.GetGroupBalances(ctx, groupID)
	require.NoError(t, err)

	// second read is served from cache
	cached, ok := cache.Get(ctx, groupID)
	require.True(t, ok)
	second, err := service.GetGroupBalances(ctx, groupID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, cached, second)

	// settlement invalidates the projection
	_, err = service.SettleDebt(ctx, groupID, userB, &SettleDebtRequest{
		CreditorID: userA,
		DebtorID:   userB,
		Amount:     10.0,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, cache.invalidations)
	_, ok = cache.Get(ctx, groupID)
	assert.False(t, ok)
}

func TestListGroupExpensesPagination(t *testing.T) {
	ctx := context.Background()
	groupID := uuid.New()
	service := newTestService(groupID, nil, nil)

	for i := 0; i < 5; i++ {
		_, err := service.CreateExpense(ctx, userA, equalDinner(groupID))
		require.NoError(t, err)
	}

	expenses, total, err := service.ListGroupExpenses(ctx, groupID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, expenses, 2)

	expenses, _, err = service.ListGroupExpenses(ctx, groupID, 3, 2)
	require.NoError(t, err)
	assert.Len(t, expenses, 1)
}
