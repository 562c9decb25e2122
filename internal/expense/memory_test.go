package expense

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedExpense(t *testing.T, store *MemoryStore, groupID, paidBy uuid.UUID, amount float64, date time.Time) *Expense {
	t.Helper()
	exp := &Expense{
		ID:          uuid.New(),
		GroupID:     groupID,
		Description: "seed",
		Amount:      amount,
		Currency:    "USD",
		PaidBy:      paidBy,
		CreatedBy:   paidBy,
		Date:        date,
	}
	shares := []*ExpenseShare{
		{ExpenseID: exp.ID, UserID: paidBy, Amount: amount},
	}
	require.NoError(t, store.CreateExpenseWithShares(context.Background(), exp, shares))
	return exp
}

func TestMemoryStoreAtomicWrite(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	groupID := uuid.New()

	exp := seedExpense(t, store, groupID, userA, 42.0, time.Now())

	got, err := store.GetExpenseByID(ctx, exp.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, exp.ID, got.ID)

	shares, err := store.GetExpenseShares(ctx, exp.ID)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.Equal(t, exp.ID, shares[0].ExpenseID)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	exp := seedExpense(t, store, uuid.New(), userA, 42.0, time.Now())

	got, err := store.GetExpenseByID(ctx, exp.ID)
	require.NoError(t, err)
	got.Amount = 999.0

	again, err := store.GetExpenseByID(ctx, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, 42.0, again.Amount)
}

func TestMemoryStoreSearchFilters(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	groupID, otherGroup := uuid.New(), uuid.New()
	now := time.Now()

	seedExpense(t, store, groupID, userA, 10.0, now.Add(-2*time.Hour))
	seedExpense(t, store, groupID, userB, 20.0, now.Add(-time.Hour))
	seedExpense(t, store, otherGroup, userA, 30.0, now)

	byGroup, err := store.SearchExpenses(ctx, &Filter{GroupID: &groupID})
	require.NoError(t, err)
	assert.Len(t, byGroup, 2)

	byPayer, err := store.SearchExpenses(ctx, &Filter{GroupID: &groupID, PaidBy: &userB})
	require.NoError(t, err)
	require.Len(t, byPayer, 1)
	assert.Equal(t, userB, byPayer[0].PaidBy)

	involving, err := store.SearchExpenses(ctx, &Filter{InvolvingUser: &userB})
	require.NoError(t, err)
	assert.Len(t, involving, 1)

	cutoff := now.Add(-90 * time.Minute)
	recent, err := store.SearchExpenses(ctx, &Filter{GroupID: &groupID, DateFrom: &cutoff})
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestMemoryStoreSearchNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	groupID := uuid.New()
	now := time.Now()

	old := seedExpense(t, store, groupID, userA, 10.0, now.Add(-time.Hour))
	fresh := seedExpense(t, store, groupID, userA, 20.0, now)

	results, err := store.SearchExpenses(ctx, &Filter{GroupID: &groupID})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, fresh.ID, results[0].ID)
	assert.Equal(t, old.ID, results[1].ID)
}

func TestMemoryStoreDeleteMissingExpense(t *testing.T) {
	store := NewMemoryStore()

	err := store.DeleteExpense(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrExpenseNotFound)
}

func TestMemoryStorePaymentsByGroup(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	groupID, otherGroup := uuid.New(), uuid.New()

	require.NoError(t, store.CreatePayment(ctx, &Payment{
		ID: uuid.New(), GroupID: groupID, FromUser: userB, ToUser: userA, Amount: 5.0,
	}))
	require.NoError(t, store.CreatePayment(ctx, &Payment{
		ID: uuid.New(), GroupID: otherGroup, FromUser: userC, ToUser: userA, Amount: 7.0,
	}))

	payments, err := store.ListGroupPayments(ctx, groupID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, 5.0, payments[0].Amount)
}
