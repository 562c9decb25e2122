package expense

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	userA = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	userB = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	userC = uuid.MustParse("00000000-0000-0000-0000-00000000000c")
)

func dinnerEvents(groupID uuid.UUID) ([]*Expense, []*ExpenseShare) {
	expenseID := uuid.New()
	expenses := []*Expense{
		{ID: expenseID, GroupID: groupID, Amount: 30.0, PaidBy: userA},
	}
	shares := []*ExpenseShare{
		{ExpenseID: expenseID, UserID: userA, Amount: 10.0},
		{ExpenseID: expenseID, UserID: userB, Amount: 10.0},
		{ExpenseID: expenseID, UserID: userC, Amount: 10.0},
	}
	return expenses, shares
}

func TestComputeGroupBalances(t *testing.T) {
	groupID := uuid.New()
	expenses, shares := dinnerEvents(groupID)

	balance := ComputeGroupBalances(groupID, expenses, shares, nil)

	require.Len(t, balance.Balances, 3)
	assert.InDelta(t, 20.0, UserNetBalance(balance, userA), 0.001)
	assert.InDelta(t, -10.0, UserNetBalance(balance, userB), 0.001)
	assert.InDelta(t, -10.0, UserNetBalance(balance, userC), 0.001)
}

func TestComputeGroupBalancesConservation(t *testing.T) {
	groupID := uuid.New()
	expenses, shares := dinnerEvents(groupID)
	payments := []*Payment{
		{ID: uuid.New(), GroupID: groupID, FromUser: userB, ToUser: userA, Amount: 10.0},
	}

	balance := ComputeGroupBalances(groupID, expenses, shares, payments)

	var sum float64
	for _, b := range balance.Balances {
		sum += b.NetBalance
	}
	assert.InDelta(t, 0.0, sum, 0.01)
}

func TestComputeGroupBalancesPaymentMovesDebt(t *testing.T) {
	groupID := uuid.New()
	expenses, shares := dinnerEvents(groupID)
	payments := []*Payment{
		{ID: uuid.New(), GroupID: groupID, FromUser: userB, ToUser: userA, Amount: 10.0},
	}

	balance := ComputeGroupBalances(groupID, expenses, shares, payments)

	assert.InDelta(t, 10.0, UserNetBalance(balance, userA), 0.001)
	assert.InDelta(t, 0.0, UserNetBalance(balance, userB), 0.001)
	assert.InDelta(t, -10.0, UserNetBalance(balance, userC), 0.001)
}

func TestComputeGroupBalancesDeterministic(t *testing.T) {
	groupID := uuid.New()
	expenses, shares := dinnerEvents(groupID)

	first := ComputeGroupBalances(groupID, expenses, shares, nil)
	second := ComputeGroupBalances(groupID, expenses, shares, nil)

	assert.Equal(t, first, second)

	// sorted by user id regardless of input order
	for i := 1; i < len(first.Balances); i++ {
		assert.Less(t, first.Balances[i-1].UserID.String(), first.Balances[i].UserID.String())
	}
}

func TestComputeGroupBalancesEmpty(t *testing.T) {
	groupID := uuid.New()

	balance := ComputeGroupBalances(groupID, nil, nil, nil)

	assert.Equal(t, groupID, balance.GroupID)
	assert.Empty(t, balance.Balances)
}

func TestUserNetBalanceUnknownUserIsZero(t *testing.T) {
	groupID := uuid.New()
	expenses, shares := dinnerEvents(groupID)

	balance := ComputeGroupBalances(groupID, expenses, shares, nil)

	assert.Equal(t, 0.0, UserNetBalance(balance, uuid.New()))
}
