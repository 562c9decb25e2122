package expense

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func groupBalance(entries map[uuid.UUID]float64) GroupBalance {
	balances := make([]UserBalance, 0, len(entries))
	for id, net := range entries {
		balances = append(balances, UserBalance{UserID: id, NetBalance: net})
	}
	return GroupBalance{GroupID: uuid.New(), Balances: balances}
}

func TestResolveDebtsSimple(t *testing.T) {
	balance := groupBalance(map[uuid.UUID]float64{
		userA: 20.0,
		userB: -10.0,
		userC: -10.0,
	})

	debts, err := ResolveDebts(balance, "USD")
	require.NoError(t, err)
	require.Len(t, debts, 2)

	// both debtors owe 10; the tie is broken by user id
	assert.Equal(t, userA, debts[0].CreditorID)
	assert.Equal(t, userB, debts[0].DebtorID)
	assert.InDelta(t, 10.0, debts[0].Amount, 0.001)

	assert.Equal(t, userA, debts[1].CreditorID)
	assert.Equal(t, userC, debts[1].DebtorID)
	assert.InDelta(t, 10.0, debts[1].Amount, 0.001)

	for _, d := range debts {
		assert.Equal(t, "USD", d.Currency)
	}
}

func TestResolveDebtsLargestFirst(t *testing.T) {
	balance := groupBalance(map[uuid.UUID]float64{
		userA: 5.0,
		userB: 25.0,
		userC: -30.0,
	})

	debts, err := ResolveDebts(balance, "USD")
	require.NoError(t, err)
	require.Len(t, debts, 2)

	// the biggest creditor is paired first
	assert.Equal(t, userB, debts[0].CreditorID)
	assert.Equal(t, userC, debts[0].DebtorID)
	assert.InDelta(t, 25.0, debts[0].Amount, 0.001)

	assert.Equal(t, userA, debts[1].CreditorID)
	assert.Equal(t, userC, debts[1].DebtorID)
	assert.InDelta(t, 5.0, debts[1].Amount, 0.001)
}

func TestResolveDebtsTransferBound(t *testing.T) {
	balance := groupBalance(map[uuid.UUID]float64{
		userA:      60.0,
		userB:      -10.0,
		userC:      -20.0,
		uuid.New(): -30.0,
	})

	debts, err := ResolveDebts(balance, "USD")
	require.NoError(t, err)

	// n users with nonzero balance settle in at most n-1 transfers
	assert.LessOrEqual(t, len(debts), 3)

	var toA float64
	for _, d := range debts {
		assert.Equal(t, userA, d.CreditorID)
		toA += d.Amount
	}
	assert.InDelta(t, 60.0, toA, 0.01)
}

func TestResolveDebtsResidue(t *testing.T) {
	// an equal three-way split of 10.00 leaves sub-cent residue
	balance := groupBalance(map[uuid.UUID]float64{
		userA: 6.67,
		userB: -3.33,
		userC: -3.34,
	})

	debts, err := ResolveDebts(balance, "USD")
	require.NoError(t, err)
	require.Len(t, debts, 2)

	var settled float64
	for _, d := range debts {
		settled += d.Amount
	}
	assert.InDelta(t, 6.67, settled, 0.01)
}

func TestResolveDebtsBalancedGroup(t *testing.T) {
	balance := groupBalance(map[uuid.UUID]float64{
		userA: 0.0,
		userB: 0.0,
	})

	debts, err := ResolveDebts(balance, "USD")
	require.NoError(t, err)
	assert.Empty(t, debts)
}

func TestResolveDebtsUnbalancedInput(t *testing.T) {
	balance := groupBalance(map[uuid.UUID]float64{
		userA: 20.0,
		userB: -10.0,
	})

	_, err := ResolveDebts(balance, "USD")
	assert.ErrorIs(t, err, ErrUnbalancedLedger)
}

func TestResolveDebtsIgnoresSubTolerance(t *testing.T) {
	balance := groupBalance(map[uuid.UUID]float64{
		userA: 0.005,
		userB: -0.005,
	})

	debts, err := ResolveDebts(balance, "USD")
	require.NoError(t, err)
	assert.Empty(t, debts)
}

func TestResolveDebtsEverySettlementPositive(t *testing.T) {
	balance := groupBalance(map[uuid.UUID]float64{
		userA: 12.5,
		userB: 7.5,
		userC: -20.0,
	})

	debts, err := ResolveDebts(balance, "USD")
	require.NoError(t, err)
	require.NotEmpty(t, debts)

	for _, d := range debts {
		assert.Greater(t, d.Amount, 0.0)
		assert.Equal(t, d.Amount, math.Round(d.Amount*100)/100)
	}
}
