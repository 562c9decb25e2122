package expense

import (
	"sort"

	"github.com/google/uuid"
)

// ComputeGroupBalances reduces a consistent snapshot of a group's expenses,
// shares and payments into one net balance per user. It is a pure function:
// no I/O, no stored running total, safe to call concurrently. Input order
// does not matter; the accumulation is commutative. Output is sorted by user
// id so repeated calls over the same snapshot return identical results.
//
// Per expense the payer gains the full amount, per share the share holder
// loses their portion, and a payment moves its amount from payer to payee.
func ComputeGroupBalances(groupID uuid.UUID, expenses []*Expense, shares []*ExpenseShare, payments []*Payment) GroupBalance {
	totals := make(map[uuid.UUID]float64)

	for _, e := range expenses {
		totals[e.PaidBy] += e.Amount
	}
	for _, s := range shares {
		totals[s.UserID] -= s.Amount
	}
	for _, p := range payments {
		totals[p.FromUser] -= p.Amount
		totals[p.ToUser] += p.Amount
	}

	balances := make([]UserBalance, 0, len(totals))
	for userID, net := range totals {
		balances = append(balances, UserBalance{
			UserID:     userID,
			NetBalance: net,
		})
	}
	sort.Slice(balances, func(i, j int) bool {
		return balances[i].UserID.String() < balances[j].UserID.String()
	})

	return GroupBalance{
		GroupID:  groupID,
		Balances: balances,
	}
}

// UserNetBalance extracts one user's net balance from a group projection.
// A user with no ledger events has a balance of zero.
func UserNetBalance(balance GroupBalance, userID uuid.UUID) float64 {
	for _, b := range balance.Balances {
		if b.UserID == userID {
			return b.NetBalance
		}
	}
	return 0
}
