package expense

import (
	"errors"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/hearthshare/hearthshare/internal/expense/split"
)

// ErrUnbalancedLedger means the caller fed ResolveDebts a group balance
// whose entries do not sum to zero. That cannot come from
// ComputeGroupBalances, so it is a programming-contract breach and is
// surfaced loudly instead of producing transfers that settle nothing.
var ErrUnbalancedLedger = errors.New("group balances do not sum to zero")

type party struct {
	userID   uuid.UUID
	username string
	amount   float64
}

// ResolveDebts reduces a group balance into a minimal set of peer-to-peer
// transfers using greedy largest-first matching: the biggest creditor is
// repeatedly paired with the biggest debtor and the smaller of the two
// amounts is settled. At most n-1 transfers are emitted for n users with
// nonzero balance. Ties are broken by user id so the output is reproducible
// for identical input.
func ResolveDebts(balance GroupBalance, currency string) ([]DebtSummary, error) {
	var sum float64
	for _, b := range balance.Balances {
		sum += b.NetBalance
	}
	if math.Abs(sum) > split.Tolerance {
		return nil, ErrUnbalancedLedger
	}

	var creditors, debtors []party
	for _, b := range balance.Balances {
		if b.NetBalance > split.Tolerance {
			creditors = append(creditors, party{b.UserID, b.Username, b.NetBalance})
		} else if b.NetBalance < -split.Tolerance {
			debtors = append(debtors, party{b.UserID, b.Username, -b.NetBalance})
		}
	}
	sortParties(creditors)
	sortParties(debtors)

	summaries := []DebtSummary{}
	for len(creditors) > 0 && len(debtors) > 0 {
		creditor, debtor := creditors[0], debtors[0]
		settled := split.Round2(math.Min(creditor.amount, debtor.amount))

		summaries = append(summaries, DebtSummary{
			CreditorID:   creditor.userID,
			CreditorName: creditor.username,
			DebtorID:     debtor.userID,
			DebtorName:   debtor.username,
			Amount:       settled,
			Currency:     currency,
		})

		creditors = reduce(creditors, creditor.amount-settled)
		debtors = reduce(debtors, debtor.amount-settled)
	}

	return summaries, nil
}

// reduce drops the head if its remainder is exhausted, otherwise keeps the
// remainder and restores largest-first order.
func reduce(parties []party, remainder float64) []party {
	if remainder <= split.Tolerance {
		return parties[1:]
	}
	parties[0].amount = remainder
	sortParties(parties)
	return parties
}

func sortParties(parties []party) {
	sort.Slice(parties, func(i, j int) bool {
		if parties[i].amount != parties[j].amount {
			return parties[i].amount > parties[j].amount
		}
		return parties[i].userID.String() < parties[j].userID.String()
	})
}
