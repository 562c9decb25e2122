package split

import "github.com/google/uuid"

// SharesStrategy divides the total proportionally to integer weights, e.g.
// 2 shares for Alice and 1 for Bob gives Alice two thirds of the total.
type SharesStrategy struct{}

// Type returns the split type identifier
func (s *SharesStrategy) Type() Type {
	return TypeShares
}

// Validate checks if the inputs are valid for a by-shares split
func (s *SharesStrategy) Validate(totalAmount float64, participants []Input) error {
	if totalAmount <= 0 {
		return ErrNonPositiveAmount
	}
	if len(participants) == 0 {
		return ErrNoParticipants
	}

	total := 0
	for _, p := range participants {
		if p.Shares == nil {
			return ErrMissingAllocation
		}
		if *p.Shares < 0 {
			return ErrNegativeAllocation
		}
		total += *p.Shares
	}

	if total == 0 {
		return ErrZeroTotalShares
	}
	return nil
}

// Calculate gives each participant totalAmount * weight / totalWeight
func (s *SharesStrategy) Calculate(expenseID uuid.UUID, totalAmount float64, participants []Input) ([]Share, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	totalShares := 0
	for _, p := range participants {
		totalShares += *p.Shares
	}

	shares := make([]Share, len(participants))
	for i, p := range participants {
		shares[i] = Share{
			ExpenseID: expenseID,
			UserID:    p.UserID,
			Amount:    totalAmount * float64(*p.Shares) / float64(totalShares),
		}
	}
	return shares, nil
}
