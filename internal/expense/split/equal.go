package split

import "github.com/google/uuid"

// EqualStrategy divides the total uniformly across all participants. The
// division error is not redistributed; the ledger's one-cent tolerance
// absorbs it.
type EqualStrategy struct{}

// Type returns the split type identifier
func (s *EqualStrategy) Type() Type {
	return TypeEqual
}

// Validate checks if the inputs are valid for an equal split
func (s *EqualStrategy) Validate(totalAmount float64, participants []Input) error {
	if totalAmount <= 0 {
		return ErrNonPositiveAmount
	}
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	return nil
}

// Calculate gives every participant totalAmount / n
func (s *EqualStrategy) Calculate(expenseID uuid.UUID, totalAmount float64, participants []Input) ([]Share, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	shareAmount := totalAmount / float64(len(participants))

	shares := make([]Share, len(participants))
	for i, p := range participants {
		shares[i] = Share{
			ExpenseID: expenseID,
			UserID:    p.UserID,
			Amount:    shareAmount,
		}
	}
	return shares, nil
}
