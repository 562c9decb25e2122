package split

import (
	"math"

	"github.com/google/uuid"
)

// ExactStrategy assigns each participant a caller-specified amount. The
// amounts must sum to the expense total within the one-cent tolerance.
type ExactStrategy struct{}

// Type returns the split type identifier
func (s *ExactStrategy) Type() Type {
	return TypeExact
}

// Validate checks if the inputs are valid for an exact split
func (s *ExactStrategy) Validate(totalAmount float64, participants []Input) error {
	if totalAmount <= 0 {
		return ErrNonPositiveAmount
	}
	if len(participants) == 0 {
		return ErrNoParticipants
	}

	var sum float64
	for _, p := range participants {
		if p.Amount == nil {
			return ErrMissingAllocation
		}
		if *p.Amount < 0 {
			return ErrNegativeAllocation
		}
		sum += *p.Amount
	}

	if math.Abs(sum-totalAmount) > Tolerance {
		return ErrAllocationMismatch
	}
	return nil
}

// Calculate returns the amounts exactly as specified
func (s *ExactStrategy) Calculate(expenseID uuid.UUID, totalAmount float64, participants []Input) ([]Share, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	shares := make([]Share, len(participants))
	for i, p := range participants {
		shares[i] = Share{
			ExpenseID: expenseID,
			UserID:    p.UserID,
			Amount:    *p.Amount,
		}
	}
	return shares, nil
}
