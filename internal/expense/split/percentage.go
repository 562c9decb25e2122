package split

import (
	"math"

	"github.com/google/uuid"
)

// PercentageStrategy divides the total by a caller-specified percentage per
// participant. Percentages must sum to 100 within the tolerance.
type PercentageStrategy struct{}

// Type returns the split type identifier
func (s *PercentageStrategy) Type() Type {
	return TypePercentage
}

// Validate checks if the inputs are valid for a percentage split
func (s *PercentageStrategy) Validate(totalAmount float64, participants []Input) error {
	if totalAmount <= 0 {
		return ErrNonPositiveAmount
	}
	if len(participants) == 0 {
		return ErrNoParticipants
	}

	var sum float64
	for _, p := range participants {
		if p.Percentage == nil {
			return ErrMissingAllocation
		}
		if *p.Percentage < 0 {
			return ErrNegativeAllocation
		}
		sum += *p.Percentage
	}

	if math.Abs(sum-100) > Tolerance {
		return ErrInvalidPercentages
	}
	return nil
}

// Calculate gives each participant totalAmount * percentage / 100
func (s *PercentageStrategy) Calculate(expenseID uuid.UUID, totalAmount float64, participants []Input) ([]Share, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	shares := make([]Share, len(participants))
	for i, p := range participants {
		shares[i] = Share{
			ExpenseID: expenseID,
			UserID:    p.UserID,
			Amount:    totalAmount * (*p.Percentage) / 100,
		}
	}
	return shares, nil
}
