package split

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Type identifies a cost-division policy
type Type string

const (
	TypeEqual      Type = "EQUAL"
	TypeExact      Type = "EXACT"
	TypePercentage Type = "PERCENTAGE"
	TypeShares     Type = "SHARES"
)

// Input represents one participant in a split. The optional fields carry the
// per-policy allocation: Amount for EXACT, Percentage for PERCENTAGE and
// Shares for SHARES. EQUAL needs none of them.
type Input struct {
	UserID     uuid.UUID `json:"user_id"`
	Amount     *float64  `json:"amount,omitempty"`
	Percentage *float64  `json:"percentage,omitempty"`
	Shares     *int      `json:"shares,omitempty"`
}

// Share is one participant's computed portion of an expense. The expense id
// is a parameter of share construction, so a share can never exist in memory
// without the expense it belongs to.
type Share struct {
	ExpenseID uuid.UUID `json:"expense_id"`
	UserID    uuid.UUID `json:"user_id"`
	Amount    float64   `json:"amount"`
	IsSettled bool      `json:"is_settled"`
}

// Strategy is the interface that all split strategies must implement
type Strategy interface {
	// Calculate computes every participant's share of the total. The payer is
	// included: their share is offset by the full amount they paid when the
	// ledger aggregates balances.
	Calculate(expenseID uuid.UUID, totalAmount float64, participants []Input) ([]Share, error)

	// Type returns the type identifier for this strategy
	Type() Type

	// Validate checks if the inputs are valid for this strategy
	Validate(totalAmount float64, participants []Input) error
}

// Factory creates split strategies based on the requested type
type Factory struct{}

// NewFactory creates a new factory instance
func NewFactory() *Factory {
	return &Factory{}
}

// Create returns the appropriate strategy implementation based on the type
func (f *Factory) Create(splitType Type) (Strategy, error) {
	switch splitType {
	case TypeEqual:
		return &EqualStrategy{}, nil
	case TypeExact:
		return &ExactStrategy{}, nil
	case TypePercentage:
		return &PercentageStrategy{}, nil
	case TypeShares:
		return &SharesStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSplitType, splitType)
	}
}

// CreateFromString creates a strategy from a string type (useful for API requests)
func (f *Factory) CreateFromString(splitType string) (Strategy, error) {
	return f.Create(Type(splitType))
}

var (
	ErrUnknownSplitType     = errors.New("unknown split type")
	ErrEmptyDescription     = errors.New("expense description cannot be empty")
	ErrNonPositiveAmount    = errors.New("expense amount must be positive")
	ErrNoParticipants       = errors.New("at least one participant is required")
	ErrDuplicateParticipant = errors.New("participants cannot contain the same user twice")
	ErrPayerNotParticipant  = errors.New("the person who paid must be included in participants")
	ErrMissingAllocation    = errors.New("all participants must have an allocation for this split type")
	ErrAllocationMismatch   = errors.New("allocations must sum to the total expense amount")
	ErrInvalidPercentages   = errors.New("percentages must sum to 100")
	ErrZeroTotalShares      = errors.New("total share count must be greater than zero")
	ErrNegativeAllocation   = errors.New("allocations cannot be negative")
)

// Tolerance is the accepted absolute error on sum checks (one cent).
const Tolerance = 0.01

// Round2 rounds a currency value to 2 decimal places
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}
