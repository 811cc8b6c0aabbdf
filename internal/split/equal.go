package split

import "github.com/shopspring/decimal"

// =============================================================================
// EQUAL SPLIT STRATEGY
// Divides the expense equally among all participants
// =============================================================================

// EqualStrategy implements the Strategy interface for equal splits
type EqualStrategy struct{}

// Type returns the split type identifier
func (s *EqualStrategy) Type() Type {
	return TypeEqual
}

// Validate checks if the input is valid for an equal split
func (s *EqualStrategy) Validate(in Input) error {
	return validateCommon(in)
}

// Calculate divides the total amount evenly among all participants.
// The payer gets a share like everyone else; their advance of the full
// amount is the debt netter's concern, not the calculator's.
func (s *EqualStrategy) Calculate(in Input) ([]Share, error) {
	if err := s.Validate(in); err != nil {
		return nil, err
	}

	count := decimal.NewFromInt(int64(len(in.Participants)))
	perPerson := in.TotalAmount.Div(count)

	return withPayerRemainder(in, func(string) decimal.Decimal {
		return perPerson
	}), nil
}
