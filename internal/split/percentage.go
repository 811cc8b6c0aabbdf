package split

import "github.com/shopspring/decimal"

// =============================================================================
// PERCENTAGE SPLIT STRATEGY
// Divides the expense based on specified percentages for each participant
// =============================================================================

var oneHundred = decimal.NewFromInt(100)

// PercentageStrategy implements the Strategy interface for percentage-based splits
type PercentageStrategy struct{}

// Type returns the split type identifier
func (s *PercentageStrategy) Type() Type {
	return TypePercentage
}

// Validate checks if the input is valid for a percentage split
func (s *PercentageStrategy) Validate(in Input) error {
	if err := validateCommon(in); err != nil {
		return err
	}

	members := make(map[string]bool, len(in.Participants))
	for _, p := range in.Participants {
		members[p] = true
	}
	for p := range in.Weights {
		if !members[p] {
			return validationErrorf("weight given for %q, who is not a participant", p)
		}
	}

	// Every participant needs a weight and they must sum to 100
	total := decimal.Zero
	for _, p := range in.Participants {
		w, ok := in.Weights[p]
		if !ok {
			return validationErrorf("missing percentage weight for participant %q", p)
		}
		if w.IsNegative() || w.GreaterThan(oneHundred) {
			return validationErrorf("percentage weight for %q must be between 0 and 100, got %s", p, w)
		}
		total = total.Add(w)
	}
	if total.Sub(oneHundred).Abs().GreaterThan(sumEpsilon) {
		return validationErrorf("percentages sum to %s, expected 100.00 ± %s", total.StringFixed(2), sumEpsilon)
	}

	return nil
}

// Calculate divides the total amount based on each participant's percentage
func (s *PercentageStrategy) Calculate(in Input) ([]Share, error) {
	if err := s.Validate(in); err != nil {
		return nil, err
	}

	return withPayerRemainder(in, func(p string) decimal.Decimal {
		return in.TotalAmount.Mul(in.Weights[p]).Div(oneHundred)
	}), nil
}
