package split

import "github.com/shopspring/decimal"

// =============================================================================
// EXACT SPLIT STRATEGY
// Each participant owes a specific exact amount (must sum to total)
// =============================================================================

// ExactStrategy implements the Strategy interface for exact amount splits
type ExactStrategy struct{}

// Type returns the split type identifier
func (s *ExactStrategy) Type() Type {
	return TypeExact
}

// Validate checks if the input is valid for an exact split
func (s *ExactStrategy) Validate(in Input) error {
	if err := validateCommon(in); err != nil {
		return err
	}

	members := make(map[string]bool, len(in.Participants))
	for _, p := range in.Participants {
		members[p] = true
	}
	for p := range in.ExactShares {
		if !members[p] {
			return validationErrorf("exact share given for %q, who is not a participant", p)
		}
	}

	// Every participant needs an amount and they must sum to the total
	total := decimal.Zero
	for _, p := range in.Participants {
		amount, ok := in.ExactShares[p]
		if !ok {
			return validationErrorf("missing exact share for participant %q", p)
		}
		if amount.IsNegative() {
			return validationErrorf("exact share for %q cannot be negative, got %s", p, amount)
		}
		total = total.Add(amount)
	}
	if total.Sub(in.TotalAmount).Abs().GreaterThan(sumEpsilon) {
		return validationErrorf("exact shares sum to %s, expected %s ± %s",
			total.StringFixed(2), in.TotalAmount.StringFixed(2), sumEpsilon)
	}

	return nil
}

// Calculate returns the declared amount for each participant, truncated to
// the minor unit. The payer additionally absorbs any sub-tolerance residue
// between the declared shares and the total, so the shares still sum
// exactly to it.
func (s *ExactStrategy) Calculate(in Input) ([]Share, error) {
	if err := s.Validate(in); err != nil {
		return nil, err
	}

	return withPayerRemainder(in, func(p string) decimal.Decimal {
		return in.ExactShares[p]
	}), nil
}
