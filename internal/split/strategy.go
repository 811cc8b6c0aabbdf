package split

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Type identifies a split strategy
type Type string

const (
	TypeEqual      Type = "EQUAL"
	TypePercentage Type = "PERCENTAGE"
	TypeExact      Type = "EXACT"
)

// minorUnitPlaces is the number of decimal places kept for monetary amounts
const minorUnitPlaces = 2

// sumEpsilon is the tolerance for user-provided sums (weights, exact shares)
var sumEpsilon = decimal.New(1, -2) // 0.01

// Input describes a single expense to divide among participants
type Input struct {
	TotalAmount  decimal.Decimal            `json:"total_amount"`
	Currency     string                     `json:"currency"`
	Participants []string                   `json:"participants"`
	Payer        string                     `json:"payer"`
	Strategy     Type                       `json:"strategy"`
	Weights      map[string]decimal.Decimal `json:"weights,omitempty"`      // For PERCENTAGE split
	ExactShares  map[string]decimal.Decimal `json:"exact_shares,omitempty"` // For EXACT split
}

// Share is one participant's portion of the total (their responsibility,
// not net of who actually paid)
type Share struct {
	Participant string          `json:"participant"`
	Amount      decimal.Decimal `json:"amount"`
}

// ValidationError reports a malformed or inconsistent Input. The message
// names the violated invariant and the offending values.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// Strategy is the interface that all split strategies must implement
type Strategy interface {
	// Calculate computes every participant's share, including the payer's
	Calculate(in Input) ([]Share, error)

	// Type returns the type identifier for this strategy
	Type() Type

	// Validate checks if the input is valid for this strategy
	Validate(in Input) error
}

// Factory creates split strategies based on the requested type
type Factory struct{}

// NewStrategyFactory creates a new factory instance
func NewStrategyFactory() *Factory {
	return &Factory{}
}

// Create returns the appropriate strategy implementation based on the type
func (f *Factory) Create(t Type) (Strategy, error) {
	switch t {
	case TypeEqual:
		return &EqualStrategy{}, nil
	case TypePercentage:
		return &PercentageStrategy{}, nil
	case TypeExact:
		return &ExactStrategy{}, nil
	default:
		return nil, validationErrorf("unknown split strategy: %q", t)
	}
}

// CreateFromString creates a strategy from a string type (useful for API requests)
func (f *Factory) CreateFromString(t string) (Strategy, error) {
	return f.Create(Type(t))
}

// ComputeShares validates the input and divides the total amount using the
// strategy it names. The returned shares are non-negative and always sum
// exactly to in.TotalAmount at minor-unit precision; any rounding remainder
// is absorbed by the payer.
func ComputeShares(in Input) ([]Share, error) {
	strategy, err := NewStrategyFactory().Create(in.Strategy)
	if err != nil {
		return nil, err
	}
	return strategy.Calculate(in)
}

// validateCommon enforces the invariants shared by every strategy
func validateCommon(in Input) error {
	if len(in.Participants) == 0 {
		return validationErrorf("at least one participant is required")
	}
	seen := make(map[string]bool, len(in.Participants))
	for _, p := range in.Participants {
		if p == "" {
			return validationErrorf("participant identifier cannot be empty")
		}
		if seen[p] {
			return validationErrorf("duplicate participant %q", p)
		}
		seen[p] = true
	}
	if !in.TotalAmount.IsPositive() {
		return validationErrorf("total amount must be positive, got %s", in.TotalAmount)
	}
	if !seen[in.Payer] {
		return validationErrorf("payer %q is not a participant", in.Payer)
	}
	return nil
}

// truncateMinor truncates an amount toward zero at the currency's minor
// unit. Truncation, not half-up rounding: rounding a share up could push the
// non-payers past the total and leave the payer with a negative share.
func truncateMinor(d decimal.Decimal) decimal.Decimal {
	return d.RoundDown(minorUnitPlaces)
}

// withPayerRemainder assigns every non-payer participant its truncated share
// and gives the payer whatever is left of the total. This is what guarantees
// sum(shares) == total exactly: drift from rounding always lands on the
// payer, deterministically.
func withPayerRemainder(in Input, shareFor func(participant string) decimal.Decimal) []Share {
	shares := make([]Share, len(in.Participants))
	othersTotal := decimal.Zero
	payerIdx := -1
	for i, p := range in.Participants {
		if p == in.Payer {
			payerIdx = i
			continue
		}
		amount := truncateMinor(shareFor(p))
		shares[i] = Share{Participant: p, Amount: amount}
		othersTotal = othersTotal.Add(amount)
	}

	payerShare := in.TotalAmount.Sub(othersTotal)

	// The sum tolerance on weights and exact shares still lets the
	// non-payer shares overshoot the total by a few minor units. Reclaim
	// the overshoot in participant order; every share stays non-negative.
	for i := range shares {
		if !payerShare.IsNegative() {
			break
		}
		if i == payerIdx {
			continue
		}
		reclaim := decimal.Min(shares[i].Amount, payerShare.Neg())
		shares[i].Amount = shares[i].Amount.Sub(reclaim)
		payerShare = payerShare.Add(reclaim)
	}

	shares[payerIdx] = Share{Participant: in.Payer, Amount: payerShare}
	return shares
}
