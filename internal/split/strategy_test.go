package split

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func weights(m map[string]string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(m))
	for k, v := range m {
		out[k] = dec(v)
	}
	return out
}

func shareSum(shares []Share) decimal.Decimal {
	total := decimal.Zero
	for _, s := range shares {
		total = total.Add(s.Amount)
	}
	return total
}

func shareOf(t *testing.T, shares []Share, participant string) decimal.Decimal {
	t.Helper()
	for _, s := range shares {
		if s.Participant == participant {
			return s.Amount
		}
	}
	t.Fatalf("no share for participant %q", participant)
	return decimal.Zero
}

func TestEqualSplit(t *testing.T) {
	tests := []struct {
		name     string
		total    string
		expected map[string]string
	}{
		{
			name:     "divides evenly",
			total:    "90",
			expected: map[string]string{"alice": "30", "bob": "30", "carol": "30"},
		},
		{
			name:     "payer absorbs the rounding remainder",
			total:    "100",
			expected: map[string]string{"alice": "33.34", "bob": "33.33", "carol": "33.33"},
		},
		{
			name:     "larger remainder still lands on the payer",
			total:    "100.01",
			expected: map[string]string{"alice": "33.35", "bob": "33.33", "carol": "33.33"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := ComputeShares(Input{
				TotalAmount:  dec(tt.total),
				Currency:     "USD",
				Participants: []string{"alice", "bob", "carol"},
				Payer:        "alice",
				Strategy:     TypeEqual,
			})
			require.NoError(t, err)
			require.Len(t, shares, 3)

			for participant, want := range tt.expected {
				got := shareOf(t, shares, participant)
				assert.True(t, got.Equal(dec(want)), "share for %s: got %s, want %s", participant, got, want)
			}
			assert.True(t, shareSum(shares).Equal(dec(tt.total)), "shares must sum to the total exactly")
		})
	}
}

func TestEqualSplitSingleParticipant(t *testing.T) {
	shares, err := ComputeShares(Input{
		TotalAmount:  dec("42.50"),
		Currency:     "USD",
		Participants: []string{"alice"},
		Payer:        "alice",
		Strategy:     TypeEqual,
	})
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.True(t, shares[0].Amount.Equal(dec("42.50")))
}

func assertNoNegativeShares(t *testing.T, shares []Share) {
	t.Helper()
	for _, s := range shares {
		assert.False(t, s.Amount.IsNegative(), "share for %s is negative: %s", s.Participant, s.Amount)
	}
}

func TestSharesNeverNegative(t *testing.T) {
	t.Run("equal split of a tiny total across many participants", func(t *testing.T) {
		shares, err := ComputeShares(Input{
			TotalAmount:  dec("0.05"),
			Currency:     "USD",
			Participants: []string{"alice", "bob", "carol", "dave", "erin", "frank", "grace"},
			Payer:        "alice",
			Strategy:     TypeEqual,
		})
		require.NoError(t, err)

		assertNoNegativeShares(t, shares)
		assert.True(t, shareSum(shares).Equal(dec("0.05")))
		// 0.05/7 truncates to zero per head, so the whole total stays
		// with the payer instead of the debtors overpaying
		assert.True(t, shareOf(t, shares, "alice").Equal(dec("0.05")))
		assert.True(t, shareOf(t, shares, "bob").Equal(decimal.Zero))
	})

	t.Run("percentage weights at the tolerance ceiling", func(t *testing.T) {
		shares, err := ComputeShares(Input{
			TotalAmount:  dec("1000"),
			Currency:     "USD",
			Participants: []string{"alice", "bob", "carol"},
			Payer:        "alice",
			Strategy:     TypePercentage,
			Weights:      weights(map[string]string{"alice": "0", "bob": "50.005", "carol": "50.005"}),
		})
		require.NoError(t, err)

		assertNoNegativeShares(t, shares)
		assert.True(t, shareSum(shares).Equal(dec("1000")))
		assert.True(t, shareOf(t, shares, "alice").Equal(decimal.Zero), "a zero-weight payer cannot end up owed money by the split")
	})

	t.Run("exact shares at the tolerance ceiling", func(t *testing.T) {
		shares, err := ComputeShares(Input{
			TotalAmount:  dec("100"),
			Currency:     "USD",
			Participants: []string{"alice", "bob", "carol"},
			Payer:        "alice",
			Strategy:     TypeExact,
			ExactShares:  weights(map[string]string{"alice": "0", "bob": "50", "carol": "50.01"}),
		})
		require.NoError(t, err)

		assertNoNegativeShares(t, shares)
		assert.True(t, shareSum(shares).Equal(dec("100")))
		assert.True(t, shareOf(t, shares, "alice").Equal(decimal.Zero))
		// The declared overshoot is reclaimed in participant order
		assert.True(t, shareOf(t, shares, "bob").Equal(dec("49.99")))
		assert.True(t, shareOf(t, shares, "carol").Equal(dec("50.01")))
	})
}

func TestPercentageSplit(t *testing.T) {
	shares, err := ComputeShares(Input{
		TotalAmount:  dec("200"),
		Currency:     "EUR",
		Participants: []string{"alice", "bob", "carol"},
		Payer:        "bob",
		Strategy:     TypePercentage,
		Weights:      weights(map[string]string{"alice": "50", "bob": "30", "carol": "20"}),
	})
	require.NoError(t, err)

	assert.True(t, shareOf(t, shares, "alice").Equal(dec("100")))
	assert.True(t, shareOf(t, shares, "bob").Equal(dec("60")))
	assert.True(t, shareOf(t, shares, "carol").Equal(dec("40")))
	assert.True(t, shareSum(shares).Equal(dec("200")))
}

func TestPercentageSplitRoundingLandsOnPayer(t *testing.T) {
	// Three equal thirds of 100.00 cannot be represented exactly; the
	// payer's share picks up the difference.
	shares, err := ComputeShares(Input{
		TotalAmount:  dec("100"),
		Currency:     "USD",
		Participants: []string{"alice", "bob", "carol"},
		Payer:        "carol",
		Strategy:     TypePercentage,
		Weights:      weights(map[string]string{"alice": "33.33", "bob": "33.33", "carol": "33.34"}),
	})
	require.NoError(t, err)
	assert.True(t, shareOf(t, shares, "alice").Equal(dec("33.33")))
	assert.True(t, shareOf(t, shares, "bob").Equal(dec("33.33")))
	assert.True(t, shareOf(t, shares, "carol").Equal(dec("33.34")))
	assert.True(t, shareSum(shares).Equal(dec("100")))
}

func TestPercentageSplitValidation(t *testing.T) {
	base := func() Input {
		return Input{
			TotalAmount:  dec("100"),
			Currency:     "USD",
			Participants: []string{"alice", "bob"},
			Payer:        "alice",
			Strategy:     TypePercentage,
		}
	}

	t.Run("weights summing to 95 are rejected", func(t *testing.T) {
		in := base()
		in.Weights = weights(map[string]string{"alice": "50", "bob": "45"})
		_, err := ComputeShares(in)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Error(), "95.00")
		assert.Contains(t, verr.Error(), "100.00")
	})

	t.Run("weights summing to 100.005 are within tolerance", func(t *testing.T) {
		in := base()
		in.Weights = weights(map[string]string{"alice": "50.005", "bob": "50"})
		shares, err := ComputeShares(in)
		require.NoError(t, err)
		assert.True(t, shareSum(shares).Equal(dec("100")))
	})

	t.Run("missing weight", func(t *testing.T) {
		in := base()
		in.Weights = weights(map[string]string{"alice": "100"})
		_, err := ComputeShares(in)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Error(), "bob")
	})

	t.Run("weight for a non-participant", func(t *testing.T) {
		in := base()
		in.Weights = weights(map[string]string{"alice": "50", "bob": "50", "mallory": "0"})
		_, err := ComputeShares(in)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Error(), "mallory")
	})

	t.Run("negative weight", func(t *testing.T) {
		in := base()
		in.Weights = weights(map[string]string{"alice": "110", "bob": "-10"})
		_, err := ComputeShares(in)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})
}

func TestExactSplit(t *testing.T) {
	t.Run("uses the declared amounts verbatim", func(t *testing.T) {
		shares, err := ComputeShares(Input{
			TotalAmount:  dec("75.50"),
			Currency:     "USD",
			Participants: []string{"alice", "bob"},
			Payer:        "alice",
			Strategy:     TypeExact,
			ExactShares:  weights(map[string]string{"alice": "25.50", "bob": "50"}),
		})
		require.NoError(t, err)
		assert.True(t, shareOf(t, shares, "alice").Equal(dec("25.50")))
		assert.True(t, shareOf(t, shares, "bob").Equal(dec("50")))
	})

	t.Run("payer absorbs sub-tolerance residue", func(t *testing.T) {
		shares, err := ComputeShares(Input{
			TotalAmount:  dec("100"),
			Currency:     "USD",
			Participants: []string{"alice", "bob"},
			Payer:        "alice",
			Strategy:     TypeExact,
			ExactShares:  weights(map[string]string{"alice": "50", "bob": "49.995"}),
		})
		require.NoError(t, err)
		assert.True(t, shareOf(t, shares, "bob").Equal(dec("49.99")), "bob's declared share truncates to the minor unit")
		assert.True(t, shareOf(t, shares, "alice").Equal(dec("50.01")))
		assert.True(t, shareSum(shares).Equal(dec("100")))
	})

	t.Run("amounts out of tolerance are rejected", func(t *testing.T) {
		_, err := ComputeShares(Input{
			TotalAmount:  dec("100"),
			Currency:     "USD",
			Participants: []string{"alice", "bob"},
			Payer:        "alice",
			Strategy:     TypeExact,
			ExactShares:  weights(map[string]string{"alice": "50", "bob": "49.50"}),
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Error(), "99.50")
		assert.Contains(t, verr.Error(), "100.00")
	})

	t.Run("missing amount", func(t *testing.T) {
		_, err := ComputeShares(Input{
			TotalAmount:  dec("100"),
			Currency:     "USD",
			Participants: []string{"alice", "bob"},
			Payer:        "alice",
			Strategy:     TypeExact,
			ExactShares:  weights(map[string]string{"alice": "100"}),
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Error(), "bob")
	})
}

func TestCommonValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Input)
		wantMsg string
	}{
		{
			name:    "empty participants",
			mutate:  func(in *Input) { in.Participants = nil },
			wantMsg: "at least one participant",
		},
		{
			name:    "duplicate participant",
			mutate:  func(in *Input) { in.Participants = []string{"alice", "bob", "alice"} },
			wantMsg: "duplicate participant",
		},
		{
			name:    "zero total",
			mutate:  func(in *Input) { in.TotalAmount = decimal.Zero },
			wantMsg: "must be positive",
		},
		{
			name:    "negative total",
			mutate:  func(in *Input) { in.TotalAmount = dec("-5") },
			wantMsg: "must be positive",
		},
		{
			name:    "payer not a participant",
			mutate:  func(in *Input) { in.Payer = "mallory" },
			wantMsg: "not a participant",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Input{
				TotalAmount:  dec("100"),
				Currency:     "USD",
				Participants: []string{"alice", "bob"},
				Payer:        "alice",
				Strategy:     TypeEqual,
			}
			tt.mutate(&in)

			_, err := ComputeShares(in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Error(), tt.wantMsg)
		})
	}
}

func TestUnknownStrategy(t *testing.T) {
	_, err := ComputeShares(Input{
		TotalAmount:  dec("100"),
		Currency:     "USD",
		Participants: []string{"alice"},
		Payer:        "alice",
		Strategy:     Type("HALVSIES"),
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "HALVSIES")
}
