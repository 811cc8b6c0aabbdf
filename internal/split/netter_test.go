package split

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDebts(t *testing.T) {
	shares := []Share{
		{Participant: "alice", Amount: dec("30")},
		{Participant: "bob", Amount: dec("30")},
		{Participant: "carol", Amount: dec("30")},
	}

	edges := ComputeDebts(shares, "alice", "USD")
	require.Len(t, edges, 2)

	for _, e := range edges {
		assert.NotEqual(t, e.From, e.To, "debt edges are never self-loops")
		assert.True(t, e.Amount.IsPositive(), "debt edges are always strictly positive")
		assert.Equal(t, "alice", e.To, "everyone owes the payer")
		assert.Equal(t, "USD", e.Currency)
	}
	assert.Equal(t, "bob", edges[0].From)
	assert.Equal(t, "carol", edges[1].From)
	assert.True(t, edges[0].Amount.Equal(dec("30")))
}

func TestComputeDebtsSkipsZeroShares(t *testing.T) {
	shares := []Share{
		{Participant: "alice", Amount: dec("100")},
		{Participant: "bob", Amount: dec("0")},
	}

	edges := ComputeDebts(shares, "alice", "USD")
	assert.Empty(t, edges, "zero shares must not materialize zero-debt edges")
}

func TestComputeDebtsPayerOwesNothing(t *testing.T) {
	shares := []Share{
		{Participant: "alice", Amount: dec("60")},
		{Participant: "bob", Amount: dec("40")},
	}

	edges := ComputeDebts(shares, "alice", "EUR")
	require.Len(t, edges, 1)
	assert.Equal(t, "bob", edges[0].From)
	assert.Equal(t, "alice", edges[0].To)
	assert.True(t, edges[0].Amount.Equal(dec("40")))
}
