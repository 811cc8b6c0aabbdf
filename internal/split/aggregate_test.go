package split

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func edge(from, to, amount, currency string) DebtEdge {
	return DebtEdge{From: from, To: to, Amount: dec(amount), Currency: currency}
}

func TestAggregateSignConvention(t *testing.T) {
	edges := []DebtEdge{
		edge("bob", "alice", "30", "USD"),
		edge("alice", "carol", "12.50", "USD"),
	}

	balances := NewAggregator().Aggregate(edges, "alice")
	require.Len(t, balances, 2)

	// Sorted by counterparty
	assert.Equal(t, "bob", balances[0].Counterparty)
	assert.True(t, balances[0].Amount.Equal(dec("30")), "bob owes alice: positive")

	assert.Equal(t, "carol", balances[1].Counterparty)
	assert.True(t, balances[1].Amount.Equal(dec("-12.50")), "alice owes carol: negative")
}

func TestAggregateCollapsesPerCounterpartyAndCurrency(t *testing.T) {
	edges := []DebtEdge{
		edge("bob", "alice", "20", "USD"),
		edge("bob", "alice", "15", "USD"),
		edge("alice", "bob", "10", "USD"),
		edge("bob", "alice", "5", "EUR"),
	}

	balances := NewAggregator().Aggregate(edges, "alice")
	require.Len(t, balances, 2, "at most one balance per (counterparty, currency)")

	assert.Equal(t, "EUR", balances[0].Currency)
	assert.True(t, balances[0].Amount.Equal(dec("5")))
	assert.Equal(t, "USD", balances[1].Currency)
	assert.True(t, balances[1].Amount.Equal(dec("25")))
}

func TestAggregateIdempotentAndOrderInsensitive(t *testing.T) {
	edges := []DebtEdge{
		edge("bob", "alice", "30", "USD"),
		edge("carol", "alice", "7.25", "USD"),
		edge("alice", "bob", "12", "USD"),
		edge("carol", "alice", "3", "EUR"),
	}
	reversed := make([]DebtEdge, len(edges))
	for i, e := range edges {
		reversed[len(edges)-1-i] = e
	}

	agg := NewAggregator()
	first := agg.Aggregate(edges, "alice")
	second := agg.Aggregate(edges, "alice")
	shuffled := agg.Aggregate(reversed, "alice")

	assert.Equal(t, first, second, "re-running on the same edges yields identical results")
	assert.Equal(t, first, shuffled, "input order must not matter")
}

func TestAggregateSettledUpDisappears(t *testing.T) {
	edges := []DebtEdge{
		edge("alice", "bob", "50", "USD"),
		edge("bob", "alice", "50", "USD"),
	}

	balances := NewAggregator().Aggregate(edges, "alice")
	assert.Empty(t, balances, "mutual debts cancel to zero and are dropped")
}

func TestAggregateEpsilonThreshold(t *testing.T) {
	edges := []DebtEdge{
		edge("bob", "alice", "10.005", "USD"),
		edge("alice", "bob", "10", "USD"),
	}

	t.Run("below the default epsilon is settled up", func(t *testing.T) {
		balances := NewAggregator().Aggregate(edges, "alice")
		assert.Empty(t, balances)
	})

	t.Run("a custom epsilon changes the threshold", func(t *testing.T) {
		agg := Aggregator{Epsilon: dec("0.001")}
		balances := agg.Aggregate(edges, "alice")
		require.Len(t, balances, 1)
		assert.True(t, balances[0].Amount.Equal(dec("0.005")))
	})

	t.Run("exactly the epsilon is kept", func(t *testing.T) {
		agg := NewAggregator()
		balances := agg.Aggregate([]DebtEdge{edge("bob", "alice", "0.01", "USD")}, "alice")
		require.Len(t, balances, 1)
	})
}

func TestAggregateIgnoresUnrelatedEdges(t *testing.T) {
	edges := []DebtEdge{
		edge("bob", "carol", "100", "USD"),
		edge("carol", "dave", "40", "USD"),
	}

	balances := NewAggregator().Aggregate(edges, "alice")
	assert.Empty(t, balances)
}

func TestPipelineEndToEnd(t *testing.T) {
	// totalAmount=90 USD, participants [alice,bob,carol], payer alice, equal
	shares, err := ComputeShares(Input{
		TotalAmount:  dec("90"),
		Currency:     "USD",
		Participants: []string{"alice", "bob", "carol"},
		Payer:        "alice",
		Strategy:     TypeEqual,
	})
	require.NoError(t, err)
	for _, s := range shares {
		assert.True(t, s.Amount.Equal(dec("30")))
	}

	debts := ComputeDebts(shares, "alice", "USD")
	require.Len(t, debts, 2)
	assert.Equal(t, "bob", debts[0].From)
	assert.Equal(t, "carol", debts[1].From)
	assert.True(t, debts[0].Amount.Equal(dec("30")))
	assert.True(t, debts[1].Amount.Equal(dec("30")))

	agg := NewAggregator()

	fromAlice := agg.Aggregate(debts, "alice")
	require.Len(t, fromAlice, 2)
	assert.Equal(t, "bob", fromAlice[0].Counterparty)
	assert.True(t, fromAlice[0].Amount.Equal(dec("30")))
	assert.Equal(t, "carol", fromAlice[1].Counterparty)
	assert.True(t, fromAlice[1].Amount.Equal(dec("30")))

	fromBob := agg.Aggregate(debts, "bob")
	require.Len(t, fromBob, 1)
	assert.Equal(t, "alice", fromBob[0].Counterparty)
	assert.True(t, fromBob[0].Amount.Equal(dec("-30")))
}
