package split

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// BALANCE AGGREGATOR
// Folds many debt edges into one signed net balance per counterparty/currency
// =============================================================================

// DefaultEpsilon is the magnitude below which a net balance counts as
// settled up, in the currency's minor unit.
var DefaultEpsilon = decimal.New(1, -2) // 0.01

// NetBalance is the collapsed, signed balance with one counterparty in one
// currency. Positive means the counterparty owes the viewpoint; negative
// means the viewpoint owes the counterparty.
type NetBalance struct {
	Counterparty string          `json:"counterparty"`
	Currency     string          `json:"currency"`
	Amount       decimal.Decimal `json:"amount"`
}

// Aggregator computes net balances from raw debt edges
type Aggregator struct {
	// Epsilon is the settled-up threshold; balances with a smaller
	// magnitude are dropped rather than reported as zero.
	Epsilon decimal.Decimal
}

// NewAggregator creates an aggregator with the default epsilon
func NewAggregator() Aggregator {
	return Aggregator{Epsilon: DefaultEpsilon}
}

// Aggregate folds every edge touching viewpoint into a running signed total
// per (counterparty, currency) and drops totals below the epsilon. Edges not
// touching the viewpoint are ignored; currencies are opaque strings and are
// never validated here. The result is sorted by counterparty, then currency,
// so the same edge set always aggregates to the same output regardless of
// input order.
func (a Aggregator) Aggregate(edges []DebtEdge, viewpoint string) []NetBalance {
	type pair struct {
		counterparty string
		currency     string
	}

	totals := make(map[pair]decimal.Decimal)
	for _, edge := range edges {
		switch viewpoint {
		case edge.From:
			// Viewpoint owes the counterparty
			k := pair{edge.To, edge.Currency}
			totals[k] = totals[k].Sub(edge.Amount)
		case edge.To:
			// Counterparty owes the viewpoint
			k := pair{edge.From, edge.Currency}
			totals[k] = totals[k].Add(edge.Amount)
		}
	}

	epsilon := a.Epsilon
	if !epsilon.IsPositive() {
		epsilon = DefaultEpsilon
	}

	balances := make([]NetBalance, 0, len(totals))
	for k, amount := range totals {
		if amount.Abs().LessThan(epsilon) {
			continue // settled up
		}
		balances = append(balances, NetBalance{
			Counterparty: k.counterparty,
			Currency:     k.currency,
			Amount:       amount,
		})
	}

	sort.Slice(balances, func(i, j int) bool {
		if balances[i].Counterparty != balances[j].Counterparty {
			return balances[i].Counterparty < balances[j].Counterparty
		}
		return balances[i].Currency < balances[j].Currency
	})

	return balances
}
