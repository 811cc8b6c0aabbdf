package split

import "github.com/shopspring/decimal"

// =============================================================================
// DEBT NETTER
// Converts computed shares into directed debt edges owed to the payer
// =============================================================================

// DebtEdge is a directed, single-currency claim: From owes To.
// Edges are never self-loops and never carry a non-positive amount.
type DebtEdge struct {
	From     string          `json:"from"`
	To       string          `json:"to"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// ComputeDebts turns per-expense shares into raw debt edges: every
// participant other than the payer with a strictly positive share owes that
// full share to the payer. The payer's own share is implicitly covered by
// having advanced the whole amount, so no edge touches the payer as debtor.
// Zero shares produce no edge. No cross-expense netting happens here.
func ComputeDebts(shares []Share, payer string, currency string) []DebtEdge {
	edges := make([]DebtEdge, 0, len(shares))
	for _, share := range shares {
		if share.Participant == payer || !share.Amount.IsPositive() {
			continue
		}
		edges = append(edges, DebtEdge{
			From:     share.Participant,
			To:       payer,
			Amount:   share.Amount,
			Currency: currency,
		})
	}
	return edges
}
