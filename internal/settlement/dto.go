package settlement

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateSettlementRequest represents the request to create a settlement.
// Payer/Receiver roles and the amount are derived from the net balance.
type CreateSettlementRequest struct {
	OtherUserID uuid.UUID `json:"other_user_id" validate:"required"` // The user you want to settle with
	Currency    string    `json:"currency,omitempty"`                // Defaults to the server's currency
}

// SettlementResponse represents the response for a settlement
type SettlementResponse struct {
	ID               string           `json:"id"`
	PayerID          string           `json:"payer_id"`
	PayerUsername    string           `json:"payer_username,omitempty"`
	ReceiverID       string           `json:"receiver_id"`
	ReceiverUsername string           `json:"receiver_username,omitempty"`
	Amount           decimal.Decimal  `json:"amount"`
	CurrencyCode     string           `json:"currency_code"`
	Status           SettlementStatus `json:"status"`
	CreatedAt        string           `json:"created_at"`
}

// NetBalanceResponse represents the net balance with another user in one
// currency. Positive amounts mean the other user owes you.
type NetBalanceResponse struct {
	UserID   string          `json:"user_id"`
	Username string          `json:"username,omitempty"`
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
	Message  string          `json:"message"` // e.g., "John owes you 50.00 USD"
}

// ToResponse converts a Settlement model to a SettlementResponse DTO
func (s *Settlement) ToResponse() *SettlementResponse {
	return &SettlementResponse{
		ID:               s.ID.String(),
		PayerID:          s.PayerID.String(),
		PayerUsername:    s.PayerUsername,
		ReceiverID:       s.ReceiverID.String(),
		ReceiverUsername: s.ReceiverUsername,
		Amount:           s.Amount,
		CurrencyCode:     s.CurrencyCode,
		Status:           s.Status,
		CreatedAt:        s.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
