package settlement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettlementStatus represents the status of a settlement
type SettlementStatus string

const (
	SettlementStatusPending   SettlementStatus = "PENDING"
	SettlementStatusPaid      SettlementStatus = "PAID"
	SettlementStatusConfirmed SettlementStatus = "CONFIRMED"
	SettlementStatusRejected  SettlementStatus = "REJECTED"
)

// Settlement represents a bulk payment between two users in one currency
type Settlement struct {
	ID           uuid.UUID        `json:"id"`
	PayerID      uuid.UUID        `json:"payer_id"`    // Who sends the bulk money
	ReceiverID   uuid.UUID        `json:"receiver_id"` // Who receives the bulk money
	Amount       decimal.Decimal  `json:"amount"`      // The net amount
	CurrencyCode string           `json:"currency_code"`
	Status       SettlementStatus `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`

	// Populated via JOIN
	PayerUsername    string `json:"payer_username,omitempty"`
	ReceiverUsername string `json:"receiver_username,omitempty"`
}
