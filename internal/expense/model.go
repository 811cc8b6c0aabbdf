package expense

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fairsplit/fairsplit/internal/split"
)

// DebtStatus represents the repayment status of a debt
type DebtStatus string

const (
	DebtStatusPending   DebtStatus = "PENDING"
	DebtStatusPaid      DebtStatus = "PAID"
	DebtStatusConfirmed DebtStatus = "CONFIRMED"
	DebtStatusDisputed  DebtStatus = "DISPUTED"
)

// Expense represents an expense in the system
type Expense struct {
	ID          uuid.UUID       `json:"id"`
	GroupID     uuid.UUID       `json:"group_id"`
	PayerID     uuid.UUID       `json:"payer_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Strategy    string          `json:"strategy"` // EQUAL, PERCENTAGE, EXACT
	CreatedAt   time.Time       `json:"created_at"`

	// Populated via JOIN
	PayerUsername string `json:"payer_username,omitempty"`
}

// Debt is a persisted debt edge (FromUser owes ToUser) plus its repayment
// lifecycle. The edge itself is what the balance aggregator consumes; the
// status machine tracks whether it has been repaid outside a settlement.
type Debt struct {
	ID            uuid.UUID       `json:"id"`
	ExpenseID     uuid.UUID       `json:"expense_id"`
	FromUserID    uuid.UUID       `json:"from_user_id"`
	ToUserID      uuid.UUID       `json:"to_user_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        DebtStatus      `json:"status"`
	DisputeReason *string         `json:"dispute_reason,omitempty"`
	SettlementID  *uuid.UUID      `json:"settlement_id,omitempty"` // Optional: locked to settlement
	UpdatedAt     time.Time       `json:"updated_at"`

	// Populated via JOIN
	FromUsername string `json:"from_username,omitempty"`
}

// Edge converts the persisted debt into the core's edge representation
func (d *Debt) Edge() split.DebtEdge {
	return split.DebtEdge{
		From:     d.FromUserID.String(),
		To:       d.ToUserID.String(),
		Amount:   d.Amount,
		Currency: d.Currency,
	}
}

// ExpenseWithDebts combines an expense with its computed debt edges
type ExpenseWithDebts struct {
	Expense *Expense
	Debts   []*Debt
}
