package expense

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fairsplit/fairsplit/internal/split"
)

// ParticipantInput names one participant of an expense with the optional
// per-strategy values
type ParticipantInput struct {
	UserID uuid.UUID        `json:"user_id"`
	Weight *decimal.Decimal `json:"weight,omitempty"` // For PERCENTAGE split
	Amount *decimal.Decimal `json:"amount,omitempty"` // For EXACT split
}

// CreateExpenseRequest represents the request to create an expense
type CreateExpenseRequest struct {
	GroupID      uuid.UUID          `json:"group_id" validate:"required"`
	Description  string             `json:"description" validate:"required,min=1,max=255"`
	Amount       decimal.Decimal    `json:"amount" validate:"required"`
	Currency     string             `json:"currency,omitempty"`
	Strategy     string             `json:"strategy" validate:"required,oneof=EQUAL PERCENTAGE EXACT"`
	Participants []ParticipantInput `json:"participants" validate:"required,min=1"`
}

// ToSplitInput assembles the core calculator input from the request. The
// payer comes from the authenticated caller, not the body.
func (r *CreateExpenseRequest) ToSplitInput(payerID uuid.UUID, currency string) split.Input {
	in := split.Input{
		TotalAmount:  r.Amount,
		Currency:     currency,
		Participants: make([]string, len(r.Participants)),
		Payer:        payerID.String(),
		Strategy:     split.Type(r.Strategy),
	}

	for i, p := range r.Participants {
		id := p.UserID.String()
		in.Participants[i] = id
		if p.Weight != nil {
			if in.Weights == nil {
				in.Weights = make(map[string]decimal.Decimal)
			}
			in.Weights[id] = *p.Weight
		}
		if p.Amount != nil {
			if in.ExactShares == nil {
				in.ExactShares = make(map[string]decimal.Decimal)
			}
			in.ExactShares[id] = *p.Amount
		}
	}

	return in
}

// DisputeDebtRequest represents the request to dispute a debt
type DisputeDebtRequest struct {
	Reason string `json:"reason" validate:"required,min=1,max=500"`
}

// ExpenseResponse represents the response for an expense
type ExpenseResponse struct {
	ID            string          `json:"id"`
	GroupID       string          `json:"group_id"`
	PayerID       string          `json:"payer_id"`
	PayerUsername string          `json:"payer_username,omitempty"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Strategy      string          `json:"strategy"`
	CreatedAt     string          `json:"created_at"`
	Debts         []*DebtResponse `json:"debts,omitempty"`
}

// DebtResponse represents the response for a debt
type DebtResponse struct {
	ID            string          `json:"id"`
	ExpenseID     string          `json:"expense_id"`
	FromUserID    string          `json:"from_user_id"`
	FromUsername  string          `json:"from_username,omitempty"`
	ToUserID      string          `json:"to_user_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        DebtStatus      `json:"status"`
	DisputeReason *string         `json:"dispute_reason,omitempty"`
	SettlementID  *string         `json:"settlement_id,omitempty"`
	UpdatedAt     string          `json:"updated_at"`
}

// ToResponse converts an Expense model to an ExpenseResponse DTO
func (e *Expense) ToResponse() *ExpenseResponse {
	return &ExpenseResponse{
		ID:            e.ID.String(),
		GroupID:       e.GroupID.String(),
		PayerID:       e.PayerID.String(),
		PayerUsername: e.PayerUsername,
		Description:   e.Description,
		Amount:        e.Amount,
		Currency:      e.Currency,
		Strategy:      e.Strategy,
		CreatedAt:     e.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse converts a Debt model to a DebtResponse DTO
func (d *Debt) ToResponse() *DebtResponse {
	resp := &DebtResponse{
		ID:            d.ID.String(),
		ExpenseID:     d.ExpenseID.String(),
		FromUserID:    d.FromUserID.String(),
		FromUsername:  d.FromUsername,
		ToUserID:      d.ToUserID.String(),
		Amount:        d.Amount,
		Currency:      d.Currency,
		Status:        d.Status,
		DisputeReason: d.DisputeReason,
		UpdatedAt:     d.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if d.SettlementID != nil {
		id := d.SettlementID.String()
		resp.SettlementID = &id
	}
	return resp
}
