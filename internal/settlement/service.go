package settlement

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fairsplit/fairsplit/internal/expense"
	"github.com/fairsplit/fairsplit/internal/split"
)

// Common errors
var (
	ErrSettlementNotFound  = errors.New("settlement not found")
	ErrAlreadySettled      = errors.New("already settled up - no open debts")
	ErrNotPayer            = errors.New("only the payer can mark as paid")
	ErrNotReceiver         = errors.New("only the receiver can confirm/reject")
	ErrInvalidStatusChange = errors.New("invalid status change")
	ErrCannotSettleSelf    = errors.New("cannot create settlement with yourself")
)

// Notifier is the slice of the notification service the settlement flow needs
type Notifier interface {
	NotifySettlementRequested(ctx context.Context, recipientID uuid.UUID, amount decimal.Decimal, currency string, settlementID uuid.UUID) error
	NotifySettlementConfirmed(ctx context.Context, recipientID uuid.UUID, amount decimal.Decimal, currency string, settlementID uuid.UUID) error
	NotifySettlementRejected(ctx context.Context, recipientID uuid.UUID, amount decimal.Decimal, currency string, settlementID uuid.UUID) error
}

// Service handles settlement business logic
type Service struct {
	repo            *Repository
	expenseRepo     *expense.Repository
	notifier        Notifier
	defaultCurrency string
	epsilon         decimal.Decimal
}

// NewService creates a new settlement service
func NewService(repo *Repository, expenseRepo *expense.Repository, notifier Notifier, defaultCurrency string, epsilon decimal.Decimal) *Service {
	return &Service{
		repo:            repo,
		expenseRepo:     expenseRepo,
		notifier:        notifier,
		defaultCurrency: defaultCurrency,
		epsilon:         epsilon,
	}
}

// CreateSettlement creates a new bulk settlement between two users in one
// currency. Anyone can initiate; the payer/receiver roles come from the net
// balance over open debts. A zero-amount settlement is still valid when
// mutual debts cancel out, since confirming it clears them.
func (s *Service) CreateSettlement(ctx context.Context, initiatorID uuid.UUID, req *CreateSettlementRequest) (*Settlement, error) {
	otherUserID := req.OtherUserID

	if initiatorID == otherUserID {
		return nil, ErrCannotSettleSelf
	}

	currency := req.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	debts, err := s.expenseRepo.ListOpenDebtsBetween(ctx, initiatorID, otherUserID)
	if err != nil {
		return nil, err
	}

	var edges []split.DebtEdge
	var debtIDs []uuid.UUID
	for _, d := range debts {
		if d.Currency != currency {
			continue
		}
		edges = append(edges, d.Edge())
		debtIDs = append(debtIDs, d.ID)
	}

	if len(debtIDs) == 0 {
		return nil, ErrAlreadySettled
	}

	// Net from the initiator's viewpoint: positive means the other user
	// owes the initiator. A net below the settled-up threshold falls
	// through to a zero-amount settlement.
	agg := split.Aggregator{Epsilon: s.epsilon}
	net := decimal.Zero
	for _, b := range agg.Aggregate(edges, initiatorID.String()) {
		if b.Counterparty == otherUserID.String() && b.Currency == currency {
			net = b.Amount
			break
		}
	}

	var payerID, receiverID uuid.UUID
	var amount decimal.Decimal

	switch {
	case net.IsPositive():
		payerID = otherUserID
		receiverID = initiatorID
		amount = net
	case net.IsNegative():
		payerID = initiatorID
		receiverID = otherUserID
		amount = net.Neg()
	default:
		// Mutual debts cancel out within the threshold
		payerID = initiatorID
		receiverID = otherUserID
		amount = decimal.Zero
	}

	// Every open debt between the two users in this currency gets locked
	// with the settlement, so it supersedes individual repayment
	settlement, err := s.repo.CreateLockingDebts(ctx, payerID, receiverID, amount, currency, debtIDs)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		_ = s.notifier.NotifySettlementRequested(ctx, otherUserID, amount, currency, settlement.ID)
	}

	return settlement, nil
}

// GetByID retrieves a settlement by its ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Settlement, error) {
	settlement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if settlement == nil {
		return nil, ErrSettlementNotFound
	}
	return settlement, nil
}

// ListByUserID retrieves all settlements for a user
func (s *Service) ListByUserID(ctx context.Context, userID uuid.UUID, page, perPage int) ([]*Settlement, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByUserID(ctx, userID, perPage, offset)
}

// MarkAsPaid allows the payer to mark the settlement as paid
func (s *Service) MarkAsPaid(ctx context.Context, settlementID, userID uuid.UUID) (*Settlement, error) {
	settlement, err := s.repo.GetByID(ctx, settlementID)
	if err != nil {
		return nil, err
	}
	if settlement == nil {
		return nil, ErrSettlementNotFound
	}

	if settlement.PayerID != userID {
		return nil, ErrNotPayer
	}

	// Can only mark as paid from PENDING status
	if settlement.Status != SettlementStatusPending {
		return nil, ErrInvalidStatusChange
	}

	return s.repo.UpdateStatus(ctx, settlementID, SettlementStatusPaid)
}

// Confirm allows the receiver to confirm they received the payment. All
// debts locked to the settlement become confirmed with it.
func (s *Service) Confirm(ctx context.Context, settlementID, userID uuid.UUID) (*Settlement, error) {
	settlement, err := s.repo.GetByID(ctx, settlementID)
	if err != nil {
		return nil, err
	}
	if settlement == nil {
		return nil, ErrSettlementNotFound
	}

	if settlement.ReceiverID != userID {
		return nil, ErrNotReceiver
	}

	// Can only confirm from PAID status
	if settlement.Status != SettlementStatusPaid {
		return nil, ErrInvalidStatusChange
	}

	settlement, err = s.repo.UpdateStatus(ctx, settlementID, SettlementStatusConfirmed)
	if err != nil {
		return nil, err
	}

	if err := s.expenseRepo.ConfirmDebtsBySettlement(ctx, settlementID); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		_ = s.notifier.NotifySettlementConfirmed(ctx, settlement.PayerID, settlement.Amount, settlement.CurrencyCode, settlement.ID)
	}

	return settlement, nil
}

// Reject allows the receiver to reject the settlement. Locked debts go back
// to individual repayment.
func (s *Service) Reject(ctx context.Context, settlementID, userID uuid.UUID) (*Settlement, error) {
	settlement, err := s.repo.GetByID(ctx, settlementID)
	if err != nil {
		return nil, err
	}
	if settlement == nil {
		return nil, ErrSettlementNotFound
	}

	if settlement.ReceiverID != userID {
		return nil, ErrNotReceiver
	}

	// Can reject from PENDING or PAID status
	if settlement.Status != SettlementStatusPending && settlement.Status != SettlementStatusPaid {
		return nil, ErrInvalidStatusChange
	}

	settlement, err = s.repo.UpdateStatus(ctx, settlementID, SettlementStatusRejected)
	if err != nil {
		return nil, err
	}

	if err := s.expenseRepo.UnlockDebtsFromSettlement(ctx, settlementID); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		_ = s.notifier.NotifySettlementRejected(ctx, settlement.PayerID, settlement.Amount, settlement.CurrencyCode, settlement.ID)
	}

	return settlement, nil
}

// GetNetBalances returns the user's net balance per counterparty and
// currency, dropping anything within the settled-up threshold
func (s *Service) GetNetBalances(ctx context.Context, userID uuid.UUID) ([]*NetBalanceResponse, error) {
	edges, err := s.expenseRepo.ListOpenDebtEdgesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	agg := split.Aggregator{Epsilon: s.epsilon}
	balances := agg.Aggregate(edges, userID.String())

	counterpartyIDs := make([]uuid.UUID, 0, len(balances))
	for _, b := range balances {
		id, err := uuid.Parse(b.Counterparty)
		if err != nil {
			return nil, fmt.Errorf("invalid counterparty id %q: %w", b.Counterparty, err)
		}
		counterpartyIDs = append(counterpartyIDs, id)
	}

	usernames, err := s.repo.GetUsernames(ctx, counterpartyIDs)
	if err != nil {
		return nil, err
	}

	responses := make([]*NetBalanceResponse, len(balances))
	for i, b := range balances {
		username := usernames[counterpartyIDs[i]]
		responses[i] = &NetBalanceResponse{
			UserID:   b.Counterparty,
			Username: username,
			Currency: b.Currency,
			Amount:   b.Amount,
			Message:  balanceMessage(username, b.Currency, b.Amount),
		}
	}

	return responses, nil
}

// GetNetBalanceWithUser returns the net balance with a specific user, one
// entry per currency. An empty balance comes back as a settled-up entry.
func (s *Service) GetNetBalanceWithUser(ctx context.Context, userID, otherUserID uuid.UUID) ([]*NetBalanceResponse, error) {
	edges, err := s.expenseRepo.ListOpenDebtEdgesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	usernames, err := s.repo.GetUsernames(ctx, []uuid.UUID{otherUserID})
	if err != nil {
		return nil, err
	}
	username := usernames[otherUserID]

	agg := split.Aggregator{Epsilon: s.epsilon}
	var responses []*NetBalanceResponse
	for _, b := range agg.Aggregate(edges, userID.String()) {
		if b.Counterparty != otherUserID.String() {
			continue
		}
		responses = append(responses, &NetBalanceResponse{
			UserID:   b.Counterparty,
			Username: username,
			Currency: b.Currency,
			Amount:   b.Amount,
			Message:  balanceMessage(username, b.Currency, b.Amount),
		})
	}

	if len(responses) == 0 {
		responses = append(responses, &NetBalanceResponse{
			UserID:   otherUserID.String(),
			Username: username,
			Currency: s.defaultCurrency,
			Amount:   decimal.Zero,
			Message:  fmt.Sprintf("You and %s are settled up", username),
		})
	}

	return responses, nil
}

// balanceMessage renders a net amount from the viewpoint user's perspective.
// Positive means the counterparty owes the viewpoint user.
func balanceMessage(username, currency string, amount decimal.Decimal) string {
	if amount.IsPositive() {
		return fmt.Sprintf("%s owes you %s %s", username, amount.StringFixed(2), currency)
	}
	return fmt.Sprintf("You owe %s %s %s", username, amount.Neg().StringFixed(2), currency)
}
