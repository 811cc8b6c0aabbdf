package expense

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fairsplit/fairsplit/internal/split"
)

// Common errors
var (
	ErrExpenseNotFound     = errors.New("expense not found")
	ErrDebtNotFound        = errors.New("debt not found")
	ErrDebtLocked          = errors.New("debt is locked to a settlement")
	ErrNotDebtor           = errors.New("only the debtor can mark as paid")
	ErrNotPayer            = errors.New("only the payer can perform this action")
	ErrInvalidStatusChange = errors.New("invalid status change")
	ErrCannotDeleteExpense = errors.New("cannot delete expense with paid/confirmed debts")
)

// Notifier is the slice of the notification service the expense flow needs
type Notifier interface {
	NotifyDebtAssigned(ctx context.Context, recipientID uuid.UUID, description string, amount decimal.Decimal, currency string, expenseID uuid.UUID) error
	NotifyDebtPaid(ctx context.Context, recipientID uuid.UUID, amount decimal.Decimal, currency string, debtID uuid.UUID) error
}

// Service handles expense business logic
type Service struct {
	repo            *Repository
	notifier        Notifier
	defaultCurrency string
}

// NewService creates a new expense service with dependencies injected
func NewService(repo *Repository, notifier Notifier, defaultCurrency string) *Service {
	return &Service{
		repo:            repo,
		notifier:        notifier,
		defaultCurrency: defaultCurrency,
	}
}

// CreateExpense runs the full pipeline for a new expense: validate and
// compute shares, net them into debt edges owed to the payer, then persist
// the expense with its edges. Split validation failures surface as
// *split.ValidationError.
func (s *Service) CreateExpense(ctx context.Context, payerID uuid.UUID, req *CreateExpenseRequest) (*ExpenseWithDebts, error) {
	currency := req.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	shares, err := split.ComputeShares(req.ToSplitInput(payerID, currency))
	if err != nil {
		return nil, err
	}

	edges := split.ComputeDebts(shares, payerID.String(), currency)

	result, err := s.repo.CreateExpenseWithDebts(ctx, payerID, currency, req, edges)
	if err != nil {
		return nil, err
	}

	// Best effort: a failed notification must not fail the expense
	if s.notifier != nil {
		for _, debt := range result.Debts {
			_ = s.notifier.NotifyDebtAssigned(ctx, debt.FromUserID, req.Description, debt.Amount, debt.Currency, result.Expense.ID)
		}
	}

	return result, nil
}

// GetExpenseByID retrieves an expense with its debts
func (s *Service) GetExpenseByID(ctx context.Context, id uuid.UUID) (*ExpenseWithDebts, error) {
	expense, err := s.repo.GetExpenseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, ErrExpenseNotFound
	}

	debts, err := s.repo.GetDebtsByExpenseID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &ExpenseWithDebts{
		Expense: expense,
		Debts:   debts,
	}, nil
}

// ListExpensesByGroupID retrieves expenses for a group
func (s *Service) ListExpensesByGroupID(ctx context.Context, groupID uuid.UUID, page, perPage int) ([]*Expense, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListExpensesByGroupID(ctx, groupID, perPage, offset)
}

// MarkDebtAsPaid allows the debtor to mark their debt as paid
func (s *Service) MarkDebtAsPaid(ctx context.Context, debtID, userID uuid.UUID) (*Debt, error) {
	debt, err := s.repo.GetDebtByID(ctx, debtID)
	if err != nil {
		return nil, err
	}
	if debt == nil {
		return nil, ErrDebtNotFound
	}

	if debt.FromUserID != userID {
		return nil, ErrNotDebtor
	}

	if debt.SettlementID != nil {
		return nil, ErrDebtLocked
	}

	// Can only mark as paid from PENDING status
	if debt.Status != DebtStatusPending {
		return nil, ErrInvalidStatusChange
	}

	updated, err := s.repo.UpdateDebtStatus(ctx, debtID, DebtStatusPaid, nil)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		_ = s.notifier.NotifyDebtPaid(ctx, debt.ToUserID, debt.Amount, debt.Currency, debt.ID)
	}

	return updated, nil
}

// ConfirmDebtPayment allows the creditor to confirm they received the payment
func (s *Service) ConfirmDebtPayment(ctx context.Context, debtID, userID uuid.UUID) (*Debt, error) {
	debt, err := s.repo.GetDebtByID(ctx, debtID)
	if err != nil {
		return nil, err
	}
	if debt == nil {
		return nil, ErrDebtNotFound
	}

	if debt.ToUserID != userID {
		return nil, ErrNotPayer
	}

	if debt.SettlementID != nil {
		return nil, ErrDebtLocked
	}

	// Can only confirm from PAID status
	if debt.Status != DebtStatusPaid {
		return nil, ErrInvalidStatusChange
	}

	return s.repo.UpdateDebtStatus(ctx, debtID, DebtStatusConfirmed, nil)
}

// DisputeDebt allows the debtor to dispute a debt
func (s *Service) DisputeDebt(ctx context.Context, debtID, userID uuid.UUID, reason string) (*Debt, error) {
	debt, err := s.repo.GetDebtByID(ctx, debtID)
	if err != nil {
		return nil, err
	}
	if debt == nil {
		return nil, ErrDebtNotFound
	}

	if debt.FromUserID != userID {
		return nil, ErrNotDebtor
	}

	// Can dispute from PENDING or PAID status
	if debt.Status != DebtStatusPending && debt.Status != DebtStatusPaid {
		return nil, ErrInvalidStatusChange
	}

	return s.repo.UpdateDebtStatus(ctx, debtID, DebtStatusDisputed, &reason)
}

// DeleteExpense deletes an expense if no debts are paid/confirmed
func (s *Service) DeleteExpense(ctx context.Context, id, userID uuid.UUID) error {
	expense, err := s.repo.GetExpenseByID(ctx, id)
	if err != nil {
		return err
	}
	if expense == nil {
		return ErrExpenseNotFound
	}

	if expense.PayerID != userID {
		return ErrNotPayer
	}

	debts, err := s.repo.GetDebtsByExpenseID(ctx, id)
	if err != nil {
		return err
	}
	for _, debt := range debts {
		if debt.Status == DebtStatusPaid || debt.Status == DebtStatusConfirmed {
			return ErrCannotDeleteExpense
		}
	}

	return s.repo.DeleteExpense(ctx, id)
}
