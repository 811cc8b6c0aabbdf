package expense

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/fairsplit/fairsplit/internal/split"
)

// Repository handles expense and debt data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new expense repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateExpenseWithDebts inserts an expense and its debt edges in one
// transaction, so a failed edge never leaves a partial expense behind
func (r *Repository) CreateExpenseWithDebts(ctx context.Context, payerID uuid.UUID, currency string, req *CreateExpenseRequest, edges []split.DebtEdge) (*ExpenseWithDebts, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	expenseQuery := `
		INSERT INTO expenses (id, group_id, payer_id, description, amount, currency, strategy)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, group_id, payer_id, description, amount, currency, strategy, created_at
	`

	expense := &Expense{}
	err = tx.QueryRowContext(ctx, expenseQuery,
		uuid.New(),
		req.GroupID,
		payerID,
		req.Description,
		req.Amount,
		currency,
		req.Strategy,
	).Scan(
		&expense.ID,
		&expense.GroupID,
		&expense.PayerID,
		&expense.Description,
		&expense.Amount,
		&expense.Currency,
		&expense.Strategy,
		&expense.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	debtQuery := `
		INSERT INTO debts (id, expense_id, from_user_id, to_user_id, amount, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, expense_id, from_user_id, to_user_id, amount, currency, status, dispute_reason, settlement_id, updated_at
	`

	debts := make([]*Debt, len(edges))
	for i, edge := range edges {
		fromID, err := uuid.Parse(edge.From)
		if err != nil {
			return nil, fmt.Errorf("invalid debtor id %q: %w", edge.From, err)
		}

		debt := &Debt{}
		err = tx.QueryRowContext(ctx, debtQuery, uuid.New(), expense.ID, fromID, payerID, edge.Amount, edge.Currency, DebtStatusPending).Scan(
			&debt.ID,
			&debt.ExpenseID,
			&debt.FromUserID,
			&debt.ToUserID,
			&debt.Amount,
			&debt.Currency,
			&debt.Status,
			&debt.DisputeReason,
			&debt.SettlementID,
			&debt.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create debt: %w", err)
		}
		debts[i] = debt
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &ExpenseWithDebts{Expense: expense, Debts: debts}, nil
}

// GetExpenseByID retrieves an expense by its ID
func (r *Repository) GetExpenseByID(ctx context.Context, id uuid.UUID) (*Expense, error) {
	query := `
		SELECT e.id, e.group_id, e.payer_id, e.description, e.amount, e.currency, e.strategy, e.created_at, u.username
		FROM expenses e
		JOIN users u ON e.payer_id = u.id
		WHERE e.id = $1
	`

	expense := &Expense{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&expense.ID,
		&expense.GroupID,
		&expense.PayerID,
		&expense.Description,
		&expense.Amount,
		&expense.Currency,
		&expense.Strategy,
		&expense.CreatedAt,
		&expense.PayerUsername,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	return expense, nil
}

// GetDebtsByExpenseID retrieves all debts for an expense
func (r *Repository) GetDebtsByExpenseID(ctx context.Context, expenseID uuid.UUID) ([]*Debt, error) {
	query := `
		SELECT d.id, d.expense_id, d.from_user_id, d.to_user_id, d.amount, d.currency, d.status, d.dispute_reason, d.settlement_id, d.updated_at, u.username
		FROM debts d
		JOIN users u ON d.from_user_id = u.id
		WHERE d.expense_id = $1
		ORDER BY d.updated_at, d.id
	`

	rows, err := r.db.QueryContext(ctx, query, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get debts: %w", err)
	}
	defer rows.Close()

	return scanDebts(rows, true)
}

// ListExpensesByGroupID retrieves all expenses for a group
func (r *Repository) ListExpensesByGroupID(ctx context.Context, groupID uuid.UUID, limit, offset int) ([]*Expense, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM expenses WHERE group_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, groupID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	query := `
		SELECT e.id, e.group_id, e.payer_id, e.description, e.amount, e.currency, e.strategy, e.created_at, u.username
		FROM expenses e
		JOIN users u ON e.payer_id = u.id
		WHERE e.group_id = $1
		ORDER BY e.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, groupID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*Expense
	for rows.Next() {
		expense := &Expense{}
		if err := rows.Scan(
			&expense.ID,
			&expense.GroupID,
			&expense.PayerID,
			&expense.Description,
			&expense.Amount,
			&expense.Currency,
			&expense.Strategy,
			&expense.CreatedAt,
			&expense.PayerUsername,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}

	return expenses, total, nil
}

// GetDebtByID retrieves a debt by its ID
func (r *Repository) GetDebtByID(ctx context.Context, id uuid.UUID) (*Debt, error) {
	query := `
		SELECT d.id, d.expense_id, d.from_user_id, d.to_user_id, d.amount, d.currency, d.status, d.dispute_reason, d.settlement_id, d.updated_at, u.username
		FROM debts d
		JOIN users u ON d.from_user_id = u.id
		WHERE d.id = $1
	`

	debt := &Debt{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&debt.ID,
		&debt.ExpenseID,
		&debt.FromUserID,
		&debt.ToUserID,
		&debt.Amount,
		&debt.Currency,
		&debt.Status,
		&debt.DisputeReason,
		&debt.SettlementID,
		&debt.UpdatedAt,
		&debt.FromUsername,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get debt: %w", err)
	}

	return debt, nil
}

// UpdateDebtStatus updates the status of a debt
func (r *Repository) UpdateDebtStatus(ctx context.Context, id uuid.UUID, status DebtStatus, disputeReason *string) (*Debt, error) {
	query := `
		UPDATE debts
		SET status = $2, dispute_reason = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING id, expense_id, from_user_id, to_user_id, amount, currency, status, dispute_reason, settlement_id, updated_at
	`

	debt := &Debt{}
	err := r.db.QueryRowContext(ctx, query, id, status, disputeReason).Scan(
		&debt.ID,
		&debt.ExpenseID,
		&debt.FromUserID,
		&debt.ToUserID,
		&debt.Amount,
		&debt.Currency,
		&debt.Status,
		&debt.DisputeReason,
		&debt.SettlementID,
		&debt.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update debt status: %w", err)
	}

	return debt, nil
}

// openDebtFilter selects debts that still count toward balances: not yet
// confirmed, not disputed, and not locked to a settlement
const openDebtFilter = `d.status IN ('PENDING', 'PAID') AND d.settlement_id IS NULL`

// ListOpenDebtsBetween retrieves open debts in both directions between two users
func (r *Repository) ListOpenDebtsBetween(ctx context.Context, userID, otherUserID uuid.UUID) ([]*Debt, error) {
	query := `
		SELECT d.id, d.expense_id, d.from_user_id, d.to_user_id, d.amount, d.currency, d.status, d.dispute_reason, d.settlement_id, d.updated_at
		FROM debts d
		WHERE ((d.from_user_id = $1 AND d.to_user_id = $2) OR (d.from_user_id = $2 AND d.to_user_id = $1))
		  AND ` + openDebtFilter + `
		ORDER BY d.updated_at, d.id
	`

	rows, err := r.db.QueryContext(ctx, query, userID, otherUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get debts: %w", err)
	}
	defer rows.Close()

	return scanDebts(rows, false)
}

// ListOpenDebtEdgesForUser loads every open debt edge touching a user, in
// the core's edge representation, ready for the balance aggregator
func (r *Repository) ListOpenDebtEdgesForUser(ctx context.Context, userID uuid.UUID) ([]split.DebtEdge, error) {
	query := `
		SELECT d.from_user_id, d.to_user_id, d.amount, d.currency
		FROM debts d
		WHERE (d.from_user_id = $1 OR d.to_user_id = $1)
		  AND ` + openDebtFilter + `
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get debt edges: %w", err)
	}
	defer rows.Close()

	var edges []split.DebtEdge
	for rows.Next() {
		var from, to uuid.UUID
		var edge split.DebtEdge
		if err := rows.Scan(&from, &to, &edge.Amount, &edge.Currency); err != nil {
			return nil, fmt.Errorf("failed to scan debt edge: %w", err)
		}
		edge.From = from.String()
		edge.To = to.String()
		edges = append(edges, edge)
	}

	return edges, nil
}

// UnlockDebtsFromSettlement removes the settlement lock from debts
func (r *Repository) UnlockDebtsFromSettlement(ctx context.Context, settlementID uuid.UUID) error {
	query := `UPDATE debts SET settlement_id = NULL, updated_at = NOW() WHERE settlement_id = $1`
	_, err := r.db.ExecContext(ctx, query, settlementID)
	if err != nil {
		return fmt.Errorf("failed to unlock debts: %w", err)
	}
	return nil
}

// ConfirmDebtsBySettlement marks all debts in a settlement as confirmed
func (r *Repository) ConfirmDebtsBySettlement(ctx context.Context, settlementID uuid.UUID) error {
	query := `UPDATE debts SET status = $2, updated_at = NOW() WHERE settlement_id = $1`
	_, err := r.db.ExecContext(ctx, query, settlementID, DebtStatusConfirmed)
	if err != nil {
		return fmt.Errorf("failed to confirm debts: %w", err)
	}
	return nil
}

// DeleteExpense deletes an expense and its debts in one transaction
func (r *Repository) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Delete debts first (foreign key constraint)
	if _, err := tx.ExecContext(ctx, `DELETE FROM debts WHERE expense_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete debts: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrExpenseNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func scanDebts(rows *sql.Rows, withUsername bool) ([]*Debt, error) {
	var debts []*Debt
	for rows.Next() {
		debt := &Debt{}
		dest := []interface{}{
			&debt.ID,
			&debt.ExpenseID,
			&debt.FromUserID,
			&debt.ToUserID,
			&debt.Amount,
			&debt.Currency,
			&debt.Status,
			&debt.DisputeReason,
			&debt.SettlementID,
			&debt.UpdatedAt,
		}
		if withUsername {
			dest = append(dest, &debt.FromUsername)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan debt: %w", err)
		}
		debts = append(debts, debt)
	}
	return debts, nil
}
