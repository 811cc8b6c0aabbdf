package expense

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fairsplit/fairsplit/internal/split"
	"github.com/fairsplit/fairsplit/pkg/middleware"
	"github.com/fairsplit/fairsplit/pkg/response"
)

// Handler handles HTTP requests for expense operations
type Handler struct {
	service *Service
}

// NewHandler creates a new expense handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for expense endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/{id}", h.GetByID)
	r.Delete("/{id}", h.Delete)

	// Group-based listing
	r.Get("/group/{groupId}", h.ListByGroup)

	// Debt operations
	r.Post("/debts/{debtId}/pay", h.MarkDebtAsPaid)
	r.Post("/debts/{debtId}/confirm", h.ConfirmDebtPayment)
	r.Post("/debts/{debtId}/dispute", h.DisputeDebt)

	return r
}

// Create handles POST /expenses
// @Summary      Create a new expense
// @Description  Create an expense with automatic debt calculation using the EQUAL, PERCENTAGE, or EXACT strategy
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body CreateExpenseRequest true "Expense creation request"
// @Success      201 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /expenses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	payerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	validStrategies := map[string]bool{"EQUAL": true, "PERCENTAGE": true, "EXACT": true}
	if !validStrategies[req.Strategy] {
		response.BadRequest(w, "Invalid strategy. Must be EQUAL, PERCENTAGE, or EXACT")
		return
	}

	result, err := h.service.CreateExpense(r.Context(), payerID, &req)
	if err != nil {
		var verr *split.ValidationError
		if errors.As(err, &verr) {
			response.BadRequest(w, verr.Error())
			return
		}
		response.InternalError(w, "Failed to create expense")
		return
	}

	expenseResp := result.Expense.ToResponse()
	expenseResp.Debts = make([]*DebtResponse, len(result.Debts))
	for i, d := range result.Debts {
		expenseResp.Debts[i] = d.ToResponse()
	}

	response.JSON(w, http.StatusCreated, expenseResp)
}

// GetByID handles GET /expenses/{id}
// @Summary      Get expense by ID
// @Description  Get an expense with all its debts
// @Tags         expenses
// @Produce      json
// @Param        id path string true "Expense ID"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid expense ID")
		return
	}

	result, err := h.service.GetExpenseByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrExpenseNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get expense")
		return
	}

	expenseResp := result.Expense.ToResponse()
	expenseResp.Debts = make([]*DebtResponse, len(result.Debts))
	for i, d := range result.Debts {
		expenseResp.Debts[i] = d.ToResponse()
	}

	response.JSON(w, http.StatusOK, expenseResp)
}

// ListByGroup handles GET /expenses/group/{groupId}
// @Summary      List expenses by group
// @Description  Get a paginated list of expenses for a group
// @Tags         expenses
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]ExpenseResponse}
// @Router       /expenses/group/{groupId} [get]
func (h *Handler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuid.Parse(chi.URLParam(r, "groupId"))
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	expenses, total, err := h.service.ListExpensesByGroupID(r.Context(), groupID, page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list expenses")
		return
	}

	expenseResponses := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		expenseResponses[i] = e.ToResponse()
	}

	totalPages := (total + perPage - 1) / perPage
	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}

	response.JSONWithMeta(w, http.StatusOK, expenseResponses, meta)
}

// Delete handles DELETE /expenses/{id}
// @Summary      Delete an expense
// @Description  Delete an expense (only if no debts are paid/confirmed)
// @Tags         expenses
// @Produce      json
// @Param        id path string true "Expense ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /expenses/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid expense ID")
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	if err := h.service.DeleteExpense(r.Context(), id, userID); err != nil {
		if errors.Is(err, ErrExpenseNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if errors.Is(err, ErrNotPayer) {
			response.Forbidden(w, err.Error())
			return
		}
		if errors.Is(err, ErrCannotDeleteExpense) {
			response.Conflict(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to delete expense")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Expense deleted successfully"})
}

// MarkDebtAsPaid handles POST /expenses/debts/{debtId}/pay
// @Summary      Mark debt as paid
// @Description  Debtor marks their debt as paid (waiting for creditor confirmation)
// @Tags         debts
// @Produce      json
// @Param        debtId path string true "Debt ID"
// @Success      200 {object} response.APIResponse{data=DebtResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/debts/{debtId}/pay [post]
func (h *Handler) MarkDebtAsPaid(w http.ResponseWriter, r *http.Request) {
	debtID, err := uuid.Parse(chi.URLParam(r, "debtId"))
	if err != nil {
		response.BadRequest(w, "Invalid debt ID")
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	debt, err := h.service.MarkDebtAsPaid(r.Context(), debtID, userID)
	if err != nil {
		if errors.Is(err, ErrDebtNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if errors.Is(err, ErrNotDebtor) || errors.Is(err, ErrDebtLocked) || errors.Is(err, ErrInvalidStatusChange) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to mark debt as paid")
		return
	}

	response.JSON(w, http.StatusOK, debt.ToResponse())
}

// ConfirmDebtPayment handles POST /expenses/debts/{debtId}/confirm
// @Summary      Confirm debt payment
// @Description  Creditor confirms they received the payment
// @Tags         debts
// @Produce      json
// @Param        debtId path string true "Debt ID"
// @Success      200 {object} response.APIResponse{data=DebtResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/debts/{debtId}/confirm [post]
func (h *Handler) ConfirmDebtPayment(w http.ResponseWriter, r *http.Request) {
	debtID, err := uuid.Parse(chi.URLParam(r, "debtId"))
	if err != nil {
		response.BadRequest(w, "Invalid debt ID")
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	debt, err := h.service.ConfirmDebtPayment(r.Context(), debtID, userID)
	if err != nil {
		if errors.Is(err, ErrDebtNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if errors.Is(err, ErrNotPayer) || errors.Is(err, ErrDebtLocked) || errors.Is(err, ErrInvalidStatusChange) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to confirm payment")
		return
	}

	response.JSON(w, http.StatusOK, debt.ToResponse())
}

// DisputeDebt handles POST /expenses/debts/{debtId}/dispute
// @Summary      Dispute a debt
// @Description  Debtor disputes their debt with a reason
// @Tags         debts
// @Accept       json
// @Produce      json
// @Param        debtId path string true "Debt ID"
// @Param        request body DisputeDebtRequest true "Dispute reason"
// @Success      200 {object} response.APIResponse{data=DebtResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/debts/{debtId}/dispute [post]
func (h *Handler) DisputeDebt(w http.ResponseWriter, r *http.Request) {
	debtID, err := uuid.Parse(chi.URLParam(r, "debtId"))
	if err != nil {
		response.BadRequest(w, "Invalid debt ID")
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req DisputeDebtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if req.Reason == "" {
		response.BadRequest(w, "Dispute reason is required")
		return
	}

	debt, err := h.service.DisputeDebt(r.Context(), debtID, userID, req.Reason)
	if err != nil {
		if errors.Is(err, ErrDebtNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if errors.Is(err, ErrNotDebtor) || errors.Is(err, ErrInvalidStatusChange) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to dispute debt")
		return
	}

	response.JSON(w, http.StatusOK, debt.ToResponse())
}
