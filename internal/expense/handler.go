package expense

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hearthshare/hearthshare/internal/expense/split"
	"github.com/hearthshare/hearthshare/pkg/middleware"
	"github.com/hearthshare/hearthshare/pkg/response"
)

// Handler handles HTTP requests for ledger operations
type Handler struct {
	service *Service
}

// NewHandler creates a new expense handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for expense and settlement endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/{id}", h.GetByID)
	r.Delete("/{id}", h.Delete)

	r.Get("/debts", h.MyDebts)

	r.Route("/group/{groupId}", func(r chi.Router) {
		r.Get("/", h.ListByGroup)
		r.Get("/balances", h.GroupBalances)
		r.Get("/debts", h.DebtSummary)
		r.Get("/payments", h.ListPayments)
		r.Post("/settle", h.SettleDebt)
	})

	return r
}

// validation errors map to 400; anything else from the core is a 500
func isValidationError(err error) bool {
	for _, v := range []error{
		split.ErrUnknownSplitType,
		split.ErrEmptyDescription,
		split.ErrNonPositiveAmount,
		split.ErrNoParticipants,
		split.ErrDuplicateParticipant,
		split.ErrPayerNotParticipant,
		split.ErrMissingAllocation,
		split.ErrAllocationMismatch,
		split.ErrInvalidPercentages,
		split.ErrZeroTotalShares,
		split.ErrNegativeAllocation,
		ErrSelfSettlement,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

// Create handles POST /expenses
// @Summary      Create a new expense
// @Description  Create an expense and its shares using the EQUAL, EXACT, PERCENTAGE or SHARES split policy
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body CreateExpenseRequest true "Expense creation request"
// @Success      201 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /expenses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.service.CreateExpense(r.Context(), userID, &req)
	if err != nil {
		if isValidationError(err) {
			response.BadRequest(w, err.Error())
			return
		}
		if errors.Is(err, ErrNotGroupMember) {
			response.Forbidden(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to create expense")
		return
	}

	response.JSON(w, http.StatusCreated, toExpenseResponse(result))
}

// GetByID handles GET /expenses/{id}
// @Summary      Get expense by ID
// @Description  Get an expense with all its shares
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

	result, err := h.service.GetExpense(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrExpenseNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get expense")
		return
	}

	response.JSON(w, http.StatusOK, toExpenseResponse(result))
}

// Delete handles DELETE /expenses/{id}
// @Summary      Delete an expense
// @Description  Delete an expense together with its shares (payer or creator only)
// @Tags         expenses
// @Produce      json
// @Param        id path string true "Expense ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
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
		if errors.Is(err, ErrNotAuthorized) {
			response.Forbidden(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to delete expense")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Expense deleted successfully"})
}

// ListByGroup handles GET /expenses/group/{groupId}
// @Summary      List expenses by group
// @Description  Get a paginated list of expenses for a group, newest first
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

	expenses, total, err := h.service.ListGroupExpenses(r.Context(), groupID, page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list expenses")
		return
	}

	expenseResponses := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		expenseResponses[i] = e.ToResponse()
	}

	totalPages := (total + perPage - 1) / perPage
	response.JSONWithMeta(w, http.StatusOK, expenseResponses, &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	})
}

// GroupBalances handles GET /expenses/group/{groupId}/balances
// @Summary      Get group balances
// @Description  Get the net balance of every user in the group, derived from expenses, shares and payments
// @Tags         balances
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=GroupBalance}
// @Router       /expenses/group/{groupId}/balances [get]
func (h *Handler) GroupBalances(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuid.Parse(chi.URLParam(r, "groupId"))
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	balance, err := h.service.GetGroupBalances(r.Context(), groupID)
	if err != nil {
		response.InternalError(w, "Failed to compute balances")
		return
	}

	response.JSON(w, http.StatusOK, balance)
}

// DebtSummary handles GET /expenses/group/{groupId}/debts
// @Summary      Get debt summary
// @Description  Get the recommended transfers that would settle all balances in the group
// @Tags         balances
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]DebtSummary}
// @Router       /expenses/group/{groupId}/debts [get]
func (h *Handler) DebtSummary(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuid.Parse(chi.URLParam(r, "groupId"))
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	summaries, err := h.service.GetDebtSummary(r.Context(), groupID)
	if err != nil {
		response.InternalError(w, "Failed to compute debt summary")
		return
	}

	response.JSON(w, http.StatusOK, summaries)
}

// MyDebts handles GET /expenses/debts
// @Summary      Get my debts
// @Description  Get the debt summaries involving the authenticated user across all their groups
// @Tags         balances
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]DebtSummary}
// @Router       /expenses/debts [get]
func (h *Handler) MyDebts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	debts, err := h.service.GetUserDebts(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to compute debts")
		return
	}

	response.JSON(w, http.StatusOK, debts)
}

// SettleDebt handles POST /expenses/group/{groupId}/settle
// @Summary      Settle a debt
// @Description  Record a completed real-world transfer from debtor to creditor as a payment event
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        request body SettleDebtRequest true "Settlement request"
// @Success      201 {object} response.APIResponse{data=PaymentResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /expenses/group/{groupId}/settle [post]
func (h *Handler) SettleDebt(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuid.Parse(chi.URLParam(r, "groupId"))
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req SettleDebtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	payment, err := h.service.SettleDebt(r.Context(), groupID, userID, &req)
	if err != nil {
		if isValidationError(err) {
			response.BadRequest(w, err.Error())
			return
		}
		if errors.Is(err, ErrNotGroupMember) {
			response.Forbidden(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to record settlement")
		return
	}

	response.JSON(w, http.StatusCreated, payment.ToResponse())
}

// ListPayments handles GET /expenses/group/{groupId}/payments
// @Summary      List group payments
// @Description  Get all recorded settlement payments for a group
// @Tags         settlements
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]PaymentResponse}
// @Router       /expenses/group/{groupId}/payments [get]
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuid.Parse(chi.URLParam(r, "groupId"))
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	payments, err := h.service.ListGroupPayments(r.Context(), groupID)
	if err != nil {
		response.InternalError(w, "Failed to list payments")
		return
	}

	paymentResponses := make([]*PaymentResponse, len(payments))
	for i, p := range payments {
		paymentResponses[i] = p.ToResponse()
	}
	response.JSON(w, http.StatusOK, paymentResponses)
}

func toExpenseResponse(result *ExpenseWithShares) *ExpenseResponse {
	resp := result.Expense.ToResponse()
	resp.Shares = make([]*ShareResponse, len(result.Shares))
	for i, s := range result.Shares {
		resp.Shares[i] = s.ToResponse()
	}
	return resp
}
