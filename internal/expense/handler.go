package expense

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/jharmon/splittab/internal/expense/split"
	"github.com/jharmon/splittab/internal/roster"
	"github.com/jharmon/splittab/pkg/response"
)

var validate = validator.New()

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
	r.Post("/preview", h.Preview)
	r.Get("/{id}", h.GetByID)
	r.Delete("/{id}", h.Delete)
	r.Get("/group/{groupId}", h.ListByGroup)

	return r
}

// writeSplitError maps computation failures onto the response taxonomy.
// Validation problems are 422s carrying enough detail for the user to
// correct their input; everything else is a plain bad request.
func writeSplitError(w http.ResponseWriter, err error) {
	var unassigned *split.UnassignedItemsError
	if errors.As(err, &unassigned) {
		response.Unprocessable(w, "UNASSIGNED_ITEMS", err.Error(), map[string]interface{}{
			"item_ids": unassigned.ItemIDs,
			"count":    len(unassigned.ItemIDs),
		})
		return
	}

	var pctMismatch *split.PercentageMismatchError
	if errors.As(err, &pctMismatch) {
		response.Unprocessable(w, "PERCENTAGE_MISMATCH", err.Error(), map[string]interface{}{
			"actual_sum":   pctMismatch.Sum,
			"expected_sum": 100,
		})
		return
	}

	var amtMismatch *split.AmountMismatchError
	if errors.As(err, &amtMismatch) {
		response.Unprocessable(w, "AMOUNT_MISMATCH", err.Error(), map[string]interface{}{
			"expected": amtMismatch.Expected,
			"actual":   amtMismatch.Actual,
		})
		return
	}

	response.BadRequest(w, err.Error())
}

// Create handles POST /expenses
// @Summary      Create an expense
// @Description  Computes splits with the selected strategy, allocates tax and gratuity, and persists the expense with all splits atomically
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body CreateExpenseRequest true "Expense creation request"
// @Success      201 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /expenses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	result, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeSplitError(w, err)
		return
	}

	resp := result.Expense.ToResponse()
	resp.Splits = make([]*SplitResponse, len(result.Splits))
	for i, s := range result.Splits {
		resp.Splits[i] = s.ToResponse()
	}

	response.JSON(w, http.StatusCreated, resp)
}

// Preview handles POST /expenses/preview
// @Summary      Preview an expense breakdown
// @Description  Runs the same computation as create without persisting anything
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body CreateExpenseRequest true "Expense preview request"
// @Success      200 {object} response.APIResponse{data=Breakdown}
// @Failure      422 {object} response.APIResponse
// @Router       /expenses/preview [post]
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	breakdown, err := h.service.ComputeBreakdown(&req)
	if err != nil {
		writeSplitError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, breakdown)
}

// GetByID handles GET /expenses/{id}
// @Summary      Get expense by ID
// @Tags         expenses
// @Produce      json
// @Param        id path int true "Expense ID"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid expense ID")
		return
	}

	result, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrExpenseNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get expense")
		return
	}

	resp := result.Expense.ToResponse()
	resp.Splits = make([]*SplitResponse, len(result.Splits))
	for i, s := range result.Splits {
		resp.Splits[i] = s.ToResponse()
	}

	response.JSON(w, http.StatusOK, resp)
}

// ListByGroup handles GET /expenses/group/{groupId}
// @Summary      List expenses by group
// @Tags         expenses
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Param        payer_kind query string false "Filter by payer kind (user|guest)"
// @Param        payer_id query int false "Filter by payer ID"
// @Param        settled query bool false "Filter by settled state of any split"
// @Success      200 {object} response.APIResponse{data=[]ExpenseResponse}
// @Router       /expenses/group/{groupId} [get]
func (h *Handler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	var filter ListExpensesFilter
	if kind := r.URL.Query().Get("payer_kind"); kind != "" {
		payerID, err := strconv.ParseInt(r.URL.Query().Get("payer_id"), 10, 64)
		if err != nil || !roster.ParticipantKind(kind).Valid() {
			response.BadRequest(w, "Invalid payer filter")
			return
		}
		filter.Payer = &roster.ParticipantRef{Kind: roster.ParticipantKind(kind), ID: payerID}
	}
	if settledStr := r.URL.Query().Get("settled"); settledStr != "" {
		settled, err := strconv.ParseBool(settledStr)
		if err != nil {
			response.BadRequest(w, "Invalid settled filter")
			return
		}
		filter.Settled = &settled
	}

	expenses, total, err := h.service.ListByGroupID(r.Context(), groupID, filter, page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list expenses")
		return
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	responses := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		responses[i] = e.ToResponse()
	}

	totalPages := (total + perPage - 1) / perPage
	response.JSONWithMeta(w, http.StatusOK, responses, &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	})
}

// Delete handles DELETE /expenses/{id}
// @Summary      Delete an expense
// @Description  Removes the expense and all of its splits
// @Tags         expenses
// @Produce      json
// @Param        id path int true "Expense ID"
// @Success      204 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid expense ID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrExpenseNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to delete expense")
		return
	}

	response.JSON(w, http.StatusNoContent, nil)
}
