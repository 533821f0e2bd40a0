package draft

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/jharmon/splittab/internal/expense"
	"github.com/jharmon/splittab/internal/expense/split"
	"github.com/jharmon/splittab/internal/receipt"
	"github.com/jharmon/splittab/pkg/response"
)

var validate = validator.New()

// Handler handles HTTP requests for draft sessions
type Handler struct {
	service *Service
}

// NewHandler creates a new draft handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for draft endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/advance", h.Advance)
	r.Post("/{id}/items", h.AddItem)
	r.Put("/{id}/items/{itemId}", h.UpdateItem)
	r.Delete("/{id}/items/{itemId}", h.RemoveItem)
	r.Post("/{id}/items/{itemId}/assignees", h.ToggleAssignment)
	r.Put("/{id}/strategy", h.SetStrategy)
	r.Put("/{id}/charges", h.SetCharges)
	r.Post("/{id}/preview", h.Preview)
	r.Post("/{id}/commit", h.Commit)

	return r
}

// writeDraftError maps service errors onto the response taxonomy
func writeDraftError(w http.ResponseWriter, err error) {
	var transition *InvalidTransitionError
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrItemNotFound):
		response.NotFound(w, err.Error())
	case errors.As(err, &transition):
		response.Conflict(w, err.Error())
	case errors.Is(err, ErrNotAtSummary), errors.Is(err, ErrStrategyNotSet):
		response.Conflict(w, err.Error())
	default:
		response.BadRequest(w, err.Error())
	}
}

// writeComputeError maps split computation failures the same way the expense
// endpoints do
func writeComputeError(w http.ResponseWriter, err error) {
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

	writeDraftError(w, err)
}

// Create handles POST /drafts
// @Summary      Open a draft session
// @Description  Starts the expense wizard, optionally seeded with a scanned receipt
// @Tags         drafts
// @Accept       json
// @Produce      json
// @Param        request body CreateSessionRequest true "Draft creation request"
// @Success      201 {object} response.APIResponse{data=Session}
// @Failure      400 {object} response.APIResponse
// @Router       /drafts [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	session := h.service.Create(req.GroupID, req.Currency, req.Seed)
	response.JSON(w, http.StatusCreated, session)
}

// Get handles GET /drafts/{id}
// @Summary      Get a draft session
// @Tags         drafts
// @Produce      json
// @Param        id path string true "Draft session ID"
// @Success      200 {object} response.APIResponse{data=Session}
// @Failure      404 {object} response.APIResponse
// @Router       /drafts/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeDraftError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, session)
}

// Delete handles DELETE /drafts/{id}
// @Summary      Abandon a draft session
// @Tags         drafts
// @Produce      json
// @Param        id path string true "Draft session ID"
// @Success      204 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /drafts/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(chi.URLParam(r, "id")); err != nil {
		writeDraftError(w, err)
		return
	}
	response.JSON(w, http.StatusNoContent, nil)
}

// Advance handles POST /drafts/{id}/advance
// @Summary      Move the wizard to another step
// @Tags         drafts
// @Accept       json
// @Produce      json
// @Param        id path string true "Draft session ID"
// @Param        request body AdvanceRequest true "Target step"
// @Success      200 {object} response.APIResponse{data=Session}
// @Failure      409 {object} response.APIResponse
// @Router       /drafts/{id}/advance [post]
func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	var req AdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	session, err := h.service.Advance(chi.URLParam(r, "id"), State(req.State))
	if err != nil {
		writeDraftError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, session)
}

// AddItem handles POST /drafts/{id}/items
// @Summary      Add a draft item
// @Tags         drafts
// @Accept       json
// @Produce      json
// @Param        id path string true "Draft session ID"
// @Param        request body ItemRequest true "Item to add"
// @Success      200 {object} response.APIResponse{data=Session}
// @Failure      400 {object} response.APIResponse
// @Router       /drafts/{id}/items [post]
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req ItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	session, err := h.service.AddItem(chi.URLParam(r, "id"), req.Name, req.Price, receipt.Category(req.Category))
	if err != nil {
		writeDraftError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, session)
}

// UpdateItem handles PUT /drafts/{id}/items/{itemId}
// @Summary      Update a draft item
// @Tags         drafts
// @Accept       json
// @Produce      json
// @Param        id path string true "Draft session ID"
// @Param        itemId path string true "Item ID"
// @Param        request body ItemRequest true "New item fields"
// @Success      200 {object} response.APIResponse{data=Session}
// @Failure      404 {object} response.APIResponse
// @Router       /drafts/{id}/items/{itemId} [put]
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req ItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	session, err := h.service.UpdateItem(chi.URLParam(r, "id"), chi.URLParam(r, "itemId"), req.Name, req.Price, receipt.Category(req.Category))
	if err != nil {
		writeDraftError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, session)
}

// RemoveItem handles DELETE /drafts/{id}/items/{itemId}
// @Summary      Remove a draft item
// @Description  Removes the item and any assignments referencing it
// @Tags         drafts
// @Produce      json
// @Param        id path string true "Draft session ID"
// @Param        itemId path string true "Item ID"
// @Success      200 {object} response.APIResponse{data=Session}
// @Failure      404 {object} response.APIResponse
// @Router       /drafts/{id}/items/{itemId} [delete]
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.RemoveItem(chi.URLParam(r, "id"), chi.URLParam(r, "itemId"))
	if err != nil {
		writeDraftError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, session)
}

// ToggleAssignment handles POST /drafts/{id}/items/{itemId}/assignees
// @Summary      Toggle an item assignee
// @Tags         drafts
// @Accept       json
// @Produce      json
// @Param        id path string true "Draft session ID"
// @Param        itemId path string true "Item ID"
// @Param        request body ToggleAssignmentRequest true "Participant to toggle"
// @Success      200 {object} response.APIResponse{data=Session}
// @Failure      404 {object} response.APIResponse
// @Router       /drafts/{id}/items/{itemId}/assignees [post]
func (h *Handler) ToggleAssignment(w http.ResponseWriter, r *http.Request) {
	var req ToggleAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	session, err := h.service.ToggleAssignment(chi.URLParam(r, "id"), chi.URLParam(r, "itemId"), req.Participant.ToRef())
	if err != nil {
		writeDraftError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, session)
}

// SetStrategy handles PUT /drafts/{id}/strategy
// @Summary      Choose the split strategy
// @Description  Sets the strategy and participants; existing item assignments are reset
// @Tags         drafts
// @Accept       json
// @Produce      json
// @Param        id path string true "Draft session ID"
// @Param        request body StrategyRequest true "Strategy selection"
// @Success      200 {object} response.APIResponse{data=Session}
// @Failure      400 {object} response.APIResponse
// @Router       /drafts/{id}/strategy [put]
func (h *Handler) SetStrategy(w http.ResponseWriter, r *http.Request) {
	var req StrategyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	session, err := h.service.SetStrategy(chi.URLParam(r, "id"), req.SplitType, req.Participants)
	if err != nil {
		writeDraftError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, session)
}

// SetCharges handles PUT /drafts/{id}/charges
// @Summary      Set subtotal, tax and gratuity
// @Tags         drafts
// @Accept       json
// @Produce      json
// @Param        id path string true "Draft session ID"
// @Param        request body ChargesRequest true "Charge amounts and modes"
// @Success      200 {object} response.APIResponse{data=Session}
// @Failure      400 {object} response.APIResponse
// @Router       /drafts/{id}/charges [put]
func (h *Handler) SetCharges(w http.ResponseWriter, r *http.Request) {
	var req ChargesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	session, err := h.service.SetCharges(chi.URLParam(r, "id"), ChargesUpdate{
		Subtotal:       req.Subtotal,
		Tax:            req.Tax,
		TaxMode:        req.TaxMode,
		Gratuity:       req.Gratuity,
		GratuityMode:   req.GratuityMode,
		CustomGratuity: req.CustomGratuity,
	})
	if err != nil {
		writeDraftError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, session)
}

// Preview handles POST /drafts/{id}/preview
// @Summary      Preview the draft's breakdown
// @Description  Computes per-person subtotals, tax and gratuity without persisting anything
// @Tags         drafts
// @Produce      json
// @Param        id path string true "Draft session ID"
// @Success      200 {object} response.APIResponse{data=expense.Breakdown}
// @Failure      422 {object} response.APIResponse
// @Router       /drafts/{id}/preview [post]
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	breakdown, err := h.service.Preview(chi.URLParam(r, "id"))
	if err != nil {
		writeComputeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, breakdown)
}

// Commit handles POST /drafts/{id}/commit
// @Summary      Commit the draft as an expense
// @Description  Persists the expense with all splits atomically; the draft survives any failure so nothing is lost
// @Tags         drafts
// @Accept       json
// @Produce      json
// @Param        id path string true "Draft session ID"
// @Param        request body CommitRequest true "Commit request"
// @Success      201 {object} response.APIResponse{data=expense.ExpenseResponse}
// @Failure      409 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /drafts/{id}/commit [post]
func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	var req CommitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	result, err := h.service.Commit(r.Context(), chi.URLParam(r, "id"), req.Description, req.Payer, req.Date)
	if err != nil {
		writeComputeError(w, err)
		return
	}

	resp := result.Expense.ToResponse()
	resp.Splits = make([]*expense.SplitResponse, len(result.Splits))
	for i, s := range result.Splits {
		resp.Splits[i] = s.ToResponse()
	}
	response.JSON(w, http.StatusCreated, resp)
}
