package settlement

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/jharmon/splittab/internal/roster"
	"github.com/jharmon/splittab/pkg/middleware"
	"github.com/jharmon/splittab/pkg/response"
)

var validate = validator.New()

// Handler handles HTTP requests for settlement operations
type Handler struct {
	service *Service
}

// NewHandler creates a new settlement handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for settlement endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/groups/{groupId}/balance", h.BalanceBetween)
	r.Get("/groups/{groupId}/summary", h.Summary)
	r.Post("/groups/{groupId}/settle-up", h.SettleUp)
	r.Post("/groups/{groupId}/unsettle-up", h.UnsettleUp)
	r.Post("/splits/{splitId}/settle", h.SettleSplit)
	r.Post("/splits/{splitId}/unsettle", h.UnsettleSplit)

	return r
}

// selfRef resolves the calling user as a participant reference
func selfRef(r *http.Request) roster.ParticipantRef {
	userID, _ := middleware.GetUserID(r.Context())
	return roster.ParticipantRef{Kind: roster.KindUser, ID: userID}
}

// otherRefFromQuery reads an other_kind/other_id pair from the query string
func otherRefFromQuery(r *http.Request) (roster.ParticipantRef, bool) {
	kind := roster.ParticipantKind(r.URL.Query().Get("other_kind"))
	id, err := strconv.ParseInt(r.URL.Query().Get("other_id"), 10, 64)
	if err != nil || !kind.Valid() {
		return roster.ParticipantRef{}, false
	}
	return roster.ParticipantRef{Kind: kind, ID: id}, true
}

// BalanceBetween handles GET /settlements/groups/{groupId}/balance
// @Summary      Net balance with one participant
// @Description  Nets every unsettled obligation between the caller and the other participant into a single amount and direction
// @Tags         settlements
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Param        other_kind query string true "Counterparty kind (user|guest)"
// @Param        other_id query int true "Counterparty ID"
// @Success      200 {object} response.APIResponse{data=PairBalance}
// @Failure      400 {object} response.APIResponse
// @Router       /settlements/groups/{groupId}/balance [get]
func (h *Handler) BalanceBetween(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}
	other, ok := otherRefFromQuery(r)
	if !ok {
		response.BadRequest(w, "Invalid counterparty reference")
		return
	}

	balance, err := h.service.BalanceBetween(r.Context(), groupID, selfRef(r), other)
	if err != nil {
		response.InternalError(w, "Failed to compute balance")
		return
	}

	response.JSON(w, http.StatusOK, balance)
}

// Summary handles GET /settlements/groups/{groupId}/summary
// @Summary      Balance summary for the caller
// @Description  Aggregates what the caller owes and is owed against every counterparty in the group
// @Tags         settlements
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=MemberSummary}
// @Router       /settlements/groups/{groupId}/summary [get]
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	summary, err := h.service.Summary(r.Context(), groupID, selfRef(r))
	if err != nil {
		response.InternalError(w, "Failed to compute summary")
		return
	}

	response.JSON(w, http.StatusOK, summary)
}

// SettleUp handles POST /settlements/groups/{groupId}/settle-up
// @Summary      Settle up with one participant
// @Description  Marks every unsettled split between the caller and the counterparty settled in one transaction
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Param        request body SettleUpRequest true "Settle up request"
// @Success      200 {object} response.APIResponse{data=SettleUpResult}
// @Failure      409 {object} response.APIResponse
// @Router       /settlements/groups/{groupId}/settle-up [post]
func (h *Handler) SettleUp(w http.ResponseWriter, r *http.Request) {
	h.settleUp(w, r, true)
}

// UnsettleUp handles POST /settlements/groups/{groupId}/unsettle-up
// @Summary      Reverse a settle-up
// @Description  Reinstates every settled split between the caller and the counterparty
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Param        request body SettleUpRequest true "Unsettle up request"
// @Success      200 {object} response.APIResponse{data=SettleUpResult}
// @Failure      409 {object} response.APIResponse
// @Router       /settlements/groups/{groupId}/unsettle-up [post]
func (h *Handler) UnsettleUp(w http.ResponseWriter, r *http.Request) {
	h.settleUp(w, r, false)
}

func (h *Handler) settleUp(w http.ResponseWriter, r *http.Request, settled bool) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	var req SettleUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	result, err := h.service.SettleUp(r.Context(), groupID, selfRef(r), req.Other.ToRef(), settled)
	if err != nil {
		var conflict *ConflictError
		switch {
		case errors.As(err, &conflict):
			response.ErrorWithDetails(w, http.StatusConflict, "SETTLEMENT_CONFLICT", err.Error(), map[string]interface{}{
				"split_ids": conflict.SplitIDs,
			})
		case errors.Is(err, ErrNothingToSettle):
			response.BadRequest(w, err.Error())
		case errors.Is(err, ErrCannotSettleSelf):
			response.BadRequest(w, err.Error())
		default:
			response.InternalError(w, "Failed to settle up")
		}
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// SettleSplit handles POST /settlements/splits/{splitId}/settle
// @Summary      Settle one split
// @Tags         settlements
// @Produce      json
// @Param        splitId path int true "Split ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /settlements/splits/{splitId}/settle [post]
func (h *Handler) SettleSplit(w http.ResponseWriter, r *http.Request) {
	h.setSplitSettled(w, r, true)
}

// UnsettleSplit handles POST /settlements/splits/{splitId}/unsettle
// @Summary      Unsettle one split
// @Tags         settlements
// @Produce      json
// @Param        splitId path int true "Split ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /settlements/splits/{splitId}/unsettle [post]
func (h *Handler) UnsettleSplit(w http.ResponseWriter, r *http.Request) {
	h.setSplitSettled(w, r, false)
}

func (h *Handler) setSplitSettled(w http.ResponseWriter, r *http.Request, settled bool) {
	splitID, err := strconv.ParseInt(chi.URLParam(r, "splitId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid split ID")
		return
	}

	if err := h.service.SetSplitSettled(r.Context(), splitID, settled); err != nil {
		if errors.Is(err, ErrSplitNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to update split")
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"split_id": splitID,
		"settled":  settled,
	})
}
