package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"skillswap-server/middleware"
	"skillswap-server/models"
	"skillswap-server/services"
	apperrors "skillswap-server/utils/errors"
)

type SwapHandler struct {
	swapService *services.SwapService
	logger      *slog.Logger
}

func NewSwapHandler(swapService *services.SwapService, logger *slog.Logger) *SwapHandler {
	return &SwapHandler{swapService: swapService, logger: logger}
}

func (h *SwapHandler) CreateSwap(w http.ResponseWriter, r *http.Request) {
	var input services.SwapInput
	if err := decodeJSON(r, &input); err != nil {
		middleware.WriteError(w, h.logger, err)
		return
	}
	swap, err := h.swapService.CreateRequest(r.Context(), input)
	if err != nil {
		middleware.WriteError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusCreated, swap, "Swap request created successfully")
}

func (h *SwapHandler) GetSwap(w http.ResponseWriter, r *http.Request) {
	swap, err := h.swapService.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		middleware.WriteError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, swap, "")
}

func (h *SwapHandler) SwapsFromUser(w http.ResponseWriter, r *http.Request) {
	swaps, err := h.swapService.ListByFromUser(r.Context(), mux.Vars(r)["fromUserId"])
	if err != nil {
		middleware.WriteError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, listOf(swaps), "")
}

func (h *SwapHandler) SwapsToUser(w http.ResponseWriter, r *http.Request) {
	swaps, err := h.swapService.ListByToUser(r.Context(), mux.Vars(r)["toUserId"])
	if err != nil {
		middleware.WriteError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, listOf(swaps), "")
}

func (h *SwapHandler) SwapsByStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	status, err := models.ParseSwapStatus(vars["status"])
	if err != nil {
		middleware.WriteError(w, h.logger, apperrors.Validation("%v", err))
		return
	}
	swaps, err := h.swapService.ListByUserAndStatus(r.Context(), vars["userId"], status)
	if err != nil {
		middleware.WriteError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, listOf(swaps), "")
}

func (h *SwapHandler) AcceptSwap(w http.ResponseWriter, r *http.Request) {
	swap, err := h.swapService.Accept(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		middleware.WriteError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, swap, "Swap request accepted successfully")
}

func (h *SwapHandler) RejectSwap(w http.ResponseWriter, r *http.Request) {
	swap, err := h.swapService.Reject(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		middleware.WriteError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, swap, "Swap request rejected successfully")
}

func (h *SwapHandler) CompleteSwap(w http.ResponseWriter, r *http.Request) {
	swap, err := h.swapService.Complete(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		middleware.WriteError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, swap, "Swap request completed successfully")
}

func (h *SwapHandler) RateSwap(w http.ResponseWriter, r *http.Request) {
	raw, err := requiredQuery(r, "rating")
	if err != nil {
		middleware.WriteError(w, h.logger, err)
		return
	}
	rating, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		middleware.WriteError(w, h.logger, apperrors.Validation("Rating must be a number"))
		return
	}
	var feedback *string
	if q := r.URL.Query(); q.Has("feedback") {
		f := q.Get("feedback")
		feedback = &f
	}

	swap, err := h.swapService.Rate(r.Context(), mux.Vars(r)["id"], rating, feedback)
	if err != nil {
		middleware.WriteError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, swap, "Rating and feedback added successfully")
}

func (h *SwapHandler) DeleteSwap(w http.ResponseWriter, r *http.Request) {
	if err := h.swapService.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		middleware.WriteError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, nil, "Swap request deleted successfully")
}
