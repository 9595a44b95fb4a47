package handlers

import (
	"net/http"

	"github.com/Dosada05/rating-system/services"
)

type AdjustmentHandler struct {
	adjustments *services.AdjustmentService
}

func NewAdjustmentHandler(adjustments *services.AdjustmentService) *AdjustmentHandler {
	return &AdjustmentHandler{adjustments: adjustments}
}

// Enqueue ставит ручную корректировку в очередь.
// POST /guilds/{guildID}/adjustments
func (h *AdjustmentHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	guildID, err := int64URLParam(r, "guildID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		UserID       int64 `json:"user_id"`
		ManualGameID int   `json:"manual_game_id"`
		ModifyAmount int   `json:"modify_amount"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	upd, err := h.adjustments.Enqueue(r.Context(), guildID, input.UserID, input.ManualGameID, input.ModifyAmount)
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, jsonResponse{"adjustment": upd}, nil)
}

// Apply применяет pending-корректировку. Повторное применение даёт 409.
// POST /adjustments/{id}/apply
func (h *AdjustmentHandler) Apply(w http.ResponseWriter, r *http.Request) {
	id, err := intURLParam(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcome, err := h.adjustments.Apply(r.Context(), id)
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome, nil)
}

// Reject отклоняет pending-корректировку.
// POST /adjustments/{id}/reject
func (h *AdjustmentHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := intURLParam(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.adjustments.Reject(r.Context(), id); err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPending возвращает неприменённые корректировки guild'а.
// GET /guilds/{guildID}/adjustments
func (h *AdjustmentHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	guildID, err := int64URLParam(r, "guildID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	updates, err := h.adjustments.ListPending(r.Context(), guildID)
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"adjustments": updates}, nil)
}
