package handlers

import (
	"net/http"

	"github.com/Dosada05/rating-system/services"
)

type ResultHandler struct {
	results *services.ResultService
}

func NewResultHandler(results *services.ResultService) *ResultHandler {
	return &ResultHandler{results: results}
}

// RecordResults применяет исходы завершённой игры к одному или нескольким
// игрокам guild'а. Каждое обновление атомарно; частичные ошибки возвращаются
// рядом с успешными исходами.
// POST /guilds/{guildID}/results
func (h *ResultHandler) RecordResults(w http.ResponseWriter, r *http.Request) {
	guildID, err := int64URLParam(r, "guildID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Outcomes []struct {
			UserID  int64  `json:"user_id"`
			Outcome string `json:"outcome"`
		} `json:"outcomes"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if len(input.Outcomes) == 0 {
		errorResponse(w, r, http.StatusUnprocessableEntity, "outcomes must not be empty")
		return
	}

	outcomes := make([]services.PlayerOutcome, 0, len(input.Outcomes))
	for _, o := range input.Outcomes {
		kind, err := services.ParseOutcomeKind(o.Outcome)
		if err != nil {
			serviceErrorResponse(w, r, err)
			return
		}
		outcomes = append(outcomes, services.PlayerOutcome{UserID: o.UserID, Outcome: kind})
	}

	results, errs := h.results.ProcessGameResults(r.Context(), guildID, outcomes)

	var failures []string
	for _, err := range errs {
		failures = append(failures, err.Error())
	}

	status := http.StatusOK
	if len(failures) > 0 && len(results) == 0 {
		// Ни один исход не применился; самая типичная причина —
		// незарегистрированные игроки.
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, jsonResponse{"results": results, "failures": failures}, nil)
}
