package handlers

import (
	"net/http"

	"github.com/Dosada05/rating-system/services"
)

type PlayerHandler struct {
	registration *services.RegistrationService
}

func NewPlayerHandler(registration *services.RegistrationService) *PlayerHandler {
	return &PlayerHandler{registration: registration}
}

// Register регистрирует пользователя в соревновании guild'а.
// POST /guilds/{guildID}/players
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	guildID, err := int64URLParam(r, "guildID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		UserID      int64  `json:"user_id"`
		DisplayName string `json:"display_name"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, report, err := h.registration.Register(r.Context(), guildID, input.UserID, input.DisplayName)
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, jsonResponse{"player": player, "report": report}, nil)
}

// Rename меняет сохранённое имя игрока.
// PATCH /guilds/{guildID}/players/{userID}/name
func (h *PlayerHandler) Rename(w http.ResponseWriter, r *http.Request) {
	guildID, err := int64URLParam(r, "guildID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, err := int64URLParam(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		DisplayName string `json:"display_name"`
		Self        bool   `json:"self"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.registration.Rename(r.Context(), guildID, userID, input.DisplayName, input.Self)
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil)
}

// Profile возвращает игрока и его текущий ранг.
// GET /guilds/{guildID}/players/{userID}
func (h *PlayerHandler) Profile(w http.ResponseWriter, r *http.Request) {
	guildID, err := int64URLParam(r, "guildID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, err := int64URLParam(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, rank, err := h.registration.Profile(r.Context(), guildID, userID)
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"player": player, "rank": rank}, nil)
}

// Leaderboard возвращает страницу таблицы лидеров guild'а.
// GET /guilds/{guildID}/leaderboard?limit=&offset=
func (h *PlayerHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	guildID, err := int64URLParam(r, "guildID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	limit := intQueryParam(r, "limit", 20)
	offset := intQueryParam(r, "offset", 0)

	entries, err := h.registration.Leaderboard(r.Context(), guildID, limit, offset)
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": entries}, nil)
}
