package handlers

import (
	"net/http"

	"github.com/Dosada05/rating-system/models"
	"github.com/Dosada05/rating-system/services"
)

type CompetitionHandler struct {
	competitions *services.CompetitionService
}

func NewCompetitionHandler(competitions *services.CompetitionService) *CompetitionHandler {
	return &CompetitionHandler{competitions: competitions}
}

// Get возвращает (лениво создавая) настройки соревнования guild'а.
// GET /guilds/{guildID}/competition
func (h *CompetitionHandler) Get(w http.ResponseWriter, r *http.Request) {
	guildID, err := int64URLParam(r, "guildID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	comp, err := h.competitions.GetOrCreate(r.Context(), guildID)
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"competition": comp}, nil)
}

// UpdateOptions сохраняет настройки соревнования.
// PUT /guilds/{guildID}/competition
func (h *CompetitionHandler) UpdateOptions(w http.ResponseWriter, r *http.Request) {
	guildID, err := int64URLParam(r, "guildID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		DefaultWinModifier     int             `json:"default_win_modifier"`
		DefaultLossModifier    int             `json:"default_loss_modifier"`
		DrawModifier           *int            `json:"draw_modifier"`
		PointFloor             *int            `json:"point_floor"`
		StartingPoints         int             `json:"starting_points"`
		RankMode               models.RankMode `json:"rank_mode"`
		AllowReRegister        bool            `json:"allow_re_register"`
		ResetStatsOnReRegister bool            `json:"reset_stats_on_re_register"`
		AllowSelfRename        bool            `json:"allow_self_rename"`
		UpdateNames            bool            `json:"update_names"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	comp := &models.Competition{
		GuildID:                guildID,
		DefaultWinModifier:     input.DefaultWinModifier,
		DefaultLossModifier:    input.DefaultLossModifier,
		DrawModifier:           input.DrawModifier,
		PointFloor:             input.PointFloor,
		StartingPoints:         input.StartingPoints,
		RankMode:               input.RankMode,
		AllowReRegister:        input.AllowReRegister,
		ResetStatsOnReRegister: input.ResetStatsOnReRegister,
		AllowSelfRename:        input.AllowSelfRename,
		UpdateNames:            input.UpdateNames,
	}
	if err := h.competitions.UpdateOptions(r.Context(), comp); err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"competition": comp}, nil)
}

// Delete удаляет соревнование guild'а вместе с рангами.
// DELETE /guilds/{guildID}/competition
func (h *CompetitionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	guildID, err := int64URLParam(r, "guildID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.competitions.Delete(r.Context(), guildID); err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
