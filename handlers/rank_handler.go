package handlers

import (
	"net/http"

	"github.com/Dosada05/rating-system/models"
	"github.com/Dosada05/rating-system/services"
)

type RankHandler struct {
	competitions *services.CompetitionService
}

func NewRankHandler(competitions *services.CompetitionService) *RankHandler {
	return &RankHandler{competitions: competitions}
}

type rankView struct {
	RoleID int64 `json:"role_id"`
	Points int   `json:"points"`
	// Эффективные модификаторы с учётом fallback'а на настройки соревнования.
	WinModifier  int `json:"win_modifier"`
	LossModifier int `json:"loss_modifier"`
}

// List возвращает ранги guild'а с эффективными модификаторами.
// GET /guilds/{guildID}/ranks
func (h *RankHandler) List(w http.ResponseWriter, r *http.Request) {
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
	ranks, err := h.competitions.ListRanks(r.Context(), guildID)
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}

	views := make([]rankView, 0, len(ranks))
	for i := range ranks {
		rank := &ranks[i]
		views = append(views, rankView{
			RoleID:       rank.RoleID,
			Points:       rank.Points,
			WinModifier:  rank.EffectiveWinModifier(comp),
			LossModifier: rank.EffectiveLossModifier(comp),
		})
	}
	writeJSON(w, http.StatusOK, jsonResponse{"ranks": views}, nil)
}

// Create добавляет ранг.
// POST /guilds/{guildID}/ranks
func (h *RankHandler) Create(w http.ResponseWriter, r *http.Request) {
	guildID, err := int64URLParam(r, "guildID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		RoleID       int64 `json:"role_id"`
		Points       int   `json:"points"`
		WinModifier  *int  `json:"win_modifier"`
		LossModifier *int  `json:"loss_modifier"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rank := &models.Rank{
		GuildID:      guildID,
		RoleID:       input.RoleID,
		Points:       input.Points,
		WinModifier:  input.WinModifier,
		LossModifier: input.LossModifier,
	}
	if err := h.competitions.CreateRank(r.Context(), rank); err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, jsonResponse{"rank": rank}, nil)
}

// Update меняет порог или переопределения модификаторов ранга.
// PUT /guilds/{guildID}/ranks/{roleID}
func (h *RankHandler) Update(w http.ResponseWriter, r *http.Request) {
	guildID, err := int64URLParam(r, "guildID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	roleID, err := int64URLParam(r, "roleID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Points       int  `json:"points"`
		WinModifier  *int `json:"win_modifier"`
		LossModifier *int `json:"loss_modifier"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rank := &models.Rank{
		GuildID:      guildID,
		RoleID:       roleID,
		Points:       input.Points,
		WinModifier:  input.WinModifier,
		LossModifier: input.LossModifier,
	}
	if err := h.competitions.UpdateRank(r.Context(), rank); err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"rank": rank}, nil)
}

// Delete удаляет ранг по роли.
// DELETE /guilds/{guildID}/ranks/{roleID}
func (h *RankHandler) Delete(w http.ResponseWriter, r *http.Request) {
	guildID, err := int64URLParam(r, "guildID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	roleID, err := int64URLParam(r, "roleID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.competitions.DeleteRank(r.Context(), guildID, roleID); err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
