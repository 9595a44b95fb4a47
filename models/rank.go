package models

import "time"

// Rank — ранг guild'а: порог очков, сопоставленный роли платформы.
// Пары (guild_id, role_id) и (guild_id, points) уникальны: два ранга не могут
// делить порог, членство в рангах должно быть детерминированным.
type Rank struct {
	ID      int   `json:"id" db:"id"`
	GuildID int64 `json:"guild_id" db:"guild_id"`
	RoleID  int64 `json:"role_id" db:"role_id"`
	Points  int   `json:"points" db:"points"`

	// Переопределения модификаторов; nil — используется значение Competition.
	WinModifier  *int `json:"win_modifier,omitempty" db:"win_modifier"`
	LossModifier *int `json:"loss_modifier,omitempty" db:"loss_modifier"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// EffectiveWinModifier возвращает модификатор победы с учётом fallback'а на
// настройки соревнования. Вызов на nil-ранге (игрок без ранга) корректен.
func (r *Rank) EffectiveWinModifier(c *Competition) int {
	if r != nil && r.WinModifier != nil {
		return *r.WinModifier
	}
	return c.DefaultWinModifier
}

func (r *Rank) EffectiveLossModifier(c *Competition) int {
	if r != nil && r.LossModifier != nil {
		return *r.LossModifier
	}
	return c.DefaultLossModifier
}
