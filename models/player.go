package models

import "time"

// Player — запись игрока в рамках одного guild'а. Пара (guild_id, user_id)
// уникальна. Инвариант: Games == Wins + Losses + Draws.
type Player struct {
	ID               int       `json:"id" db:"id"`
	GuildID          int64     `json:"guild_id" db:"guild_id"`
	UserID           int64     `json:"user_id" db:"user_id"`
	DisplayName      string    `json:"display_name" db:"display_name"`
	Points           int       `json:"points" db:"points"`
	Wins             int       `json:"wins" db:"wins"`
	Losses           int       `json:"losses" db:"losses"`
	Draws            int       `json:"draws" db:"draws"`
	Games            int       `json:"games" db:"games"`
	RegistrationDate time.Time `json:"registration_date" db:"registration_date"`

	// Version — счётчик версий для оптимистичной блокировки, увеличивается
	// при каждой мутации записи.
	Version int `json:"-" db:"version"`
}
