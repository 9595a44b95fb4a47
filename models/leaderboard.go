package models

import "time"

// LeaderboardEntry — строка таблицы лидеров guild'а.
type LeaderboardEntry struct {
	Position    int    `json:"position"`
	UserID      int64  `json:"user_id"`
	DisplayName string `json:"display_name"`
	Points      int    `json:"points"`
	Games       int    `json:"games"`
}

// LeaderboardSnapshot — периодический срез таблицы лидеров, выгружаемый в
// объектное хранилище.
type LeaderboardSnapshot struct {
	GuildID int64              `json:"guild_id"`
	TakenAt time.Time          `json:"taken_at"`
	Entries []LeaderboardEntry `json:"entries"`
}
