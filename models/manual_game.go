package models

import "time"

// AdjustmentStatus — статусы ручной корректировки, соответствуют ENUM в БД.
type AdjustmentStatus string

const (
	AdjustmentPending  AdjustmentStatus = "pending"
	AdjustmentApplied  AdjustmentStatus = "applied"
	AdjustmentRejected AdjustmentStatus = "rejected"
)

// ManualGameScoreUpdate — отложенная административная корректировка очков.
// Применяется ровно один раз: из pending запись переходит в applied или
// rejected, оба состояния терминальны.
type ManualGameScoreUpdate struct {
	ID           int              `json:"id" db:"id"`
	GuildID      int64            `json:"guild_id" db:"guild_id"`
	UserID       int64            `json:"user_id" db:"user_id"`
	ManualGameID int              `json:"manual_game_id" db:"manual_game_id"`
	ModifyAmount int              `json:"modify_amount" db:"modify_amount"`
	Status       AdjustmentStatus `json:"status" db:"status"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
	ResolvedAt   *time.Time       `json:"resolved_at,omitempty" db:"resolved_at"`
}
