package models

import "time"

// RankMode определяет, как считается членство в рангах.
type RankMode string

const (
	// RankModeSingle: игрок держит только ранг с наибольшим подходящим порогом.
	RankModeSingle RankMode = "single"
	// RankModeCumulative: игрок держит все ранги с порогом не выше его очков.
	RankModeCumulative RankMode = "cumulative"
)

func (m RankMode) Valid() bool {
	return m == RankModeSingle || m == RankModeCumulative
}

// Competition — настройки соревнования одного guild'а. Ровно одна запись на
// guild, создаётся лениво при первом обращении.
type Competition struct {
	GuildID             int64    `json:"guild_id" db:"guild_id"`
	DefaultWinModifier  int      `json:"default_win_modifier" db:"default_win_modifier"`
	DefaultLossModifier int      `json:"default_loss_modifier" db:"default_loss_modifier"`
	DrawModifier        *int     `json:"draw_modifier,omitempty" db:"draw_modifier"`
	PointFloor          *int     `json:"point_floor,omitempty" db:"point_floor"`
	StartingPoints      int      `json:"starting_points" db:"starting_points"`
	RankMode            RankMode `json:"rank_mode" db:"rank_mode"`

	AllowReRegister        bool `json:"allow_re_register" db:"allow_re_register"`
	ResetStatsOnReRegister bool `json:"reset_stats_on_re_register" db:"reset_stats_on_re_register"`
	AllowSelfRename        bool `json:"allow_self_rename" db:"allow_self_rename"`
	UpdateNames            bool `json:"update_names" db:"update_names"`

	RegistrationCount int       `json:"registration_count" db:"registration_count"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// EffectiveDrawModifier возвращает модификатор ничьей (0, если не настроен).
func (c *Competition) EffectiveDrawModifier() int {
	if c.DrawModifier == nil {
		return 0
	}
	return *c.DrawModifier
}

// ClampPoints применяет нижнюю границу очков, если она настроена.
func (c *Competition) ClampPoints(points int) int {
	if c.PointFloor != nil && points < *c.PointFloor {
		return *c.PointFloor
	}
	return points
}
