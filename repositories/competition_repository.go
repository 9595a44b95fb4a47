package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/rating-system/models"
)

var (
	ErrCompetitionNotFound = errors.New("competition not found")

	// ErrRegistrationLimitReached: the conditional counter bump found the guild
	// already at its cap.
	ErrRegistrationLimitReached = errors.New("registration limit reached")
)

type CompetitionRepository interface {
	// GetOrCreate returns the guild's competition, inserting a default one on
	// first access.
	GetOrCreate(ctx context.Context, exec SQLExecutor, guildID int64) (*models.Competition, error)
	Get(ctx context.Context, exec SQLExecutor, guildID int64) (*models.Competition, error)
	UpdateOptions(ctx context.Context, exec SQLExecutor, comp *models.Competition) error
	// IncrementRegistrationCount bumps the monotonic counter and returns the
	// new value. The bump is conditional on the counter being below limit, so
	// concurrent registrations cannot overshoot the cap; at the cap it fails
	// with ErrRegistrationLimitReached.
	IncrementRegistrationCount(ctx context.Context, exec SQLExecutor, guildID int64, limit int) (int, error)
	Delete(ctx context.Context, exec SQLExecutor, guildID int64) error
	ListGuildIDs(ctx context.Context, exec SQLExecutor) ([]int64, error)
}

type postgresCompetitionRepository struct {
	db *sql.DB
}

func NewPostgresCompetitionRepository(db *sql.DB) CompetitionRepository {
	return &postgresCompetitionRepository{db: db}
}

func (r *postgresCompetitionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const competitionColumns = `
	guild_id, default_win_modifier, default_loss_modifier, draw_modifier,
	point_floor, starting_points, rank_mode, allow_re_register,
	reset_stats_on_re_register, allow_self_rename, update_names,
	registration_count, created_at`

func (r *postgresCompetitionRepository) scanCompetition(rowScanner interface{ Scan(...interface{}) error }) (*models.Competition, error) {
	var c models.Competition
	err := rowScanner.Scan(
		&c.GuildID, &c.DefaultWinModifier, &c.DefaultLossModifier, &c.DrawModifier,
		&c.PointFloor, &c.StartingPoints, &c.RankMode, &c.AllowReRegister,
		&c.ResetStatsOnReRegister, &c.AllowSelfRename, &c.UpdateNames,
		&c.RegistrationCount, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompetitionNotFound
		}
		return nil, fmt.Errorf("failed to scan competition: %w", err)
	}
	return &c, nil
}

func (r *postgresCompetitionRepository) GetOrCreate(ctx context.Context, exec SQLExecutor, guildID int64) (*models.Competition, error) {
	executor := r.getExecutor(exec)

	// Defaults mirror the column defaults so a lazily created competition is
	// usable immediately.
	_, err := executor.ExecContext(ctx, `
		INSERT INTO competitions (guild_id)
		VALUES ($1)
		ON CONFLICT (guild_id) DO NOTHING`, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure competition for guild %d: %w", guildID, err)
	}

	return r.Get(ctx, executor, guildID)
}

func (r *postgresCompetitionRepository) Get(ctx context.Context, exec SQLExecutor, guildID int64) (*models.Competition, error) {
	executor := r.getExecutor(exec)
	row := executor.QueryRowContext(ctx, `
		SELECT `+competitionColumns+`
		FROM competitions
		WHERE guild_id = $1`, guildID)
	return r.scanCompetition(row)
}

func (r *postgresCompetitionRepository) UpdateOptions(ctx context.Context, exec SQLExecutor, comp *models.Competition) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `
		UPDATE competitions SET
			default_win_modifier = $2,
			default_loss_modifier = $3,
			draw_modifier = $4,
			point_floor = $5,
			starting_points = $6,
			rank_mode = $7,
			allow_re_register = $8,
			reset_stats_on_re_register = $9,
			allow_self_rename = $10,
			update_names = $11
		WHERE guild_id = $1`,
		comp.GuildID, comp.DefaultWinModifier, comp.DefaultLossModifier,
		comp.DrawModifier, comp.PointFloor, comp.StartingPoints, comp.RankMode,
		comp.AllowReRegister, comp.ResetStatsOnReRegister, comp.AllowSelfRename,
		comp.UpdateNames,
	)
	if err != nil {
		return fmt.Errorf("failed to update competition options for guild %d: %w", comp.GuildID, err)
	}
	return checkAffectedRows(result, ErrCompetitionNotFound)
}

func (r *postgresCompetitionRepository) IncrementRegistrationCount(ctx context.Context, exec SQLExecutor, guildID int64, limit int) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	err := executor.QueryRowContext(ctx, `
		UPDATE competitions
		SET registration_count = registration_count + 1
		WHERE guild_id = $1 AND registration_count < $2
		RETURNING registration_count`, guildID, limit).Scan(&count)
	if err == nil {
		return count, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to increment registration count for guild %d: %w", guildID, err)
	}

	// Zero affected rows: either the guild is missing or the cap is hit.
	if _, getErr := r.Get(ctx, executor, guildID); getErr != nil {
		return 0, getErr
	}
	return 0, ErrRegistrationLimitReached
}

func (r *postgresCompetitionRepository) Delete(ctx context.Context, exec SQLExecutor, guildID int64) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM competitions WHERE guild_id = $1`, guildID)
	if err != nil {
		return fmt.Errorf("failed to delete competition for guild %d: %w", guildID, err)
	}
	return checkAffectedRows(result, ErrCompetitionNotFound)
}

func (r *postgresCompetitionRepository) ListGuildIDs(ctx context.Context, exec SQLExecutor) ([]int64, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx, `SELECT guild_id FROM competitions ORDER BY guild_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list guild ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan guild id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
