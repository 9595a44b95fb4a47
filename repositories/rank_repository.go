package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/rating-system/models"
)

var (
	ErrRankNotFound = errors.New("rank not found")
	// ErrRankRoleConflict: the role already has a rank in this guild.
	ErrRankRoleConflict = errors.New("role already mapped to a rank in this guild")
	// ErrRankPointsConflict: another rank in the guild already uses this
	// threshold. Equal thresholds would make rank membership ambiguous.
	ErrRankPointsConflict = errors.New("rank threshold already in use in this guild")
)

type RankRepository interface {
	Create(ctx context.Context, exec SQLExecutor, rank *models.Rank) error
	GetByGuildAndRole(ctx context.Context, exec SQLExecutor, guildID, roleID int64) (*models.Rank, error)
	// ListByGuild returns the guild's ranks ordered by threshold ascending.
	ListByGuild(ctx context.Context, exec SQLExecutor, guildID int64) ([]models.Rank, error)
	Update(ctx context.Context, exec SQLExecutor, rank *models.Rank) error
	Delete(ctx context.Context, exec SQLExecutor, guildID, roleID int64) error
	DeleteByGuild(ctx context.Context, exec SQLExecutor, guildID int64) (int, error)
}

type postgresRankRepository struct {
	db *sql.DB
}

func NewPostgresRankRepository(db *sql.DB) RankRepository {
	return &postgresRankRepository{db: db}
}

func (r *postgresRankRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRankRepository) mapConstraintError(err error) error {
	switch {
	case isUniqueViolation(err, "ranks_guild_id_role_id_key"):
		return ErrRankRoleConflict
	case isUniqueViolation(err, "ranks_guild_id_points_key"):
		return ErrRankPointsConflict
	default:
		return err
	}
}

const rankColumns = `id, guild_id, role_id, points, win_modifier, loss_modifier, created_at`

func (r *postgresRankRepository) scanRank(rowScanner interface{ Scan(...interface{}) error }) (*models.Rank, error) {
	var rank models.Rank
	err := rowScanner.Scan(
		&rank.ID, &rank.GuildID, &rank.RoleID, &rank.Points,
		&rank.WinModifier, &rank.LossModifier, &rank.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRankNotFound
		}
		return nil, fmt.Errorf("failed to scan rank: %w", err)
	}
	return &rank, nil
}

func (r *postgresRankRepository) Create(ctx context.Context, exec SQLExecutor, rank *models.Rank) error {
	executor := r.getExecutor(exec)
	err := executor.QueryRowContext(ctx, `
		INSERT INTO ranks (guild_id, role_id, points, win_modifier, loss_modifier)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		rank.GuildID, rank.RoleID, rank.Points, rank.WinModifier, rank.LossModifier,
	).Scan(&rank.ID, &rank.CreatedAt)
	if err != nil {
		if mapped := r.mapConstraintError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to create rank (guild %d, role %d): %w", rank.GuildID, rank.RoleID, err)
	}
	return nil
}

func (r *postgresRankRepository) GetByGuildAndRole(ctx context.Context, exec SQLExecutor, guildID, roleID int64) (*models.Rank, error) {
	executor := r.getExecutor(exec)
	row := executor.QueryRowContext(ctx, `
		SELECT `+rankColumns+`
		FROM ranks
		WHERE guild_id = $1 AND role_id = $2`, guildID, roleID)
	return r.scanRank(row)
}

func (r *postgresRankRepository) ListByGuild(ctx context.Context, exec SQLExecutor, guildID int64) ([]models.Rank, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx, `
		SELECT `+rankColumns+`
		FROM ranks
		WHERE guild_id = $1
		ORDER BY points ASC`, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ranks for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var ranks []models.Rank
	for rows.Next() {
		rank, err := r.scanRank(rows)
		if err != nil {
			return nil, err
		}
		ranks = append(ranks, *rank)
	}
	return ranks, rows.Err()
}

func (r *postgresRankRepository) Update(ctx context.Context, exec SQLExecutor, rank *models.Rank) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `
		UPDATE ranks SET
			points = $3,
			win_modifier = $4,
			loss_modifier = $5
		WHERE guild_id = $1 AND role_id = $2`,
		rank.GuildID, rank.RoleID, rank.Points, rank.WinModifier, rank.LossModifier,
	)
	if err != nil {
		if mapped := r.mapConstraintError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to update rank (guild %d, role %d): %w", rank.GuildID, rank.RoleID, err)
	}
	return checkAffectedRows(result, ErrRankNotFound)
}

func (r *postgresRankRepository) Delete(ctx context.Context, exec SQLExecutor, guildID, roleID int64) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`DELETE FROM ranks WHERE guild_id = $1 AND role_id = $2`, guildID, roleID)
	if err != nil {
		return fmt.Errorf("failed to delete rank (guild %d, role %d): %w", guildID, roleID, err)
	}
	return checkAffectedRows(result, ErrRankNotFound)
}

func (r *postgresRankRepository) DeleteByGuild(ctx context.Context, exec SQLExecutor, guildID int64) (int, error) {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM ranks WHERE guild_id = $1`, guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete ranks for guild %d: %w", guildID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return int(affected), nil
}
