package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/rating-system/models"
)

var (
	ErrAdjustmentNotFound = errors.New("manual score adjustment not found")
	// ErrAdjustmentNotPending: the record already reached a terminal status.
	// Guards the apply-once invariant at the storage level.
	ErrAdjustmentNotPending = errors.New("manual score adjustment is not pending")
)

type AdjustmentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, upd *models.ManualGameScoreUpdate) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.ManualGameScoreUpdate, error)
	// MarkResolved transitions a pending record into a terminal status. Fails
	// with ErrAdjustmentNotPending when the record was already resolved, so a
	// second apply of the same record cannot slip through.
	MarkResolved(ctx context.Context, exec SQLExecutor, id int, status models.AdjustmentStatus, resolvedAt time.Time) error
	ListPendingByGuild(ctx context.Context, exec SQLExecutor, guildID int64) ([]*models.ManualGameScoreUpdate, error)
}

type postgresAdjustmentRepository struct {
	db *sql.DB
}

func NewPostgresAdjustmentRepository(db *sql.DB) AdjustmentRepository {
	return &postgresAdjustmentRepository{db: db}
}

func (r *postgresAdjustmentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const adjustmentColumns = `id, guild_id, user_id, manual_game_id, modify_amount, status, created_at, resolved_at`

func (r *postgresAdjustmentRepository) scanAdjustment(rowScanner interface{ Scan(...interface{}) error }) (*models.ManualGameScoreUpdate, error) {
	var upd models.ManualGameScoreUpdate
	err := rowScanner.Scan(
		&upd.ID, &upd.GuildID, &upd.UserID, &upd.ManualGameID,
		&upd.ModifyAmount, &upd.Status, &upd.CreatedAt, &upd.ResolvedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdjustmentNotFound
		}
		return nil, fmt.Errorf("failed to scan adjustment: %w", err)
	}
	return &upd, nil
}

func (r *postgresAdjustmentRepository) Create(ctx context.Context, exec SQLExecutor, upd *models.ManualGameScoreUpdate) error {
	executor := r.getExecutor(exec)
	if upd.Status == "" {
		upd.Status = models.AdjustmentPending
	}
	err := executor.QueryRowContext(ctx, `
		INSERT INTO manual_game_score_updates
			(guild_id, user_id, manual_game_id, modify_amount, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		upd.GuildID, upd.UserID, upd.ManualGameID, upd.ModifyAmount, upd.Status,
	).Scan(&upd.ID, &upd.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create adjustment (guild %d, user %d, game %d): %w",
			upd.GuildID, upd.UserID, upd.ManualGameID, err)
	}
	return nil
}

func (r *postgresAdjustmentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.ManualGameScoreUpdate, error) {
	executor := r.getExecutor(exec)
	row := executor.QueryRowContext(ctx, `
		SELECT `+adjustmentColumns+`
		FROM manual_game_score_updates
		WHERE id = $1`, id)
	return r.scanAdjustment(row)
}

func (r *postgresAdjustmentRepository) MarkResolved(ctx context.Context, exec SQLExecutor, id int, status models.AdjustmentStatus, resolvedAt time.Time) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `
		UPDATE manual_game_score_updates
		SET status = $2, resolved_at = $3
		WHERE id = $1 AND status = $4`,
		id, status, resolvedAt, models.AdjustmentPending,
	)
	if err != nil {
		return fmt.Errorf("failed to resolve adjustment %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrAdjustmentNotPending)
}

func (r *postgresAdjustmentRepository) ListPendingByGuild(ctx context.Context, exec SQLExecutor, guildID int64) ([]*models.ManualGameScoreUpdate, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx, `
		SELECT `+adjustmentColumns+`
		FROM manual_game_score_updates
		WHERE guild_id = $1 AND status = $2
		ORDER BY created_at ASC`, guildID, models.AdjustmentPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending adjustments for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var updates []*models.ManualGameScoreUpdate
	for rows.Next() {
		upd, err := r.scanAdjustment(rows)
		if err != nil {
			return nil, err
		}
		updates = append(updates, upd)
	}
	return updates, rows.Err()
}
