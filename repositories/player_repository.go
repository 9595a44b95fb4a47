package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/rating-system/models"
)

var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrPlayerConflict = errors.New("player already registered in this guild")
	// ErrPlayerVersionConflict: the optimistic version stamp did not match,
	// another writer advanced the row since it was read.
	ErrPlayerVersionConflict = errors.New("player record was modified concurrently")
)

type PlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, player *models.Player) error
	GetByGuildAndUser(ctx context.Context, exec SQLExecutor, guildID, userID int64) (*models.Player, error)
	// Update writes the full mutable state of the player row, asserting the
	// version stamp the caller read. On success player.Version is advanced.
	Update(ctx context.Context, exec SQLExecutor, player *models.Player) error
	ListByGuild(ctx context.Context, exec SQLExecutor, guildID int64, limit, offset int) ([]*models.Player, error)
	Delete(ctx context.Context, exec SQLExecutor, guildID, userID int64) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const playerColumns = `
	id, guild_id, user_id, display_name, points, wins, losses, draws, games,
	registration_date, version`

func (r *postgresPlayerRepository) scanPlayer(rowScanner interface{ Scan(...interface{}) error }) (*models.Player, error) {
	var p models.Player
	err := rowScanner.Scan(
		&p.ID, &p.GuildID, &p.UserID, &p.DisplayName, &p.Points,
		&p.Wins, &p.Losses, &p.Draws, &p.Games,
		&p.RegistrationDate, &p.Version,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player: %w", err)
	}
	return &p, nil
}

func (r *postgresPlayerRepository) Create(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	executor := r.getExecutor(exec)
	err := executor.QueryRowContext(ctx, `
		INSERT INTO players
			(guild_id, user_id, display_name, points, wins, losses, draws, games, registration_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, version`,
		player.GuildID, player.UserID, player.DisplayName, player.Points,
		player.Wins, player.Losses, player.Draws, player.Games,
		player.RegistrationDate,
	).Scan(&player.ID, &player.Version)
	if err != nil {
		if isUniqueViolation(err, "players_guild_id_user_id_key") {
			return ErrPlayerConflict
		}
		return fmt.Errorf("failed to create player (guild %d, user %d): %w", player.GuildID, player.UserID, err)
	}
	return nil
}

func (r *postgresPlayerRepository) GetByGuildAndUser(ctx context.Context, exec SQLExecutor, guildID, userID int64) (*models.Player, error) {
	executor := r.getExecutor(exec)
	row := executor.QueryRowContext(ctx, `
		SELECT `+playerColumns+`
		FROM players
		WHERE guild_id = $1 AND user_id = $2`, guildID, userID)
	return r.scanPlayer(row)
}

func (r *postgresPlayerRepository) Update(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `
		UPDATE players SET
			display_name = $4,
			points = $5,
			wins = $6,
			losses = $7,
			draws = $8,
			games = $9,
			registration_date = $10,
			version = version + 1
		WHERE guild_id = $1 AND user_id = $2 AND version = $3`,
		player.GuildID, player.UserID, player.Version,
		player.DisplayName, player.Points, player.Wins, player.Losses,
		player.Draws, player.Games, player.RegistrationDate,
	)
	if err != nil {
		return fmt.Errorf("failed to update player (guild %d, user %d): %w", player.GuildID, player.UserID, err)
	}
	if err := checkAffectedRows(result, ErrPlayerVersionConflict); err != nil {
		return err
	}
	player.Version++
	return nil
}

func (r *postgresPlayerRepository) ListByGuild(ctx context.Context, exec SQLExecutor, guildID int64, limit, offset int) ([]*models.Player, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx, `
		SELECT `+playerColumns+`
		FROM players
		WHERE guild_id = $1
		ORDER BY points DESC, registration_date ASC
		LIMIT $2 OFFSET $3`, guildID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list players for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		p, err := r.scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, exec SQLExecutor, guildID, userID int64) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`DELETE FROM players WHERE guild_id = $1 AND user_id = $2`, guildID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete player (guild %d, user %d): %w", guildID, userID, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}
