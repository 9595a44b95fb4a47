package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/rating-system/models"
	"github.com/Dosada05/rating-system/repositories"
	"github.com/Dosada05/rating-system/storage"
)

const snapshotTopN = 100

// SnapshotService периодически выгружает срез таблицы лидеров каждого guild'а
// в объектное хранилище.
type SnapshotService struct {
	compRepo   repositories.CompetitionRepository
	playerRepo repositories.PlayerRepository
	uploader   storage.FileUploader
	logger     *slog.Logger
}

func NewSnapshotService(
	compRepo repositories.CompetitionRepository,
	playerRepo repositories.PlayerRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) *SnapshotService {
	return &SnapshotService{
		compRepo:   compRepo,
		playerRepo: playerRepo,
		uploader:   uploader,
		logger:     logger,
	}
}

// SnapshotGuild сериализует топ игроков guild'а и выгружает JSON в хранилище.
func (s *SnapshotService) SnapshotGuild(ctx context.Context, guildID int64) (*storage.UploadResult, error) {
	players, err := s.playerRepo.ListByGuild(ctx, nil, guildID, snapshotTopN, 0)
	if err != nil {
		return nil, err
	}

	snapshot := models.LeaderboardSnapshot{
		GuildID: guildID,
		TakenAt: time.Now().UTC(),
		Entries: make([]models.LeaderboardEntry, 0, len(players)),
	}
	for i, p := range players {
		snapshot.Entries = append(snapshot.Entries, models.LeaderboardEntry{
			Position:    i + 1,
			UserID:      p.UserID,
			DisplayName: p.DisplayName,
			Points:      p.Points,
			Games:       p.Games,
		})
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot for guild %d: %w", guildID, err)
	}

	key := fmt.Sprintf("snapshots/%d/%s.json", guildID, snapshot.TakenAt.Format("20060102T150405Z"))
	return s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(payload))
}

// SnapshotAll делает срез по всем guild'ам; ошибка одного guild'а не
// останавливает остальные.
func (s *SnapshotService) SnapshotAll(ctx context.Context) error {
	guildIDs, err := s.compRepo.ListGuildIDs(ctx, nil)
	if err != nil {
		return err
	}

	var failed int
	for _, guildID := range guildIDs {
		if _, err := s.SnapshotGuild(ctx, guildID); err != nil {
			failed++
			s.logger.WarnContext(ctx, "leaderboard snapshot failed",
				slog.Int64("guild_id", guildID), slog.Any("error", err))
		}
	}
	if failed > 0 {
		return fmt.Errorf("leaderboard snapshot failed for %d of %d guilds", failed, len(guildIDs))
	}
	return nil
}
