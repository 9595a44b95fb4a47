package services

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/rating-system/models"
	"github.com/Dosada05/rating-system/ranking"
	"github.com/Dosada05/rating-system/repositories"
)

// RegistrationLimitProvider — внешний поставщик лимита регистраций guild'а
// (premium-уровни и т.п. живут за этой границей).
type RegistrationLimitProvider interface {
	GetLimit(ctx context.Context, guildID int64) (int, error)
}

// StaticLimitProvider отдаёт фиксированный лимит из конфигурации.
type StaticLimitProvider struct {
	Limit int
}

func (p StaticLimitProvider) GetLimit(_ context.Context, _ int64) (int, error) {
	return p.Limit, nil
}

// RegistrationService — регистрация, переименование и чтение игроков.
type RegistrationService struct {
	db         *sql.DB
	locks      *PlayerLocks
	compRepo   repositories.CompetitionRepository
	playerRepo repositories.PlayerRepository
	rankRepo   repositories.RankRepository
	limits     RegistrationLimitProvider
	names      NameSynchronizer
	sync       *SyncService
	logger     *slog.Logger
}

func NewRegistrationService(
	db *sql.DB,
	locks *PlayerLocks,
	compRepo repositories.CompetitionRepository,
	playerRepo repositories.PlayerRepository,
	rankRepo repositories.RankRepository,
	limits RegistrationLimitProvider,
	names NameSynchronizer,
	sync *SyncService,
	logger *slog.Logger,
) *RegistrationService {
	return &RegistrationService{
		db:         db,
		locks:      locks,
		compRepo:   compRepo,
		playerRepo: playerRepo,
		rankRepo:   rankRepo,
		limits:     limits,
		names:      names,
		sync:       sync,
		logger:     logger,
	}
}

// Register создаёт запись игрока (или пересоздаёт при разрешённой
// перерегистрации), затем best-effort выставляет никнейм и стартовые роли.
// Внешние вызовы идут строго после коммита записи.
func (s *RegistrationService) Register(ctx context.Context, guildID, userID int64, displayName string) (*models.Player, *ReconciliationReport, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, nil, ErrDisplayNameRequired
	}

	unlock := s.locks.Lock(guildID, userID)

	var player *models.Player
	var comp *models.Competition
	var reused bool
	var priorPoints int
	err := withTx(ctx, s.db, func(exec repositories.SQLExecutor) error {
		var err error
		comp, err = s.compRepo.GetOrCreate(ctx, exec, guildID)
		if err != nil {
			return err
		}

		existing, err := s.playerRepo.GetByGuildAndUser(ctx, exec, guildID, userID)
		if err != nil && !errors.Is(err, repositories.ErrPlayerNotFound) {
			return err
		}

		if existing != nil {
			if !comp.AllowReRegister {
				return ErrReRegistrationForbidden
			}
			// Перерегистрация переиспользует запись: счёт и имя сбрасываются,
			// статистика — только если так настроено. Старый счёт запоминаем:
			// синхронизатору нужна пара prior/new, чтобы снять устаревшие роли.
			priorPoints = existing.Points
			existing.DisplayName = displayName
			existing.Points = comp.StartingPoints
			if comp.ResetStatsOnReRegister {
				existing.Wins = 0
				existing.Losses = 0
				existing.Draws = 0
				existing.Games = 0
			}
			existing.RegistrationDate = time.Now()
			if err := s.playerRepo.Update(ctx, exec, existing); err != nil {
				return err
			}
			player = existing
			reused = true
			return nil
		}

		limit, err := s.limits.GetLimit(ctx, guildID)
		if err != nil {
			return err
		}

		player = &models.Player{
			GuildID:          guildID,
			UserID:           userID,
			DisplayName:      displayName,
			Points:           comp.StartingPoints,
			RegistrationDate: time.Now(),
		}
		if err := s.playerRepo.Create(ctx, exec, player); err != nil {
			if errors.Is(err, repositories.ErrPlayerConflict) {
				return ErrAlreadyRegistered
			}
			return err
		}

		// Условный инкремент — единственный авторитетный страж лимита: два
		// конкурентных Register'а не могут оба пройти на последнем слоте.
		if _, err := s.compRepo.IncrementRegistrationCount(ctx, exec, guildID, limit); err != nil {
			if errors.Is(err, repositories.ErrRegistrationLimitReached) {
				return ErrRegistrationLimitExceeded
			}
			return err
		}
		return nil
	})
	unlock()
	if err != nil {
		return nil, nil, err
	}

	s.syncNickname(ctx, comp, guildID, userID, displayName)

	// Для переиспользованной записи bootstrap недостаточен: он только выдаёт
	// роли, а сброс счёта мог отнять ранги, которыми игрок владел раньше.
	var report *ReconciliationReport
	if reused {
		report, err = s.sync.Reconcile(ctx, comp, &ScoreUpdate{
			GuildID:     guildID,
			UserID:      userID,
			PriorPoints: priorPoints,
			NewPoints:   player.Points,
		})
	} else {
		report, err = s.sync.Bootstrap(ctx, comp, player)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "initial rank sync skipped",
			slog.Int64("guild_id", guildID), slog.Int64("user_id", userID), slog.Any("error", err))
		return player, nil, nil
	}
	return player, report, nil
}

// Rename меняет сохранённое имя игрока. При self=true политика guild'а может
// запретить операцию. Сбой синхронизации никнейма на платформе не блокирует
// переименование записи.
func (s *RegistrationService) Rename(ctx context.Context, guildID, userID int64, displayName string, self bool) (*models.Player, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, ErrDisplayNameRequired
	}

	unlock := s.locks.Lock(guildID, userID)

	var player *models.Player
	var comp *models.Competition
	err := withTx(ctx, s.db, func(exec repositories.SQLExecutor) error {
		var err error
		comp, err = s.compRepo.GetOrCreate(ctx, exec, guildID)
		if err != nil {
			return err
		}
		if self && !comp.AllowSelfRename {
			return ErrRenameForbidden
		}

		player, err = s.playerRepo.GetByGuildAndUser(ctx, exec, guildID, userID)
		if err != nil {
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				return ErrNotRegistered
			}
			return err
		}

		player.DisplayName = displayName
		return s.playerRepo.Update(ctx, exec, player)
	})
	unlock()
	if err != nil {
		return nil, err
	}

	s.syncNickname(ctx, comp, guildID, userID, displayName)
	return player, nil
}

func (s *RegistrationService) syncNickname(ctx context.Context, comp *models.Competition, guildID, userID int64, name string) {
	if !comp.UpdateNames || s.names == nil {
		return
	}
	if err := s.names.SetNickname(ctx, guildID, userID, name); err != nil {
		s.logger.WarnContext(ctx, "nickname sync failed",
			slog.Int64("guild_id", guildID), slog.Int64("user_id", userID), slog.Any("error", err))
	}
}

// Profile возвращает игрока и его текущий ранг (nil, если счёт ниже всех
// порогов).
func (s *RegistrationService) Profile(ctx context.Context, guildID, userID int64) (*models.Player, *models.Rank, error) {
	player, err := s.playerRepo.GetByGuildAndUser(ctx, nil, guildID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, nil, ErrNotRegistered
		}
		return nil, nil, err
	}

	ranks, err := s.rankRepo.ListByGuild(ctx, nil, guildID)
	if err != nil {
		return nil, nil, err
	}
	table, err := ranking.NewTable(ranks)
	if err != nil {
		return nil, nil, err
	}
	return player, table.Current(player.Points), nil
}

// Leaderboard возвращает страницу таблицы лидеров guild'а по убыванию очков.
func (s *RegistrationService) Leaderboard(ctx context.Context, guildID int64, limit, offset int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	players, err := s.playerRepo.ListByGuild(ctx, nil, guildID, limit, offset)
	if err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, 0, len(players))
	for i, p := range players {
		entries = append(entries, models.LeaderboardEntry{
			Position:    offset + i + 1,
			UserID:      p.UserID,
			DisplayName: p.DisplayName,
			Points:      p.Points,
			Games:       p.Games,
		})
	}
	return entries, nil
}
