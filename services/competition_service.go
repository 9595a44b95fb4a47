package services

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/Dosada05/rating-system/models"
	"github.com/Dosada05/rating-system/repositories"
)

// CompetitionService — настройки соревнования guild'а и конфигурация рангов.
type CompetitionService struct {
	db       *sql.DB
	compRepo repositories.CompetitionRepository
	rankRepo repositories.RankRepository
	logger   *slog.Logger
}

func NewCompetitionService(
	db *sql.DB,
	compRepo repositories.CompetitionRepository,
	rankRepo repositories.RankRepository,
	logger *slog.Logger,
) *CompetitionService {
	return &CompetitionService{
		db:       db,
		compRepo: compRepo,
		rankRepo: rankRepo,
		logger:   logger,
	}
}

// GetOrCreate лениво создаёт соревнование guild'а.
func (s *CompetitionService) GetOrCreate(ctx context.Context, guildID int64) (*models.Competition, error) {
	return s.compRepo.GetOrCreate(ctx, nil, guildID)
}

// UpdateOptions сохраняет настройки соревнования.
func (s *CompetitionService) UpdateOptions(ctx context.Context, comp *models.Competition) error {
	if !comp.RankMode.Valid() {
		return ErrInvalidRankMode
	}
	err := s.compRepo.UpdateOptions(ctx, nil, comp)
	if errors.Is(err, repositories.ErrCompetitionNotFound) {
		return ErrCompetitionNotFound
	}
	return err
}

// Delete удаляет соревнование вместе с его рангами (каскадная семантика:
// ранги принадлежат соревнованию).
func (s *CompetitionService) Delete(ctx context.Context, guildID int64) error {
	return withTx(ctx, s.db, func(exec repositories.SQLExecutor) error {
		deleted, err := s.rankRepo.DeleteByGuild(ctx, exec, guildID)
		if err != nil {
			return err
		}
		if err := s.compRepo.Delete(ctx, exec, guildID); err != nil {
			if errors.Is(err, repositories.ErrCompetitionNotFound) {
				return ErrCompetitionNotFound
			}
			return err
		}
		s.logger.InfoContext(ctx, "competition deleted",
			slog.Int64("guild_id", guildID), slog.Int("ranks_deleted", deleted))
		return nil
	})
}

// CreateRank добавляет ранг. Совпадение порога с существующим рангом guild'а
// отклоняется: при равных порогах членство было бы неоднозначным.
func (s *CompetitionService) CreateRank(ctx context.Context, rank *models.Rank) error {
	return withTx(ctx, s.db, func(exec repositories.SQLExecutor) error {
		if _, err := s.compRepo.GetOrCreate(ctx, exec, rank.GuildID); err != nil {
			return err
		}
		return s.mapRankError(s.rankRepo.Create(ctx, exec, rank))
	})
}

// UpdateRank меняет порог или переопределения модификаторов ранга.
func (s *CompetitionService) UpdateRank(ctx context.Context, rank *models.Rank) error {
	return s.mapRankError(s.rankRepo.Update(ctx, nil, rank))
}

// DeleteRank удаляет ранг по роли.
func (s *CompetitionService) DeleteRank(ctx context.Context, guildID, roleID int64) error {
	return s.mapRankError(s.rankRepo.Delete(ctx, nil, guildID, roleID))
}

// ListRanks возвращает ранги guild'а по возрастанию порога.
func (s *CompetitionService) ListRanks(ctx context.Context, guildID int64) ([]models.Rank, error) {
	return s.rankRepo.ListByGuild(ctx, nil, guildID)
}

func (s *CompetitionService) mapRankError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrRankPointsConflict):
		return ErrRankOverlap
	case errors.Is(err, repositories.ErrRankRoleConflict):
		return ErrRankRoleTaken
	case errors.Is(err, repositories.ErrRankNotFound):
		return ErrRankNotFound
	default:
		return err
	}
}
