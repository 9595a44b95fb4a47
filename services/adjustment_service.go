package services

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/Dosada05/rating-system/models"
	"github.com/Dosada05/rating-system/repositories"
)

// AdjustmentService — очередь ручных корректировок очков. Применение записи
// делегируется движку очков: смена статуса pending→applied и мутация очков
// происходят в одной транзакции, так что очки не могут измениться без отметки
// записи и наоборот.
type AdjustmentService struct {
	db       *sql.DB
	adjRepo  repositories.AdjustmentRepository
	compRepo repositories.CompetitionRepository
	results  *ResultService
	logger   *slog.Logger
}

func NewAdjustmentService(
	db *sql.DB,
	adjRepo repositories.AdjustmentRepository,
	compRepo repositories.CompetitionRepository,
	results *ResultService,
	logger *slog.Logger,
) *AdjustmentService {
	return &AdjustmentService{
		db:       db,
		adjRepo:  adjRepo,
		compRepo: compRepo,
		results:  results,
		logger:   logger,
	}
}

// Enqueue записывает отложенную корректировку в статусе pending.
func (s *AdjustmentService) Enqueue(ctx context.Context, guildID, userID int64, manualGameID, modifyAmount int) (*models.ManualGameScoreUpdate, error) {
	var upd *models.ManualGameScoreUpdate
	err := withTx(ctx, s.db, func(exec repositories.SQLExecutor) error {
		if _, err := s.compRepo.GetOrCreate(ctx, exec, guildID); err != nil {
			return err
		}
		upd = &models.ManualGameScoreUpdate{
			GuildID:      guildID,
			UserID:       userID,
			ManualGameID: manualGameID,
			ModifyAmount: modifyAmount,
		}
		return s.adjRepo.Create(ctx, exec, upd)
	})
	if err != nil {
		return nil, err
	}
	return upd, nil
}

// Apply применяет pending-корректировку через движок очков и синхронизирует
// роли. Повторный вызов по той же записи даёт ErrDuplicateAdjustment и не
// меняет очки. Если игрок больше не существует, запись переводится в
// rejected.
func (s *AdjustmentService) Apply(ctx context.Context, id int) (*ResultOutcome, error) {
	upd, err := s.adjRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrAdjustmentNotFound) {
			return nil, ErrAdjustmentNotFound
		}
		return nil, err
	}

	outcome, err := s.results.ApplyAdjustment(ctx, upd.GuildID, upd.UserID, upd.ID)
	if err != nil {
		if errors.Is(err, ErrNotRegistered) {
			// Цель исчезла: корректировка больше не применима.
			if rejErr := s.reject(ctx, upd.ID); rejErr != nil {
				s.logger.WarnContext(ctx, "failed to reject orphaned adjustment",
					slog.Int("adjustment_id", upd.ID), slog.Any("error", rejErr))
			}
		}
		return nil, err
	}
	return outcome, nil
}

// Reject переводит pending-запись в терминальный статус rejected.
func (s *AdjustmentService) Reject(ctx context.Context, id int) error {
	if _, err := s.adjRepo.GetByID(ctx, nil, id); err != nil {
		if errors.Is(err, repositories.ErrAdjustmentNotFound) {
			return ErrAdjustmentNotFound
		}
		return err
	}
	return s.reject(ctx, id)
}

func (s *AdjustmentService) reject(ctx context.Context, id int) error {
	err := s.adjRepo.MarkResolved(ctx, nil, id, models.AdjustmentRejected, time.Now())
	if errors.Is(err, repositories.ErrAdjustmentNotPending) {
		return ErrDuplicateAdjustment
	}
	return err
}

// ListPending возвращает неприменённые корректировки guild'а.
func (s *AdjustmentService) ListPending(ctx context.Context, guildID int64) ([]*models.ManualGameScoreUpdate, error) {
	return s.adjRepo.ListPendingByGuild(ctx, nil, guildID)
}
