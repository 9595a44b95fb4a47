package services

import (
	"context"
	"log/slog"

	"github.com/Dosada05/rating-system/ranking"
	"github.com/Dosada05/rating-system/repositories"
)

// PlayerOutcome — исход одного игрока в завершённой игре.
type PlayerOutcome struct {
	UserID  int64
	Outcome OutcomeKind
}

// ResultOutcome — итог обработки события для одного игрока: зафиксированное
// обновление очков и отчёт синхронизации ролей.
type ResultOutcome struct {
	Update *ScoreUpdate          `json:"update"`
	Report *ReconciliationReport `json:"report"`
}

// ResultService связывает конвейер: движок очков → синхронизатор рангов →
// live-рассылка. Очки фиксируются до любых внешних вызовов; сбой
// синхронизации ролей их не откатывает.
type ResultService struct {
	compRepo repositories.CompetitionRepository
	scoring  *ScoringService
	sync     *SyncService
	hub      *ranking.Hub
	logger   *slog.Logger
}

func NewResultService(
	compRepo repositories.CompetitionRepository,
	scoring *ScoringService,
	sync *SyncService,
	hub *ranking.Hub,
	logger *slog.Logger,
) *ResultService {
	return &ResultService{
		compRepo: compRepo,
		scoring:  scoring,
		sync:     sync,
		hub:      hub,
		logger:   logger,
	}
}

// ProcessResult применяет игровой исход к игроку и приводит внешние роли в
// соответствие новому счёту.
func (s *ResultService) ProcessResult(ctx context.Context, guildID, userID int64, kind OutcomeKind) (*ResultOutcome, error) {
	update, err := s.scoring.ApplyResult(ctx, guildID, userID, Outcome{Kind: kind})
	if err != nil {
		return nil, err
	}
	return s.finish(ctx, guildID, update)
}

// ProcessGameResults применяет исходы завершённой игры к нескольким игрокам.
// Каждое обновление атомарно само по себе; сбой одного игрока не мешает
// остальным — частичные ошибки возвращаются рядом с успешными исходами.
func (s *ResultService) ProcessGameResults(ctx context.Context, guildID int64, outcomes []PlayerOutcome) ([]*ResultOutcome, []error) {
	results := make([]*ResultOutcome, 0, len(outcomes))
	var errs []error
	for _, po := range outcomes {
		outcome, err := s.ProcessResult(ctx, guildID, po.UserID, po.Outcome)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, outcome)
	}
	return results, errs
}

// ApplyAdjustment прогоняет ручную корректировку через тот же конвейер.
func (s *ResultService) ApplyAdjustment(ctx context.Context, guildID, userID int64, adjustmentID int) (*ResultOutcome, error) {
	update, err := s.scoring.ApplyResult(ctx, guildID, userID, Outcome{Kind: OutcomeManual, AdjustmentID: adjustmentID})
	if err != nil {
		return nil, err
	}
	return s.finish(ctx, guildID, update)
}

func (s *ResultService) finish(ctx context.Context, guildID int64, update *ScoreUpdate) (*ResultOutcome, error) {
	if s.hub != nil {
		s.hub.BroadcastToGuild(guildID, ranking.Event{
			Type:    ranking.EventScoreUpdated,
			GuildID: guildID,
			Payload: update,
		})
	}

	comp, err := s.compRepo.Get(ctx, nil, guildID)
	if err != nil {
		// Очки уже зафиксированы; без конфигурации план не построить, но
		// откатывать нечего — отдаём обновление без отчёта.
		s.logger.WarnContext(ctx, "rank sync skipped: competition lookup failed",
			slog.Int64("guild_id", guildID), slog.Any("error", err))
		return &ResultOutcome{Update: update}, nil
	}

	report, err := s.sync.Reconcile(ctx, comp, update)
	if err != nil {
		s.logger.WarnContext(ctx, "rank sync skipped: plan build failed",
			slog.Int64("guild_id", guildID), slog.Any("error", err))
		return &ResultOutcome{Update: update}, nil
	}
	return &ResultOutcome{Update: update, Report: report}, nil
}
