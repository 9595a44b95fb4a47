package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/rating-system/models"
	"github.com/Dosada05/rating-system/ranking"
	"github.com/Dosada05/rating-system/repositories"
)

// OutcomeKind — вид события, меняющего очки игрока.
type OutcomeKind string

const (
	OutcomeWin    OutcomeKind = "win"
	OutcomeLoss   OutcomeKind = "loss"
	OutcomeDraw   OutcomeKind = "draw"
	OutcomeManual OutcomeKind = "manual"
)

// Outcome описывает одно scoring-событие. Для ручной корректировки несёт ID
// записи очереди ManualGameScoreUpdate.
type Outcome struct {
	Kind         OutcomeKind
	AdjustmentID int
}

func ParseOutcomeKind(s string) (OutcomeKind, error) {
	switch OutcomeKind(s) {
	case OutcomeWin, OutcomeLoss, OutcomeDraw:
		return OutcomeKind(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOutcome, s)
	}
}

// ScoreUpdate — результат зафиксированной мутации. Несёт и старые, и новые
// очки из одного атомарного обновления, чтобы синхронизатор рангов строил
// diff, не перечитывая хранилище (другое конкурентное обновление могло уже
// продвинуть значение).
type ScoreUpdate struct {
	GuildID     int64 `json:"guild_id"`
	UserID      int64 `json:"user_id"`
	PriorPoints int   `json:"prior_points"`
	NewPoints   int   `json:"new_points"`
	WinsDelta   int   `json:"wins_delta"`
	LossesDelta int   `json:"losses_delta"`
	DrawsDelta  int   `json:"draws_delta"`
}

func (u *ScoreUpdate) PointsDelta() int {
	return u.NewPoints - u.PriorPoints
}

// ScoringService — арифметическое ядро: применяет scoring-событие к записи
// игрока. Все события одного игрока сериализуются через PlayerLocks, мутация
// выполняется в одной транзакции read-modify-write.
type ScoringService struct {
	db         *sql.DB
	locks      *PlayerLocks
	compRepo   repositories.CompetitionRepository
	playerRepo repositories.PlayerRepository
	rankRepo   repositories.RankRepository
	adjRepo    repositories.AdjustmentRepository
	logger     *slog.Logger
}

func NewScoringService(
	db *sql.DB,
	locks *PlayerLocks,
	compRepo repositories.CompetitionRepository,
	playerRepo repositories.PlayerRepository,
	rankRepo repositories.RankRepository,
	adjRepo repositories.AdjustmentRepository,
	logger *slog.Logger,
) *ScoringService {
	return &ScoringService{
		db:         db,
		locks:      locks,
		compRepo:   compRepo,
		playerRepo: playerRepo,
		rankRepo:   rankRepo,
		adjRepo:    adjRepo,
		logger:     logger,
	}
}

// ApplyResult вычисляет и фиксирует новые очки и статистику игрока для одного
// события. Разрешение модификатора использует ранг, которым игрок владел ДО
// события. Возвращённый ScoreUpdate — единственный источник пары
// prior/new для дальнейшей синхронизации ролей.
//
// Блокировка игрока не удерживается во время внешних вызовов: внутри — только
// чтение конфигурации и транзакция БД.
func (s *ScoringService) ApplyResult(ctx context.Context, guildID, userID int64, outcome Outcome) (*ScoreUpdate, error) {
	switch outcome.Kind {
	case OutcomeWin, OutcomeLoss, OutcomeDraw:
	case OutcomeManual:
		if outcome.AdjustmentID <= 0 {
			return nil, fmt.Errorf("%w: manual outcome requires an adjustment id", ErrInvalidOutcome)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidOutcome, outcome.Kind)
	}

	unlock := s.locks.Lock(guildID, userID)
	defer unlock()

	var update *ScoreUpdate
	err := withTx(ctx, s.db, func(exec repositories.SQLExecutor) error {
		comp, err := s.compRepo.GetOrCreate(ctx, exec, guildID)
		if err != nil {
			return err
		}

		player, err := s.playerRepo.GetByGuildAndUser(ctx, exec, guildID, userID)
		if err != nil {
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				return ErrNotRegistered
			}
			return err
		}

		ranks, err := s.rankRepo.ListByGuild(ctx, exec, guildID)
		if err != nil {
			return err
		}
		table, err := ranking.NewTable(ranks)
		if err != nil {
			return err
		}

		// Ранг на момент ДО события; модификаторы не пересчитываются
		// посреди обновления.
		currentRank := table.Current(player.Points)

		prior := player.Points
		switch outcome.Kind {
		case OutcomeWin:
			player.Points = comp.ClampPoints(prior + currentRank.EffectiveWinModifier(comp))
			player.Wins++
			player.Games++
		case OutcomeLoss:
			player.Points = comp.ClampPoints(prior - currentRank.EffectiveLossModifier(comp))
			player.Losses++
			player.Games++
		case OutcomeDraw:
			player.Points = comp.ClampPoints(prior + comp.EffectiveDrawModifier())
			player.Draws++
			player.Games++
		case OutcomeManual:
			amount, err := s.consumeAdjustment(ctx, exec, outcome.AdjustmentID, guildID, userID)
			if err != nil {
				return err
			}
			// Счётчики игр не затрагиваются: это не игровой результат.
			player.Points = comp.ClampPoints(prior + amount)
		}

		if err := s.playerRepo.Update(ctx, exec, player); err != nil {
			return err
		}

		update = &ScoreUpdate{
			GuildID:     guildID,
			UserID:      userID,
			PriorPoints: prior,
			NewPoints:   player.Points,
			WinsDelta:   boolToInt(outcome.Kind == OutcomeWin),
			LossesDelta: boolToInt(outcome.Kind == OutcomeLoss),
			DrawsDelta:  boolToInt(outcome.Kind == OutcomeDraw),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "score update committed",
		slog.Int64("guild_id", guildID),
		slog.Int64("user_id", userID),
		slog.String("outcome", string(outcome.Kind)),
		slog.Int("prior_points", update.PriorPoints),
		slog.Int("new_points", update.NewPoints),
	)
	return update, nil
}

// consumeAdjustment проверяет apply-once инвариант записи очереди и помечает
// её применённой в текущей транзакции. Любая терминальная запись даёт
// ErrDuplicateAdjustment до какой-либо мутации очков.
func (s *ScoringService) consumeAdjustment(ctx context.Context, exec repositories.SQLExecutor, id int, guildID, userID int64) (int, error) {
	upd, err := s.adjRepo.GetByID(ctx, exec, id)
	if err != nil {
		if errors.Is(err, repositories.ErrAdjustmentNotFound) {
			return 0, ErrAdjustmentNotFound
		}
		return 0, err
	}
	if upd.GuildID != guildID || upd.UserID != userID {
		return 0, ErrAdjustmentMismatch
	}
	if upd.Status != models.AdjustmentPending {
		return 0, ErrDuplicateAdjustment
	}

	if err := s.adjRepo.MarkResolved(ctx, exec, id, models.AdjustmentApplied, time.Now()); err != nil {
		if errors.Is(err, repositories.ErrAdjustmentNotPending) {
			return 0, ErrDuplicateAdjustment
		}
		return 0, err
	}
	return upd.ModifyAmount, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
