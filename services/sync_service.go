package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/rating-system/models"
	"github.com/Dosada05/rating-system/ranking"
	"github.com/Dosada05/rating-system/repositories"
	"golang.org/x/sync/errgroup"
)

// RoleReconciler — внешняя граница платформы: выдаёт и снимает роли. Ошибки
// нехватки прав или иерархии — ожидаемый, нефатальный исход.
type RoleReconciler interface {
	GrantRole(ctx context.Context, guildID, userID, roleID int64) error
	RevokeRole(ctx context.Context, guildID, userID, roleID int64) error
}

// NameSynchronizer — внешняя граница платформы для никнеймов.
type NameSynchronizer interface {
	SetNickname(ctx context.Context, guildID, userID int64, name string) error
}

type DirectiveAction string

const (
	DirectiveGrant  DirectiveAction = "grant"
	DirectiveRevoke DirectiveAction = "revoke"
)

type DirectiveFailure struct {
	Action DirectiveAction `json:"action"`
	RoleID int64           `json:"role_id"`
	Reason string          `json:"reason"`
}

// ReconciliationReport — итог выполнения плана. Частичный сбой не откатывает
// очки: рейтинг авторитетен, роли — best-effort проекция.
type ReconciliationReport struct {
	Plan    ranking.Plan       `json:"plan"`
	Granted []int64            `json:"granted"`
	Revoked []int64            `json:"revoked"`
	Failed  []DirectiveFailure `json:"failed,omitempty"`
}

func (r *ReconciliationReport) PartialFailure() bool {
	return len(r.Failed) > 0
}

func (r *ReconciliationReport) Err() error {
	if !r.PartialFailure() {
		return nil
	}
	return fmt.Errorf("%w: %d of %d directives failed",
		ErrReconciliationPartial, len(r.Failed), len(r.Plan.Grant)+len(r.Plan.Revoke))
}

const defaultDirectiveTimeout = 10 * time.Second

// SyncService — синхронизатор рангов: строит идемпотентный план grant/revoke
// по паре prior/new из одного атомарного обновления и исполняет его против
// внешней границы. План считается вне per-player блокировки: I/O платформы
// никогда не держит её.
type SyncService struct {
	rankRepo         repositories.RankRepository
	reconciler       RoleReconciler
	hub              *ranking.Hub
	logger           *slog.Logger
	directiveTimeout time.Duration
}

func NewSyncService(rankRepo repositories.RankRepository, reconciler RoleReconciler, hub *ranking.Hub, logger *slog.Logger) *SyncService {
	return &SyncService{
		rankRepo:         rankRepo,
		reconciler:       reconciler,
		hub:              hub,
		logger:           logger,
		directiveTimeout: defaultDirectiveTimeout,
	}
}

// Reconcile строит и исполняет план для зафиксированного обновления очков.
// Ошибка возвращается только если план не удалось построить; сбои директив
// попадают в отчёт.
func (s *SyncService) Reconcile(ctx context.Context, comp *models.Competition, update *ScoreUpdate) (*ReconciliationReport, error) {
	table, err := s.loadTable(ctx, comp.GuildID)
	if err != nil {
		return nil, err
	}
	plan := ranking.BuildPlan(table, comp.RankMode, update.PriorPoints, update.NewPoints)
	return s.executePlan(ctx, comp.GuildID, update.UserID, plan), nil
}

// Bootstrap выдаёт игроку роли всех рангов, которым соответствует его текущий
// счёт. Используется при регистрации.
func (s *SyncService) Bootstrap(ctx context.Context, comp *models.Competition, player *models.Player) (*ReconciliationReport, error) {
	table, err := s.loadTable(ctx, comp.GuildID)
	if err != nil {
		return nil, err
	}
	plan := ranking.BuildInitialPlan(table, comp.RankMode, player.Points)
	return s.executePlan(ctx, comp.GuildID, player.UserID, plan), nil
}

func (s *SyncService) loadTable(ctx context.Context, guildID int64) (*ranking.Table, error) {
	ranks, err := s.rankRepo.ListByGuild(ctx, nil, guildID)
	if err != nil {
		return nil, err
	}
	return ranking.NewTable(ranks)
}

// executePlan исполняет директивы параллельно, каждую со своим таймаутом.
// Директивы независимы: сбой одной не отменяет остальные.
func (s *SyncService) executePlan(ctx context.Context, guildID, userID int64, plan ranking.Plan) *ReconciliationReport {
	report := &ReconciliationReport{Plan: plan}
	if plan.Empty() {
		return report
	}

	var mu sync.Mutex
	g := new(errgroup.Group)

	dispatch := func(action DirectiveAction, roleID int64, call func(context.Context) error) {
		g.Go(func() error {
			dirCtx, cancel := context.WithTimeout(ctx, s.directiveTimeout)
			defer cancel()

			err := call(dirCtx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed = append(report.Failed, DirectiveFailure{
					Action: action,
					RoleID: roleID,
					Reason: err.Error(),
				})
				return nil
			}
			if action == DirectiveGrant {
				report.Granted = append(report.Granted, roleID)
			} else {
				report.Revoked = append(report.Revoked, roleID)
			}
			return nil
		})
	}

	for _, roleID := range plan.Grant {
		roleID := roleID
		dispatch(DirectiveGrant, roleID, func(dirCtx context.Context) error {
			return s.reconciler.GrantRole(dirCtx, guildID, userID, roleID)
		})
	}
	for _, roleID := range plan.Revoke {
		roleID := roleID
		dispatch(DirectiveRevoke, roleID, func(dirCtx context.Context) error {
			return s.reconciler.RevokeRole(dirCtx, guildID, userID, roleID)
		})
	}

	_ = g.Wait()

	if report.PartialFailure() {
		s.logger.WarnContext(ctx, "role reconciliation partially failed",
			slog.Int64("guild_id", guildID),
			slog.Int64("user_id", userID),
			slog.Int("failed", len(report.Failed)),
		)
	}

	if s.hub != nil {
		s.hub.BroadcastToGuild(guildID, ranking.Event{
			Type:    ranking.EventRanksSynced,
			GuildID: guildID,
			Payload: report,
		})
	}
	return report
}
