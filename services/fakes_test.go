package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/rating-system/models"
	"github.com/Dosada05/rating-system/repositories"
)

// In-memory repository fakes. The services run them through the nil-db path of
// withTx, so every method ignores the executor.

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func intPtr(v int) *int {
	return &v
}

type fakeCompetitionRepo struct {
	mu    sync.Mutex
	comps map[int64]*models.Competition
}

func newFakeCompetitionRepo() *fakeCompetitionRepo {
	return &fakeCompetitionRepo{comps: make(map[int64]*models.Competition)}
}

func defaultCompetition(guildID int64) *models.Competition {
	return &models.Competition{
		GuildID:             guildID,
		DefaultWinModifier:  10,
		DefaultLossModifier: 5,
		StartingPoints:      0,
		RankMode:            models.RankModeSingle,
		AllowReRegister:     true,
		AllowSelfRename:     true,
		CreatedAt:           time.Now(),
	}
}

func (r *fakeCompetitionRepo) seed(comp *models.Competition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *comp
	r.comps[comp.GuildID] = &c
}

func (r *fakeCompetitionRepo) GetOrCreate(_ context.Context, _ repositories.SQLExecutor, guildID int64) (*models.Competition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if comp, ok := r.comps[guildID]; ok {
		c := *comp
		return &c, nil
	}
	comp := defaultCompetition(guildID)
	r.comps[guildID] = comp
	c := *comp
	return &c, nil
}

func (r *fakeCompetitionRepo) Get(_ context.Context, _ repositories.SQLExecutor, guildID int64) (*models.Competition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	comp, ok := r.comps[guildID]
	if !ok {
		return nil, repositories.ErrCompetitionNotFound
	}
	c := *comp
	return &c, nil
}

func (r *fakeCompetitionRepo) UpdateOptions(_ context.Context, _ repositories.SQLExecutor, comp *models.Competition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.comps[comp.GuildID]
	if !ok {
		return repositories.ErrCompetitionNotFound
	}
	c := *comp
	c.RegistrationCount = stored.RegistrationCount
	c.CreatedAt = stored.CreatedAt
	r.comps[comp.GuildID] = &c
	return nil
}

func (r *fakeCompetitionRepo) IncrementRegistrationCount(_ context.Context, _ repositories.SQLExecutor, guildID int64, limit int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	comp, ok := r.comps[guildID]
	if !ok {
		return 0, repositories.ErrCompetitionNotFound
	}
	if comp.RegistrationCount >= limit {
		return 0, repositories.ErrRegistrationLimitReached
	}
	comp.RegistrationCount++
	return comp.RegistrationCount, nil
}

func (r *fakeCompetitionRepo) Delete(_ context.Context, _ repositories.SQLExecutor, guildID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comps[guildID]; !ok {
		return repositories.ErrCompetitionNotFound
	}
	delete(r.comps, guildID)
	return nil
}

func (r *fakeCompetitionRepo) ListGuildIDs(_ context.Context, _ repositories.SQLExecutor) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, len(r.comps))
	for id := range r.comps {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type fakePlayerRepo struct {
	mu      sync.Mutex
	players map[playerKey]*models.Player
	nextID  int
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{players: make(map[playerKey]*models.Player)}
}

func (r *fakePlayerRepo) Create(_ context.Context, _ repositories.SQLExecutor, player *models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := playerKey{GuildID: player.GuildID, UserID: player.UserID}
	if _, ok := r.players[key]; ok {
		return repositories.ErrPlayerConflict
	}
	r.nextID++
	player.ID = r.nextID
	player.Version = 1
	p := *player
	r.players[key] = &p
	return nil
}

func (r *fakePlayerRepo) GetByGuildAndUser(_ context.Context, _ repositories.SQLExecutor, guildID, userID int64) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	player, ok := r.players[playerKey{GuildID: guildID, UserID: userID}]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	p := *player
	return &p, nil
}

func (r *fakePlayerRepo) Update(_ context.Context, _ repositories.SQLExecutor, player *models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := playerKey{GuildID: player.GuildID, UserID: player.UserID}
	stored, ok := r.players[key]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	if stored.Version != player.Version {
		return repositories.ErrPlayerVersionConflict
	}
	player.Version++
	p := *player
	r.players[key] = &p
	return nil
}

func (r *fakePlayerRepo) ListByGuild(_ context.Context, _ repositories.SQLExecutor, guildID int64, limit, offset int) ([]*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Player
	for key, player := range r.players {
		if key.GuildID != guildID {
			continue
		}
		p := *player
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].UserID < out[j].UserID
	})
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakePlayerRepo) Delete(_ context.Context, _ repositories.SQLExecutor, guildID, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := playerKey{GuildID: guildID, UserID: userID}
	if _, ok := r.players[key]; !ok {
		return repositories.ErrPlayerNotFound
	}
	delete(r.players, key)
	return nil
}

type fakeRankRepo struct {
	mu     sync.Mutex
	ranks  []models.Rank
	nextID int
}

func newFakeRankRepo() *fakeRankRepo {
	return &fakeRankRepo{}
}

func (r *fakeRankRepo) seed(ranks ...models.Rank) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rank := range ranks {
		r.nextID++
		rank.ID = r.nextID
		r.ranks = append(r.ranks, rank)
	}
}

func (r *fakeRankRepo) Create(_ context.Context, _ repositories.SQLExecutor, rank *models.Rank) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.ranks {
		if existing.GuildID != rank.GuildID {
			continue
		}
		if existing.RoleID == rank.RoleID {
			return repositories.ErrRankRoleConflict
		}
		if existing.Points == rank.Points {
			return repositories.ErrRankPointsConflict
		}
	}
	r.nextID++
	rank.ID = r.nextID
	r.ranks = append(r.ranks, *rank)
	return nil
}

func (r *fakeRankRepo) GetByGuildAndRole(_ context.Context, _ repositories.SQLExecutor, guildID, roleID int64) (*models.Rank, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rank := range r.ranks {
		if rank.GuildID == guildID && rank.RoleID == roleID {
			found := rank
			return &found, nil
		}
	}
	return nil, repositories.ErrRankNotFound
}

func (r *fakeRankRepo) ListByGuild(_ context.Context, _ repositories.SQLExecutor, guildID int64) ([]models.Rank, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Rank
	for _, rank := range r.ranks {
		if rank.GuildID == guildID {
			out = append(out, rank)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Points < out[j].Points })
	return out, nil
}

func (r *fakeRankRepo) Update(_ context.Context, _ repositories.SQLExecutor, rank *models.Rank) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.ranks {
		if existing.GuildID != rank.GuildID {
			continue
		}
		if existing.RoleID != rank.RoleID && existing.Points == rank.Points {
			return repositories.ErrRankPointsConflict
		}
	}
	for i, existing := range r.ranks {
		if existing.GuildID == rank.GuildID && existing.RoleID == rank.RoleID {
			rank.ID = existing.ID
			r.ranks[i] = *rank
			return nil
		}
	}
	return repositories.ErrRankNotFound
}

func (r *fakeRankRepo) Delete(_ context.Context, _ repositories.SQLExecutor, guildID, roleID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, rank := range r.ranks {
		if rank.GuildID == guildID && rank.RoleID == roleID {
			r.ranks = append(r.ranks[:i], r.ranks[i+1:]...)
			return nil
		}
	}
	return repositories.ErrRankNotFound
}

func (r *fakeRankRepo) DeleteByGuild(_ context.Context, _ repositories.SQLExecutor, guildID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []models.Rank
	removed := 0
	for _, rank := range r.ranks {
		if rank.GuildID == guildID {
			removed++
			continue
		}
		kept = append(kept, rank)
	}
	r.ranks = kept
	return removed, nil
}

type fakeAdjustmentRepo struct {
	mu      sync.Mutex
	updates map[int]*models.ManualGameScoreUpdate
	nextID  int
}

func newFakeAdjustmentRepo() *fakeAdjustmentRepo {
	return &fakeAdjustmentRepo{updates: make(map[int]*models.ManualGameScoreUpdate)}
}

func (r *fakeAdjustmentRepo) Create(_ context.Context, _ repositories.SQLExecutor, upd *models.ManualGameScoreUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	upd.ID = r.nextID
	upd.Status = models.AdjustmentPending
	upd.CreatedAt = time.Now()
	u := *upd
	r.updates[upd.ID] = &u
	return nil
}

func (r *fakeAdjustmentRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.ManualGameScoreUpdate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	upd, ok := r.updates[id]
	if !ok {
		return nil, repositories.ErrAdjustmentNotFound
	}
	u := *upd
	return &u, nil
}

func (r *fakeAdjustmentRepo) MarkResolved(_ context.Context, _ repositories.SQLExecutor, id int, status models.AdjustmentStatus, resolvedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	upd, ok := r.updates[id]
	if !ok {
		return repositories.ErrAdjustmentNotFound
	}
	if upd.Status != models.AdjustmentPending {
		return repositories.ErrAdjustmentNotPending
	}
	upd.Status = status
	upd.ResolvedAt = &resolvedAt
	return nil
}

func (r *fakeAdjustmentRepo) ListPendingByGuild(_ context.Context, _ repositories.SQLExecutor, guildID int64) ([]*models.ManualGameScoreUpdate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ManualGameScoreUpdate
	for _, upd := range r.updates {
		if upd.GuildID == guildID && upd.Status == models.AdjustmentPending {
			u := *upd
			out = append(out, &u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// fakeReconciler records directives and fails the roles it is told to fail.
type fakeReconciler struct {
	mu      sync.Mutex
	granted []int64
	revoked []int64
	failing map[int64]error
}

func newFakeReconciler() *fakeReconciler {
	return &fakeReconciler{failing: make(map[int64]error)}
}

func (f *fakeReconciler) failRole(roleID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing[roleID] = fmt.Errorf("missing permission for role %d", roleID)
}

func (f *fakeReconciler) GrantRole(_ context.Context, _, _ int64, roleID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failing[roleID]; ok {
		return err
	}
	f.granted = append(f.granted, roleID)
	return nil
}

func (f *fakeReconciler) RevokeRole(_ context.Context, _, _ int64, roleID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failing[roleID]; ok {
		return err
	}
	f.revoked = append(f.revoked, roleID)
	return nil
}

// fakeNameSync records nickname pushes.
type fakeNameSync struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeNameSync) SetNickname(_ context.Context, _, _ int64, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, name)
	return nil
}

type testEnv struct {
	comps   *fakeCompetitionRepo
	players *fakePlayerRepo
	ranks   *fakeRankRepo
	adjs    *fakeAdjustmentRepo
	locks   *PlayerLocks
	logger  *slog.Logger
}

func newTestEnv() *testEnv {
	return &testEnv{
		comps:   newFakeCompetitionRepo(),
		players: newFakePlayerRepo(),
		ranks:   newFakeRankRepo(),
		adjs:    newFakeAdjustmentRepo(),
		locks:   NewPlayerLocks(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (e *testEnv) scoring() *ScoringService {
	return NewScoringService(nil, e.locks, e.comps, e.players, e.ranks, e.adjs, e.logger)
}

func (e *testEnv) seedPlayer(guildID, userID int64, points int) *models.Player {
	player := &models.Player{
		GuildID:          guildID,
		UserID:           userID,
		DisplayName:      fmt.Sprintf("player-%d", userID),
		Points:           points,
		RegistrationDate: time.Now(),
	}
	if err := e.players.Create(context.Background(), nil, player); err != nil {
		panic(err)
	}
	return player
}
