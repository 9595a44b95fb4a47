package services

import (
	"context"
	"testing"

	"github.com/Dosada05/rating-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResultFixture(env *testEnv) (*ResultService, *fakeReconciler) {
	reconciler := newFakeReconciler()
	rankSync := NewSyncService(env.ranks, reconciler, nil, env.logger)
	results := NewResultService(env.comps, env.scoring(), rankSync, nil, env.logger)
	return results, reconciler
}

func TestProcessResultCommitsScoreAndSyncsRoles(t *testing.T) {
	env := newTestEnv()
	env.comps.seed(defaultCompetition(testGuild))
	env.ranks.seed(
		models.Rank{GuildID: testGuild, RoleID: 2000, Points: 0},
		models.Rank{GuildID: testGuild, RoleID: 2050, Points: 50},
	)
	env.seedPlayer(testGuild, testUser, 45)
	results, _ := newResultFixture(env)

	outcome, err := results.ProcessResult(context.Background(), testGuild, testUser, OutcomeWin)
	require.NoError(t, err)

	assert.Equal(t, 55, outcome.Update.NewPoints)
	require.NotNil(t, outcome.Report)
	assert.Equal(t, []int64{2050}, outcome.Report.Granted)
	assert.Equal(t, []int64{2000}, outcome.Report.Revoked)
}

// A reconciliation failure never rolls the score back: the rating is
// authoritative, roles are a best-effort projection.
func TestProcessResultKeepsScoreOnSyncFailure(t *testing.T) {
	env := newTestEnv()
	env.comps.seed(defaultCompetition(testGuild))
	env.ranks.seed(
		models.Rank{GuildID: testGuild, RoleID: 2000, Points: 0},
		models.Rank{GuildID: testGuild, RoleID: 2050, Points: 50},
	)
	env.seedPlayer(testGuild, testUser, 45)
	results, reconciler := newResultFixture(env)
	reconciler.failRole(2050)
	reconciler.failRole(2000)

	outcome, err := results.ProcessResult(context.Background(), testGuild, testUser, OutcomeWin)
	require.NoError(t, err)
	assert.Len(t, outcome.Report.Failed, 2)

	player, err := env.players.GetByGuildAndUser(context.Background(), nil, testGuild, testUser)
	require.NoError(t, err)
	assert.Equal(t, 55, player.Points)
}

func TestProcessGameResultsPartialErrors(t *testing.T) {
	env := newTestEnv()
	env.comps.seed(defaultCompetition(testGuild))
	env.seedPlayer(testGuild, 1, 0)
	env.seedPlayer(testGuild, 2, 0)
	results, _ := newResultFixture(env)

	outcomes, errs := results.ProcessGameResults(context.Background(), testGuild, []PlayerOutcome{
		{UserID: 1, Outcome: OutcomeWin},
		{UserID: 99, Outcome: OutcomeLoss}, // never registered
		{UserID: 2, Outcome: OutcomeLoss},
	})

	require.Len(t, outcomes, 2)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrNotRegistered)

	winner, err := env.players.GetByGuildAndUser(context.Background(), nil, testGuild, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, winner.Points)

	loser, err := env.players.GetByGuildAndUser(context.Background(), nil, testGuild, 2)
	require.NoError(t, err)
	assert.Equal(t, -5, loser.Points)
}

func TestApplyAdjustmentThroughPipeline(t *testing.T) {
	env := newTestEnv()
	env.comps.seed(defaultCompetition(testGuild))
	env.seedPlayer(testGuild, testUser, 100)
	results, _ := newResultFixture(env)

	upd := &models.ManualGameScoreUpdate{GuildID: testGuild, UserID: testUser, ManualGameID: 3, ModifyAmount: 25}
	require.NoError(t, env.adjs.Create(context.Background(), nil, upd))

	outcome, err := results.ApplyAdjustment(context.Background(), testGuild, testUser, upd.ID)
	require.NoError(t, err)
	assert.Equal(t, 125, outcome.Update.NewPoints)
	assert.Zero(t, outcome.Update.WinsDelta)

	_, err = results.ApplyAdjustment(context.Background(), testGuild, testUser, upd.ID)
	require.ErrorIs(t, err, ErrDuplicateAdjustment)
}
