package ranking

import (
	"testing"

	"github.com/Dosada05/rating-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Thresholds 0/50/100 map to roles 1000/1050/1100 via makeRanks.

func TestBuildPlanSingleMode(t *testing.T) {
	table, err := NewTable(makeRanks(0, 50, 100))
	require.NoError(t, err)

	plan := BuildPlan(table, models.RankModeSingle, 40, 60)
	assert.Equal(t, []int64{1050}, plan.Grant)
	assert.Equal(t, []int64{1000}, plan.Revoke)
}

func TestBuildPlanCumulativeMode(t *testing.T) {
	table, err := NewTable(makeRanks(0, 50, 100))
	require.NoError(t, err)

	// Lower ranks stay held, so crossing a threshold only grants.
	plan := BuildPlan(table, models.RankModeCumulative, 40, 60)
	assert.Equal(t, []int64{1050}, plan.Grant)
	assert.Empty(t, plan.Revoke)
}

func TestBuildPlanDemotion(t *testing.T) {
	table, err := NewTable(makeRanks(0, 50, 100))
	require.NoError(t, err)

	single := BuildPlan(table, models.RankModeSingle, 120, 30)
	assert.Equal(t, []int64{1000}, single.Grant)
	assert.Equal(t, []int64{1100}, single.Revoke)

	cumulative := BuildPlan(table, models.RankModeCumulative, 120, 30)
	assert.Empty(t, cumulative.Grant)
	assert.Equal(t, []int64{1050, 1100}, cumulative.Revoke)
}

func TestBuildPlanNoCrossing(t *testing.T) {
	table, err := NewTable(makeRanks(0, 50, 100))
	require.NoError(t, err)

	// Score moved but stayed inside the same band.
	plan := BuildPlan(table, models.RankModeSingle, 51, 75)
	assert.True(t, plan.Empty())
}

func TestBuildPlanIsDeterministic(t *testing.T) {
	table, err := NewTable(makeRanks(0, 50, 100))
	require.NoError(t, err)

	first := BuildPlan(table, models.RankModeCumulative, 10, 110)
	second := BuildPlan(table, models.RankModeCumulative, 10, 110)
	assert.Equal(t, first, second)
}

func TestBuildPlanFromUnranked(t *testing.T) {
	table, err := NewTable(makeRanks(10, 50))
	require.NoError(t, err)

	plan := BuildPlan(table, models.RankModeCumulative, 0, 55)
	assert.Equal(t, []int64{1010, 1050}, plan.Grant)
	assert.Empty(t, plan.Revoke)
}

func TestBuildPlanToUnranked(t *testing.T) {
	table, err := NewTable(makeRanks(10, 50))
	require.NoError(t, err)

	plan := BuildPlan(table, models.RankModeSingle, 55, 0)
	assert.Empty(t, plan.Grant)
	assert.Equal(t, []int64{1050}, plan.Revoke)
}

func TestBuildInitialPlan(t *testing.T) {
	table, err := NewTable(makeRanks(0, 50, 100))
	require.NoError(t, err)

	single := BuildInitialPlan(table, models.RankModeSingle, 60)
	assert.Equal(t, []int64{1050}, single.Grant)
	assert.Empty(t, single.Revoke)

	cumulative := BuildInitialPlan(table, models.RankModeCumulative, 60)
	assert.Equal(t, []int64{1000, 1050}, cumulative.Grant)

	unranked := BuildInitialPlan(table, models.RankModeSingle, -1)
	assert.True(t, unranked.Empty())
}

func TestPlanEmpty(t *testing.T) {
	assert.True(t, Plan{}.Empty())
	assert.False(t, Plan{Grant: []int64{1}}.Empty())
	assert.False(t, Plan{Revoke: []int64{1}}.Empty())
}
