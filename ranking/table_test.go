package ranking

import (
	"testing"

	"github.com/Dosada05/rating-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRanks(thresholds ...int) []models.Rank {
	ranks := make([]models.Rank, 0, len(thresholds))
	for i, points := range thresholds {
		ranks = append(ranks, models.Rank{
			ID:      i + 1,
			GuildID: 1,
			RoleID:  int64(1000 + points),
			Points:  points,
		})
	}
	return ranks
}

func TestNewTableSortsInput(t *testing.T) {
	table, err := NewTable(makeRanks(100, 0, 50))
	require.NoError(t, err)

	thresholds := make([]int, 0, table.Len())
	for _, r := range table.Ranks() {
		thresholds = append(thresholds, r.Points)
	}
	assert.Equal(t, []int{0, 50, 100}, thresholds)
}

func TestNewTableRejectsDuplicateThresholds(t *testing.T) {
	ranks := makeRanks(0, 50)
	ranks = append(ranks, models.Rank{ID: 3, GuildID: 1, RoleID: 9999, Points: 50})

	_, err := NewTable(ranks)
	require.ErrorIs(t, err, ErrDuplicateThreshold)
}

func TestNewTableDoesNotMutateInput(t *testing.T) {
	ranks := makeRanks(100, 0, 50)
	_, err := NewTable(ranks)
	require.NoError(t, err)

	assert.Equal(t, 100, ranks[0].Points)
	assert.Equal(t, 0, ranks[1].Points)
	assert.Equal(t, 50, ranks[2].Points)
}

func TestTableCurrent(t *testing.T) {
	table, err := NewTable(makeRanks(0, 50, 100))
	require.NoError(t, err)

	tests := []struct {
		name  string
		score int
		want  *int // expected threshold, nil when unranked
	}{
		{"exactly lowest threshold", 0, ptr(0)},
		{"between thresholds", 49, ptr(0)},
		{"exactly middle threshold", 50, ptr(50)},
		{"above middle", 99, ptr(50)},
		{"exactly highest", 100, ptr(100)},
		{"far above highest", 100000, ptr(100)},
		{"below every threshold", -1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rank := table.Current(tt.score)
			if tt.want == nil {
				assert.Nil(t, rank)
				return
			}
			require.NotNil(t, rank)
			assert.Equal(t, *tt.want, rank.Points)
		})
	}
}

func TestTableCurrentWithPositiveLowestThreshold(t *testing.T) {
	table, err := NewTable(makeRanks(10, 20))
	require.NoError(t, err)

	assert.Nil(t, table.Current(0))
	assert.Nil(t, table.Current(9))
	require.NotNil(t, table.Current(10))
}

func TestTableCurrentEmptyTable(t *testing.T) {
	table, err := NewTable(nil)
	require.NoError(t, err)
	assert.Nil(t, table.Current(100))
	assert.Empty(t, table.Held(100, models.RankModeCumulative))
}

func TestTableHeldSingleMode(t *testing.T) {
	table, err := NewTable(makeRanks(0, 50, 100))
	require.NoError(t, err)

	held := table.Held(60, models.RankModeSingle)
	require.Len(t, held, 1)
	assert.Equal(t, 50, held[0].Points)

	assert.Empty(t, table.Held(-5, models.RankModeSingle))
}

func TestTableHeldCumulativeMode(t *testing.T) {
	table, err := NewTable(makeRanks(0, 50, 100))
	require.NoError(t, err)

	held := table.Held(60, models.RankModeCumulative)
	require.Len(t, held, 2)
	assert.Equal(t, 0, held[0].Points)
	assert.Equal(t, 50, held[1].Points)

	all := table.Held(100, models.RankModeCumulative)
	assert.Len(t, all, 3)

	assert.Empty(t, table.Held(-5, models.RankModeCumulative))
}

func ptr(v int) *int {
	return &v
}
