package ranking

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Dosada05/rating-system/models"
)

// ErrDuplicateThreshold: two ranks share the same points threshold, which
// would make rank membership ambiguous. Rejected at table-build time.
var ErrDuplicateThreshold = errors.New("two ranks share the same points threshold")

// Table is an immutable, threshold-ordered view of a guild's ranks. Ranks
// change rarely and scores change often, so lookups binary-search a sorted
// slice instead of querying storage.
type Table struct {
	ranks []models.Rank // sorted by Points ascending
}

// NewTable builds a table from an arbitrary-order rank list. The input slice
// is copied; duplicated thresholds are rejected.
func NewTable(ranks []models.Rank) (*Table, error) {
	sorted := make([]models.Rank, len(ranks))
	copy(sorted, ranks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Points < sorted[j].Points })

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Points == sorted[i-1].Points {
			return nil, fmt.Errorf("%w: threshold %d (roles %d and %d)",
				ErrDuplicateThreshold, sorted[i].Points, sorted[i-1].RoleID, sorted[i].RoleID)
		}
	}
	return &Table{ranks: sorted}, nil
}

func (t *Table) Len() int {
	return len(t.ranks)
}

// Ranks returns the thresholds in ascending order. The returned slice must
// not be mutated.
func (t *Table) Ranks() []models.Rank {
	return t.ranks
}

// Current returns the rank the score qualifies for: the highest threshold
// less than or equal to score. A score below every threshold yields nil.
func (t *Table) Current(score int) *models.Rank {
	// First index whose threshold exceeds the score; the rank before it, if
	// any, is the current one.
	idx := sort.Search(len(t.ranks), func(i int) bool { return t.ranks[i].Points > score })
	if idx == 0 {
		return nil
	}
	return &t.ranks[idx-1]
}

// Held returns every rank the score holds under the given mode, ordered by
// threshold ascending. Single mode yields at most one rank, cumulative mode
// yields every rank at or below the score. An unqualified score yields an
// empty set, not an error.
func (t *Table) Held(score int, mode models.RankMode) []models.Rank {
	idx := sort.Search(len(t.ranks), func(i int) bool { return t.ranks[i].Points > score })
	if idx == 0 {
		return nil
	}
	if mode == models.RankModeSingle {
		return t.ranks[idx-1 : idx]
	}
	return t.ranks[:idx]
}
