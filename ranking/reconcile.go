package ranking

import "github.com/Dosada05/rating-system/models"

// Plan lists the role directives needed to make external role state match the
// rank membership implied by a score change. Building a plan is pure: the
// same table, mode and score pair always produce the same plan, so replaying
// a plan is safe at this layer.
type Plan struct {
	Grant  []int64 `json:"grant"`
	Revoke []int64 `json:"revoke"`
}

func (p Plan) Empty() bool {
	return len(p.Grant) == 0 && len(p.Revoke) == 0
}

// BuildPlan diffs the held-rank sets for the prior and new score.
// Grant = held(new) − held(prior), Revoke = held(prior) − held(new), both
// ordered by threshold ascending.
func BuildPlan(t *Table, mode models.RankMode, priorScore, newScore int) Plan {
	prior := t.Held(priorScore, mode)
	current := t.Held(newScore, mode)

	priorSet := make(map[int64]struct{}, len(prior))
	for _, r := range prior {
		priorSet[r.RoleID] = struct{}{}
	}
	currentSet := make(map[int64]struct{}, len(current))
	for _, r := range current {
		currentSet[r.RoleID] = struct{}{}
	}

	var plan Plan
	for _, r := range current {
		if _, held := priorSet[r.RoleID]; !held {
			plan.Grant = append(plan.Grant, r.RoleID)
		}
	}
	for _, r := range prior {
		if _, held := currentSet[r.RoleID]; !held {
			plan.Revoke = append(plan.Revoke, r.RoleID)
		}
	}
	return plan
}

// BuildInitialPlan is the registration case: the player held nothing, so the
// plan grants every rank the starting score qualifies for.
func BuildInitialPlan(t *Table, mode models.RankMode, score int) Plan {
	var plan Plan
	for _, r := range t.Held(score, mode) {
		plan.Grant = append(plan.Grant, r.RoleID)
	}
	return plan
}
