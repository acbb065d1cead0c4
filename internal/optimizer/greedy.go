package optimizer

import (
	"github.com/nightreign-tools/relicplanner/internal/relic"
	"github.com/nightreign-tools/relicplanner/internal/scorer"
)

// greedySolve fills free slots left to right, at each slot picking the
// highest-marginal-contextual-score remaining candidate. It repeats the
// whole pass up to `limit` times, excluding the single highest-scoring
// relic from the previous pass's assignment (whichever slot it landed
// in) to force the next pass toward a distinct alternative build.
func greedySolve(freeIdx []int, plans []slotPlan, s *scorer.Scorer, limit int) []scored {
	var out []scored

	excluded := make(map[uint32]bool)
	seen := make(map[string]bool)

	for pass := 0; pass < limit; pass++ {
		cur := assignment{}
		state := scorer.NewState()
		total := 0

		used := make(map[uint32]bool, len(excluded))
		for h := range excluded {
			used[h] = true
		}

		bestHandle := uint32(0)
		bestScore := -1 << 62
		haveBest := false

		for _, slotIdx := range freeIdx {
			best, ok := bestCandidate(plans[slotIdx].Candidates, used, state, s)
			if !ok {
				continue
			}

			gain, _ := s.ContextualScore(best, state)
			cur[slotIdx] = best
			used[best.Handle] = true
			total += gain

			if !haveBest || gain > bestScore {
				bestHandle = best.Handle
				bestScore = gain
				haveBest = true
			}
		}

		key := handleKey(cur, freeIdx)
		if seen[key] {
			break // no new distinct assignment this pass: stop early
		}

		seen[key] = true

		snapshot := make(assignment, len(cur))
		for k, v := range cur {
			snapshot[k] = v
		}

		out = insertScored(out, scored{Assignment: snapshot, Score: total}, limit)

		if !haveBest {
			break
		}

		excluded[bestHandle] = true
	}

	return out
}

func bestCandidate(cands []relic.OwnedRelic, used map[uint32]bool, state *scorer.State, s *scorer.Scorer) (relic.OwnedRelic, bool) {
	bestScore := -1 << 62

	var best relic.OwnedRelic

	found := false

	for _, r := range cands {
		if used[r.Handle] {
			continue
		}

		probe := state.Clone()

		gain, _ := s.ContextualScore(r, probe)
		if !found || gain > bestScore {
			bestScore = gain
			best = r
			found = true
		}
	}

	return best, found
}
