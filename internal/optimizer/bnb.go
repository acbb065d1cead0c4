package optimizer

import (
	"time"

	"github.com/nightreign-tools/relicplanner/internal/relic"
	"github.com/nightreign-tools/relicplanner/internal/scorer"
)

// Deadline bounds branch-and-bound wall-clock time; on expiry the search
// returns the best assignment found so far rather than erroring.
// Callers may lower or raise it from configuration before invoking
// Optimize/OptimizeVessel; the zero value is replaced by defaultDeadline.
var Deadline time.Duration

const defaultDeadline = 2 * time.Second

func effectiveDeadline() time.Duration {
	if Deadline <= 0 {
		return defaultDeadline
	}

	return Deadline
}

// assignment maps free slot indexes to the relic placed there.
type assignment map[int]relic.OwnedRelic

// bnbSolve explores free-slot assignments depth-first, pruning branches
// whose remaining upper bound cannot beat the best score found so far. It
// returns the best distinct assignments it found, most recent best last
// pruned, ordered by score descending.
func bnbSolve(freeIdx []int, plans []slotPlan, s *scorer.Scorer, limit int) []scored {
	deadline := time.Now().Add(effectiveDeadline())

	b := &bnbSearch{
		freeIdx: freeIdx,
		plans:   plans,
		scorer:  s,
		limit:   limit,
		seen:    make(map[string]bool),
	}

	b.upperBounds = precomputeUpperBounds(freeIdx, plans, s)

	cur := assignment{}
	b.search(0, cur, scorer.NewState(), 0, deadline)

	return b.best
}

type scored struct {
	Assignment assignment
	Score      int
}

type bnbSearch struct {
	freeIdx     []int
	plans       []slotPlan
	scorer      *scorer.Scorer
	limit       int
	upperBounds []int // suffix upper bound: upperBounds[i] bounds slots[i:]
	best        []scored
	seen        map[string]bool
}

// precomputeUpperBounds returns, for each position i in freeIdx, the sum of
// the best single-candidate pre-score across slots i..end, used as a loose
// upper bound on the remaining achievable score, used for pruning.
func precomputeUpperBounds(freeIdx []int, plans []slotPlan, s *scorer.Scorer) []int {
	n := len(freeIdx)
	bounds := make([]int, n+1)

	for i := n - 1; i >= 0; i-- {
		best := 0

		cands := plans[freeIdx[i]].Candidates
		if len(cands) > 0 {
			best = s.PreScore(cands[0])
		}

		bounds[i] = bounds[i+1] + best
	}

	return bounds
}

func handleKey(a assignment, freeIdx []int) string {
	buf := make([]byte, 0, len(freeIdx)*9)

	for _, idx := range freeIdx {
		r, ok := a[idx]
		h := uint32(0)

		if ok {
			h = r.Handle
		}

		buf = append(buf, byte(h), byte(h>>8), byte(h>>16), byte(h>>24), ',')
	}

	return string(buf)
}

func (b *bnbSearch) search(pos int, cur assignment, state *scorer.State, scoreSoFar int, deadline time.Time) {
	if time.Now().After(deadline) {
		return
	}

	if pos == len(b.freeIdx) {
		b.record(cur, scoreSoFar)

		return
	}

	if len(b.best) >= b.limit {
		worst := b.best[len(b.best)-1].Score
		if scoreSoFar+b.upperBounds[pos] <= worst {
			return
		}
	}

	slotIdx := b.freeIdx[pos]
	cands := b.plans[slotIdx].Candidates

	// Skipping the slot entirely (leave empty) is always a valid branch.
	b.search(pos+1, cur, state, scoreSoFar, deadline)

	for _, r := range cands {
		if _, used := usedHandle(cur, r.Handle); used {
			continue
		}

		childState := state.Clone()
		gain, _ := b.scorer.ContextualScore(r, childState)

		cur[slotIdx] = r
		b.search(pos+1, cur, childState, scoreSoFar+gain, deadline)
		delete(cur, slotIdx)
	}
}

func usedHandle(cur assignment, handle uint32) (int, bool) {
	for idx, r := range cur {
		if r.Handle == handle {
			return idx, true
		}
	}

	return 0, false
}

func (b *bnbSearch) record(cur assignment, score int) {
	key := handleKey(cur, b.freeIdx)
	if b.seen[key] {
		return
	}

	b.seen[key] = true

	snapshot := make(assignment, len(cur))
	for k, v := range cur {
		snapshot[k] = v
	}

	b.best = insertScored(b.best, scored{Assignment: snapshot, Score: score}, b.limit)
}

// insertScored keeps the top-`limit` scored results sorted descending by
// score, finding the insertion point with a linear scan.
func insertScored(list []scored, item scored, limit int) []scored {
	i := 0
	for i < len(list) && list[i].Score >= item.Score {
		i++
	}

	if i >= limit {
		return list
	}

	list = append(list, scored{})
	copy(list[i+1:], list[i:])
	list[i] = item

	if len(list) > limit {
		list = list[:limit]
	}

	return list
}
