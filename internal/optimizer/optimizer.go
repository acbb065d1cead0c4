package optimizer

import (
	"sort"

	"github.com/nightreign-tools/relicplanner/internal/gamedata"
	"github.com/nightreign-tools/relicplanner/internal/relic"
	"github.com/nightreign-tools/relicplanner/internal/scorer"
)

// bnbSwitchMaxFree and bnbSwitchMaxCandidates gate solver selection: branch
// and bound is used only when the search space is small enough to explore
// exhaustively within the deadline; larger spaces fall back to greedy.
const (
	bnbSwitchMaxFree       = 6
	bnbSwitchMaxCandidates = 200
)

// Optimize computes the top_n best vessel assignments for a build across
// every vessel available to the build's character, each considering up to
// max_per_vessel alternative slot assignments before picking its best
// candidate per vessel.
func Optimize(gd *gamedata.Resolver, build relic.Build, inventory []relic.OwnedRelic, topN, maxPerVessel int) []relic.VesselResult {
	vessels := gd.VesselsForCharacter(build.Character)
	s := scorer.New(gd, build)

	var results []relic.VesselResult

	for _, v := range vessels {
		res, ok := OptimizeVessel(s, v, build, inventory, maxPerVessel)
		if !ok {
			continue
		}

		results = insertVesselResult(results, res, topN)
	}

	return results
}

// OptimizeVessel computes the best slot assignment for one vessel. It
// returns ok=false if a pinned relic could not be placed in this vessel or
// no candidate assignment was produced.
func OptimizeVessel(s *scorer.Scorer, v relic.Vessel, build relic.Build, inventory []relic.OwnedRelic, maxPerVessel int) (relic.VesselResult, bool) {
	plans, err := buildSlotPlan(v, build, inventory, s)
	if err != nil {
		return relic.VesselResult{}, false
	}

	freeIdx := freeSlotIndexes(plans)

	var candidates []scored

	if maxPerVessel < 1 {
		maxPerVessel = 1
	}

	if len(freeIdx) == 0 {
		candidates = []scored{{Assignment: assignment{}, Score: 0}}
	} else if len(freeIdx) <= bnbSwitchMaxFree && totalCandidates(plans) <= bnbSwitchMaxCandidates {
		candidates = bnbSolve(freeIdx, plans, s, maxPerVessel)
	} else {
		candidates = greedySolve(freeIdx, plans, s, maxPerVessel)
	}

	best, ok := pickBest(s, candidates, plans)
	if !ok {
		return relic.VesselResult{}, false
	}

	best.VesselID = v.ID
	best.VesselName = v.Name
	best.VesselCharacter = v.Character
	best.UnlockFlag = v.Unlocked
	best.SlotColors = v.SlotColors

	return best, true
}

// pickBest re-walks each candidate assignment with a fresh state to produce
// the authoritative scored breakdown, applies the tier-family direction
// correction, runs the requirements check, and returns the
// requirements-satisfying candidate with the highest corrected score,
// falling back to the overall best when none satisfy requirements.
func pickBest(s *scorer.Scorer, candidates []scored, plans []slotPlan) (relic.VesselResult, bool) {
	var results []relic.VesselResult

	for _, c := range candidates {
		results = append(results, assemble(s, c.Assignment, plans))
	}

	if len(results) == 0 {
		return relic.VesselResult{}, false
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].MeetsRequirements != results[j].MeetsRequirements {
			return results[i].MeetsRequirements
		}

		return results[i].TotalScore > results[j].TotalScore
	})

	return results[0], true
}

// assemble re-scores assignment with a fresh accumulation state (so pinned
// and free-slot relics interact correctly regardless of search order),
// applies the tier-family direction correction, and runs the requirements
// check.
func assemble(s *scorer.Scorer, a assignment, plans []slotPlan) relic.VesselResult {
	state := scorer.NewState()

	slots := make([]relic.SlotAssignment, len(plans))

	for i, p := range plans {
		slots[i] = relic.SlotAssignment{SlotIndex: p.Index, SlotColor: p.Color, IsDeep: p.IsDeep}

		var r *relic.OwnedRelic

		if p.Pinned != nil {
			r = p.Pinned
		} else if placed, ok := a[p.Index]; ok {
			rr := placed
			r = &rr
		}

		if r == nil {
			continue
		}

		score, breakdown := s.ContextualScore(*r, state)
		slots[i].Relic = r
		slots[i].Score = score
		slots[i].Breakdown = breakdown
	}

	applyDirectionCorrection(s, slots)

	total := 0
	for _, sl := range slots {
		total += sl.Score
	}

	meets, missing := checkRequirements(s, slots)

	return relic.VesselResult{
		Assignments:         slots,
		TotalScore:          total,
		MeetsRequirements:   meets,
		MissingRequirements: missing,
	}
}

type breakdownRef struct {
	slotIdx  int
	entryIdx int
}

// applyDirectionCorrection resolves no-stack-base-vs-unique-variant
// conflicts within the same tier family. A group (all breakdown entries
// sharing a real tier-family compatibility id) only conflicts when it
// mixes at least one no_stack base with at least one unique variant; a
// group of unique siblings with no base present is left untouched, since
// each already scores its own weight. Within a conflicting group, every
// no_stack base is demoted to redundant/0 and the first occurrence of
// each distinct unique variant is restored to its full weight, even if
// per-relic scoring had already zeroed it out because a no_stack base
// happened to land in an earlier slot.
func applyDirectionCorrection(s *scorer.Scorer, slots []relic.SlotAssignment) {
	groups := make(map[int64][]breakdownRef)

	for si, sl := range slots {
		for ei, entry := range sl.Breakdown {
			if entry.IsCurse {
				continue
			}

			compatID := s.EffectCompatibilityID(entry.EffectID)
			if compatID < 0 || !s.IsRealTierFamilyBase(compatID) {
				continue
			}

			groups[compatID] = append(groups[compatID], breakdownRef{slotIdx: si, entryIdx: ei})
		}
	}

	for _, refs := range groups {
		hasNoStack, hasUnique := false, false

		for _, ref := range refs {
			entry := slots[ref.slotIdx].Breakdown[ref.entryIdx]

			switch s.StackingTypeFor(entry.EffectID) {
			case relic.StackingNoStack:
				hasNoStack = true
			case relic.StackingUnique:
				hasUnique = true
			}
		}

		if !hasNoStack || !hasUnique {
			continue
		}

		seenVariant := make(map[uint32]bool)

		for _, ref := range refs {
			entry := &slots[ref.slotIdx].Breakdown[ref.entryIdx]

			switch s.StackingTypeFor(entry.EffectID) {
			case relic.StackingNoStack:
				slots[ref.slotIdx].Score -= entry.Score
				entry.Score = 0
				entry.Redundant = true

			case relic.StackingUnique:
				if seenVariant[entry.EffectID] {
					continue
				}

				seenVariant[entry.EffectID] = true

				weight := s.EffectWeight(entry.EffectID)
				slots[ref.slotIdx].Score += weight - entry.Score
				entry.Score = weight
				entry.Redundant = false
			}
		}
	}
}

// checkRequirements reports whether every required effect identifier and
// family base in the build's requirements is covered by some assigned
// relic's effects.
func checkRequirements(s *scorer.Scorer, slots []relic.SlotAssignment) (bool, []string) {
	assignedIDs := make(map[uint32]bool)
	assignedFamilies := make(map[string]bool)

	for _, sl := range slots {
		if sl.Relic == nil {
			continue
		}

		for _, id := range sl.Relic.Effects {
			if id == relic.EmptySlotID {
				continue
			}

			assignedIDs[id] = true

			if base, ok := s.FamilyBaseOf(id); ok {
				assignedFamilies[base] = true
			}
		}
	}

	var missing []string

	ok := true

	for _, req := range s.RequiredEffectIDs() {
		satisfied := false

		for id := range assignedIDs {
			if s.Satisfies(id, req) {
				satisfied = true

				break
			}
		}

		if !satisfied {
			ok = false

			missing = append(missing, s.FamilyBaseOrName(req))
		}
	}

	for _, base := range s.RequiredFamilyBases() {
		if !assignedFamilies[base] {
			ok = false
			missing = append(missing, base)
		}
	}

	return ok, missing
}
