package scorer

import (
	"github.com/nightreign-tools/relicplanner/internal/relic"
)

// excessCursePenalty is subtracted for each curse occurrence beyond the
// build's curse_max.
const excessCursePenalty = 10

// ContextualScore scores r against the accumulating state, mutating state
// with r's additions as it goes. It returns the relic's total
// contextual score and a per-effect breakdown for UI/API consumption.
func (s *Scorer) ContextualScore(r relic.OwnedRelic, state *State) (int, []relic.BreakdownEntry) {
	total := 0

	var breakdown []relic.BreakdownEntry

	for _, id := range r.Effects {
		if id == relic.EmptySlotID {
			continue
		}

		score, entry := s.scoreOne(id, false, state)
		total += score

		breakdown = append(breakdown, entry)

		s.applyStateAdditions(id, state)
	}

	for _, id := range r.Curses {
		if id == relic.EmptySlotID {
			continue
		}

		score, entry := s.scoreOne(id, true, state)
		total += score

		breakdown = append(breakdown, entry)

		s.applyStateAdditions(id, state)
		state.CurseCounts[id]++
	}

	return total, breakdown
}

func (s *Scorer) scoreOne(id uint32, isCurse bool, state *State) (int, relic.BreakdownEntry) {
	e := s.gd.EffectByID(id)
	lr, weight := s.effectWeight(id)
	stacking := s.gd.StackingTypeFor(id)

	allowed := s.isAllowed(id, e, stacking, state)

	score := 0
	if allowed && lr.Found && lr.Tier.Scored {
		score = weight
	}

	if isCurse && state.CurseCounts[id] >= s.build.CurseMax {
		score -= excessCursePenalty
	}

	entry := relic.BreakdownEntry{
		EffectID:       id,
		Name:           e.Name,
		Score:          score,
		IsCurse:        isCurse,
		Redundant:      !allowed,
		OverrideStatus: s.gd.OverrideStatus(id),
	}

	if lr.Found {
		entry.Tier = lr.Tier.Key
	}

	return score, entry
}

func (s *Scorer) isAllowed(id uint32, e relic.Effect, stacking relic.StackingType, state *State) bool {
	switch stacking {
	case relic.StackingStack:
		return true

	case relic.StackingUnique:
		if state.PlacedEffects[id] {
			return false
		}

		if e.TextID != 0 && state.PlacedEffects[e.TextID] {
			return false
		}

		if e.CompatibilityID >= 0 && state.NoStackCompat[e.CompatibilityID] {
			return false
		}

		return true

	case relic.StackingNoStack:
		if e.ExclusivityID >= 0 && (state.Exclusivity[e.ExclusivityID] || state.NoStackExclusivity[e.ExclusivityID]) {
			return false
		}

		if e.TextID != 0 && state.PlacedEffects[e.TextID] {
			return false
		}

		if e.CompatibilityID < 0 && state.PlacedEffects[id] {
			return false
		}

		return true

	default:
		return true
	}
}

// applyStateAdditions records id's contribution to the accumulating
// stacking-interaction sets:
//
//   - identifier (and text identifier, if distinct) -> placed-effects.
//   - exclusivity identifier, if any -> exclusivity (and no-stack
//     exclusivity when id's stacking type is no_stack).
//   - Rule 1: a self-referencing no_stack base -> no-stack-compatibility.
//   - Rule 2: a compatibility identifier that is neither absent nor
//     self-referencing, but resolves to a real no_stack tier-family base,
//     adds that base identifier to placed-effects only (never to
//     no-stack-compatibility, which would wrongly block sibling variants).
func (s *Scorer) applyStateAdditions(id uint32, state *State) {
	e := s.gd.EffectByID(id)
	stacking := s.gd.StackingTypeFor(id)

	state.PlacedEffects[id] = true

	if e.TextID != 0 && e.TextID != id {
		state.PlacedEffects[e.TextID] = true
	}

	if e.ExclusivityID >= 0 {
		state.Exclusivity[e.ExclusivityID] = true

		if stacking == relic.StackingNoStack {
			state.NoStackExclusivity[e.ExclusivityID] = true
		}
	}

	switch {
	case stacking == relic.StackingNoStack && e.CompatibilityID == int64(id):
		state.NoStackCompat[e.CompatibilityID] = true

	case e.CompatibilityID >= 0 && e.CompatibilityID != int64(id):
		if s.gd.IsRealTierFamilyBase(e.CompatibilityID) {
			baseID := uint32(e.CompatibilityID) //nolint:gosec // compatibility ids are effect ids in-range

			if s.gd.StackingTypeFor(baseID) == relic.StackingNoStack {
				state.PlacedEffects[baseID] = true
			}
		}
	}
}
