// Package optimizer assigns owned relics to a vessel's six color-coded
// slots so as to maximize the tier-weighted score the scorer package
// computes, honoring pinned relics, stacking/exclusivity rules, and a
// requirements check.
package optimizer

import (
	"sort"

	"github.com/nightreign-tools/relicplanner/internal/relic"
	"github.com/nightreign-tools/relicplanner/internal/scorer"
)

// slotPlan is one vessel slot's fixed geometry plus, once resolved, its
// pinned or free candidate state.
type slotPlan struct {
	Index      int
	Color      relic.Color
	IsDeep     bool
	Pinned     *relic.OwnedRelic // non-nil if a pin landed here during setup
	Candidates []relic.OwnedRelic
}

// errPinConflict signals that a pinned relic could not be placed anywhere
// in the vessel; the caller excludes the vessel from results entirely
// rather than treating this as a fatal error.
type errPinConflict struct{ vesselID int }

func (e errPinConflict) Error() string { return "pinned relic has no compatible slot" }

func slotColorOK(slotColor, relicColor relic.Color) bool {
	return slotColor == relic.ColorWhite || slotColor == relicColor
}

// buildSlotPlan applies the pin pre-assignment step and, for each
// remaining free slot, builds a pre-score-sorted candidate list.
func buildSlotPlan(
	v relic.Vessel,
	build relic.Build,
	inventory []relic.OwnedRelic,
	s *scorer.Scorer,
) ([]slotPlan, error) {
	slotCount := 3
	if build.IncludeDeep {
		slotCount = 6
	}

	plans := make([]slotPlan, slotCount)
	for i := 0; i < slotCount; i++ {
		plans[i] = slotPlan{Index: i, Color: v.SlotColors[i], IsDeep: i >= 3}
	}

	byHandle := make(map[uint64]relic.OwnedRelic, len(inventory))
	for _, r := range inventory {
		byHandle[uint64(r.Handle)] = r
	}

	pinnedHandles := make(map[uint64]bool)

	for _, pin := range build.PinnedRelics {
		r, ok := byHandle[pin]
		if !ok {
			continue // absent from inventory: silently skipped
		}

		placed := false

		for i := range plans {
			if plans[i].Pinned != nil {
				continue
			}

			if plans[i].IsDeep != r.IsDeep {
				continue
			}

			if !slotColorOK(plans[i].Color, r.Color) {
				continue
			}

			rr := r
			plans[i].Pinned = &rr
			placed = true

			break
		}

		if !placed {
			return nil, errPinConflict{vesselID: v.ID}
		}

		pinnedHandles[pin] = true
	}

	for i := range plans {
		if plans[i].Pinned != nil {
			continue
		}

		plans[i].Candidates = candidatesForSlot(plans[i], inventory, pinnedHandles, s)
	}

	return plans, nil
}

func candidatesForSlot(
	slot slotPlan,
	inventory []relic.OwnedRelic,
	pinnedHandles map[uint64]bool,
	s *scorer.Scorer,
) []relic.OwnedRelic {
	var out []relic.OwnedRelic

	for _, r := range inventory {
		if pinnedHandles[uint64(r.Handle)] {
			continue
		}

		if r.IsDeep != slot.IsDeep {
			continue
		}

		if !slotColorOK(slot.Color, r.Color) {
			continue
		}

		if s.HasBlacklistedEffect(r) {
			continue
		}

		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return s.PreScore(out[i]) > s.PreScore(out[j])
	})

	return out
}

func freeSlotIndexes(plans []slotPlan) []int {
	var out []int

	for i, p := range plans {
		if p.Pinned == nil {
			out = append(out, i)
		}
	}

	return out
}

func totalCandidates(plans []slotPlan) int {
	seen := make(map[uint32]bool)

	for _, p := range plans {
		for _, c := range p.Candidates {
			seen[c.Handle] = true
		}
	}

	return len(seen)
}
