package scorer

import (
	"github.com/nightreign-tools/relicplanner/internal/gamedata"
	"github.com/nightreign-tools/relicplanner/internal/relic"
)

// Scorer evaluates owned relics against one build's tier configuration. A
// Scorer is cheap to construct and holds no state beyond its lookup
// indexes; callers create one per optimization call.
type Scorer struct {
	gd     *gamedata.Resolver
	build  relic.Build
	schema map[relic.TierKey]relic.TierConfig
	index  tierIndex
}

// New builds a Scorer for one build, using the default tier schema unless
// the build overrides individual weights.
func New(gd *gamedata.Resolver, build relic.Build) *Scorer {
	schema := relic.DefaultTierSchema()

	return &Scorer{
		gd:     gd,
		build:  build,
		schema: schemaByKey(schema),
		index:  buildTierIndex(build, gd),
	}
}

// effectWeight resolves one effect identifier's tier weight, applying
// magnitude scaling when matched via a family and the tier is
// magnitude-weighted.
func (s *Scorer) effectWeight(effectID uint32) (lookupResult, int) {
	lr := s.index.Lookup(effectID, s.gd, s.schema)
	if !lr.Found {
		return lr, 0
	}

	w := s.build.WeightFor(lr.Tier)

	if lr.ViaFamily && lr.Tier.MagnitudeWeighted && lr.FamilyRank > 0 {
		w *= lr.FamilyRank
	}

	return lr, w
}

// EffectWeight resolves one effect identifier's tier weight via the same
// ladder PreScore uses, with no stacking interaction applied. Used by the
// optimizer's tier-family direction correction to restore a variant's
// score after an earlier no-stack base placement is demoted.
func (s *Scorer) EffectWeight(effectID uint32) int {
	_, w := s.effectWeight(effectID)

	return w
}

// tierBonusPerEffect is a small, fixed per-populated-effect bonus added to
// a relic's pre-score, rewarding higher-effect-count relics (Grand over
// Delicate) independent of which specific effects rolled.
const tierBonusPerEffect = 1

// PreScore computes a context-free sum used for initial sort/prune: the
// tier weight of every non-empty primary and curse effect, plus a small
// bonus scaled by the relic's effect count.
func (s *Scorer) PreScore(r relic.OwnedRelic) int {
	total := 0

	for _, id := range r.Effects {
		if id == relic.EmptySlotID {
			continue
		}

		_, w := s.effectWeight(id)
		total += w
	}

	for _, id := range r.Curses {
		if id == relic.EmptySlotID {
			continue
		}

		_, w := s.effectWeight(id)
		total += w
	}

	total += r.EffectCount() * tierBonusPerEffect

	return total
}

// HasBlacklistedEffect reports whether any of r's effects (primary or
// curse) resolve to the build's blacklist tier by identifier, text
// identifier, display name, or family.
func (s *Scorer) HasBlacklistedEffect(r relic.OwnedRelic) bool {
	check := func(id uint32) bool {
		if id == relic.EmptySlotID {
			return false
		}

		lr := s.index.Lookup(id, s.gd, s.schema)

		return lr.Found && lr.Tier.Key == relic.TierBlacklist
	}

	for _, id := range r.Effects {
		if check(id) {
			return true
		}
	}

	for _, id := range r.Curses {
		if check(id) {
			return true
		}
	}

	return false
}
