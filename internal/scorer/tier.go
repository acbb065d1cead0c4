// Package scorer computes tier-weighted scores for owned relics, both in
// context-free pre-score form (for sort/prune) and in the contextual form
// the optimizer uses while accumulating a vessel's state.
package scorer

import (
	"github.com/nightreign-tools/relicplanner/internal/gamedata"
	"github.com/nightreign-tools/relicplanner/internal/relic"
)

// tierIndex is a build's tier configuration flattened into three lookup
// maps, built once per Scorer.
type tierIndex struct {
	byID         map[uint32]relic.TierKey
	byName       map[string]relic.TierKey
	byFamilyBase map[string]relic.TierKey
}

func buildTierIndex(build relic.Build, gd *gamedata.Resolver) tierIndex {
	idx := tierIndex{
		byID:         make(map[uint32]relic.TierKey),
		byName:       make(map[string]relic.TierKey),
		byFamilyBase: make(map[string]relic.TierKey),
	}

	for tierKey, ids := range build.Tiers {
		for _, id := range ids {
			idx.byID[id] = tierKey
			idx.byName[gamedata.NormalizeDisplayName(gd.DisplayName(id))] = tierKey
		}
	}

	for tierKey, bases := range build.FamilyTiers {
		for _, base := range bases {
			idx.byFamilyBase[gamedata.NormalizeDisplayName(base)] = tierKey
		}
	}

	return idx
}

// lookupResult is the outcome of resolving an effect identifier against a
// tier index, including the family magnitude context needed for
// magnitude-weighted scaling.
type lookupResult struct {
	Tier          relic.TierConfig
	Found         bool
	FamilyRank    int
	FamilyCard    int
	ViaFamily     bool
}

// Lookup resolves an effect identifier through this ladder:
// direct identifier → canonical text identifier → display name → family
// base.
func (idx tierIndex) Lookup(effectID uint32, gd *gamedata.Resolver, schema map[relic.TierKey]relic.TierConfig) lookupResult {
	if key, ok := idx.byID[effectID]; ok {
		return lookupResult{Tier: schema[key], Found: true}
	}

	e := gd.EffectByID(effectID)

	if e.TextID != 0 && e.TextID != effectID {
		if key, ok := idx.byID[e.TextID]; ok {
			return lookupResult{Tier: schema[key], Found: true}
		}
	}

	if key, ok := idx.byName[gamedata.NormalizeDisplayName(e.Name)]; ok {
		return lookupResult{Tier: schema[key], Found: true}
	}

	if fam, ok := gd.FamilyFor(effectID); ok {
		if key, ok := idx.byFamilyBase[gamedata.NormalizeDisplayName(fam.Base)]; ok {
			return lookupResult{Tier: schema[key], Found: true, FamilyRank: fam.Rank, FamilyCard: fam.Cardinality, ViaFamily: true}
		}
	}

	return lookupResult{}
}

func schemaByKey(schema []relic.TierConfig) map[relic.TierKey]relic.TierConfig {
	out := make(map[relic.TierKey]relic.TierConfig, len(schema))
	for _, c := range schema {
		out[c.Key] = c
	}

	return out
}
