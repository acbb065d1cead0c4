// Package gamedata loads the planner's static reference tables — effect
// parameters, pool membership, relic-pool sequences, vessel layouts,
// localized display names, and stacking rules — once per process and
// serves pure queries over them afterwards.
//
// A Resolver is built once via Load and is safe for concurrent read access
// from that point on; its lazy derived caches (stacking resolution,
// families, the source-override name set) are computed on first query,
// guarded by sync.Once (families, normalized rules) or a mutex (per-effect
// stacking results) so concurrent first access from multiple callers is
// still safe.
package gamedata

import (
	"errors"
	"sync"

	"github.com/nightreign-tools/relicplanner/internal/relic"
)

// Sentinel errors surfaced while loading reference data.
var (
	ErrResourceMissing = errors.New("required resource file missing")
	ErrResourceInvalid = errors.New("resource file malformed")
)

// MegaGroupSentinel is the compatibility identifier shared by many
// unrelated effects. A compatibility
// identifier is only treated as a real tier-family base when it is
// self-referencing; 100 almost never is.
const MegaGroupSentinel int64 = 100

// Deep pool identifiers are interchangeable for rollability queries but
// distinguishable for strict queries. This list may need widening if
// reference data grows a fourth deep pool.
var DeepPoolIDs = [3]int64{2_000_000, 2_100_000, 2_200_000}

// Resolver serves queries over the static reference tables. The zero value
// is not usable; construct with Load.
type Resolver struct {
	effectsByID map[uint32]relic.Effect
	poolEffects map[int64]map[uint32]poolWeight // poolID -> effectID -> weights
	relicPools  map[uint64]relicPoolRow          // realID -> row
	vessels     []relic.Vessel
	names       map[uint32]string
	rules       stackingRules

	familiesOnce sync.Once
	families     map[uint32]relic.Family

	rulesOnce        sync.Once
	normalizedRules  map[string]relic.StackingType
	normalizedOverr  map[string]stackingOverride

	stackingMu    sync.Mutex
	stackingCache map[uint32]relic.StackingType
}

type poolWeight struct {
	Base int
	DLC  int
}

type relicPoolRow struct {
	RealID   uint64
	Color    relic.Color
	PoolIDs  [6]int64 // 3 primary + 3 curse; -1 = absent
	IsUnique bool
}

// EffectByID returns the reference effect for id, or the "Empty" sentinel
// effect if id is relic.EmptySlotID or unknown; unknown effects never
// fail a call.
func (r *Resolver) EffectByID(id uint32) relic.Effect {
	if id == relic.EmptySlotID {
		return relic.Effect{ID: id, Name: "Empty", Stacking: relic.StackingNoStack, CompatibilityID: -1, ExclusivityID: -1}
	}

	if e, ok := r.effectsByID[id]; ok {
		e.Stacking = r.StackingTypeFor(id)
		if fam, ok := r.FamilyFor(id); ok {
			e.Family = &fam
		}

		return e
	}

	return relic.Effect{ID: id, Name: "Empty", Stacking: relic.StackingNoStack, CompatibilityID: -1, ExclusivityID: -1}
}

// DisplayName returns the localized name for an identifier, falling back
// to "Empty" for the sentinel and for unknown identifiers.
func (r *Resolver) DisplayName(id uint32) string {
	if id == relic.EmptySlotID {
		return "Empty"
	}

	if n, ok := r.names[id]; ok {
		return n
	}

	return "Empty"
}

// RelicColor returns the color of a relic given its real identifier.
func (r *Resolver) RelicColor(realID uint64) (relic.Color, bool) {
	row, ok := r.relicPools[realID]
	if !ok {
		return "", false
	}

	return row.Color, true
}

// RelicIsDeep reports whether realID's pool sequence includes any deep
// pool identifier.
func (r *Resolver) RelicIsDeep(realID uint64) bool {
	row, ok := r.relicPools[realID]
	if !ok {
		return false
	}

	for _, p := range row.PoolIDs {
		for _, deep := range DeepPoolIDs {
			if p == deep {
				return true
			}
		}
	}

	return false
}

// RelicIsUnique reports whether realID falls in a unique range: an
// inventory may contain at most one owned relic with this real identifier
// at a time.
func (r *Resolver) RelicIsUnique(realID uint64) bool {
	row, ok := r.relicPools[realID]

	return ok && row.IsUnique
}

// RelicName returns the display name for a relic's real identifier, via
// the same localized name table effects use.
func (r *Resolver) RelicName(realID uint64) string {
	return r.DisplayName(uint32(realID)) //nolint:gosec // real ids fit u32 in this format
}

// VesselsForCharacter returns every vessel eligible for character, plus
// any class-agnostic ("All") vessels.
func (r *Resolver) VesselsForCharacter(character string) []relic.Vessel {
	var out []relic.Vessel

	for _, v := range r.vessels {
		if v.Character == "All" || v.Character == character {
			out = append(out, v)
		}
	}

	return out
}

// Vessels returns every loaded vessel.
func (r *Resolver) Vessels() []relic.Vessel {
	return append([]relic.Vessel(nil), r.vessels...)
}

// IsRollable reports whether effectID can roll in poolID. When merged is
// true and poolID is one of the three deep pool identifiers, rollability
// is evaluated across all three deep pools.
func (r *Resolver) IsRollable(poolID int64, effectID uint32, merged bool) bool {
	pools := []int64{poolID}

	if merged {
		for _, d := range DeepPoolIDs {
			if poolID == d {
				pools = DeepPoolIDs[:]

				break
			}
		}
	}

	for _, p := range pools {
		weights, ok := r.poolEffects[p]
		if !ok {
			continue
		}

		w, ok := weights[effectID]
		if !ok {
			continue
		}

		if effectiveWeight(w) {
			return true
		}
	}

	return false
}

func effectiveWeight(w poolWeight) bool {
	return w.DLC > 0 || (w.DLC == -1 && w.Base != 0)
}

// FamilyFor returns the magnitude family an effect identifier belongs to,
// or ok=false if it is not part of one.
func (r *Resolver) FamilyFor(effectID uint32) (relic.Family, bool) {
	r.familiesOnce.Do(r.buildFamilies)

	f, ok := r.families[effectID]

	return f, ok
}
