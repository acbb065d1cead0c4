package gamedata

import (
	"regexp"
	"strings"

	"github.com/nightreign-tools/relicplanner/internal/relic"
)

// trailingParenPattern strips a trailing parenthetical, e.g. "Vigor +1 (NG+)".
var trailingParenPattern = regexp.MustCompile(`\s*\([^)]*\)\s*$`)

// NormalizeDisplayName collapses whitespace, strips "%", lowercases, and
// removes a trailing parenthetical, matching the canonicalization a
// display name needs before it can be looked up in the stacking rules
// table.
func NormalizeDisplayName(name string) string {
	name = trailingParenPattern.ReplaceAllString(name, "")
	name = strings.ReplaceAll(name, "%", "")
	name = strings.Join(strings.Fields(name), " ")

	return strings.ToLower(strings.TrimSpace(name))
}

func (r *Resolver) buildNormalizedRules() {
	r.normalizedRules = make(map[string]relic.StackingType, len(r.rules.Rules))
	for name, st := range r.rules.Rules {
		r.normalizedRules[NormalizeDisplayName(name)] = st
	}

	r.normalizedOverr = make(map[string]stackingOverride, len(r.rules.Overrides))
	for name, ov := range r.rules.Overrides {
		r.normalizedOverr[NormalizeDisplayName(name)] = ov
	}
}

// effectInAnyDeepPool reports whether effectID has pool membership (any
// weight, including zero) in one of the three deep pools.
func (r *Resolver) effectInAnyDeepPool(effectID uint32) bool {
	for _, pool := range DeepPoolIDs {
		if members, ok := r.poolEffects[pool]; ok {
			if _, ok := members[effectID]; ok {
				return true
			}
		}
	}

	return false
}

// StackingTypeFor resolves the stacking type for an effect identifier
// following this resolution ladder:
//
//  1. Source override: a {regular, deep} pair resolved by deep-pool
//     membership, checked first.
//  2. Primary lookup by normalized canonical display name.
//  3. Fallback: the effect's text identifier is resolved transitively.
//  4. Final default: no_stack, promoted to unique when the effect has no
//     rule and its compatibility identifier equals a class sentinel.
func (r *Resolver) StackingTypeFor(effectID uint32) relic.StackingType {
	r.stackingMu.Lock()
	if r.stackingCache == nil {
		r.stackingCache = make(map[uint32]relic.StackingType)
	}

	if cached, ok := r.stackingCache[effectID]; ok {
		r.stackingMu.Unlock()

		return cached
	}
	r.stackingMu.Unlock()

	result := r.resolveStackingType(effectID, make(map[uint32]bool))

	r.stackingMu.Lock()
	r.stackingCache[effectID] = result
	r.stackingMu.Unlock()

	return result
}

func (r *Resolver) resolveStackingType(effectID uint32, visiting map[uint32]bool) relic.StackingType {
	r.rulesOnce.Do(r.buildNormalizedRules)

	if visiting[effectID] {
		return relic.StackingNoStack
	}

	visiting[effectID] = true

	e, known := r.effectsByID[effectID]
	if !known {
		return r.defaultStackingType(relic.Effect{ID: effectID, CompatibilityID: -1})
	}

	name := NormalizeDisplayName(e.Name)

	if ov, ok := r.normalizedOverr[name]; ok {
		if r.effectInAnyDeepPool(effectID) {
			return ov.Deep
		}

		return ov.Regular
	}

	if st, ok := r.normalizedRules[name]; ok {
		return st
	}

	if e.TextID != 0 && e.TextID != effectID {
		return r.resolveStackingType(e.TextID, visiting)
	}

	return r.defaultStackingType(e)
}

func (r *Resolver) defaultStackingType(e relic.Effect) relic.StackingType {
	for class, allowed := range e.ClassAllow {
		if !allowed {
			continue
		}

		if sentinel, ok := r.rules.ClassSentinels[class]; ok && e.CompatibilityID == sentinel {
			return relic.StackingUnique
		}
	}

	return relic.StackingNoStack
}

// OverrideStatus reports which branch of a source override (if any) an
// effect resolved through: "deep", "regular", or "" when the effect has no
// source override entry.
func (r *Resolver) OverrideStatus(effectID uint32) string {
	r.rulesOnce.Do(r.buildNormalizedRules)

	e, ok := r.effectsByID[effectID]
	if !ok {
		return ""
	}

	if _, ok := r.normalizedOverr[NormalizeDisplayName(e.Name)]; !ok {
		return ""
	}

	if r.effectInAnyDeepPool(effectID) {
		return "deep"
	}

	return "regular"
}

// IsRealTierFamilyBase reports whether compatibility identifier compatID is
// self-referencing for some effect (i.e. an effect whose own identifier
// equals compatID), the guard needed before treating a compatibility
// identifier as a real family base rather than the mega-group sentinel.
func (r *Resolver) IsRealTierFamilyBase(compatID int64) bool {
	if compatID < 0 || compatID == MegaGroupSentinel {
		return false
	}

	e, ok := r.effectsByID[uint32(compatID)] //nolint:gosec // compatibility ids are effect ids in-range
	if !ok {
		return false
	}

	return e.CompatibilityID == compatID
}
