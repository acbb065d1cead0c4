package scorer

import (
	"github.com/nightreign-tools/relicplanner/internal/relic"
)

// RequiredEffectIDs returns the build's required-tier effect identifiers.
func (s *Scorer) RequiredEffectIDs() []uint32 {
	return s.build.Tiers[relic.TierRequired]
}

// RequiredFamilyBases returns the build's required-tier family base names.
func (s *Scorer) RequiredFamilyBases() []string {
	return s.build.FamilyTiers[relic.TierRequired]
}

// Satisfies reports whether assignedID counts as a match for requiredID:
// direct identifier equality, shared text identifier, or display-name
// equivalence.
func (s *Scorer) Satisfies(assignedID, requiredID uint32) bool {
	if assignedID == requiredID {
		return true
	}

	a := s.gd.EffectByID(assignedID)
	r := s.gd.EffectByID(requiredID)

	if a.TextID != 0 && a.TextID == r.TextID {
		return true
	}

	if a.TextID != 0 && a.TextID == requiredID {
		return true
	}

	if r.TextID != 0 && r.TextID == assignedID {
		return true
	}

	return a.Name != "" && a.Name == r.Name
}

// IsRealTierFamilyBase reports whether compatID is a real, self-referencing
// tier-family base rather than the mega-group sentinel.
func (s *Scorer) IsRealTierFamilyBase(compatID int64) bool {
	return s.gd.IsRealTierFamilyBase(compatID)
}

// StackingTypeFor exposes the resolver's stacking-type resolution for
// callers outside this package that need it without holding their own
// resolver reference (the optimizer's tier-family correction pass).
func (s *Scorer) StackingTypeFor(effectID uint32) relic.StackingType {
	return s.gd.StackingTypeFor(effectID)
}

// EffectCompatibilityID returns the compatibility identifier for an effect,
// or -1 if absent.
func (s *Scorer) EffectCompatibilityID(effectID uint32) int64 {
	return s.gd.EffectByID(effectID).CompatibilityID
}

// FamilyBaseOf returns the family base name assignedID belongs to, as
// stored on the family (not normalized), if any.
func (s *Scorer) FamilyBaseOf(assignedID uint32) (string, bool) {
	fam, ok := s.gd.FamilyFor(assignedID)
	if !ok {
		return "", false
	}

	return fam.Base, true
}

// FamilyBaseOrName returns id's family base name if it has one, otherwise
// its display name, for use in missing-requirement messages.
func (s *Scorer) FamilyBaseOrName(id uint32) string {
	if base, ok := s.FamilyBaseOf(id); ok {
		return base
	}

	return s.gd.DisplayName(id)
}
