package scorer_test

import (
	"testing"

	"github.com/nightreign-tools/relicplanner/internal/gamedata"
	"github.com/nightreign-tools/relicplanner/internal/relic"
	"github.com/nightreign-tools/relicplanner/internal/scorer"
)

const fixtureDir = "../gamedata/testdata"

func loadResolver(t *testing.T) *gamedata.Resolver {
	t.Helper()

	r, err := gamedata.Load(fixtureDir)
	if err != nil {
		t.Fatalf("gamedata.Load: %v", err)
	}

	return r
}

func testBuild() relic.Build {
	return relic.Build{
		Name: "test",
		Tiers: map[relic.TierKey][]uint32{
			relic.TierRequired:  {500},
			relic.TierBlacklist: {900},
			relic.TierAvoid:     {951},
		},
		FamilyTiers: map[relic.TierKey][]string{
			relic.TierPreferred: {"Vigor"},
		},
		CurseMax: 1,
	}
}

func emptyRelic() relic.OwnedRelic {
	return relic.OwnedRelic{
		Effects: [3]uint32{relic.EmptySlotID, relic.EmptySlotID, relic.EmptySlotID},
		Curses:  [3]uint32{relic.EmptySlotID, relic.EmptySlotID, relic.EmptySlotID},
	}
}

func TestPreScoreMagnitudeWeighting(t *testing.T) {
	t.Parallel()

	gd := loadResolver(t)
	s := scorer.New(gd, testBuild())

	low := emptyRelic()
	low.Effects[0] = 1 // Vigor +1, family rank 1

	high := emptyRelic()
	high.Effects[0] = 3 // Vigor +3, family rank 3

	if got := s.PreScore(low); got != 51 {
		t.Errorf("PreScore(Vigor+1) = %d, want 51 (50*1 + 1 bonus)", got)
	}

	if got := s.PreScore(high); got != 151 {
		t.Errorf("PreScore(Vigor+3) = %d, want 151 (50*3 + 1 bonus)", got)
	}
}

func TestHasBlacklistedEffect(t *testing.T) {
	t.Parallel()

	gd := loadResolver(t)
	s := scorer.New(gd, testBuild())

	r := emptyRelic()
	r.Effects[0] = 900 // Rancid Breath, blacklisted

	if !s.HasBlacklistedEffect(r) {
		t.Error("HasBlacklistedEffect = false, want true")
	}

	clean := emptyRelic()
	clean.Effects[0] = 500

	if s.HasBlacklistedEffect(clean) {
		t.Error("HasBlacklistedEffect = true, want false")
	}
}

func TestContextualScoreRequiredEffect(t *testing.T) {
	t.Parallel()

	gd := loadResolver(t)
	s := scorer.New(gd, testBuild())

	r := emptyRelic()
	r.Effects[0] = 500 // Moonlight Ring, required, stacks

	score, breakdown := s.ContextualScore(r, scorer.NewState())
	if score != 1000 {
		t.Errorf("score = %d, want 1000 (required tier default weight)", score)
	}

	if len(breakdown) != 1 || breakdown[0].Tier != relic.TierRequired {
		t.Errorf("breakdown = %+v, want one TierRequired entry", breakdown)
	}
}

// TestNoStackFamilyRule1 exercises the "self-referencing no_stack base"
// state addition: once the base itself is placed, a later unique variant
// whose compatibility id points at that base is blocked.
func TestNoStackFamilyRule1(t *testing.T) {
	t.Parallel()

	gd := loadResolver(t)
	s := scorer.New(gd, testBuild())

	state := scorer.NewState()

	base := emptyRelic()
	base.Effects[0] = 110 // Ember Seal, self-referencing no_stack base

	variant := emptyRelic()
	variant.Effects[0] = 111 // Ember Seal Variant A, compat=110, unique

	s.ContextualScore(base, state)

	_, breakdown := s.ContextualScore(variant, state)
	if len(breakdown) != 1 || !breakdown[0].Redundant {
		t.Errorf("variant breakdown = %+v, want Redundant=true after base was placed", breakdown)
	}
}

// TestNoStackFamilyRule2 exercises the reverse ordering: a unique variant is
// placed first, and its compatibility id registers the base as placed, so
// a later copy of the base itself is blocked.
func TestNoStackFamilyRule2(t *testing.T) {
	t.Parallel()

	gd := loadResolver(t)
	s := scorer.New(gd, testBuild())

	state := scorer.NewState()

	variant := emptyRelic()
	variant.Effects[0] = 112 // Ember Seal Variant B, compat=110, unique

	base := emptyRelic()
	base.Effects[0] = 110 // Ember Seal base itself

	if _, breakdown := s.ContextualScore(variant, state); len(breakdown) != 1 || breakdown[0].Redundant {
		t.Errorf("variant breakdown = %+v, want the variant itself unblocked", breakdown)
	}

	_, breakdown := s.ContextualScore(base, state)
	if len(breakdown) != 1 || !breakdown[0].Redundant {
		t.Errorf("base breakdown = %+v, want Redundant=true once a sibling variant registered it", breakdown)
	}
}

// TestExcessCursePenalty exercises the curse exclusivity/penalty
// interaction: a curse's second occurrence is blocked by its own
// exclusivity id and, once the build's curse_max is exceeded, incurs the
// excess-curse penalty on top.
func TestExcessCursePenalty(t *testing.T) {
	t.Parallel()

	gd := loadResolver(t)
	s := scorer.New(gd, testBuild())

	state := scorer.NewState()

	curseRelic := func() relic.OwnedRelic {
		r := emptyRelic()
		r.Curses[0] = 951 // Cursed Binding, self-referencing exclusivity

		return r
	}

	firstScore, firstBreakdown := s.ContextualScore(curseRelic(), state)
	if firstScore != -25 {
		t.Errorf("first curse score = %d, want -25 (avoid tier weight, no penalty yet)", firstScore)
	}

	if len(firstBreakdown) != 1 || firstBreakdown[0].Redundant {
		t.Errorf("first curse breakdown = %+v, want not redundant", firstBreakdown)
	}

	secondScore, secondBreakdown := s.ContextualScore(curseRelic(), state)
	if secondScore != -10 {
		t.Errorf("second curse score = %d, want -10 (blocked by exclusivity, then excess penalty)", secondScore)
	}

	if len(secondBreakdown) != 1 || !secondBreakdown[0].Redundant {
		t.Errorf("second curse breakdown = %+v, want Redundant=true", secondBreakdown)
	}
}

func TestRequirementsHelpers(t *testing.T) {
	t.Parallel()

	gd := loadResolver(t)
	s := scorer.New(gd, testBuild())

	ids := s.RequiredEffectIDs()
	if len(ids) != 1 || ids[0] != 500 {
		t.Errorf("RequiredEffectIDs = %v, want [500]", ids)
	}

	if !s.Satisfies(500, 500) {
		t.Error("Satisfies(500, 500) = false, want true")
	}

	if s.Satisfies(500, 900) {
		t.Error("Satisfies(500, 900) = true, want false")
	}

	if !s.IsRealTierFamilyBase(110) {
		t.Error("IsRealTierFamilyBase(110) = false, want true")
	}

	if s.EffectCompatibilityID(111) != 110 {
		t.Errorf("EffectCompatibilityID(111) = %d, want 110", s.EffectCompatibilityID(111))
	}

	base, ok := s.FamilyBaseOf(1)
	if !ok || base != "Vigor" {
		t.Errorf("FamilyBaseOf(1) = %q, %v, want Vigor, true", base, ok)
	}

	if got := s.FamilyBaseOrName(1); got != "Vigor" {
		t.Errorf("FamilyBaseOrName(1) = %q, want Vigor", got)
	}

	if got := s.FamilyBaseOrName(900); got != "Rancid Breath" {
		t.Errorf("FamilyBaseOrName(900) = %q, want Rancid Breath (no family, falls back to name)", got)
	}
}
