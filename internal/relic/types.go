// Package relic holds the data types shared by every layer of the planner
// kernel: the save decoder, the inventory parser, the game-data resolver,
// the scorer, and the optimizer. Keeping them in one leaf package avoids
// import cycles between those layers.
package relic

// Color identifies a relic's or vessel slot's color channel.
type Color string

// Color values. White is the wildcard slot color and never appears on a
// relic itself.
const (
	ColorRed    Color = "red"
	ColorBlue   Color = "blue"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorWhite  Color = "white"
)

// Tier is the relic rarity derived from its populated effect count.
type Tier string

// Tier values, ordered from most to least populated.
const (
	TierGrand    Tier = "grand"
	TierPolished Tier = "polished"
	TierDelicate Tier = "delicate"
)

// EmptySlotID is the sentinel used for an unpopulated effect/curse slot in a
// raw relic record.
const EmptySlotID uint32 = 0xFFFF_FFFF

// IDOffset is subtracted from a raw item identifier to obtain the relic's
// real identifier.
const IDOffset uint64 = 2_147_483_648

// HandleKindRelic is the high nibble of a handle that tags it as a relic.
const HandleKindRelic uint32 = 0xC

// RawRelicRecord is one decoded inventory item before phantom filtering or
// canonicalization.
type RawRelicRecord struct {
	Handle      uint32
	ItemID      uint32
	Effects     [3]uint32
	Curses      [3]uint32
	ByteOffset  int
	ByteSize    int
}

// RealID returns the relic's real identifier (ItemID minus the platform
// offset), used for pool/effect lookups and the unique-range check.
func (r RawRelicRecord) RealID() uint64 {
	return uint64(r.ItemID) - IDOffset
}

// Fingerprint is the content-based identity of a relic, stable across
// handle reassignment between saves.
type Fingerprint struct {
	RealID  uint64
	Effects [3]uint32
	Curses  [3]uint32
}

// OwnedRelic is the canonical relic presented to the scorer and optimizer.
type OwnedRelic struct {
	Handle  uint32
	ItemID  uint64
	RealID  uint64
	Color   Color
	Effects [3]uint32
	Curses  [3]uint32
	IsDeep  bool
	Name    string
	Tier    Tier
}

// Fingerprint returns the relic's content-based identity.
func (o OwnedRelic) Fingerprint() Fingerprint {
	return Fingerprint{RealID: o.RealID, Effects: o.Effects, Curses: o.Curses}
}

// EffectCount returns the number of non-empty primary effect slots.
func (o OwnedRelic) EffectCount() int {
	n := 0

	for _, e := range o.Effects {
		if e != EmptySlotID {
			n++
		}
	}

	return n
}

// CurseCount returns the number of non-empty curse slots.
func (o OwnedRelic) CurseCount() int {
	n := 0

	for _, c := range o.Curses {
		if c != EmptySlotID {
			n++
		}
	}

	return n
}

// DeriveTier computes a relic's tier from its populated primary effect count.
func DeriveTier(effectCount int) Tier {
	switch {
	case effectCount >= 3:
		return TierGrand
	case effectCount == 2:
		return TierPolished
	default:
		return TierDelicate
	}
}

// StackingType describes how an effect combines with copies of itself or
// its family siblings.
type StackingType string

// StackingType values.
const (
	StackingStack    StackingType = "stack"
	StackingUnique   StackingType = "unique"
	StackingNoStack  StackingType = "no_stack"
)

// Family groups magnitude-ordered effect variants sharing a base name, e.g.
// "Vigor +1", "Vigor +2".
type Family struct {
	Base        string
	Rank        int
	Cardinality int
}

// Effect is a reference record describing one effect identifier's display
// name, stacking semantics, and class eligibility.
type Effect struct {
	ID              uint32
	Name            string
	TextID          uint32
	CompatibilityID int64 // -1 means absent
	ExclusivityID   int64 // -1 means absent
	IsDebuff        bool
	ClassAllow      map[string]bool
	Stacking        StackingType
	Family          *Family // nil when the effect has no family grouping
}

// Platform identifies which container format a save file was decoded from.
type Platform string

// Platform values.
const (
	PlatformPC      Platform = "pc"
	PlatformConsole Platform = "console"
)

// Character is one parsed save slot: a display name and its owned relics.
type Character struct {
	Name      string
	SlotIndex int
	Relics    []OwnedRelic
}

// Vessel is a fixed six-slot container keyed by integer identifier.
type Vessel struct {
	ID         int
	Name       string
	Character  string // "All" for class-agnostic vessels
	SlotColors [6]Color
	Unlocked   bool
}

// TierKey names one row of a build's tier configuration
// (e.g. "required", "preferred").
type TierKey string

// Default tier keys, in priority order.
const (
	TierRequired    TierKey = "required"
	TierPreferred   TierKey = "preferred"
	TierNiceToHave  TierKey = "nice_to_have"
	TierBonus       TierKey = "bonus"
	TierAvoid       TierKey = "avoid"
	TierBlacklist   TierKey = "blacklist"
)

// TierConfig is one row of the tier schema.
type TierConfig struct {
	Key                TierKey
	DisplayName        string
	DefaultWeight      int
	Scored             bool
	MagnitudeWeighted  bool
	IsMustHave         bool
	IsExclusion        bool
}

// DefaultTierSchema is the fixed, ordered tier configuration used unless a
// build overrides individual weights.
func DefaultTierSchema() []TierConfig {
	return []TierConfig{
		{Key: TierRequired, DisplayName: "Required", DefaultWeight: 1000, Scored: true, MagnitudeWeighted: true, IsMustHave: true},
		{Key: TierPreferred, DisplayName: "Preferred", DefaultWeight: 50, Scored: true, MagnitudeWeighted: true},
		{Key: TierNiceToHave, DisplayName: "Nice to Have", DefaultWeight: 15, Scored: true, MagnitudeWeighted: true},
		{Key: TierBonus, DisplayName: "Bonus", DefaultWeight: 5, Scored: true},
		{Key: TierAvoid, DisplayName: "Avoid", DefaultWeight: -25, Scored: true},
		{Key: TierBlacklist, DisplayName: "Blacklist", DefaultWeight: 0, IsExclusion: true},
	}
}

// Build is a named configuration describing which effects a player wants,
// is indifferent to, or forbids.
type Build struct {
	ID            string
	Name          string
	Character     string
	Tiers         map[TierKey][]uint32
	FamilyTiers   map[TierKey][]string
	IncludeDeep   bool
	CurseMax      int
	TierWeights   map[TierKey]int
	PinnedRelics  []uint64
}

// WeightFor returns the effective weight for a tier, honoring the build's
// override map before falling back to the schema default.
func (b Build) WeightFor(cfg TierConfig) int {
	if b.TierWeights != nil {
		if w, ok := b.TierWeights[cfg.Key]; ok {
			return w
		}
	}

	return cfg.DefaultWeight
}

// BreakdownEntry is one scored (or filtered) effect inside a SlotAssignment.
type BreakdownEntry struct {
	EffectID       uint32
	Name           string
	Tier           TierKey
	Score          int
	IsCurse        bool
	Redundant      bool
	OverrideStatus string
}

// SlotAssignment is the optimizer's placement decision for one vessel slot.
type SlotAssignment struct {
	SlotIndex  int
	SlotColor  Color
	IsDeep     bool
	Relic      *OwnedRelic
	Score      int
	Breakdown  []BreakdownEntry
}

// VesselResult is the optimizer's output for one vessel.
type VesselResult struct {
	VesselID          int
	VesselName        string
	VesselCharacter   string
	UnlockFlag        bool
	SlotColors        [6]Color
	Assignments       []SlotAssignment
	TotalScore        int
	MeetsRequirements bool
	MissingRequirements []string
}
