package inventory

import (
	"github.com/nightreign-tools/relicplanner/internal/gamedata"
	"github.com/nightreign-tools/relicplanner/internal/relic"
)

// Canonicalize turns ground-truth raw relic records into the typed owned
// relics the scorer and optimizer consume: it resolves color, deep-flag,
// and name via the game-data resolver, derives tier from the populated
// effect count, and drops duplicate unique-range relics (first occurrence
// wins).
func Canonicalize(records []relic.RawRelicRecord, gd *gamedata.Resolver) []relic.OwnedRelic {
	seenUnique := make(map[uint64]bool)

	var out []relic.OwnedRelic

	for _, rec := range records {
		realID := rec.RealID()

		if gd.RelicIsUnique(realID) {
			if seenUnique[realID] {
				continue
			}

			seenUnique[realID] = true
		}

		color, _ := gd.RelicColor(realID)

		owned := relic.OwnedRelic{
			Handle:  rec.Handle,
			ItemID:  uint64(rec.ItemID),
			RealID:  realID,
			Color:   color,
			Effects: rec.Effects,
			Curses:  rec.Curses,
			IsDeep:  gd.RelicIsDeep(realID),
			Name:    gd.RelicName(realID),
			Tier:    relic.DeriveTier(countPopulated(rec.Effects)),
		}

		out = append(out, owned)
	}

	return out
}

func countPopulated(ids [3]uint32) int {
	n := 0

	for _, id := range ids {
		if id != relic.EmptySlotID {
			n++
		}
	}

	return n
}

// ParseCharacter runs the full extraction pipeline for one user-data
// blob: raw record extraction, phantom filtering, and canonicalization.
func ParseCharacter(blob []byte, slotIndex int, gd *gamedata.Resolver) (relic.Character, error) {
	raw, err := ParseRawRecords(blob)
	if err != nil {
		return relic.Character{}, err
	}

	name, err := CharacterName(blob, raw.ItemsEnd)
	if err != nil {
		return relic.Character{}, err
	}

	return relic.Character{
		Name:      name,
		SlotIndex: slotIndex,
		Relics:    Canonicalize(raw.Relics, gd),
	}, nil
}
