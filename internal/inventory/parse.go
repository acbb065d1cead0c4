// Package inventory extracts a character's relic list from one decoded
// user-data blob (internal/save.Blob) and canonicalizes it into the typed
// owned relics the scorer and optimizer consume.
//
// Parsing is bit-exact with the game's binary layout: a 5120-slot Layer 1
// item-state array holds every item the save has ever seen, including
// stale "phantom" entries from prior runs, while a fixed-size Layer 2
// entry table lists only items currently owned. A relic is real if and
// only if its handle appears in Layer 2.
package inventory

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf16"

	"github.com/nightreign-tools/relicplanner/internal/relic"
)

// Sentinel errors surfaced by the parser.
var (
	ErrMalformedBlob  = errors.New("malformed user-data blob")
	ErrNoCharacters   = errors.New("save contained no parseable character blob")
)

const (
	layer1Offset    = 0x14
	layer1SlotCount = 5120

	handleKindWeapon = 0x8
	handleKindArmor  = 0x9
	handleKindRelic  = relic.HandleKindRelic

	// Trailer sizes, in bytes, following the 8-byte (handle, item_id)
	// header. A handle of zero is an empty slot and contributes no
	// trailer.
	weaponTrailerSize = 80
	armorTrailerSize  = 8
	relicTrailerSize  = 8 + 12 + 0x1C + 12 + 12 // = 72

	// Layer 2 lookup: fixed offsets past the end of Layer 1.
	nameOffsetFromItemsEnd       = 0x94
	entryTableOffsetFromName     = 0x5B8
	entryTableCountPrefixSize    = 4
	itemEntrySize                = 8 // (handle u32, gaitem_handle u32)
	minActiveEntryCount          = 1
	maxActiveEntryCount          = 3065
	activeCountSanityTolerance   = 20

	nameMaxUnits = 16 // UTF-16 code units
)

// RawParse is the pure extraction result: the relic records whose handle
// is confirmed present in Layer 2 (no phantoms), in original encounter
// order, plus the byte offset at which Layer 1 ended (needed to locate the
// character name).
type RawParse struct {
	Relics     []relic.RawRelicRecord
	ItemsEnd   int
	ActiveSet  map[uint32]bool
}

// ParseRawRecords decodes Layer 1 and Layer 2 of a user-data blob and
// returns the ground-truth relic records: those present in Layer 1 whose
// handle also appears in the Layer 2 active-handle set.
func ParseRawRecords(blob []byte) (RawParse, error) {
	allRecords, itemsEnd, err := decodeLayer1(blob)
	if err != nil {
		return RawParse{}, err
	}

	activeSet, err := decodeActiveHandles(blob, itemsEnd)
	if err != nil {
		return RawParse{}, err
	}

	var relics []relic.RawRelicRecord

	for _, r := range allRecords {
		if activeSet[r.Handle] {
			relics = append(relics, r)
		}
	}

	return RawParse{Relics: relics, ItemsEnd: itemsEnd, ActiveSet: activeSet}, nil
}

// decodeLayer1 walks the 5120-slot variable-size item array starting at
// layer1Offset, returning every relic-kind record encountered (phantoms
// included — filtering happens in ParseRawRecords) and the offset one past
// the last consumed byte.
//
// Parsing is defensive: if the blob ends mid-record, the partial list
// assembled so far is returned without error.
func decodeLayer1(blob []byte) ([]relic.RawRelicRecord, int, error) {
	if len(blob) < layer1Offset+8 {
		return nil, 0, fmt.Errorf("%w: blob shorter than Layer 1 header", ErrMalformedBlob)
	}

	var records []relic.RawRelicRecord

	off := layer1Offset

	for slot := 0; slot < layer1SlotCount; slot++ {
		if off+8 > len(blob) {
			break
		}

		handle := binary.LittleEndian.Uint32(blob[off : off+4])
		itemID := binary.LittleEndian.Uint32(blob[off+4 : off+8])
		recStart := off

		kind := handle >> 28

		var trailer int

		switch {
		case handle == 0:
			trailer = 0
		case kind == handleKindWeapon:
			trailer = weaponTrailerSize
		case kind == handleKindArmor:
			trailer = armorTrailerSize
		case kind == handleKindRelic:
			trailer = relicTrailerSize
		default:
			// Unknown kind: treat as the smallest known record so the
			// cursor still advances; the item is not a relic and is
			// dropped either way.
			trailer = 0
		}

		if off+8+trailer > len(blob) {
			return records, off, nil
		}

		if kind == handleKindRelic && handle != 0 {
			body := blob[off+8 : off+8+trailer]
			rec := relic.RawRelicRecord{
				Handle:     handle,
				ItemID:     itemID,
				ByteOffset: recStart,
				ByteSize:   8 + trailer,
			}

			rec.Effects[0] = binary.LittleEndian.Uint32(body[8:12])
			rec.Effects[1] = binary.LittleEndian.Uint32(body[12:16])
			rec.Effects[2] = binary.LittleEndian.Uint32(body[16:20])

			curseStart := 8 + 12 + 0x1C
			rec.Curses[0] = binary.LittleEndian.Uint32(body[curseStart : curseStart+4])
			rec.Curses[1] = binary.LittleEndian.Uint32(body[curseStart+4 : curseStart+8])
			rec.Curses[2] = binary.LittleEndian.Uint32(body[curseStart+8 : curseStart+12])

			records = append(records, rec)
		}

		off += 8 + trailer
	}

	return records, off, nil
}

// decodeActiveHandles locates and reads the Layer 2 count-prefixed entry
// table and returns the set of non-zero handles it lists.
func decodeActiveHandles(blob []byte, itemsEnd int) (map[uint32]bool, error) {
	nameOffset := itemsEnd + nameOffsetFromItemsEnd
	tableOffset := nameOffset + entryTableOffsetFromName

	if tableOffset+entryTableCountPrefixSize > len(blob) {
		return nil, fmt.Errorf("%w: Layer 2 entry table out of range", ErrMalformedBlob)
	}

	count := int(binary.LittleEndian.Uint32(blob[tableOffset : tableOffset+entryTableCountPrefixSize]))
	if count < minActiveEntryCount || count > maxActiveEntryCount {
		return nil, fmt.Errorf("%w: entry count %d outside [%d, %d]", ErrMalformedBlob, count, minActiveEntryCount, maxActiveEntryCount)
	}

	entriesStart := tableOffset + entryTableCountPrefixSize
	entriesEnd := entriesStart + count*itemEntrySize

	if entriesEnd > len(blob) {
		return nil, fmt.Errorf("%w: Layer 2 entries exceed blob length", ErrMalformedBlob)
	}

	active := make(map[uint32]bool, count)

	for i := 0; i < count; i++ {
		start := entriesStart + i*itemEntrySize
		handle := binary.LittleEndian.Uint32(blob[start : start+4])

		if handle != 0 {
			active[handle] = true
		}
	}

	if diff := count - len(active); diff < -activeCountSanityTolerance || diff > activeCountSanityTolerance {
		return nil, fmt.Errorf("%w: active handle count %d implausible for entry count %d", ErrMalformedBlob, len(active), count)
	}

	return active, nil
}

// CharacterName reads the UTF-16LE character display name stored just past
// Layer 1. An all-null or empty name is reported as "absent".
func CharacterName(blob []byte, itemsEnd int) (string, error) {
	nameOffset := itemsEnd + nameOffsetFromItemsEnd
	byteLen := nameMaxUnits * 2

	if nameOffset+byteLen > len(blob) {
		return "", fmt.Errorf("%w: character name out of range", ErrMalformedBlob)
	}

	raw := blob[nameOffset : nameOffset+byteLen]

	units := make([]uint16, 0, nameMaxUnits)

	for i := 0; i+1 < len(raw); i += 2 {
		u := binary.LittleEndian.Uint16(raw[i : i+2])
		if u == 0 {
			break
		}

		units = append(units, u)
	}

	name := string(utf16.Decode(units))
	if name == "" {
		return "absent", nil
	}

	return name, nil
}
