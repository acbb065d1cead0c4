package gamedata

import (
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/nightreign-tools/relicplanner/internal/relic"
)

// Resource file names within the resources/ tree.
const (
	fileEffectParams  = "effect_params.csv"
	filePoolEffects   = "pool_effects.csv"
	fileRelicPools    = "relic_pools.csv"
	fileVessels       = "vessels.csv"
	fileNamesTemplate = "names_%s.xml" // %s = language code
	fileStackingRules = "stacking_rules.json"

	defaultLanguage = "en"
)

// Load builds a Resolver from the resources/ tree rooted at dir.
func Load(dir string) (*Resolver, error) {
	return LoadLanguage(dir, defaultLanguage)
}

// LoadLanguage builds a Resolver using the display-name table for the
// given language code.
func LoadLanguage(dir, language string) (*Resolver, error) {
	r := &Resolver{}

	var err error

	if r.effectsByID, err = loadEffectParams(filepath.Join(dir, fileEffectParams)); err != nil {
		return nil, err
	}

	if r.poolEffects, err = loadPoolEffects(filepath.Join(dir, filePoolEffects)); err != nil {
		return nil, err
	}

	if r.relicPools, err = loadRelicPools(filepath.Join(dir, fileRelicPools)); err != nil {
		return nil, err
	}

	if r.vessels, err = loadVessels(filepath.Join(dir, fileVessels)); err != nil {
		return nil, err
	}

	if r.names, err = loadNames(filepath.Join(dir, fmt.Sprintf(fileNamesTemplate, language))); err != nil {
		return nil, err
	}

	if r.rules, err = loadStackingRules(filepath.Join(dir, fileStackingRules)); err != nil {
		return nil, err
	}

	applyDisplayNames(r.effectsByID, r.names)

	return r, nil
}

func openCSV(path string) (*csv.Reader, func(), error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrResourceMissing, path, err)
	}

	reader := csv.NewReader(f)
	reader.ReuseRecord = true

	return reader, func() { _ = f.Close() }, nil
}

// effect_params.csv columns:
// effect_id,compatibility_id,text_id,override_id,is_debuff,allow_<class>...
func loadEffectParams(path string) (map[uint32]relic.Effect, error) {
	reader, closeFn, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrResourceInvalid, path, err)
	}

	idx := indexHeader(header)
	classCols := classAllowColumns(header)

	out := make(map[uint32]relic.Effect)

	for {
		rec, err := reader.Read()
		if err != nil {
			break
		}

		id := parseUint32(col(rec, idx, "effect_id"))

		allow := make(map[string]bool, len(classCols))
		for class, ci := range classCols {
			allow[class] = col(rec, idx, ci) == "1" || strings.EqualFold(col(rec, idx, ci), "true")
		}

		out[id] = relic.Effect{
			ID:              id,
			TextID:          parseUint32(col(rec, idx, "text_id")),
			CompatibilityID: parseInt64OrDefault(col(rec, idx, "compatibility_id"), -1),
			ExclusivityID:   parseInt64OrDefault(col(rec, idx, "override_id"), -1),
			IsDebuff:        col(rec, idx, "is_debuff") == "1",
			ClassAllow:      allow,
		}
	}

	return out, nil
}

func classAllowColumns(header []string) map[string]string {
	classes := make(map[string]string)

	for _, h := range header {
		if class, ok := strings.CutPrefix(h, "allow_"); ok {
			classes[class] = h
		}
	}

	return classes
}

// pool_effects.csv columns: pool_id,effect_id,base_weight,dlc_weight
func loadPoolEffects(path string) (map[int64]map[uint32]poolWeight, error) {
	reader, closeFn, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrResourceInvalid, path, err)
	}

	idx := indexHeader(header)
	out := make(map[int64]map[uint32]poolWeight)

	for {
		rec, err := reader.Read()
		if err != nil {
			break
		}

		poolID := parseInt64OrDefault(col(rec, idx, "pool_id"), 0)
		effectID := parseUint32(col(rec, idx, "effect_id"))

		if out[poolID] == nil {
			out[poolID] = make(map[uint32]poolWeight)
		}

		out[poolID][effectID] = poolWeight{
			Base: int(parseInt64OrDefault(col(rec, idx, "base_weight"), 0)),
			DLC:  int(parseInt64OrDefault(col(rec, idx, "dlc_weight"), 0)),
		}
	}

	return out, nil
}

// relic_pools.csv columns: real_id,color,unique,pool1,pool2,pool3,curse_pool1,curse_pool2,curse_pool3
func loadRelicPools(path string) (map[uint64]relicPoolRow, error) {
	reader, closeFn, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrResourceInvalid, path, err)
	}

	idx := indexHeader(header)
	out := make(map[uint64]relicPoolRow)

	poolCols := []string{"pool1", "pool2", "pool3", "curse_pool1", "curse_pool2", "curse_pool3"}

	for {
		rec, err := reader.Read()
		if err != nil {
			break
		}

		realID := parseUint64(col(rec, idx, "real_id"))

		row := relicPoolRow{
			RealID:   realID,
			Color:    relic.Color(col(rec, idx, "color")),
			IsUnique: col(rec, idx, "unique") == "1",
		}
		for i, c := range poolCols {
			row.PoolIDs[i] = parseInt64OrDefault(col(rec, idx, c), -1)
		}

		out[realID] = row
	}

	return out, nil
}

// vessels.csv columns: vessel_id,name,character,slot1..slot6,unlocked
func loadVessels(path string) ([]relic.Vessel, error) {
	reader, closeFn, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrResourceInvalid, path, err)
	}

	idx := indexHeader(header)

	var out []relic.Vessel

	slotCols := []string{"slot1", "slot2", "slot3", "slot4", "slot5", "slot6"}

	for {
		rec, err := reader.Read()
		if err != nil {
			break
		}

		v := relic.Vessel{
			ID:        int(parseInt64OrDefault(col(rec, idx, "vessel_id"), 0)),
			Name:      col(rec, idx, "name"),
			Character: col(rec, idx, "character"),
			Unlocked:  col(rec, idx, "unlocked") == "1",
		}

		for i, c := range slotCols {
			v.SlotColors[i] = relic.Color(col(rec, idx, c))
		}

		out = append(out, v)
	}

	return out, nil
}

func indexHeader(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}

	return idx
}

func col(rec []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(rec) {
		return ""
	}

	return strings.TrimSpace(rec[i])
}

func parseUint32(s string) uint32 {
	v, _ := strconv.ParseUint(s, 10, 32)

	return uint32(v)
}

func parseUint64(s string) uint64 {
	v, _ := strconv.ParseUint(s, 10, 64)

	return v
}

func parseInt64OrDefault(s string, def int64) int64 {
	if s == "" {
		return def
	}

	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return def
	}

	return v
}

// textData is the XML schema for a per-language display-name table:
//
//	<TextData>
//	  <Entry id="123">Vigor +1</Entry>
//	</TextData>
type textData struct {
	XMLName xml.Name    `xml:"TextData"`
	Entries []textEntry `xml:"Entry"`
}

type textEntry struct {
	ID   uint32 `xml:"id,attr"`
	Name string `xml:",chardata"`
}

func loadNames(path string) (map[uint32]string, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrResourceMissing, path, err)
	}
	defer func() { _ = f.Close() }()

	var doc textData

	if err := xml.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrResourceInvalid, path, err)
	}

	out := make(map[uint32]string, len(doc.Entries))
	for _, e := range doc.Entries {
		out[e.ID] = strings.TrimSpace(e.Name)
	}

	return out, nil
}

func applyDisplayNames(effects map[uint32]relic.Effect, names map[uint32]string) {
	for id, e := range effects {
		if n, ok := names[id]; ok {
			e.Name = n
			effects[id] = e
		}
	}
}

// stackingRules is the decoded shape of stacking_rules.json:
//
//	{
//	  "rules": {"Vigor": "stack"},
//	  "overrides": {"Fire Clutch Talisman": {"regular": "no_stack", "deep": "unique"}}
//	}
//
// It is parsed with hujson rather than strict encoding/json because this
// file is hand-maintained by community data contributors and routinely
// carries trailing commas and inline comments, the same tolerance the
// application's own config file affords hand-edited JSON (internal/config).
type stackingRules struct {
	Rules          map[string]relic.StackingType `json:"rules"`
	Overrides      map[string]stackingOverride   `json:"overrides"`
	ClassSentinels map[string]int64              `json:"class_sentinels"`
}

type stackingOverride struct {
	Regular relic.StackingType `json:"regular"`
	Deep    relic.StackingType `json:"deep"`
}

func loadStackingRules(path string) (stackingRules, error) {
	raw, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return stackingRules{}, fmt.Errorf("%w: %s: %w", ErrResourceMissing, path, err)
	}

	standardized, err := hujson.Standardize(raw)
	if err != nil {
		return stackingRules{}, fmt.Errorf("%w: %s: %w", ErrResourceInvalid, path, err)
	}

	var rules stackingRules

	if err := json.Unmarshal(standardized, &rules); err != nil {
		return stackingRules{}, fmt.Errorf("%w: %s: %w", ErrResourceInvalid, path, err)
	}

	if rules.Rules == nil {
		rules.Rules = map[string]relic.StackingType{}
	}

	if rules.Overrides == nil {
		rules.Overrides = map[string]stackingOverride{}
	}

	if rules.ClassSentinels == nil {
		rules.ClassSentinels = map[string]int64{}
	}

	return rules, nil
}
