// Package build loads human-edited build definitions from YAML into
// relic.Build, the form the scorer and optimizer consume.
package build

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nightreign-tools/relicplanner/internal/relic"
)

// ErrNoTiers is returned when a build file defines no tier entries at all.
var ErrNoTiers = errors.New("build defines no tiers")

// doc mirrors the on-disk YAML shape. Effect entries may be either a bare
// numeric identifier or a string naming a family base; both land in the
// build's respective Tiers/FamilyTiers slice based on their YAML kind.
type doc struct {
	ID           string                 `yaml:"id"`
	Name         string                 `yaml:"name"`
	Character    string                 `yaml:"character"`
	IncludeDeep  bool                   `yaml:"include_deep"`
	CurseMax     int                    `yaml:"curse_max"`
	PinnedRelics []uint64               `yaml:"pinned_relics"`
	TierWeights  map[string]int         `yaml:"tier_weights"`
	Tiers        map[string][]yaml.Node `yaml:"tiers"`
}

// Load reads and parses a build definition from path.
func Load(path string) (relic.Build, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator-supplied
	if err != nil {
		return relic.Build{}, fmt.Errorf("reading build file: %w", err)
	}

	return Parse(data)
}

// Parse decodes a build definition from YAML bytes.
func Parse(data []byte) (relic.Build, error) {
	var d doc

	if err := yaml.Unmarshal(data, &d); err != nil {
		return relic.Build{}, fmt.Errorf("parsing build yaml: %w", err)
	}

	if len(d.Tiers) == 0 {
		return relic.Build{}, ErrNoTiers
	}

	b := relic.Build{
		ID:           d.ID,
		Name:         d.Name,
		Character:    d.Character,
		IncludeDeep:  d.IncludeDeep,
		CurseMax:     d.CurseMax,
		PinnedRelics: d.PinnedRelics,
		Tiers:        make(map[relic.TierKey][]uint32),
		FamilyTiers:  make(map[relic.TierKey][]string),
	}

	if len(d.TierWeights) > 0 {
		b.TierWeights = make(map[relic.TierKey]int, len(d.TierWeights))
		for k, w := range d.TierWeights {
			b.TierWeights[relic.TierKey(k)] = w
		}
	}

	for tierName, nodes := range d.Tiers {
		key := relic.TierKey(tierName)

		for _, n := range nodes {
			switch n.Kind {
			case yaml.ScalarNode:
				var id uint32
				if err := n.Decode(&id); err == nil {
					b.Tiers[key] = append(b.Tiers[key], id)

					continue
				}

				var base string
				if err := n.Decode(&base); err != nil {
					return relic.Build{}, fmt.Errorf("tier %q entry: %w", tierName, err)
				}

				b.FamilyTiers[key] = append(b.FamilyTiers[key], base)
			default:
				return relic.Build{}, fmt.Errorf("tier %q: unsupported entry kind", tierName)
			}
		}
	}

	return b, nil
}
