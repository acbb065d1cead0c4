package gamedata

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/nightreign-tools/relicplanner/internal/relic"
)

// familyMemberPattern matches member names of the form "<base> +<k>[%]",
// e.g. "Vigor +1", "Stamina Recovery +15%".
var familyMemberPattern = regexp.MustCompile(`^(.*?)\s*\+(\d+)%?$`)

type familyMember struct {
	effectID  uint32
	base      string
	magnitude int
}

// buildFamilies groups effects whose display name matches the "<base> +<k>"
// pattern: a family exists when at least two members share a base and at
// least one member has a positive magnitude. Each qualifying effect is
// mapped to (base, 1-based ascending rank, cardinality); singletons that
// survive this filtering are pruned.
func (r *Resolver) buildFamilies() {
	byBase := make(map[string][]familyMember)

	for id, e := range r.effectsByID {
		m := familyMemberPattern.FindStringSubmatch(e.Name)
		if m == nil {
			continue
		}

		base := strings.TrimSpace(m[1])

		mag, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}

		byBase[base] = append(byBase[base], familyMember{effectID: id, base: base, magnitude: mag})
	}

	out := make(map[uint32]relic.Family)

	for base, members := range byBase {
		if len(members) < 2 {
			continue
		}

		hasPositive := false

		for _, m := range members {
			if m.magnitude > 0 {
				hasPositive = true

				break
			}
		}

		if !hasPositive {
			continue
		}

		sort.Slice(members, func(i, j int) bool { return members[i].magnitude < members[j].magnitude })

		for rank, m := range members {
			out[m.effectID] = relic.Family{Base: base, Rank: rank + 1, Cardinality: len(members)}
		}
	}

	r.families = out
}
