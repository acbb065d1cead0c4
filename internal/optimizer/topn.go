package optimizer

import "github.com/nightreign-tools/relicplanner/internal/relic"

// insertVesselResult keeps the top-`limit` vessel results ordered with
// requirement-meeting results first, then by score descending.
func insertVesselResult(list []relic.VesselResult, item relic.VesselResult, limit int) []relic.VesselResult {
	better := func(a, b relic.VesselResult) bool {
		if a.MeetsRequirements != b.MeetsRequirements {
			return a.MeetsRequirements
		}

		return a.TotalScore > b.TotalScore
	}

	i := 0
	for i < len(list) && better(list[i], item) {
		i++
	}

	if limit > 0 && i >= limit {
		return list
	}

	list = append(list, relic.VesselResult{})
	copy(list[i+1:], list[i:])
	list[i] = item

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}

	return list
}
