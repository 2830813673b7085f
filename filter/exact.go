package filter

import "github.com/strata-engine/strata/types"

type exact struct {
	ids []types.ComponentID
}

// Exact matches entities that hold exactly the component types specified,
// nothing more.
func Exact(components ...Component) ComponentFilter {
	return exact{ids: idsOf(components)}
}

func (f exact) MatchesComponents(components []types.ComponentID) bool {
	if len(components) != len(f.ids) {
		return false
	}
	for _, id := range components {
		if !MatchComponent(f.ids, id) {
			return false
		}
	}
	return true
}
