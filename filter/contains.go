package filter

import "github.com/strata-engine/strata/types"

type contains struct {
	ids []types.ComponentID
}

// Contains matches entities that hold all the component types specified.
func Contains(components ...Component) ComponentFilter {
	return &contains{ids: idsOf(components)}
}

func (f *contains) MatchesComponents(components []types.ComponentID) bool {
	for _, id := range f.ids {
		if !MatchComponent(components, id) {
			return false
		}
	}
	return true
}
