package filter

import "github.com/strata-engine/strata/types"

type all struct{}

// All matches every entity, including entities with no components.
func All() ComponentFilter {
	return &all{}
}

func (f *all) MatchesComponents(_ []types.ComponentID) bool {
	return true
}
