package filter

import "github.com/strata-engine/strata/types"

type not struct {
	filter ComponentFilter
}

func Not(filter ComponentFilter) ComponentFilter {
	return &not{filter: filter}
}

func (f *not) MatchesComponents(components []types.ComponentID) bool {
	return !f.filter.MatchesComponents(components)
}
