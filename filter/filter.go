package filter

import "github.com/strata-engine/strata/types"

// ComponentFilter is a filter that matches entities based on the component
// types attached to them.
type ComponentFilter interface {
	// MatchesComponents returns true if an entity holding exactly the given
	// component types matches the filter.
	MatchesComponents(components []types.ComponentID) bool
}

// Component is anything that identifies a component type by ID. Registered
// component types satisfy this, so filters are built directly from the values
// returned at registration.
type Component interface {
	ID() types.ComponentID
}

func idsOf(components []Component) []types.ComponentID {
	ids := make([]types.ComponentID, 0, len(components))
	for _, c := range components {
		ids = append(ids, c.ID())
	}
	return ids
}
