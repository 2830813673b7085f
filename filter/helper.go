package filter

import "github.com/strata-engine/strata/types"

// MatchComponent returns true if the given component id set contains the id.
func MatchComponent(components []types.ComponentID, id types.ComponentID) bool {
	for _, c := range components {
		if c == id {
			return true
		}
	}
	return false
}
