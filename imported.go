package strata

import (
	filter2 "github.com/strata-engine/strata/filter"
	"github.com/strata-engine/strata/storage"
	"github.com/strata-engine/strata/types"
)

type (
	// EntityID is the stable identity of an entity. IDs are monotonically
	// increasing and never reused, even after the entity is removed.
	EntityID = types.EntityID
	// EntityRef is a generational handle to an entity: slot, ID, and the
	// slot's generation at mint time.
	EntityRef = types.EntityRef
	// ComponentRef is a stable handle to one component instance.
	ComponentRef = types.ComponentRef
	// Ref names an ownable object: an entity or a component instance.
	Ref = types.Ref
	// Version is a per-instance mutation counter.
	Version = types.Version
	// Decoration is the owning handle for a runtime column.
	Decoration = storage.Decoration
)

var (
	All      = filter2.All
	And      = filter2.And
	Or       = filter2.Or
	Not      = filter2.Not
	Contains = filter2.Contains
	Exact    = filter2.Exact

	// EntityObject and ComponentObject build ownership refs.
	EntityObject    = types.EntityObject
	ComponentObject = types.ComponentObject

	// ErrStaleHandle and ErrInvalidComponentReference are the storage
	// errors callers are expected to test for with eris.Is.
	ErrStaleHandle               = storage.ErrStaleHandle
	ErrInvalidComponentReference = storage.ErrInvalidComponentReference
)
