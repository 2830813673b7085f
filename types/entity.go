package types

// EntityID is the stable identity of an entity. IDs are assigned from a
// monotonically increasing counter and are never reused, even after the
// entity's slot has been reclaimed. 0 is the null id.
type EntityID uint64

// NullEntityID is never assigned to a live entity.
const NullEntityID EntityID = 0

// EntitySlot is a dense index into the entity table's parallel arrays. Slots
// are reused after removal and move during compaction; anything that caches a
// slot must revalidate it through the id+generation pair.
type EntitySlot int

// ComponentSlot is a dense index into one component table's columns.
type ComponentSlot int

// NoSlot marks the absence of a slot in either table.
const NoSlot = -1

// Generation counts how many times an entity slot has been recycled. A handle
// whose generation no longer matches the slot's current generation is stale.
type Generation uint32

// EntityRef is a stable handle to an entity. Unlike a cursor, a ref can be
// held across iteration steps; it goes stale (and fails loudly) once the
// entity is removed or a compaction moves its slot.
type EntityRef struct {
	Slot       EntitySlot
	ID         EntityID
	Generation Generation
}

// BadEntityRef is returned by operations that have no entity to refer to.
var BadEntityRef = EntityRef{Slot: NoSlot, ID: NullEntityID}
