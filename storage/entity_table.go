package storage

import (
	"github.com/rotisserie/eris"

	"github.com/strata-engine/strata/types"
)

// EntityTable is the packed index of all entities in a world. Each live
// entity occupies one slot; removed slots are parked on a free list and
// reclaimed by the next compaction pass rather than compacted eagerly.
//
// Identity is layered: the slot is positional and unstable across
// compactions, the EntityID is monotonically increasing and never reused, and
// the per-slot generation counts how many times the slot has been recycled.
// Resolve checks all three, so a stale EntityRef always fails loudly instead
// of silently reading whichever entity happens to occupy the slot now.
type EntityTable struct {
	ids         []types.EntityID
	generations []types.Generation
	freeList    []types.EntitySlot
	idToSlot    map[types.EntityID]types.EntitySlot
	nextID      types.EntityID
}

// NewEntityTable builds an empty entity index with storage preallocated for
// the given number of entities.
func NewEntityTable(capacity int) *EntityTable {
	if capacity < 0 {
		capacity = 0
	}
	return &EntityTable{
		ids:         make([]types.EntityID, 0, capacity),
		generations: make([]types.Generation, 0, capacity),
		idToSlot:    make(map[types.EntityID]types.EntitySlot, capacity),
	}
}

// Used returns the number of slots currently in use, live or pending
// reclamation. Component tables size their per-entity lookups to this.
func (et *EntityTable) Used() int { return len(et.ids) }

// Live returns the number of live entities.
func (et *EntityTable) Live() int { return len(et.ids) - len(et.freeList) }

// Add claims a slot for a new entity and returns its handle. Free slots are
// reused before the table grows, and every entity gets a fresh ID either way.
func (et *EntityTable) Add() types.EntityRef {
	et.nextID++
	id := et.nextID

	var slot types.EntitySlot
	if n := len(et.freeList); n > 0 {
		slot = et.freeList[n-1]
		et.freeList = et.freeList[:n-1]
		et.ids[slot] = id
	} else {
		slot = types.EntitySlot(len(et.ids))
		et.ids = append(et.ids, id)
		et.generations = append(et.generations, 0)
	}
	et.idToSlot[id] = slot
	return types.EntityRef{Slot: slot, ID: id, Generation: et.generations[slot]}
}

// Remove frees the entity occupying the slot. The slot's generation is bumped
// immediately so handles minted for the removed entity turn stale at once.
// Removing a slot that is not live is a no-op and reports false.
func (et *EntityTable) Remove(slot types.EntitySlot) bool {
	if !et.IsLive(slot) {
		return false
	}
	delete(et.idToSlot, et.ids[slot])
	et.ids[slot] = types.NullEntityID
	et.generations[slot]++
	et.freeList = append(et.freeList, slot)
	return true
}

// IsLive reports whether the slot currently holds a live entity.
func (et *EntityTable) IsLive(slot types.EntitySlot) bool {
	return slot >= 0 && int(slot) < len(et.ids) && et.ids[slot] != types.NullEntityID
}

// IDAt returns the ID of the entity in the slot, or NullEntityID if the slot
// is not live.
func (et *EntityTable) IDAt(slot types.EntitySlot) types.EntityID {
	if slot < 0 || int(slot) >= len(et.ids) {
		return types.NullEntityID
	}
	return et.ids[slot]
}

// RefAt mints a fresh handle for the entity currently in the slot.
func (et *EntityTable) RefAt(slot types.EntitySlot) types.EntityRef {
	if !et.IsLive(slot) {
		return types.BadEntityRef
	}
	return types.EntityRef{Slot: slot, ID: et.ids[slot], Generation: et.generations[slot]}
}

// SlotOfID returns the slot currently holding the entity with the given ID.
// Unlike slots, IDs are stable across compaction, so this is how long-lived
// relationships between objects are resolved back to storage.
func (et *EntityTable) SlotOfID(id types.EntityID) (types.EntitySlot, bool) {
	slot, ok := et.idToSlot[id]
	return slot, ok
}

// LiveID reports whether an entity with the given ID is live.
func (et *EntityTable) LiveID(id types.EntityID) bool {
	_, ok := et.idToSlot[id]
	return ok
}

// Resolve verifies that the handle still points at the entity it was minted
// for. It returns ErrStaleHandle when the entity was removed, its slot was
// recycled for another entity, or a compaction pass moved it since the handle
// was taken.
func (et *EntityTable) Resolve(ref types.EntityRef) error {
	if ref.Slot < 0 || int(ref.Slot) >= len(et.ids) {
		return eris.Wrapf(ErrStaleHandle, "entity %d: slot %d out of range", ref.ID, ref.Slot)
	}
	if et.ids[ref.Slot] != ref.ID || et.generations[ref.Slot] != ref.Generation {
		return eris.Wrapf(ErrStaleHandle, "entity %d: slot %d now holds entity %d", ref.ID, ref.Slot, et.ids[ref.Slot])
	}
	return nil
}

// Compact fills every free slot by swapping live entities down from the end
// of the table, truncates to the live count, and clears the free list. It
// returns the remap table for the pass: remap[oldSlot] is the slot the entity
// occupies after the pass, or NoSlot if the old slot was dead. Component
// tables consume the remap to rewrite their entity links before rebuilding
// their own lookups.
func (et *EntityTable) Compact() []types.EntitySlot {
	used := len(et.ids)
	remap := make([]types.EntitySlot, used)
	for slot := range remap {
		if et.ids[slot] != types.NullEntityID {
			remap[slot] = types.EntitySlot(slot)
		} else {
			remap[slot] = types.NoSlot
		}
	}

	// A moved entity adopts the generation already current at its
	// destination slot, which Remove bumped when the slot was freed. Handles
	// minted before the pass then fail resolution on slot range, ID, or
	// generation.
	live := et.Live()
	last := used - 1
	for slot := 0; slot < live; slot++ {
		if et.ids[slot] != types.NullEntityID {
			continue
		}
		for last > slot && et.ids[last] == types.NullEntityID {
			last--
		}
		et.ids[slot], et.ids[last] = et.ids[last], types.NullEntityID
		remap[last] = types.EntitySlot(slot)
	}

	et.ids = et.ids[:live]
	et.generations = et.generations[:live]
	et.freeList = et.freeList[:0]
	for slot, id := range et.ids {
		et.idToSlot[id] = types.EntitySlot(slot)
	}
	return remap
}
