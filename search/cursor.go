package search

import (
	"github.com/strata-engine/strata/filter"
	"github.com/strata-engine/strata/storage"
	"github.com/strata-engine/strata/types"
)

// Cursor iterates all live instances of one component type in slot order.
//
// The cursor itself is a flyweight: its accessors read whatever slot it is
// currently parked on, and advancing reuses the same cursor value. Callers
// that need to remember a row beyond the current position must take Ref,
// which snapshots stable identity, never the cursor.
//
// Removal through the cursor is allowed. Removed slots are only marked dead
// and parked on the free list, so the iteration keeps its footing; the slot
// is reclaimed by the next compaction pass, which must not run until the
// iteration is done.
type Cursor struct {
	store Store
	id    types.ComponentID
	table *storage.Table
	slot  types.ComponentSlot
}

// NewCursor creates a cursor over all live instances of the component type.
func NewCursor(store Store, component filter.Component) *Cursor {
	return &Cursor{store: store, id: component.ID(), slot: types.NoSlot}
}

// Next advances to the next live instance and reports whether one exists.
func (c *Cursor) Next() bool {
	if c.table == nil {
		t, ok := c.store.TableOf(c.id)
		if !ok {
			return false
		}
		c.table = t
	}
	for next := c.slot + 1; int(next) < c.table.Used(); next++ {
		if c.table.IsLive(next) {
			c.slot = next
			return true
		}
	}
	c.slot = types.ComponentSlot(c.table.Used())
	return false
}

// Slot returns the component slot the cursor is parked on.
func (c *Cursor) Slot() types.ComponentSlot { return c.slot }

// Table returns the table being iterated, or nil before the first advance
// onto a type that has no instances yet.
func (c *Cursor) Table() *storage.Table { return c.table }

// Entity mints a handle for the entity owning the current instance.
func (c *Cursor) Entity() types.EntityRef {
	if c.table == nil {
		return types.BadEntityRef
	}
	return c.store.Entities().RefAt(c.table.EntityAt(c.slot))
}

// Version returns the current instance's version, or FreedVersion when the
// cursor is not parked on a live row.
func (c *Cursor) Version() types.Version {
	if c.table == nil {
		return types.FreedVersion
	}
	return c.table.Version(c.slot)
}

// Ref snapshots the current instance's stable identity. Unlike the cursor,
// the returned ref stays pinned to this instance and turns stale with it.
func (c *Cursor) Ref() types.ComponentRef {
	return types.ComponentRef{Component: c.id, Entity: c.Entity()}
}

// Remove detaches the current instance from its entity, cascading to
// anything the instance owns. The slot is marked dead in place, so the
// iteration continues over the remaining rows.
func (c *Cursor) Remove() error {
	if c.table == nil {
		return nil
	}
	e := c.table.EntityAt(c.slot)
	if e == types.NoSlot {
		return nil
	}
	return c.store.RemoveComponentAt(c.id, e)
}
