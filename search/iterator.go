package search

import (
	"github.com/strata-engine/strata/storage"
	"github.com/strata-engine/strata/types"
)

// EntityCursor iterates all live entities in slot order, regardless of the
// components they hold. Entities removed mid-iteration are marked dead in
// place and skipped; entities created mid-iteration at reused slots behind
// the cursor are not revisited.
type EntityCursor struct {
	entities *storage.EntityTable
	slot     types.EntitySlot
}

// NewEntityCursor creates a cursor over every live entity in the store.
func NewEntityCursor(store Store) *EntityCursor {
	return &EntityCursor{entities: store.Entities(), slot: types.NoSlot}
}

// Next advances to the next live entity and reports whether one exists.
func (c *EntityCursor) Next() bool {
	for next := c.slot + 1; int(next) < c.entities.Used(); next++ {
		if c.entities.IsLive(next) {
			c.slot = next
			return true
		}
	}
	c.slot = types.EntitySlot(c.entities.Used())
	return false
}

// Slot returns the entity slot the cursor is parked on.
func (c *EntityCursor) Slot() types.EntitySlot { return c.slot }

// Ref mints a handle for the current entity.
func (c *EntityCursor) Ref() types.EntityRef {
	return c.entities.RefAt(c.slot)
}
