package search

import (
	"github.com/strata-engine/strata/filter"
	"github.com/strata-engine/strata/storage"
	"github.com/strata-engine/strata/types"
)

// Join iterates all entities holding every one of the joined component
// types. The table with the fewest live instances drives the iteration and
// the others are probed by entity, so a join visits min(live) rows and each
// probe is a constant-time lookup.
//
// Like Cursor, a join is a flyweight over its current row. Unlike Cursor,
// removal through a join is refused: the join reads several tables per row,
// and a removal in one could invalidate rows the join has yet to visit in
// another.
type Join struct {
	store   Store
	ids     []types.ComponentID
	tables  []*storage.Table
	slots   []types.ComponentSlot
	primary int
	slot    types.ComponentSlot
	entity  types.EntitySlot
	bound   bool
	empty   bool
}

// NewJoin creates a join over entities holding all the component types.
func NewJoin(store Store, components ...filter.Component) *Join {
	j := &Join{
		store:  store,
		ids:    make([]types.ComponentID, 0, len(components)),
		slot:   types.NoSlot,
		entity: types.NoSlot,
	}
	for _, c := range components {
		j.ids = append(j.ids, c.ID())
	}
	return j
}

// bind resolves tables on the first advance. A joined type with no table has
// no instances, so the join is empty. An empty id list is empty too rather
// than every entity; matching all entities is a search, not a join.
func (j *Join) bind() {
	j.bound = true
	if len(j.ids) == 0 {
		j.empty = true
		return
	}
	j.tables = make([]*storage.Table, len(j.ids))
	j.slots = make([]types.ComponentSlot, len(j.ids))
	for i, id := range j.ids {
		t, ok := j.store.TableOf(id)
		if !ok {
			j.empty = true
			return
		}
		j.tables[i] = t
		if t.Live() < j.tables[j.primary].Live() {
			j.primary = i
		}
	}
}

// Next advances to the next entity holding every joined type.
func (j *Join) Next() bool {
	if !j.bound {
		j.bind()
	}
	if j.empty {
		return false
	}
	primary := j.tables[j.primary]
	for next := j.slot + 1; int(next) < primary.Used(); next++ {
		if !primary.IsLive(next) {
			continue
		}
		e := primary.EntityAt(next)
		if j.probe(e, next) {
			j.slot = next
			j.entity = e
			return true
		}
	}
	j.slot = types.ComponentSlot(primary.Used())
	j.entity = types.NoSlot
	return false
}

func (j *Join) probe(e types.EntitySlot, primarySlot types.ComponentSlot) bool {
	for i, t := range j.tables {
		if i == j.primary {
			j.slots[i] = primarySlot
			continue
		}
		slot := t.SlotOf(e)
		if slot == types.NoSlot {
			return false
		}
		j.slots[i] = slot
	}
	return true
}

// Entity mints a handle for the current row's entity.
func (j *Join) Entity() types.EntityRef {
	if j.entity == types.NoSlot {
		return types.BadEntityRef
	}
	return j.store.Entities().RefAt(j.entity)
}

// SlotOf returns the current row's slot in the given joined type's table, or
// NoSlot for a type that is not part of the join.
func (j *Join) SlotOf(component filter.Component) types.ComponentSlot {
	if j.entity == types.NoSlot {
		return types.NoSlot
	}
	id := component.ID()
	for i, joined := range j.ids {
		if joined == id {
			return j.slots[i]
		}
	}
	return types.NoSlot
}

// TableOf returns the given joined type's table, or nil for a type that is
// not part of the join.
func (j *Join) TableOf(component filter.Component) *storage.Table {
	if !j.bound || j.empty {
		return nil
	}
	id := component.ID()
	for i, joined := range j.ids {
		if joined == id {
			return j.tables[i]
		}
	}
	return nil
}

// Remove always refuses with ErrRemoveDuringJoin.
func (j *Join) Remove() error {
	return ErrRemoveDuringJoin
}
