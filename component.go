package strata

import (
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	worldlog "github.com/strata-engine/strata/log"
	"github.com/strata-engine/strata/schema"
	"github.com/strata-engine/strata/storage"
	"github.com/strata-engine/strata/types"
)

// tableFor returns the component type's table, creating it on first use.
func (w *World) tableFor(ct *schema.ComponentType) *storage.Table {
	if t, ok := w.tables[ct.ID()]; ok {
		return t
	}
	t := storage.NewTable(ct.ID(), ct.Name(), ct.Columns(), w.componentCapacity)
	w.tables[ct.ID()] = t
	w.tableList = append(w.tableList, t)
	w.logger.Debug().
		Int("component_id", int(ct.ID())).
		Str("component_name", ct.Name()).
		Msg("created component table")
	return t
}

// requirementClosure walks the requirement graph from ct and checks that
// every named type is registered. The walk is bounded by a visited set, so
// requirement cycles terminate; a cycle just means the members attach in one
// pass with no further recursion.
func (w *World) requirementClosure(ct *schema.ComponentType) error {
	visited := map[types.ComponentID]bool{ct.ID(): true}
	stack := []*schema.ComponentType{ct}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, name := range cur.Requires() {
			req, err := w.registry.ByName(name)
			if err != nil {
				return eris.Wrapf(err, "component %q requires %q", cur.Name(), name)
			}
			if visited[req.ID()] {
				continue
			}
			visited[req.ID()] = true
			stack = append(stack, req)
		}
	}
	return nil
}

// AddComponent attaches the component type to the entity and returns a
// stable reference to the instance. If the entity already has the component,
// the existing instance is referenced untouched, so AddComponent doubles as
// get-or-create.
//
// Creating an instance also attaches any component types it requires, each
// owned by the instance that required it, so removing the instance later
// takes its requirements with it. Requirements already present on the entity
// are left as they are, ownership included.
func (w *World) AddComponent(ct *schema.ComponentType, ref types.EntityRef) (types.ComponentRef, error) {
	badRef := types.ComponentRef{Component: types.NoComponent, Entity: types.BadEntityRef}
	if err := w.entities.Resolve(ref); err != nil {
		return badRef, err
	}
	if err := w.requirementClosure(ct); err != nil {
		return badRef, err
	}

	type attach struct {
		ct    *schema.ComponentType
		owner types.Ref
	}
	stack := []attach{{ct: ct}}
	visited := map[types.ComponentID]bool{ct.ID(): true}
	for len(stack) > 0 {
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		table := w.tableFor(next.ct)
		slot, created := table.Add(ref.Slot)
		if !created {
			continue
		}
		worldlog.ComponentChange(&w.logger, zerolog.DebugLevel, next.ct, ref, slot, table.Version(slot))
		if next.owner != (types.Ref{}) {
			w.setEdge(types.ComponentObject(next.ct.ID(), ref.ID), next.owner)
		}

		owner := types.ComponentObject(next.ct.ID(), ref.ID)
		for _, name := range next.ct.Requires() {
			req, err := w.registry.ByName(name)
			if err != nil {
				// The closure walk above vouched for every requirement.
				panic(eris.Wrapf(err, "requirement %q vanished mid-attach", name))
			}
			if visited[req.ID()] {
				continue
			}
			visited[req.ID()] = true
			stack = append(stack, attach{ct: req, owner: owner})
		}
	}
	return types.ComponentRef{Component: ct.ID(), Entity: ref}, nil
}

// RemoveComponent detaches the component type from the entity, cascading to
// anything the instance owns. Removing a component the entity does not have
// is a no-op; a stale entity handle fails with ErrStaleHandle.
func (w *World) RemoveComponent(ct *schema.ComponentType, ref types.EntityRef) error {
	if err := w.entities.Resolve(ref); err != nil {
		return err
	}
	t, ok := w.tables[ct.ID()]
	if !ok || !t.Contains(ref.Slot) {
		return nil
	}
	w.removeObject(types.ComponentObject(ct.ID(), ref.ID))
	return nil
}

// HasComponent reports whether the entity currently has the component type.
func (w *World) HasComponent(ct *schema.ComponentType, ref types.EntityRef) bool {
	if w.entities.Resolve(ref) != nil {
		return false
	}
	t, ok := w.tables[ct.ID()]
	return ok && t.Contains(ref.Slot)
}

// SlotOf returns the slot holding the entity's instance of the component
// type. The slot is only valid until the next compaction pass.
func (w *World) SlotOf(ct *schema.ComponentType, ref types.EntityRef) (types.ComponentSlot, error) {
	if err := w.entities.Resolve(ref); err != nil {
		return types.NoSlot, err
	}
	t, ok := w.tables[ct.ID()]
	if !ok {
		return types.NoSlot, eris.Wrapf(storage.ErrInvalidComponentReference,
			"entity %d has no %s", ref.ID, ct.Name())
	}
	slot := t.SlotOf(ref.Slot)
	if slot == types.NoSlot {
		return types.NoSlot, eris.Wrapf(storage.ErrInvalidComponentReference,
			"entity %d has no %s", ref.ID, ct.Name())
	}
	return slot, nil
}

// ResolveComponent verifies a stable component reference and returns the
// slot currently holding the instance.
func (w *World) ResolveComponent(ref types.ComponentRef) (types.ComponentSlot, error) {
	if err := w.entities.Resolve(ref.Entity); err != nil {
		return types.NoSlot, err
	}
	t, ok := w.tables[ref.Component]
	if !ok {
		return types.NoSlot, eris.Wrapf(storage.ErrInvalidComponentReference,
			"entity %d has no component %d", ref.Entity.ID, ref.Component)
	}
	slot := t.SlotOf(ref.Entity.Slot)
	if slot == types.NoSlot {
		return types.NoSlot, eris.Wrapf(storage.ErrInvalidComponentReference,
			"entity %d has no component %d", ref.Entity.ID, ref.Component)
	}
	return slot, nil
}

// ComponentVersion returns the version of the entity's instance of the
// component type.
func (w *World) ComponentVersion(ct *schema.ComponentType, ref types.EntityRef) (types.Version, error) {
	slot, err := w.SlotOf(ct, ref)
	if err != nil {
		return types.FreedVersion, err
	}
	return w.tables[ct.ID()].Version(slot), nil
}

// TouchComponent records a value write to the entity's instance of the
// component type and returns the fresh version.
func (w *World) TouchComponent(ct *schema.ComponentType, ref types.EntityRef) (types.Version, error) {
	slot, err := w.SlotOf(ct, ref)
	if err != nil {
		return types.FreedVersion, err
	}
	return w.tables[ct.ID()].Touch(slot)
}

// Decorate attaches a runtime column to the component type's table. The
// column must be declared with schema.Column or schema.RawColumn; the caller
// owns the returned handle and releases it on teardown.
func (w *World) Decorate(ct *schema.ComponentType, column schema.Part) (*storage.Decoration, error) {
	spec, err := schema.SpecOf(column)
	if err != nil {
		return nil, eris.Wrapf(err, "cannot decorate %s", ct.Name())
	}
	d, err := w.tableFor(ct).Decorate(spec)
	if err != nil {
		return nil, err
	}
	worldlog.Decoration(&w.logger, zerolog.DebugLevel, ct, spec.Name, true)
	return d, nil
}

// Undecorate detaches a decorated column immediately. Released and nil
// handles are tolerated.
func (w *World) Undecorate(d *storage.Decoration) {
	if d == nil {
		return
	}
	t := d.Table()
	worldlog.Decoration(&w.logger, zerolog.DebugLevel, t, d.Column().Name(), false)
	t.Undecorate(d)
}

// ColumnOf returns the typed packed store behind one of the component
// type's columns, declared or decorated. Accessor types capture these once
// and index them by slot.
func ColumnOf[T any](w *World, ct *schema.ComponentType, column string) (*storage.Array[T], error) {
	col, err := w.tableFor(ct).Column(column)
	if err != nil {
		return nil, err
	}
	return storage.ArrayOf[T](col)
}

// Value reads the first element of the named column for the entity's
// instance of the component type. For multi-element columns, resolve the
// slot and use the column's Row directly.
func Value[T any](w *World, ct *schema.ComponentType, ref types.EntityRef, column string) (T, error) {
	var zero T
	slot, err := w.SlotOf(ct, ref)
	if err != nil {
		return zero, err
	}
	arr, err := ColumnOf[T](w, ct, column)
	if err != nil {
		return zero, err
	}
	return arr.Get(slot, 0), nil
}

// SetValue writes the first element of the named column for the entity's
// instance of the component type and bumps the instance's version.
func SetValue[T any](w *World, ct *schema.ComponentType, ref types.EntityRef, column string, value T) error {
	slot, err := w.SlotOf(ct, ref)
	if err != nil {
		return err
	}
	arr, err := ColumnOf[T](w, ct, column)
	if err != nil {
		return err
	}
	arr.Set(slot, 0, value)
	_, err = w.tables[ct.ID()].Touch(slot)
	return err
}
