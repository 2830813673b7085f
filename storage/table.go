package storage

import (
	"github.com/rotisserie/eris"

	"github.com/strata-engine/strata/types"
)

// Table is the packed store for every instance of one component type. All
// declared columns and any runtime decorations share a single slot index:
// the instance at slot s owns row s of every column. Liveness, entity links,
// versions, and the free list are tracked here, never in the columns.
//
// Removal only parks a slot on the free list. Slots are reclaimed in bulk by
// Compact, which the world runs for all tables in the same pass so that
// entity links can be rewritten against one entity remap.
type Table struct {
	id   types.ComponentID
	name string

	columns     []Column
	decorations []*Decoration

	// entityForSlot and versions are indexed by component slot and share
	// their length; slotForEntity is indexed by entity slot.
	entityForSlot []types.EntitySlot
	slotForEntity []types.ComponentSlot
	versions      []types.Version
	freeList      []types.ComponentSlot

	nextVersion types.Version
	cap         int
}

// NewTable builds an empty table from the declared column specs with storage
// for the given number of instances. Specs are assumed validated; declaration
// problems are caught when the component's definition is registered.
func NewTable(id types.ComponentID, name string, specs []ColumnSpec, slotCapacity int) *Table {
	if slotCapacity < 1 {
		slotCapacity = 1
	}
	t := &Table{
		id:   id,
		name: name,
		cap:  slotCapacity,
	}
	t.columns = make([]Column, 0, len(specs))
	for _, spec := range specs {
		t.columns = append(t.columns, spec.New(slotCapacity))
	}
	t.versions = make([]types.Version, 0, slotCapacity)
	t.entityForSlot = make([]types.EntitySlot, 0, slotCapacity)
	return t
}

func (t *Table) ID() types.ComponentID { return t.id }
func (t *Table) Name() string          { return t.name }

// Used returns the number of slots in use, live or awaiting reclamation.
func (t *Table) Used() int { return len(t.versions) }

// Live returns the number of live component instances.
func (t *Table) Live() int { return len(t.versions) - len(t.freeList) }

// Free returns the number of removed slots awaiting the next compaction.
func (t *Table) Free() int { return len(t.freeList) }

// Cap returns the number of slots the table's columns have storage for.
func (t *Table) Cap() int { return t.cap }

// LatestVersion returns the most recently issued version for this type.
func (t *Table) LatestVersion() types.Version { return t.nextVersion }

// Add attaches this component type to the entity and reports whether a new
// instance was created. If the entity already has the component, its existing
// slot is returned untouched, so Add doubles as get-or-create. New instances
// reuse free slots before growing, and every column of the slot, decorations
// included, is reset to its declared default.
func (t *Table) Add(e types.EntitySlot) (types.ComponentSlot, bool) {
	t.ensureEntity(e)
	if existing := t.slotForEntity[e]; existing != types.NoSlot {
		return existing, false
	}

	var slot types.ComponentSlot
	if n := len(t.freeList); n > 0 {
		slot = t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
	} else {
		slot = types.ComponentSlot(len(t.versions))
		if int(slot) == t.cap {
			t.grow(t.cap * 2)
		}
		t.versions = append(t.versions, types.FreedVersion)
		t.entityForSlot = append(t.entityForSlot, types.NoSlot)
	}

	for _, c := range t.columns {
		c.ApplyDefault(slot)
	}
	for _, d := range t.decorations {
		if !d.released {
			d.column.ApplyDefault(slot)
		}
	}

	t.entityForSlot[slot] = e
	t.slotForEntity[e] = slot
	t.nextVersion++
	t.versions[slot] = t.nextVersion
	return slot, true
}

// Remove detaches this component type from the entity. The slot is marked
// dead and parked on the free list; its storage is reclaimed by the next
// compaction pass. Removing an entity that does not have the component is a
// no-op and reports false.
func (t *Table) Remove(e types.EntitySlot) bool {
	if e < 0 || int(e) >= len(t.slotForEntity) {
		return false
	}
	slot := t.slotForEntity[e]
	if slot == types.NoSlot {
		return false
	}
	t.slotForEntity[e] = types.NoSlot
	t.entityForSlot[slot] = types.NoSlot
	t.versions[slot] = types.FreedVersion
	t.freeList = append(t.freeList, slot)
	return true
}

// Contains reports whether the entity currently has this component type.
func (t *Table) Contains(e types.EntitySlot) bool {
	return e >= 0 && int(e) < len(t.slotForEntity) && t.slotForEntity[e] != types.NoSlot
}

// SlotOf returns the component slot attached to the entity, or NoSlot.
func (t *Table) SlotOf(e types.EntitySlot) types.ComponentSlot {
	if e < 0 || int(e) >= len(t.slotForEntity) {
		return types.NoSlot
	}
	return t.slotForEntity[e]
}

// EntityAt returns the entity a live slot is attached to, or NoSlot.
func (t *Table) EntityAt(slot types.ComponentSlot) types.EntitySlot {
	if !t.IsLive(slot) {
		return types.NoSlot
	}
	return t.entityForSlot[slot]
}

// IsLive reports whether the slot holds a live component instance.
func (t *Table) IsLive(slot types.ComponentSlot) bool {
	return slot >= 0 && int(slot) < len(t.versions) && t.versions[slot] != types.FreedVersion
}

// CheckLive returns ErrInvalidComponentReference unless the slot is live.
// Accessors call this before reading or writing property values.
func (t *Table) CheckLive(slot types.ComponentSlot) error {
	if !t.IsLive(slot) {
		return eris.Wrapf(ErrInvalidComponentReference, "%s: slot %d is not live", t.name, slot)
	}
	return nil
}

// Version returns the slot's current version, or FreedVersion if the slot
// does not hold a live instance.
func (t *Table) Version(slot types.ComponentSlot) types.Version {
	if !t.IsLive(slot) {
		return types.FreedVersion
	}
	return t.versions[slot]
}

// Touch records a value write to the slot by issuing it a fresh version.
// Versions come from a single per-type counter, so a slot's version strictly
// increases and is never repeated, even across slot reuse.
func (t *Table) Touch(slot types.ComponentSlot) (types.Version, error) {
	if err := t.CheckLive(slot); err != nil {
		return types.FreedVersion, err
	}
	t.nextVersion++
	t.versions[slot] = t.nextVersion
	return t.nextVersion, nil
}

// Column returns the named column, declared or decorated.
func (t *Table) Column(name string) (Column, error) {
	for _, c := range t.columns {
		if c.Name() == name {
			return c, nil
		}
	}
	for _, d := range t.decorations {
		if !d.released && d.column.Name() == name {
			return d.column, nil
		}
	}
	return nil, eris.Wrapf(ErrColumnNotFound, "%s: no column %q", t.name, name)
}

// Decorate adds a runtime column to the table. The new column is sized to
// the table's current capacity and every live slot is stamped with its
// declared default, so decorated and declared columns stay aligned on the
// same slot index from the moment the decoration exists. The caller owns the
// returned handle and releases it when done with the column.
func (t *Table) Decorate(spec ColumnSpec) (*Decoration, error) {
	if spec.Err != nil {
		return nil, eris.Wrapf(spec.Err, "%s: decoration %q", t.name, spec.Name)
	}
	if _, err := t.Column(spec.Name); err == nil {
		return nil, eris.Errorf("%s: column %q already exists", t.name, spec.Name)
	}
	col := spec.New(t.cap)
	used := len(t.versions)
	for slot := 0; slot < used; slot++ {
		if t.versions[slot] != types.FreedVersion {
			col.ApplyDefault(types.ComponentSlot(slot))
		}
	}
	d := &Decoration{table: t, column: col}
	t.decorations = append(t.decorations, d)
	return d, nil
}

// Undecorate detaches a decoration immediately instead of waiting for the
// next compaction to prune it. Unknown, already released, and nil handles are
// ignored.
func (t *Table) Undecorate(d *Decoration) {
	if d == nil || d.table != t {
		return
	}
	d.released = true
	for i, held := range t.decorations {
		if held == d {
			t.decorations = append(t.decorations[:i], t.decorations[i+1:]...)
			return
		}
	}
}

// Decorations returns the number of attached, unreleased decorations.
func (t *Table) Decorations() int {
	n := 0
	for _, d := range t.decorations {
		if !d.released {
			n++
		}
	}
	return n
}

// Compact reclaims all free slots. The remap is the entity remap produced by
// the entity table's own compaction in the same pass: every live slot's
// entity link is rewritten through it, then dead slots are filled by swapping
// live instances down from the tail, bookkeeping is truncated to the live
// count, and the entity lookup is rebuilt at the new entity count. Columns
// that registered interest in compaction are notified once, after all swaps
// for the pass are done.
//
// Handles and cached slots taken before the pass are invalid afterwards; the
// world mints fresh ones on resolution.
func (t *Table) Compact(remap []types.EntitySlot, entityCount int) {
	t.pruneDecorations()

	used := len(t.versions)
	for slot := 0; slot < used; slot++ {
		if t.versions[slot] == types.FreedVersion {
			continue
		}
		e := t.entityForSlot[slot]
		ne := remap[e]
		if ne == types.NoSlot {
			// The world removes an entity's components before freeing the
			// entity, so a live instance linked to a dead entity means the
			// store is corrupted.
			panic(eris.Errorf("table %q: live slot %d linked to removed entity slot %d", t.name, slot, e))
		}
		t.entityForSlot[slot] = ne
	}

	live := used - len(t.freeList)
	last := used - 1
	for slot := 0; slot < live; slot++ {
		if t.versions[slot] != types.FreedVersion {
			continue
		}
		for last > slot && t.versions[last] == types.FreedVersion {
			last--
		}
		t.swapSlots(types.ComponentSlot(slot), types.ComponentSlot(last))
	}

	t.versions = t.versions[:live]
	t.entityForSlot = t.entityForSlot[:live]
	t.freeList = t.freeList[:0]

	if entityCount < 0 {
		entityCount = 0
	}
	t.slotForEntity = make([]types.ComponentSlot, entityCount)
	for i := range t.slotForEntity {
		t.slotForEntity[i] = types.NoSlot
	}
	for slot := 0; slot < live; slot++ {
		t.slotForEntity[t.entityForSlot[slot]] = types.ComponentSlot(slot)
	}

	for _, c := range t.columns {
		if l, ok := c.(CompactionListener); ok {
			l.OnCompacted()
		}
	}
	for _, d := range t.decorations {
		if l, ok := d.column.(CompactionListener); ok {
			l.OnCompacted()
		}
	}
}

func (t *Table) swapSlots(a, b types.ComponentSlot) {
	for _, c := range t.columns {
		c.Swap(a, b)
	}
	for _, d := range t.decorations {
		d.column.Swap(a, b)
	}
	t.versions[a], t.versions[b] = t.versions[b], t.versions[a]
	t.entityForSlot[a], t.entityForSlot[b] = t.entityForSlot[b], t.entityForSlot[a]
}

func (t *Table) pruneDecorations() {
	kept := t.decorations[:0]
	for _, d := range t.decorations {
		if !d.released {
			kept = append(kept, d)
		}
	}
	t.decorations = kept
}

func (t *Table) grow(slots int) {
	if slots < 1 {
		slots = 1
	}
	for _, c := range t.columns {
		c.Resize(slots)
	}
	for _, d := range t.decorations {
		if !d.released {
			d.column.Resize(slots)
		}
	}
	t.cap = slots
}

func (t *Table) ensureEntity(e types.EntitySlot) {
	for int(e) >= len(t.slotForEntity) {
		t.slotForEntity = append(t.slotForEntity, types.NoSlot)
	}
}
