package storage_test

import (
	"testing"

	"github.com/strata-engine/strata/assert"
	"github.com/strata-engine/strata/storage"
	"github.com/strata-engine/strata/types"
)

// intSpec builds a single-column spec directly, without going through the
// schema package, so table behavior is tested against the storage contract
// alone.
func intSpec(name string, elements int, defaults []int64) storage.ColumnSpec {
	return storage.ColumnSpec{
		Name:     name,
		Elements: elements,
		New: func(slots int) storage.Column {
			return storage.NewArray[int64](name, elements, slots, defaults, false)
		},
	}
}

func newStatTable(t *testing.T, capacity int) (*storage.Table, *storage.Array[int64]) {
	t.Helper()
	table := storage.NewTable(1, "Stat", []storage.ColumnSpec{intSpec("value", 1, []int64{7})}, capacity)
	col, err := table.Column("value")
	assert.NilError(t, err)
	arr, err := storage.ArrayOf[int64](col)
	assert.NilError(t, err)
	return table, arr
}

func identityRemap(entities int) []types.EntitySlot {
	remap := make([]types.EntitySlot, entities)
	for i := range remap {
		remap[i] = types.EntitySlot(i)
	}
	return remap
}

func TestTableAddIsGetOrCreate(t *testing.T) {
	table, arr := newStatTable(t, 4)

	slot, created := table.Add(0)
	assert.Assert(t, created)
	assert.Equal(t, arr.Get(slot, 0), int64(7))
	version := table.Version(slot)

	arr.Set(slot, 0, 42)

	// Adding again finds the existing instance and leaves its value and
	// version alone.
	again, created := table.Add(0)
	assert.Assert(t, !created)
	assert.Equal(t, again, slot)
	assert.Equal(t, arr.Get(slot, 0), int64(42))
	assert.Equal(t, table.Version(slot), version)
	assert.Equal(t, table.Live(), 1)
}

func TestTableRemoveIsIdempotentAndDeferred(t *testing.T) {
	table, _ := newStatTable(t, 4)

	assert.Assert(t, !table.Remove(0))

	slot, _ := table.Add(0)
	assert.Assert(t, table.Remove(0))
	assert.Equal(t, table.Used(), 1)
	assert.Equal(t, table.Live(), 0)
	assert.Equal(t, table.Free(), 1)
	assert.Assert(t, !table.IsLive(slot))
	assert.Equal(t, table.Version(slot), types.FreedVersion)
	assert.ErrorIs(t, table.CheckLive(slot), storage.ErrInvalidComponentReference)

	assert.Assert(t, !table.Remove(0))
	assert.Equal(t, table.Free(), 1)
}

func TestTableReusesFreedSlotsAndRestampsDefaults(t *testing.T) {
	table, arr := newStatTable(t, 2)

	slot, _ := table.Add(0)
	arr.Set(slot, 0, 42)
	assert.Assert(t, table.Remove(0))

	// The freed slot is reused for the next instance, and the reused slot
	// starts from the declared default, not from the stale 42.
	reused, created := table.Add(1)
	assert.Assert(t, created)
	assert.Equal(t, reused, slot)
	assert.Equal(t, arr.Get(reused, 0), int64(7))
	assert.Equal(t, table.Cap(), 2)
}

func TestTableGrowthDoubles(t *testing.T) {
	table, arr := newStatTable(t, 2)

	for e := 0; e < 3; e++ {
		slot, created := table.Add(types.EntitySlot(e))
		assert.Assert(t, created)
		arr.Set(slot, 0, int64(e)*10)
	}
	assert.Equal(t, table.Cap(), 4)

	for e := 3; e < 5; e++ {
		slot, _ := table.Add(types.EntitySlot(e))
		arr.Set(slot, 0, int64(e)*10)
	}
	assert.Equal(t, table.Cap(), 8)

	// Values written before the growth are still in place.
	for e := 0; e < 5; e++ {
		slot := table.SlotOf(types.EntitySlot(e))
		assert.Equal(t, arr.Get(slot, 0), int64(e)*10)
	}
}

func TestTableVersionsNeverRepeat(t *testing.T) {
	table, _ := newStatTable(t, 4)

	var issued []types.Version
	slot, _ := table.Add(0)
	issued = append(issued, table.Version(slot))

	v, err := table.Touch(slot)
	assert.NilError(t, err)
	issued = append(issued, v)

	other, _ := table.Add(1)
	issued = append(issued, table.Version(other))

	// Remove and re-add: the replacement instance gets a later version even
	// though it reuses the same slot.
	assert.Assert(t, table.Remove(0))
	reborn, _ := table.Add(0)
	assert.Equal(t, reborn, slot)
	issued = append(issued, table.Version(reborn))

	for i := 1; i < len(issued); i++ {
		assert.Assert(t, issued[i] > issued[i-1], "version %d issued after %d", issued[i], issued[i-1])
	}
	assert.Equal(t, table.LatestVersion(), issued[len(issued)-1])

	// Touching a freed slot is refused.
	assert.Assert(t, table.Remove(1))
	_, err = table.Touch(table.SlotOf(1))
	assert.ErrorIs(t, err, storage.ErrInvalidComponentReference)
}

func TestTableCompactPacksLiveSlots(t *testing.T) {
	table, arr := newStatTable(t, 8)
	for e := 0; e < 6; e++ {
		slot, _ := table.Add(types.EntitySlot(e))
		arr.Set(slot, 0, int64(e)*10)
	}
	assert.Assert(t, table.Remove(1))
	assert.Assert(t, table.Remove(4))

	table.Compact(identityRemap(6), 6)

	assert.Equal(t, table.Used(), 4)
	assert.Equal(t, table.Live(), 4)
	assert.Equal(t, table.Free(), 0)
	for _, e := range []types.EntitySlot{0, 2, 3, 5} {
		slot := table.SlotOf(e)
		assert.Assert(t, slot != types.NoSlot)
		assert.Equal(t, arr.Get(slot, 0), int64(e)*10)
		assert.Equal(t, table.EntityAt(slot), e)
	}
	for _, e := range []types.EntitySlot{1, 4} {
		assert.Assert(t, !table.Contains(e))
	}
}

func TestTableCompactRewritesEntityLinks(t *testing.T) {
	et := storage.NewEntityTable(4)
	a := et.Add()
	b := et.Add()
	c := et.Add()

	table, arr := newStatTable(t, 4)
	slotA, _ := table.Add(a.Slot)
	arr.Set(slotA, 0, 100)
	slotC, _ := table.Add(c.Slot)
	arr.Set(slotC, 0, 300)

	// Removing entity b moves c down into its slot during compaction; the
	// table must follow c to its new home.
	assert.Assert(t, et.Remove(b.Slot))
	remap := et.Compact()
	table.Compact(remap, et.Used())

	newC, ok := et.SlotOfID(c.ID)
	assert.Assert(t, ok)
	assert.Equal(t, newC, types.EntitySlot(1))
	assert.Assert(t, table.Contains(newC))
	assert.Equal(t, arr.Get(table.SlotOf(newC), 0), int64(300))
	assert.Equal(t, arr.Get(table.SlotOf(a.Slot), 0), int64(100))
}

func TestTableCompactPanicsOnDanglingEntityLink(t *testing.T) {
	table, _ := newStatTable(t, 2)
	table.Add(0)

	// The remap claims entity 0 is gone while its instance is still live,
	// which can only happen if removal skipped the component pass.
	assert.Panics(t, func() {
		table.Compact([]types.EntitySlot{types.NoSlot}, 0)
	})
}

func TestTableDecorationAlignsWithExistingRows(t *testing.T) {
	table, arr := newStatTable(t, 2)
	for e := 0; e < 3; e++ {
		slot, _ := table.Add(types.EntitySlot(e))
		arr.Set(slot, 0, int64(e)*10)
	}

	d, err := table.Decorate(intSpec("extra", 1, []int64{5}))
	assert.NilError(t, err)
	assert.Equal(t, table.Decorations(), 1)

	col, err := table.Column("extra")
	assert.NilError(t, err)
	extra, err := storage.ArrayOf[int64](col)
	assert.NilError(t, err)

	// Every slot that was live before the decoration reads the declared
	// default, and instances added afterwards are stamped too.
	for e := 0; e < 3; e++ {
		assert.Equal(t, extra.Get(table.SlotOf(types.EntitySlot(e)), 0), int64(5))
	}
	slot, _ := table.Add(3)
	assert.Equal(t, extra.Get(slot, 0), int64(5))
	assert.Equal(t, arr.Get(slot, 0), int64(7))

	// Pair each row's columns, punch a hole, compact, and check the pairing
	// survived the swap pass.
	for e := 0; e < 4; e++ {
		s := table.SlotOf(types.EntitySlot(e))
		extra.Set(s, 0, arr.Get(s, 0)+1)
	}
	assert.Assert(t, table.Remove(1))
	table.Compact(identityRemap(4), 4)

	for _, e := range []types.EntitySlot{0, 2, 3} {
		s := table.SlotOf(e)
		assert.Equal(t, extra.Get(s, 0), arr.Get(s, 0)+1)
	}

	d.Release()
	table.Compact(identityRemap(4), 4)
	assert.Equal(t, table.Decorations(), 0)
}

func TestTableDecorateRejectsCollisionsAndBadSpecs(t *testing.T) {
	table, _ := newStatTable(t, 2)

	_, err := table.Decorate(intSpec("value", 1, []int64{0}))
	assert.ErrorContains(t, err, "already exists")

	bad := intSpec("extra", 1, []int64{0})
	bad.Err = storage.ErrColumnType
	_, err = table.Decorate(bad)
	assert.ErrorIs(t, err, storage.ErrColumnType)
}

func TestTableReleasedDecorationIsInert(t *testing.T) {
	table, _ := newStatTable(t, 2)
	table.Add(0)

	d, err := table.Decorate(intSpec("extra", 1, []int64{5}))
	assert.NilError(t, err)

	d.Release()
	assert.Assert(t, d.Released())
	assert.Equal(t, table.Decorations(), 0)
	_, err = table.Column("extra")
	assert.ErrorIs(t, err, storage.ErrColumnNotFound)

	// Releasing is lazy: the column is invisible at once, and the name is
	// free for a new decoration before any compaction prunes the old one.
	redo, err := table.Decorate(intSpec("extra", 1, []int64{9}))
	assert.NilError(t, err)
	assert.Equal(t, table.Decorations(), 1)

	// Release is idempotent and growth skips released columns.
	d.Release()
	table.Add(1)
	table.Add(2)

	table.Compact(identityRemap(3), 3)
	assert.Equal(t, table.Decorations(), 1)
	assert.Assert(t, !redo.Released())
}

func TestTableUndecorateIgnoresForeignHandles(t *testing.T) {
	table, _ := newStatTable(t, 2)
	other := storage.NewTable(2, "Other", []storage.ColumnSpec{intSpec("value", 1, []int64{0})}, 2)

	d, err := table.Decorate(intSpec("extra", 1, []int64{5}))
	assert.NilError(t, err)

	// A handle minted by one table must not detach anything from another.
	other.Undecorate(d)
	assert.Assert(t, !d.Released())
	assert.Equal(t, table.Decorations(), 1)

	table.Undecorate(d)
	assert.Assert(t, d.Released())
	assert.Equal(t, table.Decorations(), 0)
	_, err = table.Column("extra")
	assert.ErrorIs(t, err, storage.ErrColumnNotFound)

	// Repeated and nil releases are tolerated.
	table.Undecorate(d)
	table.Undecorate(nil)
}
