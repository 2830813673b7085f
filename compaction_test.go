package strata_test

import (
	"testing"

	"github.com/strata-engine/strata"
	"github.com/strata-engine/strata/assert"
	"github.com/strata-engine/strata/schema"
	"github.com/strata-engine/strata/storage"
)

func TestPackedValuesSurviveCompaction(t *testing.T) {
	world := newTestWorld(t)
	intValue := registerComponent(t, world, "IntValue", schema.Column[int64]("v", 1))

	e1 := world.AddEntity()
	_, err := world.AddComponent(intValue, e1)
	assert.NilError(t, err)
	assert.NilError(t, strata.SetValue[int64](world, intValue, e1, "v", 5))

	batch := world.AddEntities(10_000)
	for i, ref := range batch {
		_, err := world.AddComponent(intValue, ref)
		assert.NilError(t, err)
		assert.NilError(t, strata.SetValue[int64](world, intValue, ref, "v", int64(i)))
	}

	// Remove every other entity; overwrite the survivors so the check below
	// sees the last write, not the first.
	want := map[strata.EntityID]int64{e1.ID: 5}
	for i, ref := range batch {
		if i%2 == 1 {
			assert.NilError(t, world.RemoveEntity(ref))
			continue
		}
		assert.NilError(t, strata.SetValue[int64](world, intValue, ref, "v", int64(i)*7+2))
		want[ref.ID] = int64(i)*7 + 2
	}

	stats := world.Compact()
	assert.Equal(t, stats.EntitiesReclaimed, 5000)
	assert.Equal(t, world.EntityCount(), 5001)

	arr, err := strata.ColumnOf[int64](world, intValue, "v")
	assert.NilError(t, err)
	seen := 0
	for c := world.Iterate(intValue); c.Next(); {
		seen++
		wantVal, ok := want[c.Entity().ID]
		assert.Assert(t, ok)
		assert.Equal(t, arr.Get(c.Slot(), 0), wantVal)
	}
	assert.Equal(t, seen, 5001)

	// The first entity never left slot 0, so its handle rides through the
	// pass.
	got, err := strata.Value[int64](world, intValue, e1, "v")
	assert.NilError(t, err)
	assert.Equal(t, got, int64(5))
}

func TestDecoratedColumnStaysAligned(t *testing.T) {
	world := newTestWorld(t)
	position := registerComponent(t, world, "Position",
		schema.Column[float64]("coords", 3, schema.DefaultRow(1.0, 2.0, 3.0)))

	refs := world.AddEntities(100)
	for i, ref := range refs {
		_, err := world.AddComponent(position, ref)
		assert.NilError(t, err)
		assert.NilError(t, strata.SetValue[float64](world, position, ref, "coords", float64(i)))
	}

	// Decorating after the instances exist backfills every row with the
	// default.
	d, err := world.Decorate(position, schema.Column[float64]("velocity", 1, schema.Default(0.5)))
	assert.NilError(t, err)
	for _, ref := range refs {
		got, err := strata.Value[float64](world, position, ref, "velocity")
		assert.NilError(t, err)
		assert.Equal(t, got, 0.5)
	}

	// So does an instance created after the decoration.
	extra := world.AddEntity()
	_, err = world.AddComponent(position, extra)
	assert.NilError(t, err)
	got, err := strata.Value[float64](world, position, extra, "velocity")
	assert.NilError(t, err)
	assert.Equal(t, got, 0.5)
	assert.NilError(t, strata.SetValue[float64](world, position, extra, "coords", -1))

	// Pair velocity with coords so alignment is checkable after the swaps.
	for i, ref := range refs {
		assert.NilError(t, strata.SetValue[float64](world, position, ref, "velocity", float64(i)+0.25))
	}
	for i, ref := range refs {
		if i%2 == 0 {
			assert.NilError(t, world.RemoveEntity(ref))
		}
	}
	world.Compact()

	coords, err := strata.ColumnOf[float64](world, position, "coords")
	assert.NilError(t, err)
	vel, err := strata.ColumnOf[float64](world, position, "velocity")
	assert.NilError(t, err)
	seen := 0
	for c := world.Iterate(position); c.Next(); {
		seen++
		x := coords.Get(c.Slot(), 0)
		v := vel.Get(c.Slot(), 0)
		if x == -1 {
			assert.Equal(t, v, 0.5)
			continue
		}
		assert.Equal(t, v, x+0.25)
	}
	assert.Equal(t, seen, 51)

	// Releasing the decoration takes the column out of reach.
	world.Undecorate(d)
	_, err = strata.ColumnOf[float64](world, position, "velocity")
	assert.ErrorIs(t, err, storage.ErrColumnNotFound)
}

func TestCompactionStalesMovedHandles(t *testing.T) {
	world := newTestWorld(t)
	refs := world.AddEntities(4)
	assert.NilError(t, world.RemoveEntity(refs[1]))
	world.Compact()

	// The tail entity was swapped into the hole, so its old handle is dead.
	assert.ErrorIs(t, world.Resolve(refs[3]), strata.ErrStaleHandle)
	assert.Assert(t, !world.IsLive(refs[3]))

	// Entities that kept their slots resolve as before.
	assert.NilError(t, world.Resolve(refs[0]))
	assert.NilError(t, world.Resolve(refs[2]))

	// The moved entity is still live under a fresh handle at the old hole.
	var fresh strata.EntityRef
	found := false
	for c := world.IterateEntities(); c.Next(); {
		if c.Ref().ID == refs[3].ID {
			fresh = c.Ref()
			found = true
		}
	}
	assert.Assert(t, found)
	assert.NilError(t, world.Resolve(fresh))
	assert.Equal(t, fresh.Slot, refs[1].Slot)
	assert.Assert(t, fresh != refs[3])
}

func TestCompactionStatsAndCounter(t *testing.T) {
	world := newTestWorld(t)
	stat := registerComponent(t, world, "Stat", schema.Column[int64]("value", 1))
	refs := world.AddEntities(6)
	for _, ref := range refs {
		_, err := world.AddComponent(stat, ref)
		assert.NilError(t, err)
	}
	v1, err := world.ComponentVersion(stat, refs[0])
	assert.NilError(t, err)

	assert.NilError(t, world.RemoveEntity(refs[2]))
	assert.NilError(t, world.RemoveEntity(refs[5]))

	stats := world.Compact()
	assert.Equal(t, stats.EntitiesReclaimed, 2)
	assert.Equal(t, stats.SlotsReclaimed, 2)
	assert.Equal(t, stats.Tables, 1)

	// A second pass finds nothing left to reclaim.
	stats = world.Compact()
	assert.Equal(t, stats.EntitiesReclaimed, 0)
	assert.Equal(t, stats.SlotsReclaimed, 0)
	assert.Equal(t, world.Compactions(), uint64(2))

	// Versions keep climbing across passes rather than restarting.
	v2, err := world.TouchComponent(stat, refs[0])
	assert.NilError(t, err)
	assert.Assert(t, v2 > v1)
}
