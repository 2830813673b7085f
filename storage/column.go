package storage

import (
	"github.com/rotisserie/eris"

	"github.com/strata-engine/strata/codec"
	"github.com/strata-engine/strata/types"
)

// Column is a single packed property column. A column stores a fixed number of
// elements per slot and is always indexed by the component slots of the table
// that owns it. Columns never track liveness themselves; the owning table
// decides which slots are live and drives Resize, Swap, and ApplyDefault so
// that every column of the table stays aligned on the same slot index.
type Column interface {
	// Name returns the property name the column was declared under.
	Name() string

	// Elements returns the number of elements stored per slot.
	Elements() int

	// Cap returns the number of slots the column currently has storage for.
	Cap() int

	// Resize grows the column to hold at least the given number of slots.
	// Shrinking is not supported; calls with a smaller slot count are no-ops.
	Resize(slots int)

	// Swap exchanges the full element rows of two slots.
	Swap(x, y types.ComponentSlot)

	// ApplyDefault overwrites every element of the slot with the declared
	// default value.
	ApplyDefault(slot types.ComponentSlot)
}

// CompactionListener is implemented by columns that maintain internal state
// tied to slot positions, such as lookaside caches or sub-indexes. The owning
// table notifies listeners once per compaction pass, after all swaps for the
// pass have completed.
type CompactionListener interface {
	OnCompacted()
}

// ColumnSpec is one member of a component definition: a named property column
// together with the factory that builds its backing store. Specs are built by
// the schema package, which also fills Descriptor with the canonical encoding
// of the column's element type and default value so that re-registrations can
// be compared structurally.
type ColumnSpec struct {
	Name       string
	Elements   int
	Descriptor []byte
	New        func(slots int) Column

	// Err carries a deferred declaration error, such as an unencodable
	// default value. It is surfaced when the spec is assembled into a
	// definition.
	Err error
}

// Array is the packed backing store used by declared and decorated columns.
// All slots hold Elements values of T laid out contiguously, so a slot's row
// is the subslice data[slot*Elements : (slot+1)*Elements].
type Array[T any] struct {
	name     string
	elements int
	slots    int
	data     []T
	defaults []T
	deep     bool
}

var _ Column = &Array[int]{}

// NewArray builds a packed column with the given per-slot default row. The
// default row must hold exactly one value per element; it is stamped into a
// slot whenever the owning table claims that slot for a new component
// instance. When deep is set, defaults are cloned through the codec on every
// stamp so that rows never share slices, maps, or pointers with the declared
// default.
func NewArray[T any](name string, elements, slots int, defaults []T, deep bool) *Array[T] {
	a := &Array[T]{
		name:     name,
		elements: elements,
		defaults: defaults,
		deep:     deep,
	}
	a.Resize(slots)
	return a
}

func (a *Array[T]) Name() string  { return a.name }
func (a *Array[T]) Elements() int { return a.elements }
func (a *Array[T]) Cap() int      { return a.slots }

func (a *Array[T]) Resize(slots int) {
	if slots <= a.slots {
		return
	}
	grown := make([]T, slots*a.elements)
	copy(grown, a.data)
	a.data = grown
	a.slots = slots
}

func (a *Array[T]) Swap(x, y types.ComponentSlot) {
	if x == y {
		return
	}
	xBase, yBase := int(x)*a.elements, int(y)*a.elements
	for i := 0; i < a.elements; i++ {
		a.data[xBase+i], a.data[yBase+i] = a.data[yBase+i], a.data[xBase+i]
	}
}

func (a *Array[T]) ApplyDefault(slot types.ComponentSlot) {
	base := int(slot) * a.elements
	for i, dv := range a.defaults {
		if a.deep {
			clone, err := codec.DeepCopy(dv)
			if err != nil {
				// Defaults are round-trip encoded when the column is
				// declared, so a failure here is a corrupted store.
				panic(eris.Wrapf(err, "column %q: default value no longer clonable", a.name))
			}
			a.data[base+i] = clone
			continue
		}
		a.data[base+i] = dv
	}
}

// Get returns the element at the given offset of the slot's row.
func (a *Array[T]) Get(slot types.ComponentSlot, offset int) T {
	return a.data[int(slot)*a.elements+offset]
}

// Set overwrites the element at the given offset of the slot's row.
func (a *Array[T]) Set(slot types.ComponentSlot, offset int, value T) {
	a.data[int(slot)*a.elements+offset] = value
}

// Row returns the slot's full element row as a mutable view into the backing
// store. The view is invalidated by the next Resize or compaction pass and
// must not be retained across either.
func (a *Array[T]) Row(slot types.ComponentSlot) []T {
	base := int(slot) * a.elements
	return a.data[base : base+a.elements]
}

// ArrayOf narrows a Column back to its typed packed store. It fails with
// ErrColumnType when the column is backed by something other than an Array of
// the requested element type, such as a custom store installed through a raw
// column spec.
func ArrayOf[T any](c Column) (*Array[T], error) {
	a, ok := c.(*Array[T])
	if !ok {
		return nil, eris.Wrapf(ErrColumnType, "column %q", c.Name())
	}
	return a, nil
}
