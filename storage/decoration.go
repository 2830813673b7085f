package storage

// Decoration is the owning handle for a column added to a table at runtime.
// The decorated column participates in slot compaction exactly like the
// declared columns, but the table only holds it on the decorator's behalf:
// whoever attached it keeps the handle and calls Release on teardown.
//
// Release marks the decoration for removal without touching the table; the
// column stops receiving default stamps immediately and is pruned at the
// start of the next compaction pass. Callers that need the column gone right
// away use Table.Undecorate instead.
type Decoration struct {
	table    *Table
	column   Column
	released bool
}

// Column returns the decorated column. Use ArrayOf to recover the typed
// store.
func (d *Decoration) Column() Column { return d.column }

// Table returns the table the decoration is attached to.
func (d *Decoration) Table() *Table { return d.table }

// Released reports whether the handle has been released.
func (d *Decoration) Released() bool { return d == nil || d.released }

// Release marks the decoration for lazy pruning. Releasing twice, or
// releasing a nil handle, is a no-op.
func (d *Decoration) Release() {
	if d == nil {
		return
	}
	d.released = true
}
