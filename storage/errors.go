package storage

import "github.com/rotisserie/eris"

var (
	// ErrStaleHandle is returned when an EntityRef or ComponentRef no longer
	// points at the object it was minted for, either because the object was
	// removed or because a compaction pass moved it since the handle was taken.
	ErrStaleHandle = eris.New("stale handle")

	// ErrInvalidComponentReference is returned by accessors that are handed a
	// slot or entity that does not currently hold a live component instance.
	ErrInvalidComponentReference = eris.New("invalid component reference")

	// ErrColumnNotFound is returned when a table has no column with the
	// requested name.
	ErrColumnNotFound = eris.New("column not found")

	// ErrColumnType is returned when a column exists but does not hold the
	// requested element type.
	ErrColumnType = eris.New("column element type mismatch")
)
