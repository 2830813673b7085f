package search

import (
	"github.com/rotisserie/eris"

	"github.com/strata-engine/strata/filter"
	"github.com/strata-engine/strata/storage"
	"github.com/strata-engine/strata/types"
)

var (
	// ErrNoMatch is returned by First when no entity matches the search.
	ErrNoMatch = eris.New("no entity matches the search")

	// ErrRemoveDuringJoin is returned when removal is requested through a
	// multi-type join. Joins probe every joined table per row, so a removal
	// could silently invalidate rows the join has yet to visit. Remove
	// through a single-type cursor, or after the join completes.
	ErrRemoveDuringJoin = eris.New("cannot remove through a multi-type join")
)

// Store is the view of a world that searches and cursors need: the entity
// index, the per-type tables, and removal that honors ownership cascades.
type Store interface {
	Entities() *storage.EntityTable
	TableOf(id types.ComponentID) (*storage.Table, bool)
	ComponentIDs() []types.ComponentID
	RemoveComponentAt(id types.ComponentID, e types.EntitySlot) error
}

// CallbackFn is called once per matching entity. Return false to stop the
// iteration early.
type CallbackFn func(types.EntityRef) bool

// Search filters entities by the component types attached to them. A search
// walks the entity index and evaluates its filter against each live entity's
// component set, so it matches entities regardless of which tables exist.
// Structural changes made from the callback follow the usual deferral rules:
// removals mark slots dead in place and are safe, but compaction must wait
// until the iteration returns.
type Search struct {
	filter  filter.ComponentFilter
	store   Store
	scratch []types.ComponentID
}

// NewSearch creates a new search from an arbitrary component filter.
func NewSearch(store Store, f filter.ComponentFilter) *Search {
	return &Search{filter: f, store: store}
}

// Each iterates over all entities that match the search in entity slot
// order. Entities created from inside the callback are not visited during
// this pass.
func (s *Search) Each(callback CallbackFn) {
	entities := s.store.Entities()
	tables := s.liveTables()
	used := entities.Used()
	for i := 0; i < used; i++ {
		slot := types.EntitySlot(i)
		if !entities.IsLive(slot) {
			continue
		}
		if !s.filter.MatchesComponents(s.idsOn(tables, slot)) {
			continue
		}
		if !callback(entities.RefAt(slot)) {
			return
		}
	}
}

// Count returns the number of entities that match the search.
func (s *Search) Count() int {
	count := 0
	s.Each(func(types.EntityRef) bool {
		count++
		return true
	})
	return count
}

// First returns the first entity that matches the search.
func (s *Search) First() (types.EntityRef, error) {
	found := types.BadEntityRef
	s.Each(func(ref types.EntityRef) bool {
		found = ref
		return false
	})
	if found == types.BadEntityRef {
		return types.BadEntityRef, eris.Wrap(ErrNoMatch, "first")
	}
	return found, nil
}

// MustFirst returns the first entity that matches the search and panics when
// there is none.
func (s *Search) MustFirst() types.EntityRef {
	ref, err := s.First()
	if err != nil {
		panic("no entity matches the search")
	}
	return ref
}

func (s *Search) liveTables() []*storage.Table {
	ids := s.store.ComponentIDs()
	tables := make([]*storage.Table, 0, len(ids))
	for _, id := range ids {
		if t, ok := s.store.TableOf(id); ok {
			tables = append(tables, t)
		}
	}
	return tables
}

// idsOn fills the search's scratch buffer with the entity's component id
// set. The buffer is reused across entities, so iteration allocates nothing
// per row.
func (s *Search) idsOn(tables []*storage.Table, e types.EntitySlot) []types.ComponentID {
	s.scratch = s.scratch[:0]
	for _, t := range tables {
		if t.Contains(e) {
			s.scratch = append(s.scratch, t.ID())
		}
	}
	return s.scratch
}
