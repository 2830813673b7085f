package strata

import (
	"github.com/strata-engine/strata/filter"
	"github.com/strata-engine/strata/query"
	"github.com/strata-engine/strata/schema"
	"github.com/strata-engine/strata/search"
)

// NewSearch creates a search over this world from an arbitrary component
// filter.
func (w *World) NewSearch(f filter.ComponentFilter) *search.Search {
	return search.NewSearch(w, f)
}

// Iterate returns a cursor over every live instance of the component type.
func (w *World) Iterate(ct *schema.ComponentType) *search.Cursor {
	return search.NewCursor(w, ct)
}

// IterateEntities returns a cursor over every live entity.
func (w *World) IterateEntities() *search.EntityCursor {
	return search.NewEntityCursor(w)
}

// Join returns a join over entities holding every one of the component
// types.
func (w *World) Join(cts ...*schema.ComponentType) *search.Join {
	components := make([]filter.Component, 0, len(cts))
	for _, ct := range cts {
		components = append(components, ct)
	}
	return search.NewJoin(w, components...)
}

// Query parses query language text against this world's registry and
// returns the matching search. The text refers to component types by their
// registered names, for example "CONTAINS(Position) & !CONTAINS(Frozen)".
func (w *World) Query(text string) (*search.Search, error) {
	f, err := query.Parse(text, func(name string) (filter.Component, error) {
		return w.registry.ByName(name)
	})
	if err != nil {
		return nil, err
	}
	return w.NewSearch(f), nil
}
