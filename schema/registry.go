package schema

import (
	"github.com/rotisserie/eris"
	"github.com/wI2L/jsondiff"

	"github.com/strata-engine/strata/storage"
	"github.com/strata-engine/strata/types"
)

// ComponentType is a registered component definition together with the ID the
// registry assigned it. Component IDs are issued sequentially from 1 per
// registry and never reused.
type ComponentType struct {
	def Definition
	id  types.ComponentID
}

// ID returns the component type id.
func (ct *ComponentType) ID() types.ComponentID { return ct.id }

// Name returns the component type name.
func (ct *ComponentType) Name() string { return ct.def.Name() }

// String returns the component type name.
func (ct *ComponentType) String() string { return ct.def.Name() }

// Columns returns the declared column specs in declaration order.
func (ct *ComponentType) Columns() []storage.ColumnSpec { return ct.def.Columns() }

// Requires returns the names of required component types.
func (ct *ComponentType) Requires() []string { return ct.def.Requires() }

// Definition returns the definition the type was registered with.
func (ct *ComponentType) Definition() Definition { return ct.def }

// Registry holds every registered component type, keyed by name and by ID.
// There can only be one component type per name. Re-registering a name with a
// structurally identical definition returns the existing type, so packages
// can declare the components they use without coordinating registration
// order; a mismatched definition is rejected.
type Registry struct {
	byName  map[string]*ComponentType
	byID    map[types.ComponentID]*ComponentType
	ordered []*ComponentType
	nextID  types.ComponentID
}

// NewRegistry creates an empty component registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*ComponentType),
		byID:   make(map[types.ComponentID]*ComponentType),
		nextID: 1,
	}
}

// Register adds the definition to the registry and returns its component
// type. When the name is already registered, the stored descriptor is diffed
// against the new one: an identical definition returns the existing type, a
// mismatch returns ErrIllegalDefinition carrying the diff.
func (r *Registry) Register(def Definition) (*ComponentType, error) {
	if def.descriptor == nil {
		return nil, eris.Wrap(ErrIllegalDefinition, "definition was not built with NewDefinition")
	}
	if existing, ok := r.byName[def.Name()]; ok {
		diff, err := jsondiff.CompareJSON(existing.def.descriptor, def.descriptor)
		if err != nil {
			return nil, eris.Wrapf(err, "failed to compare definitions for component %q", def.Name())
		}
		if diff.String() != "" {
			return nil, eris.Wrapf(ErrIllegalDefinition,
				"component %q does not match its registered definition: %s", def.Name(), diff.String())
		}
		return existing, nil
	}

	ct := &ComponentType{def: def, id: r.nextID}
	r.nextID++
	r.byName[ct.Name()] = ct
	r.byID[ct.id] = ct
	r.ordered = append(r.ordered, ct)
	return ct, nil
}

// ByName returns the component type registered under the name.
func (r *Registry) ByName(name string) (*ComponentType, error) {
	ct, ok := r.byName[name]
	if !ok {
		return nil, eris.Wrapf(ErrComponentNotRegistered, "component %q", name)
	}
	return ct, nil
}

// ByID returns the component type with the given id.
func (r *Registry) ByID(id types.ComponentID) (*ComponentType, error) {
	ct, ok := r.byID[id]
	if !ok {
		return nil, eris.Wrapf(ErrComponentNotRegistered, "component id %d", id)
	}
	return ct, nil
}

// Components returns all registered component types in registration order.
func (r *Registry) Components() []*ComponentType {
	out := make([]*ComponentType, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Count returns the number of registered component types.
func (r *Registry) Count() int { return len(r.ordered) }
