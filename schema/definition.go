package schema

import (
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"

	"github.com/strata-engine/strata/codec"
	"github.com/strata-engine/strata/storage"
)

var (
	// ErrIllegalDefinition is returned when a component definition cannot be
	// honored: a bad column declaration, or a re-registration whose
	// descriptor no longer matches the registered one. Definitions are
	// validated once, at registration, never on the per-instance hot path.
	ErrIllegalDefinition = eris.New("illegal component definition")

	// ErrComponentNotRegistered is returned when a component type is looked
	// up by a name or ID the registry has never seen.
	ErrComponentNotRegistered = eris.New("component not registered")
)

// Definition is the declared shape of a component type: its name, its
// property columns, and the component types it requires. Definitions are
// assembled once and handed to the registry; the registered ComponentType is
// what the rest of the engine works with.
type Definition struct {
	name       string
	columns    []storage.ColumnSpec
	requires   []string
	descriptor []byte
}

type definitionDescriptor struct {
	Name     string            `json:"name"`
	Columns  []json.RawMessage `json:"columns,omitempty"`
	Requires []string          `json:"requires,omitempty"`
}

// NewDefinition assembles a component definition from column and requirement
// parts. A definition with no columns is a tag: instances carry identity and
// liveness but no property values. All declaration problems are reported
// here, wrapped around ErrIllegalDefinition.
func NewDefinition(name string, parts ...Part) (Definition, error) {
	def := Definition{name: name}
	if name == "" {
		return def, eris.Wrap(ErrIllegalDefinition, "missing component name")
	}
	for _, part := range parts {
		part.apply(&def)
	}

	seen := make(map[string]bool, len(def.columns))
	colDescriptors := make([]json.RawMessage, 0, len(def.columns))
	for _, spec := range def.columns {
		if spec.Err != nil {
			return def, eris.Wrapf(spec.Err, "component %q", name)
		}
		if seen[spec.Name] {
			return def, eris.Wrapf(ErrIllegalDefinition, "component %q: duplicate column %q", name, spec.Name)
		}
		seen[spec.Name] = true
		colDescriptors = append(colDescriptors, spec.Descriptor)
	}

	required := make(map[string]bool, len(def.requires))
	for _, req := range def.requires {
		if req == name {
			return def, eris.Wrapf(ErrIllegalDefinition, "component %q requires itself", name)
		}
		if required[req] {
			return def, eris.Wrapf(ErrIllegalDefinition, "component %q: duplicate requirement %q", name, req)
		}
		required[req] = true
	}

	descriptor, err := codec.Encode(definitionDescriptor{
		Name:     name,
		Columns:  colDescriptors,
		Requires: def.requires,
	})
	if err != nil {
		return def, eris.Wrapf(err, "component %q", name)
	}
	def.descriptor = descriptor
	return def, nil
}

// Name returns the component type name.
func (d Definition) Name() string { return d.name }

// Columns returns the declared column specs in declaration order.
func (d Definition) Columns() []storage.ColumnSpec { return d.columns }

// Requires returns the names of required component types.
func (d Definition) Requires() []string { return d.requires }

// Descriptor returns the canonical encoding of the definition's shape, used
// to compare re-registrations structurally.
func (d Definition) Descriptor() []byte { return d.descriptor }
