package schema

import (
	"reflect"

	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
	"github.com/rotisserie/eris"

	"github.com/strata-engine/strata/codec"
	"github.com/strata-engine/strata/storage"
)

// Part is one member of a component definition. Parts are built by Column,
// RawColumn, and Requires and assembled by NewDefinition.
type Part interface {
	apply(def *Definition)
}

type columnPart struct {
	spec storage.ColumnSpec
}

func (p columnPart) apply(def *Definition) {
	def.columns = append(def.columns, p.spec)
}

type requiresPart struct {
	names []string
}

func (p requiresPart) apply(def *Definition) {
	def.requires = append(def.requires, p.names...)
}

// ColumnOption augments a column declaration.
type ColumnOption[T any] func(c *columnConfig[T])

type columnConfig[T any] struct {
	defaultVal    T
	defaultRow    []T
	hasDefaultRow bool
	deep          bool
}

// Default declares the value stamped into every element of a newly claimed
// slot. Without it, elements start from the zero value of T.
func Default[T any](defaultVal T) ColumnOption[T] {
	return func(c *columnConfig[T]) {
		c.defaultVal = defaultVal
	}
}

// DefaultRow declares one default value per element. The row must hold
// exactly as many values as the column has elements.
func DefaultRow[T any](vals ...T) ColumnOption[T] {
	return func(c *columnConfig[T]) {
		c.defaultRow = vals
		c.hasDefaultRow = true
	}
}

// DeepClone makes default stamping clone the declared value through the
// codec, so that element types holding slices, maps, or pointers never share
// backing storage with the default.
func DeepClone[T any]() ColumnOption[T] {
	return func(c *columnConfig[T]) {
		c.deep = true
	}
}

type columnDescriptor struct {
	Name     string          `json:"name"`
	Elements int             `json:"elements"`
	Type     json.RawMessage `json:"type,omitempty"`
	Default  json.RawMessage `json:"default,omitempty"`
	Deep     bool            `json:"deep,omitempty"`
	Opaque   bool            `json:"opaque,omitempty"`
}

// Column declares a packed property column holding the given number of
// elements of T per component instance. Declaration problems are carried in
// the returned part and surface as ErrIllegalDefinition when the definition
// is assembled.
func Column[T any](name string, elements int, opts ...ColumnOption[T]) Part {
	cfg := columnConfig[T]{}
	for _, opt := range opts {
		opt(&cfg)
	}

	spec := storage.ColumnSpec{Name: name, Elements: elements}
	if name == "" {
		spec.Err = eris.Wrap(ErrIllegalDefinition, "column: missing name")
		return columnPart{spec: spec}
	}
	if elements < 1 {
		spec.Err = eris.Wrapf(ErrIllegalDefinition, "column %q: element count %d", name, elements)
		return columnPart{spec: spec}
	}

	defaults := cfg.defaultRow
	if !cfg.hasDefaultRow {
		defaults = make([]T, elements)
		for i := range defaults {
			defaults[i] = cfg.defaultVal
		}
	}
	if len(defaults) != elements {
		spec.Err = eris.Wrapf(ErrIllegalDefinition,
			"column %q: default row has %d values, want %d", name, len(defaults), elements)
		return columnPart{spec: spec}
	}

	elemSchema, err := jsonschema.ReflectFromType(reflect.TypeOf((*T)(nil)).Elem()).MarshalJSON()
	if err != nil {
		spec.Err = eris.Wrapf(err, "column %q: element type must be json serializable", name)
		return columnPart{spec: spec}
	}
	defaultBz, err := codec.Encode(defaults)
	if err != nil {
		spec.Err = eris.Wrapf(err, "column %q: default value must be json serializable", name)
		return columnPart{spec: spec}
	}
	spec.Descriptor, err = codec.Encode(columnDescriptor{
		Name:     name,
		Elements: elements,
		Type:     elemSchema,
		Default:  defaultBz,
		Deep:     cfg.deep,
	})
	if err != nil {
		spec.Err = eris.Wrapf(err, "column %q", name)
		return columnPart{spec: spec}
	}

	deep := cfg.deep
	spec.New = func(slots int) storage.Column {
		return storage.NewArray[T](name, elements, slots, defaults, deep)
	}
	return columnPart{spec: spec}
}

// RawColumn declares a column backed by a caller-supplied store, for element
// layouts the packed Array cannot express. The spec must carry a name, an
// element count, and a factory; a Descriptor is synthesized if absent, marked
// opaque so re-registrations only compare name and shape.
func RawColumn(spec storage.ColumnSpec) Part {
	if spec.Err == nil {
		switch {
		case spec.Name == "":
			spec.Err = eris.Wrap(ErrIllegalDefinition, "raw column: missing name")
		case spec.Elements < 1:
			spec.Err = eris.Wrapf(ErrIllegalDefinition, "raw column %q: element count %d", spec.Name, spec.Elements)
		case spec.New == nil:
			spec.Err = eris.Wrapf(ErrIllegalDefinition, "raw column %q: missing store factory", spec.Name)
		}
	}
	if spec.Err == nil && spec.Descriptor == nil {
		spec.Descriptor, spec.Err = codec.Encode(columnDescriptor{
			Name:     spec.Name,
			Elements: spec.Elements,
			Opaque:   true,
		})
	}
	return columnPart{spec: spec}
}

// Requires names component types that must co-exist with this one. The world
// attaches any missing requirement when the component is added, with the new
// instance as the attachment's owner.
func Requires(names ...string) Part {
	return requiresPart{names: names}
}

// SpecOf extracts the column spec from a part built by Column or RawColumn.
// Requires parts carry no column and are rejected.
func SpecOf(p Part) (storage.ColumnSpec, error) {
	cp, ok := p.(columnPart)
	if !ok {
		return storage.ColumnSpec{}, eris.Wrap(ErrIllegalDefinition, "part does not declare a column")
	}
	if cp.spec.Err != nil {
		return storage.ColumnSpec{}, cp.spec.Err
	}
	return cp.spec, nil
}
