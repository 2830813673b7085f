package types

import "fmt"

// ComponentID identifies a registered component type. IDs are assigned
// sequentially at registration starting at 1; 0 means "no component".
type ComponentID int

// NoComponent is the zero ComponentID, used by Ref to denote a bare entity.
const NoComponent ComponentID = 0

// Version is a per-component-instance mutation counter. Versions are drawn
// from a single monotonically increasing counter per component type, so a
// version value never repeats across two logical instances of the same type.
// A negative version marks a freed slot.
type Version int64

// FreedVersion is the sentinel stored in a component slot between its removal
// and the compaction pass that reclaims it.
const FreedVersion Version = -1

// ComponentRef is a stable handle to one component instance: the component
// type plus the owning entity. The underlying slot is revalidated on every
// access, so a ComponentRef survives compaction as long as the instance does.
type ComponentRef struct {
	Component ComponentID
	Entity    EntityRef
}

// Ref names an ownable object in the ownership forest: an entity, or a single
// component instance on an entity. Component == NoComponent means the entity
// itself. Refs are keyed by EntityID rather than slot so compaction never
// invalidates an ownership edge.
type Ref struct {
	Entity    EntityID
	Component ComponentID
}

// EntityObject builds the Ref for a bare entity.
func EntityObject(id EntityID) Ref {
	return Ref{Entity: id}
}

// ComponentObject builds the Ref for a component instance on an entity.
func ComponentObject(comp ComponentID, id EntityID) Ref {
	return Ref{Entity: id, Component: comp}
}

// IsComponent reports whether the ref names a component instance rather than
// an entity.
func (r Ref) IsComponent() bool {
	return r.Component != NoComponent
}

func (r Ref) String() string {
	if r.IsComponent() {
		return fmt.Sprintf("component %d on entity %d", r.Component, r.Entity)
	}
	return fmt.Sprintf("entity %d", r.Entity)
}
