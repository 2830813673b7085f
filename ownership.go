package strata

import (
	"github.com/rotisserie/eris"

	"github.com/strata-engine/strata/types"
)

var (
	// ErrOwnershipCycle is returned when setting an owner would make an
	// object its own ancestor. Ownership is a forest; cascading removal of a
	// cycle would never terminate.
	ErrOwnershipCycle = eris.New("ownership cycle")

	// ErrInvalidObject is returned when an ownership operation names an
	// entity or component instance that is not live.
	ErrInvalidObject = eris.New("object is not live")
)

// SetOwner makes owner the owner of owned. Both objects must be live; the
// edge is refused if it would create a cycle. An object has at most one
// owner, so setting a new owner replaces the old edge.
//
// Removing an owner removes everything it transitively owns, entities and
// component instances alike.
func (w *World) SetOwner(owned, owner types.Ref) error {
	if owned == owner {
		return eris.Wrapf(ErrOwnershipCycle, "%s cannot own itself", owned)
	}
	if !w.objectLive(owned) {
		return eris.Wrapf(ErrInvalidObject, "cannot be owned: %s", owned)
	}
	if !w.objectLive(owner) {
		return eris.Wrapf(ErrInvalidObject, "cannot own: %s", owner)
	}
	for cur := owner; ; {
		parent, ok := w.ownerOf[cur]
		if !ok {
			break
		}
		if parent == owned {
			return eris.Wrapf(ErrOwnershipCycle, "%s is an ancestor of %s", owned, owner)
		}
		cur = parent
	}
	w.ClearOwner(owned)
	w.setEdge(owned, owner)
	return nil
}

// ClearOwner detaches owned from its owner, leaving both objects live.
// Objects with no owner are a no-op.
func (w *World) ClearOwner(owned types.Ref) {
	owner, ok := w.ownerOf[owned]
	if !ok {
		return
	}
	delete(w.ownerOf, owned)
	kids := w.ownedBy[owner]
	for i, kid := range kids {
		if kid == owned {
			w.ownedBy[owner] = append(kids[:i], kids[i+1:]...)
			break
		}
	}
	if len(w.ownedBy[owner]) == 0 {
		delete(w.ownedBy, owner)
	}
}

// OwnerOf returns the object's owner, if it has one.
func (w *World) OwnerOf(owned types.Ref) (types.Ref, bool) {
	owner, ok := w.ownerOf[owned]
	return owner, ok
}

// OwnedBy returns the objects directly owned by owner.
func (w *World) OwnedBy(owner types.Ref) []types.Ref {
	kids := w.ownedBy[owner]
	if len(kids) == 0 {
		return nil
	}
	out := make([]types.Ref, len(kids))
	copy(out, kids)
	return out
}

func (w *World) setEdge(owned, owner types.Ref) {
	w.ownerOf[owned] = owner
	w.ownedBy[owner] = append(w.ownedBy[owner], owned)
}

// objectLive reports whether the ref names a live entity or a live component
// instance.
func (w *World) objectLive(r types.Ref) bool {
	slot, ok := w.entities.SlotOfID(r.Entity)
	if !ok {
		return false
	}
	if !r.IsComponent() {
		return true
	}
	t, ok := w.tables[r.Component]
	return ok && t.Contains(slot)
}

// removeObject removes the object and, transitively, everything it owns.
// Cascades may reach the same object along several paths; revisits find it
// already gone and fall through. Returns the number of objects removed.
//
// All removal APIs funnel through here so that ownership edges die with
// their objects.
func (w *World) removeObject(root types.Ref) int {
	removed := 0
	stack := []types.Ref{root}
	for len(stack) > 0 {
		obj := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		stack = append(stack, w.ownedBy[obj]...)
		delete(w.ownedBy, obj)
		w.ClearOwner(obj)

		slot, ok := w.entities.SlotOfID(obj.Entity)
		if !ok {
			continue
		}
		if obj.IsComponent() {
			if t, found := w.tables[obj.Component]; found && t.Remove(slot) {
				removed++
			}
			continue
		}

		// A bare entity: detach every component first so no live instance
		// ever links to a freed entity slot, then free the slot itself.
		for _, t := range w.tableList {
			if !t.Contains(slot) {
				continue
			}
			comp := types.ComponentObject(t.ID(), obj.Entity)
			stack = append(stack, w.ownedBy[comp]...)
			delete(w.ownedBy, comp)
			w.ClearOwner(comp)
			t.Remove(slot)
			removed++
		}
		w.entities.Remove(slot)
		removed++
	}
	return removed
}
