// Package strata is an entity component framework built around packed
// columnar storage.
//
// Component types are declared as named property columns, registered once,
// and stored in per-type tables where every live instance occupies a dense
// slot shared by all of the type's columns. Removal is deferred: removed
// entities and instances are marked dead and parked on free lists, and a
// compaction pass reclaims them in bulk by swapping live rows down over the
// holes. Handles are generational, so anything held across a removal or a
// compaction pass fails loudly instead of reading the wrong row.
//
// A minimal session:
//
//	world, err := strata.NewWorld()
//	if err != nil {
//		return err
//	}
//	posDef, err := schema.NewDefinition("Position",
//		schema.Column[float64]("coords", 3),
//	)
//	if err != nil {
//		return err
//	}
//	position, err := world.RegisterComponent(posDef)
//	if err != nil {
//		return err
//	}
//	player := world.AddEntity()
//	if _, err := world.AddComponent(position, player); err != nil {
//		return err
//	}
//	cur := world.Iterate(position)
//	for cur.Next() {
//		// read and write columns by cur.Slot()
//	}
//	world.Compact()
//
// Worlds are single threaded: structural changes, iteration, and compaction
// all run from one goroutine.
package strata
