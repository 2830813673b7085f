package strata

import (
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	worldlog "github.com/strata-engine/strata/log"
	"github.com/strata-engine/strata/schema"
	"github.com/strata-engine/strata/search"
	"github.com/strata-engine/strata/statsd"
	"github.com/strata-engine/strata/storage"
	"github.com/strata-engine/strata/types"
)

var _ search.Store = &World{}
var _ worldlog.Loggable = &World{}

// World owns all entity and component storage and coordinates the operations
// that cross tables: entity lifecycle, component attachment with required
// types, ownership cascades, and compaction.
//
// A World is not safe for concurrent use. All structural operations,
// iteration, and compaction must run from one goroutine; removal is the only
// structural change allowed while an iteration is in flight, and compaction
// must wait until no cursor, join, or search is advancing.
type World struct {
	namespace  string
	instanceID uuid.UUID
	logger     zerolog.Logger

	// Storage
	entities  *storage.EntityTable
	tables    map[types.ComponentID]*storage.Table
	tableList []*storage.Table

	// Core modules
	registry *schema.Registry

	// Ownership forest. Edges are keyed by stable object identity, entity ID
	// plus optional component ID, so they survive compaction moving slots.
	ownerOf map[types.Ref]types.Ref
	ownedBy map[types.Ref][]types.Ref

	entityCapacity    int
	componentCapacity int
	compactions       uint64
}

// NewWorld creates a new World configured from the environment, with options
// applied on top.
func NewWorld(opts ...WorldOption) (*World, error) {
	cfg, err := loadWorldConfig()
	if err != nil {
		return nil, eris.Wrap(err, "failed to load config to start world")
	}
	if err := cfg.setLogLevel(); err != nil {
		return nil, err
	}

	world := &World{
		namespace:  cfg.StrataNamespace,
		instanceID: uuid.New(),
		logger:     zlog.Logger,

		tables:   make(map[types.ComponentID]*storage.Table),
		registry: schema.NewRegistry(),

		ownerOf: make(map[types.Ref]types.Ref),
		ownedBy: make(map[types.Ref][]types.Ref),

		entityCapacity:    cfg.StrataEntityCapacity,
		componentCapacity: cfg.StrataComponentCapacity,
	}
	for _, opt := range opts {
		opt(world)
	}
	world.logger = world.logger.With().
		Str("namespace", world.namespace).
		Str("world_id", world.instanceID.String()).
		Logger()
	world.entities = storage.NewEntityTable(world.entityCapacity)

	if cfg.StatsdAddress != "" {
		if err := statsd.Init(cfg.StatsdAddress, []string{"namespace:" + world.namespace}); err != nil {
			world.logger.Warn().Err(err).Msg("failed to init statsd client, metrics will be dropped")
		}
	}

	world.logger.Info().Msgf("Created a new world in namespace %q", world.namespace)
	return world, nil
}

// Namespace returns the world's namespace.
func (w *World) Namespace() string { return w.namespace }

// InstanceID returns the unique id minted for this world instance.
func (w *World) InstanceID() string { return w.instanceID.String() }

// Logger returns the world's logger.
func (w *World) Logger() *zerolog.Logger { return &w.logger }

// Registry returns the world's component registry.
func (w *World) Registry() *schema.Registry { return w.registry }

// RegisterComponent adds a component definition to the world's registry and
// returns its component type. Registering the same definition again returns
// the existing type; a definition that cannot be honored is refused with
// ErrIllegalDefinition.
func (w *World) RegisterComponent(def schema.Definition) (*schema.ComponentType, error) {
	before := w.registry.Count()
	ct, err := w.registry.Register(def)
	if err != nil {
		return nil, err
	}
	if w.registry.Count() != before {
		w.logger.Debug().
			Int("component_id", int(ct.ID())).
			Str("component_name", ct.Name()).
			Msg("registered component")
	}
	return ct, nil
}

// AddEntity creates a new entity and returns its handle.
func (w *World) AddEntity() types.EntityRef {
	ref := w.entities.Add()
	w.logger.Debug().
		Uint64("entity_id", uint64(ref.ID)).
		Int("entity_slot", int(ref.Slot)).
		Msg("created entity")
	return ref
}

// AddEntities creates count entities and returns their handles.
func (w *World) AddEntities(count int) []types.EntityRef {
	if count <= 0 {
		return nil
	}
	refs := make([]types.EntityRef, 0, count)
	for i := 0; i < count; i++ {
		refs = append(refs, w.entities.Add())
	}
	w.logger.Debug().Int("count", count).Msg("created entities")
	return refs
}

// RemoveEntity removes the entity, all components attached to it, and
// everything those objects own. The handle must be current: a stale handle
// fails with ErrStaleHandle rather than guessing at a target.
func (w *World) RemoveEntity(ref types.EntityRef) error {
	if err := w.entities.Resolve(ref); err != nil {
		return err
	}
	removed := w.removeObject(types.EntityObject(ref.ID))
	w.logger.Debug().
		Uint64("entity_id", uint64(ref.ID)).
		Int("objects_removed", removed).
		Msg("removed entity")
	return nil
}

// Resolve verifies that the handle still points at the entity it was minted
// for, returning ErrStaleHandle otherwise.
func (w *World) Resolve(ref types.EntityRef) error {
	return w.entities.Resolve(ref)
}

// IsLive reports whether the handle points at a live entity.
func (w *World) IsLive(ref types.EntityRef) bool {
	return w.entities.Resolve(ref) == nil
}

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int { return w.entities.Live() }

// CompactionStats summarizes one compaction pass.
type CompactionStats struct {
	EntitiesReclaimed int
	SlotsReclaimed    int
	Tables            int
	Elapsed           time.Duration
}

// Compact reclaims every removed entity and component slot in one pass: the
// entity index compacts first, then every table rewrites its entity links
// through the resulting remap and compacts itself. After the pass all
// outstanding handles, slots, and row views are stale; resolve fresh ones.
//
// Compact must not be called while any cursor, join, or search is advancing.
func (w *World) Compact() CompactionStats {
	start := time.Now()
	entitiesReclaimed := w.entities.Used() - w.entities.Live()
	remap := w.entities.Compact()
	statsd.EmitCompactionStat(start, "entities")

	tableStart := time.Now()
	slotsReclaimed := 0
	entityCount := w.entities.Used()
	for _, t := range w.tableList {
		slotsReclaimed += t.Free()
		t.Compact(remap, entityCount)
	}
	statsd.EmitCompactionStat(tableStart, "tables")
	statsd.EmitReclaimedStat(entitiesReclaimed, "entities")
	statsd.EmitReclaimedStat(slotsReclaimed, "components")
	statsd.EmitLiveGauge(w.entities.Live())

	w.compactions++
	stats := CompactionStats{
		EntitiesReclaimed: entitiesReclaimed,
		SlotsReclaimed:    slotsReclaimed,
		Tables:            len(w.tableList),
		Elapsed:           time.Since(start),
	}
	worldlog.Compaction(&w.logger, zerolog.DebugLevel,
		stats.EntitiesReclaimed, stats.SlotsReclaimed, stats.Tables, stats.Elapsed)
	return stats
}

// Compactions returns how many compaction passes have run.
func (w *World) Compactions() uint64 { return w.compactions }

// Entities exposes the entity index to searches and cursors.
func (w *World) Entities() *storage.EntityTable { return w.entities }

// TableOf returns the table holding instances of the component type, if one
// has been created. Tables are created lazily on first attach or decorate,
// so a registered type with no instances may not have one yet.
func (w *World) TableOf(id types.ComponentID) (*storage.Table, bool) {
	t, ok := w.tables[id]
	return t, ok
}

// ComponentIDs returns the ids of all component types with created tables,
// in creation order.
func (w *World) ComponentIDs() []types.ComponentID {
	ids := make([]types.ComponentID, 0, len(w.tableList))
	for _, t := range w.tableList {
		ids = append(ids, t.ID())
	}
	return ids
}

// RemoveComponentAt detaches the component type from the entity in the given
// slot, cascading to anything the instance owns. Absent instances are a
// no-op. Cursors use this for removal mid-iteration.
func (w *World) RemoveComponentAt(id types.ComponentID, e types.EntitySlot) error {
	t, ok := w.tables[id]
	if !ok || !t.Contains(e) {
		return nil
	}
	w.removeObject(types.ComponentObject(id, w.entities.IDAt(e)))
	return nil
}

// RegisteredComponents reports the registered component types for logging.
func (w *World) RegisteredComponents() []worldlog.Component {
	cts := w.registry.Components()
	out := make([]worldlog.Component, 0, len(cts))
	for _, ct := range cts {
		out = append(out, ct)
	}
	return out
}
