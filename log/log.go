package log

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/strata-engine/strata/types"
)

// Component is the slice of a registered component type that log events
// carry. Registered component types satisfy this.
type Component interface {
	ID() types.ComponentID
	Name() string
}

// Loggable is implemented by targets that can report their registered
// component types, such as a world.
type Loggable interface {
	RegisteredComponents() []Component
}

func loadComponentIntoArrayLogger(
	component Component,
	arrayLogger *zerolog.Array,
) *zerolog.Array {
	dictLogger := zerolog.Dict()
	dictLogger = dictLogger.Int("component_id", int(component.ID()))
	dictLogger = dictLogger.Str("component_name", component.Name())
	return arrayLogger.Dict(dictLogger)
}

func loadComponentsToEvent(zeroLoggerEvent *zerolog.Event, target Loggable) *zerolog.Event {
	components := target.RegisteredComponents()
	sort.Slice(components, func(i, j int) bool {
		return components[i].ID() < components[j].ID()
	})
	zeroLoggerEvent.Int("total_components", len(components))
	arrayLogger := zerolog.Arr()
	for _, _component := range components {
		arrayLogger = loadComponentIntoArrayLogger(_component, arrayLogger)
	}
	return zeroLoggerEvent.Array("components", arrayLogger)
}

func loadEntityIntoEvent(
	zeroLoggerEvent *zerolog.Event, ref types.EntityRef, components []Component,
) *zerolog.Event {
	arrayLogger := zerolog.Arr()
	for _, _component := range components {
		arrayLogger = loadComponentIntoArrayLogger(_component, arrayLogger)
	}
	zeroLoggerEvent.Array("components", arrayLogger)
	zeroLoggerEvent.Uint64("entity_id", uint64(ref.ID))
	zeroLoggerEvent.Int("entity_slot", int(ref.Slot))
	return zeroLoggerEvent.Uint32("generation", uint32(ref.Generation))
}

// Components logs all component types registered with the target.
func Components(logger *zerolog.Logger, target Loggable, level zerolog.Level) {
	zeroLoggerEvent := logger.WithLevel(level)
	zeroLoggerEvent = loadComponentsToEvent(zeroLoggerEvent, target)
	zeroLoggerEvent.Send()
}

// Entity logs an entity together with the component types attached to it.
func Entity(
	logger *zerolog.Logger, level zerolog.Level, ref types.EntityRef,
	components []Component,
) {
	zeroLoggerEvent := logger.WithLevel(level)
	loadEntityIntoEvent(zeroLoggerEvent, ref, components).Send()
}

// ComponentChange logs a structural change to one component instance.
func ComponentChange(
	logger *zerolog.Logger, level zerolog.Level, component Component,
	ref types.EntityRef, slot types.ComponentSlot, version types.Version,
) {
	logger.WithLevel(level).
		Int("component_id", int(component.ID())).
		Str("component_name", component.Name()).
		Uint64("entity_id", uint64(ref.ID)).
		Int("component_slot", int(slot)).
		Int64("version", int64(version)).
		Send()
}

// Decoration logs a column being attached to or released from a table.
func Decoration(
	logger *zerolog.Logger, level zerolog.Level, component Component,
	column string, attached bool,
) {
	logger.WithLevel(level).
		Int("component_id", int(component.ID())).
		Str("component_name", component.Name()).
		Str("column", column).
		Bool("attached", attached).
		Send()
}

// Compaction logs the outcome of one compaction pass.
func Compaction(
	logger *zerolog.Logger, level zerolog.Level,
	entitiesReclaimed, slotsReclaimed, tables int, elapsed time.Duration,
) {
	logger.WithLevel(level).
		Int("entities_reclaimed", entitiesReclaimed).
		Int("slots_reclaimed", slotsReclaimed).
		Int("tables", tables).
		Int64("elapsed_us", elapsed.Microseconds()).
		Send()
}

// World logs everything about the world's registered types.
func World(logger *zerolog.Logger, target Loggable, level zerolog.Level) {
	zeroLoggerEvent := logger.WithLevel(level)
	zeroLoggerEvent = loadComponentsToEvent(zeroLoggerEvent, target)
	zeroLoggerEvent.Send()
}

// CreateTraceLogger creates a trace Logger. Using a single id you can use
// this Logger to follow and log a data path.
func CreateTraceLogger(logger *zerolog.Logger, traceID string) *zerolog.Logger {
	newLogger := logger.With().Str("trace_id", traceID).Logger()
	return &newLogger
}
