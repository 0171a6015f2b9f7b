package pulse

import (
	"github.com/forgelabs/pulse/internal/bus"
	"github.com/forgelabs/pulse/internal/events"
	"github.com/forgelabs/pulse/internal/ids"
)

// EventId identifies a symbolic event: a 64-bit hash of a display name, the
// currency a WakeUp predicate, Bubble, or Catfish rule tests for.
type EventId = ids.EventId

// SystemId identifies a registered system the same way EventId identifies
// an event — a 64-bit hash of its display name.
type SystemId = ids.SystemId

// EventIdFromName hashes name into a stable EventId.
func EventIdFromName(name string) EventId { return ids.EventIdFromName(name) }

// SystemIdFromName hashes name into a stable SystemId, the same way
// registering a system under that name would.
func SystemIdFromName(name string) SystemId { return ids.SystemIdFromName(name) }

// WakeUp decides whether a system, bubble, or other rule fires against the
// current symbolic event set.
type WakeUp = events.Predicate

// Bubble is a named pseudo-system: when its WakeUp fires against the
// current events, it contributes its own event next tick.
type Bubble = events.Bubble

// NewBubble creates a bubble whose emitted event hashes its own name.
func NewBubble(name string, wake WakeUp) *Bubble { return events.NewBubble(name, wake) }

// Catfish rewrites Trigger into Emitted within the same tick: whenever
// Trigger appears in the current event set, Emitted is inserted too.
type Catfish = events.Catfish

// NewCatfish creates a catfish rule mapping trigger to emitted.
func NewCatfish(trigger, emitted EventId) Catfish { return events.NewCatfish(trigger, emitted) }

// EventBus is the public alias for the typed, per-type payload bus systems
// may use alongside symbolic events — a generational writer/reader pair per
// type, with completion and cancellation tracking.
type EventBus = bus.Bus

// NewEventBus constructs a new typed event bus. diagnose may be nil.
func NewEventBus(diagnose Diagnostics) *EventBus { return bus.NewBus(diagnose) }

// EventWriter is the public alias for a typed event bus writer.
type EventWriter[T any] = bus.Writer[T]

// EventReader is the public alias for a typed event bus reader.
type EventReader[T any] = bus.Reader[T]

// EventResult is the public alias for a typed emitted-event handle,
// awaitable for completion or cancellation.
type EventResult[T any] = bus.EventResult[T]

// WriterFor returns a typed EventWriter bound to b.
func WriterFor[T any](b *EventBus) EventWriter[T] { return bus.WriterFor[T](b) }

// ReaderFor returns a typed EventReader bound to b.
func ReaderFor[T any](b *EventBus) EventReader[T] { return bus.ReaderFor[T](b) }
