// Package pulse is a tick-driven, resource-injecting parallel task
// scheduler: register systems declaring typed resource access and a
// wake-up predicate over a symbolic event set, and Tick drives one full
// phase cycle — filtering candidates, resolving ordering into a DAG,
// dispatching conflict-free batches across a worker pool, and harvesting
// long-running background systems.
package pulse

import (
	"github.com/forgelabs/pulse/internal/resource"
	"github.com/forgelabs/pulse/internal/scheduler"
	"github.com/forgelabs/pulse/internal/tick"
)

// Resources is the public alias for the shared resource map systems read
// and write from.
type Resources = resource.Map

// ResourceHandle is the public alias for a system's acquired per-system
// resource reservation, handed to a body that declared needsOwnResource.
type ResourceHandle = resource.Handle

// TickCount is a monotonic tick counter.
type TickCount = tick.Tick

// CurrentTick is the scheduler's built-in bookkeeping resource: the tick
// counter plus the wall-clock delta and timestamp of its last increment.
type CurrentTick = tick.CurrentTick

// Scheduler drives one tick's phase cycle over every registered system, the
// shared resource map, the symbolic event and interrupt pools, and the
// background worker pool. The zero value is not usable; construct one with
// New.
type Scheduler struct {
	inner *scheduler.Scheduler
}

// New creates a Scheduler with workers dispatch workers (clamped to at
// least 1) and the given diagnostics sink (a no-op sink if diagnose is
// nil). It seeds the default blacklist rules protecting scheduler
// bookkeeping resources and registers the built-in tick-incrementor system.
func New(workers int, diagnose Diagnostics) *Scheduler {
	return &Scheduler{inner: scheduler.New(workers, diagnose)}
}

// InsertSystem registers sys, keyed by its display name's hash.
// Re-registering the same name replaces the prior entry.
func (s *Scheduler) InsertSystem(sys *System) {
	s.inner.InsertSystem(sys)
}

// InsertBubble registers a bubble, evaluated every Ticking phase: when its
// WakeUp fires against the current events, it contributes its own event
// starting next tick.
func (s *Scheduler) InsertBubble(b *Bubble) {
	s.inner.InsertBubble(b)
}

// InsertCatfish registers a catfish rewrite rule, applied every Ticking
// phase right after bubbles evaluate: whenever Trigger appears in the
// current event set, Emitted is inserted alongside it the same tick.
func (s *Scheduler) InsertCatfish(c Catfish) {
	s.inner.InsertCatfish(c)
}

// InsertNewEvent posts event into the write-side pool, visible to wake-up
// predicates starting next tick.
func (s *Scheduler) InsertNewEvent(event EventId) {
	s.inner.InsertNewEvent(event)
}

// InsertNewInterrupt marks sys to be skipped next tick: it is not run that
// tick even if its WakeUp predicate fires.
func (s *Scheduler) InsertNewInterrupt(sys SystemId) {
	s.inner.InsertNewInterrupt(sys)
}

// Resources returns the scheduler's shared resource map, for seeding
// initial resources or reading them directly outside a system body (see
// Resolve for an access-checked alternative).
func (s *Scheduler) Resources() *Resources {
	return s.inner.Resources()
}

// Staging returns the per-tick staging map merged into Resources at the
// Movement phase — write here from outside a system body to have a
// resource appear in Resources starting next tick.
func (s *Scheduler) Staging() *Resources {
	return s.inner.Staging()
}

// CurrentTick returns the scheduler's current tick count.
func (s *Scheduler) CurrentTick() TickCount {
	return s.inner.CurrentTick()
}

// CurrentTickResource returns the full tick bookkeeping resource (counter,
// Dt, and the timestamp of the last increment).
func (s *Scheduler) CurrentTickResource() CurrentTick {
	return s.inner.CurrentTickResource()
}

// Events returns the scheduler's typed payload bus, for systems that need
// to carry a value alongside a symbolic event. Advanced once per tick, at
// Movement, the same point Staging merges into Resources.
func (s *Scheduler) Events() *EventBus {
	return s.inner.Events()
}

// ResourceGet reads the current value of T from m, if present.
func ResourceGet[T any](m *Resources) (T, bool) {
	return resource.Get[T](m)
}

// ResourceInsert inserts res into m under its type, returning the value it
// replaced (if any).
func ResourceInsert[T any](m *Resources, res T) (T, bool) {
	return resource.Insert(m, res)
}

// Resolve reads T from the scheduler's shared resource map from outside a
// system body. It is access-checked: a Shared access to T is tested against
// every reservation currently held by an in-flight system, and Resolve
// reports ok=false rather than racing a system that still holds T reserved.
func Resolve[T any](s *Scheduler) (value T, ok bool) {
	return scheduler.Resolve[T](s.inner)
}

// Tick runs one full Ticking -> PreProcessing -> Processing ->
// PostProcessing -> BackgroundEnd -> BackgroundStart -> Movement cycle.
// Every system body error is collected rather than aborting the tick; a
// panic escalated by HasRequirements or NotBlacklisted propagates to the
// caller.
func (s *Scheduler) Tick() []error {
	return s.inner.Tick()
}
