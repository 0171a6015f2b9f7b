package pulse

import (
	"reflect"

	"github.com/forgelabs/pulse/internal/access"
	"github.com/forgelabs/pulse/internal/events"
	"github.com/forgelabs/pulse/internal/ids"
	"github.com/forgelabs/pulse/internal/system"
)

// AccessKind is the strength of a declared resource access.
type AccessKind = access.Kind

const (
	// Read grants concurrent read-only access to a resource type.
	Read = access.Shared
	// Write grants exclusive read-write access to a resource type.
	Write = access.Unique
)

// Accesses is the set of resource types a system declares against, split
// into the half a system reports for its own use and the half the
// scheduler reserves for its own bookkeeping (the tick counter, event
// pools). Ordinary systems only ever populate the System half; the
// Scheduler half exists for internal use.
type Accesses = access.Accesses

// NewAccesses creates an empty Accesses set.
func NewAccesses() *Accesses { return access.NewAccesses() }

// AccessRead declares a Shared (read-only) access to T against acc's System
// half.
func AccessRead[T any](acc *Accesses) {
	acc.System.Add(reflect.TypeFor[T](), access.Shared)
}

// AccessWrite declares a Unique (read-write) access to T against acc's
// System half.
func AccessWrite[T any](acc *Accesses) {
	acc.System.Add(reflect.TypeFor[T](), access.Unique)
}

// Flag marks a declared trait of a registered system.
type Flag = system.Flag

const (
	// Blocking runs synchronously on a dispatcher worker. This is the
	// default for a system with no flags set.
	Blocking = system.Blocking
	// NonBlocking runs on a background worker, persisting across ticks via
	// a reservation instead of completing within the tick that launched it.
	NonBlocking = system.NonBlocking
	// HasRequirements escalates a failed resource-criteria check to a panic
	// instead of silently skipping the system for the tick.
	HasRequirements = system.HasRequirements
	// NotBlacklisted escalates a blacklist block to a panic instead of
	// silently skipping the system for the tick.
	NotBlacklisted = system.NotBlacklisted
)

// Flags is a small set of Flag values.
type Flags = system.Flags

// NewFlags builds a Flags set from the given values.
func NewFlags(fs ...Flag) Flags { return system.NewFlags(fs...) }

// Ordering is a system's declared position relative to its peers: Before
// lists systems this one must run ahead of, After lists systems it must run
// behind, and Priority is a soft tiebreak used only when ordering alone
// leaves a choice.
type Ordering = system.Ordering

// WakeUp decides whether a system fires against the current event set. See
// event.go.

// Criteria reports whether the scheduler currently owns every resource
// type a system's parameters require.
type Criteria = system.Criteria

// AlwaysWakes is a WakeUp that fires unconditionally, for systems driven
// purely by phase and ordering rather than symbolic events.
func AlwaysWakes(*EventSet) bool { return true }

// AlwaysPasses is a Criteria that always reports satisfied, for systems
// with no resource-presence requirement.
func AlwaysPasses(map[reflect.Type]struct{}) bool { return true }

// EventSet is the public alias for the live event set a WakeUp predicate
// inspects.
type EventSet = events.CurrentEvents

// System is a registered system together with the scheduling metadata the
// dispatcher needs to decide, each tick, whether and how to run it.
type System = system.Stored

// SyncBody runs to completion before returning. reservation is non-nil
// only for a system registered with needsOwnResource set.
type SyncBody = system.SyncFunc

// AsyncBody starts work and returns a task the dispatcher polls across
// subsequent passes until it reports ready.
type AsyncBody = system.AsyncFunc

// Task is polled by the dispatcher until an async system's work completes.
type Task = system.Task

// NewSyncSystem registers a synchronous system under name, with the given
// wake-up predicate, resource criteria, ordering, flags, and declared
// accesses. needsOwnResource requests a dedicated per-system resource
// reservation (acquired before body runs, released after).
func NewSyncSystem(name string, body SyncBody, wake WakeUp, test Criteria, ordering Ordering, flags Flags, accesses *Accesses, needsOwnResource bool) *System {
	return system.NewSync(name, body, wake, test, ordering, flags, accesses, needsOwnResource)
}

// NewAsyncSystem registers an asynchronous system the same way
// NewSyncSystem does, except body returns a Task the foreground dispatcher
// polls across passes instead of blocking until completion. Async systems
// run in the foreground phases only; BackgroundStart rejects one flagged
// NonBlocking.
func NewAsyncSystem(name string, body AsyncBody, wake WakeUp, test Criteria, ordering Ordering, flags Flags, accesses *Accesses, needsOwnResource bool) *System {
	return system.NewAsync(name, body, wake, test, ordering, flags, accesses, needsOwnResource)
}

// Before returns an Ordering whose Before list is the hash of each named
// system, for registering this system ahead of them.
func Before(names ...string) Ordering {
	o := Ordering{}
	for _, n := range names {
		o.Before = append(o.Before, ids.SystemIdFromName(n))
	}
	return o
}

// After returns an Ordering whose After list is the hash of each named
// system, for registering this system behind them.
func After(names ...string) Ordering {
	o := Ordering{}
	for _, n := range names {
		o.After = append(o.After, ids.SystemIdFromName(n))
	}
	return o
}
