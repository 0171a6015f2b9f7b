// Package system wraps a registered system's callable body together with
// the scheduling metadata (wake-up predicate, ordering, flags, cached
// accesses, run status) the dispatcher needs to decide when and how to run
// it.
package system

import (
	"reflect"

	"github.com/forgelabs/pulse/internal/access"
	"github.com/forgelabs/pulse/internal/events"
	"github.com/forgelabs/pulse/internal/ids"
	"github.com/forgelabs/pulse/internal/resource"
)

// SyncFunc runs to completion before returning. reservation is nil unless
// the system declared it needs its own per-system resource map.
type SyncFunc func(resources *resource.Map, reservation *resource.Handle) error

// AsyncFunc starts work and returns a Task the dispatcher polls across
// subsequent passes until it reports ready.
type AsyncFunc func(resources *resource.Map, reservation *resource.Handle) Task

// Criteria reports whether the scheduler currently owns every resource type
// a system's parameters require. A system failing criteria is skipped for
// the tick unless it carries HasRequirements, in which case the scheduler
// treats the miss as a configuration error.
type Criteria func(owned map[reflect.Type]struct{}) bool

// Stored is a registered system together with everything the dispatcher
// needs to decide, each tick, whether and how to run it.
type Stored struct {
	Id          ids.SystemId
	DisplayName string

	sync  SyncFunc
	async AsyncFunc

	WakeUp   events.Predicate
	Test     Criteria
	Ordering Ordering
	Flags    Flags
	Accesses *access.Accesses

	NeedsSystemResource bool
	reservation         *resource.Reservation

	status AtomicStatus
	task   Task
}

// NewSync registers a synchronous system.
func NewSync(name string, fn SyncFunc, wakeUp events.Predicate, test Criteria, ordering Ordering, flags Flags, accesses *access.Accesses, needsSystemResource bool) *Stored {
	s := newStored(name, wakeUp, test, ordering, flags, accesses, needsSystemResource)
	s.sync = fn
	return s
}

// NewAsync registers an asynchronous system.
func NewAsync(name string, fn AsyncFunc, wakeUp events.Predicate, test Criteria, ordering Ordering, flags Flags, accesses *access.Accesses, needsSystemResource bool) *Stored {
	s := newStored(name, wakeUp, test, ordering, flags, accesses, needsSystemResource)
	s.async = fn
	return s
}

func newStored(name string, wakeUp events.Predicate, test Criteria, ordering Ordering, flags Flags, accesses *access.Accesses, needsSystemResource bool) *Stored {
	s := &Stored{
		Id:                  ids.SystemIdFromName(name),
		DisplayName:         name,
		WakeUp:              wakeUp,
		Test:                test,
		Ordering:            ordering,
		Flags:               flags,
		Accesses:            accesses,
		NeedsSystemResource: needsSystemResource,
	}
	if needsSystemResource {
		s.reservation = resource.NewReservation()
	}
	return s
}

// IsAsync reports whether the system's body is an AsyncFunc rather than a
// SyncFunc.
func (s *Stored) IsAsync() bool {
	return s.async != nil
}

// Status returns the system's current run status.
func (s *Stored) Status() Status {
	return s.status.Load()
}

// Reset returns the system to Init, abandoning any prior claim. The
// dispatcher calls it on every candidate before each foreground phase's
// dispatch. The scheduler installs no panic recovery of its own; a caller
// that recovers a panic out of Tick may call it to discard a mid-flight
// attempt.
func (s *Stored) Reset() {
	s.status.Reset()
	s.task = nil
}

// TryBegin attempts to claim the system for execution this tick. Only one
// racing worker ever observes true for a given tick.
func (s *Stored) TryBegin() bool {
	return s.status.TryBegin()
}

// AcquireReservation claims the system's per-system resource reservation,
// blocking until available. Returns nil if the system declared it needs no
// system resource.
func (s *Stored) AcquireReservation() *resource.Handle {
	if s.reservation == nil {
		return nil
	}
	return s.reservation.Acquire()
}

// RunSync invokes a synchronous system's body directly and marks it
// Executed.
func (s *Stored) RunSync(resources *resource.Map, reservation *resource.Handle) error {
	err := s.sync(resources, reservation)
	s.status.MarkExecuted()
	return err
}

// StartAsync launches an asynchronous system's body and polls it once
// immediately: a task that resolves on its very first poll completes within
// the same dispatch step a synchronous system would. One that doesn't
// transitions the system to Pending and is retained for PollAsync.
func (s *Stored) StartAsync(resources *resource.Map, reservation *resource.Handle) (ready bool, err error) {
	s.task = s.async(resources, reservation)
	ready, err = s.task.Poll()
	if ready {
		s.status.MarkExecuted()
	} else {
		s.status.MarkPending()
	}
	return ready, err
}

// PollAsync re-polls a Pending system's previously-started task.
func (s *Stored) PollAsync() (ready bool, err error) {
	ready, err = s.task.Poll()
	if ready {
		s.status.MarkExecuted()
		s.task = nil
	}
	return ready, err
}
