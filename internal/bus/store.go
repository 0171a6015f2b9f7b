// Package bus is a generational, per-type payload event system layered on
// top of the scheduler's symbolic events (package events). Where a symbolic
// event is just an EventId a system can test for, a bus event carries a
// typed value and tracks, per emission, whether every reader that started
// for the tick has finished with it — and whether any of them cancelled it.
package bus

import (
	"sync"
	"sync/atomic"

	"github.com/forgelabs/pulse/internal/diag"
)

var closedCh = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// entry represents a single emitted event and tracks its lifecycle.
//
//   - pending: number of readers currently registered to process this entry.
//   - cancelled: set to true if any reader cancels while processing this entry.
//   - done: completion signal, closed exactly once when pending reaches zero or when
//     the system determines there will be no readers for the current tick.
//   - state: atomic bitset to guarantee single close without sync.Once.
type entry[T any] struct {
	val       T
	pending   atomic.Int32
	cancelled atomic.Bool
	done      chan struct{}
	doneMu    sync.Mutex
	state     atomic.Uint32 // bit0: 1 = completed (done closed)
}

func (s *store[T]) newEntry(v T, wantDone bool) *entry[T] {
	if x := s.entryPool.Get(); x != nil {
		e := x.(*entry[T])
		var zero T
		e.val = zero
		e.val = v
		e.pending.Store(0)
		e.cancelled.Store(false)
		e.state.Store(0)
		if wantDone {
			e.done = make(chan struct{})
		} else {
			e.done = nil
		}
		return e
	}
	if wantDone {
		return &entry[T]{val: v, done: make(chan struct{})}
	}
	return &entry[T]{val: v}
}

// dec decrements the pending reader count, completing the entry once the
// last registered reader has finished with it.
func (e *entry[T]) dec() {
	if e.pending.Add(-1) == 0 {
		e.close()
	}
}

// markCancelled sets the cancellation flag.
func (e *entry[T]) markCancelled() {
	e.cancelled.Store(true)
}

// IsDone reports whether the entry has completed.
func (e *entry[T]) IsDone() bool {
	return e.state.Load()&1 == 1
}

func (e *entry[T]) ensureDoneChan() chan struct{} {
	if e.done != nil {
		return e.done
	}
	e.doneMu.Lock()
	if e.done == nil {
		if e.IsDone() {
			e.done = closedCh
		} else {
			e.done = make(chan struct{})
		}
	}
	ch := e.done
	e.doneMu.Unlock()
	return ch
}

// close marks the entry done exactly once, closing its channel if present.
func (e *entry[T]) close() {
	if !e.state.CompareAndSwap(0, 1) {
		return
	}
	if e.done != nil {
		close(e.done)
		return
	}
	e.doneMu.Lock()
	if e.done == nil {
		e.done = closedCh
	}
	e.doneMu.Unlock()
}

// store is the per-type container for bus events. It is double-buffered:
// writers append to writeEnt, readers iterate readEnt.
type store[T any] struct {
	mu        sync.RWMutex
	readEnt   []*entry[T]
	writeEnt  []*entry[T]
	entryPool sync.Pool
	name      string
	diagnose  diag.Diagnostics
}

// appendEntry appends an event to the current write buffer and returns its entry.
func (s *store[T]) appendEntry(v T) *entry[T] {
	if s.diagnose != nil {
		s.diagnose.EventEmit(s.name, 1)
	}
	ent := s.newEntry(v, false)

	s.mu.Lock()
	s.writeEnt = append(s.writeEnt, ent)
	s.mu.Unlock()

	return ent
}

// appendMany appends multiple events in a single critical section.
func (s *store[T]) appendMany(vals []T) {
	if len(vals) == 0 {
		return
	}
	if s.diagnose != nil {
		s.diagnose.EventEmit(s.name, len(vals))
	}
	s.mu.Lock()
	for _, v := range vals {
		s.writeEnt = append(s.writeEnt, s.newEntry(v, false))
	}
	s.mu.Unlock()
}

// drain returns a copy of the read values, leaving the read buffer and its
// entries in place. Prefer Reader.ForEach for proper completion semantics.
func (s *store[T]) drain() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.readEnt) == 0 {
		return nil
	}
	out := make([]T, len(s.readEnt))
	for i, ent := range s.readEnt {
		out[i] = ent.val
	}
	return out
}

// snapshotEntries returns the current read entries slice without copying.
func (s *store[T]) snapshotEntries() []*entry[T] {
	s.mu.RLock()
	out := s.readEnt
	s.mu.RUnlock()
	return out
}

// completeNoReader closes completion signals for every read-buffer entry
// with no readers currently registered. Call once after a tick's systems
// have run and before advance(), so a writer's Wait never blocks forever
// on an event nothing ever reads.
func (s *store[T]) completeNoReader() {
	s.mu.RLock()
	entries := s.readEnt
	s.mu.RUnlock()
	for _, e := range entries {
		if e.pending.Load() == 0 {
			e.close()
		}
	}
}

// advance swaps write/read buffers and clears the new write buffer.
func (s *store[T]) advance() {
	s.mu.Lock()

	for _, e := range s.readEnt {
		e.close()
	}

	s.readEnt, s.writeEnt = s.writeEnt, s.readEnt

	if len(s.writeEnt) > 0 {
		for i := range s.writeEnt {
			e := s.writeEnt[i]
			var zero T
			e.val = zero
			s.entryPool.Put(e)
		}
		s.writeEnt = s.writeEnt[:0]
	}
	s.mu.Unlock()
}
