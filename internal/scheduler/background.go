package scheduler

import (
	"errors"
	"reflect"
	"sync"

	"github.com/forgelabs/pulse/internal/blacklist"
	"github.com/forgelabs/pulse/internal/events"
	"github.com/forgelabs/pulse/internal/ids"
	"github.com/forgelabs/pulse/internal/resource"
	"github.com/forgelabs/pulse/internal/system"
)

// ErrAsyncBackgroundUnsupported is the body error recorded for a NonBlocking
// system whose body is asynchronous. Async background systems are reserved
// by the access model but not implemented in this version; rejecting them
// explicitly here is preferable to silently running them as if they were
// synchronous.
var ErrAsyncBackgroundUnsupported = errors.New("async background systems are not supported")

// backgroundRun is one NonBlocking system launched on its own goroutine,
// tracked from BackgroundStart admission through BackgroundEnd harvest.
type backgroundRun struct {
	reservation *resource.Handle
	done        chan error
}

// backgroundManager tracks in-flight background systems. It shares the
// scheduler's single reservationTable with the foreground dispatcher — the
// original reserves background accesses and foreground accesses in the very
// same map, passed by reference into each phase's dispatch call, so a
// foreground system can never run concurrently with a background one that
// touches the same resource and vice versa.
type backgroundManager struct {
	mu      sync.Mutex
	running map[ids.SystemId]*backgroundRun
}

func newBackgroundManager() *backgroundManager {
	return &backgroundManager{running: make(map[ids.SystemId]*backgroundRun)}
}

// IsRunning reports whether id currently has a launch in flight.
func (bm *backgroundManager) IsRunning(id ids.SystemId) bool {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	_, ok := bm.running[id]
	return ok
}

// Running returns every system id currently in flight, for forcing them
// into CurrentInterrupts each phase while they run — mirroring the
// original's current_background_systems feed into current_interrupts.
func (bm *backgroundManager) Running() []ids.SystemId {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	out := make([]ids.SystemId, 0, len(bm.running))
	for id := range bm.running {
		out = append(out, id)
	}
	return out
}

// Launch evaluates BackgroundStart admission for every NonBlocking system in
// systems: already-running systems and interrupted ones are skipped, then
// wake-up, criteria (escalating to panic under HasRequirements) and
// blacklist (escalating under NotBlacklisted) are checked exactly as
// buildCandidates checks them for the foreground set. A system that survives
// every check still must win a conflict-free admission into reservations
// before it launches; losing that race this tick is not an error, it simply
// tries again next time BackgroundStart runs.
func (bm *backgroundManager) Launch(
	systems []*system.Stored,
	resources *resource.Map,
	reservations *reservationTable,
	current *events.CurrentEvents,
	interrupts *events.CurrentInterrupts,
	owned map[reflect.Type]struct{},
	bl *blacklist.Blacklist,
) []error {
	var errs []error
	for _, s := range systems {
		if !s.Flags.Has(system.NonBlocking) {
			continue
		}
		if bm.IsRunning(s.Id) {
			continue
		}
		if interrupts.Contains(s.Id) {
			continue
		}
		if !s.WakeUp(current) {
			continue
		}
		if !s.Test(owned) {
			if s.Flags.Has(system.HasRequirements) {
				panic(&CriteriaPanic{DisplayName: s.DisplayName})
			}
			continue
		}
		if bl.CheckBlocked(s.Accesses.Scheduler) {
			if s.Flags.Has(system.NotBlacklisted) {
				panic(&BlacklistPanic{DisplayName: s.DisplayName})
			}
			continue
		}

		if s.IsAsync() {
			errs = append(errs, systemError{Id: s.Id, Err: ErrAsyncBackgroundUnsupported})
			continue
		}

		if !reservations.TryInsert(s.Id, s.Accesses.System) {
			continue
		}

		s.Reset()
		s.TryBegin()
		reservation := s.AcquireReservation()
		done := make(chan error, 1)

		bm.mu.Lock()
		bm.running[s.Id] = &backgroundRun{reservation: reservation, done: done}
		bm.mu.Unlock()

		go func(s *system.Stored, reservation *resource.Handle, done chan error) {
			done <- s.RunSync(resources, reservation)
		}(s, reservation, done)
	}
	return errs
}

// harvested describes one background system Harvest observed finished.
type harvested struct {
	Id  ids.SystemId
	Err error
}

// Harvest polls every in-flight background run once, non-blockingly.
// Finished systems release their reservation table entry and per-system
// resource handle and are reset to Init so a later BackgroundStart may
// relaunch them; the caller is responsible for emitting each finished id as
// an event, matching the original's insert_new_event on harvest.
func (bm *backgroundManager) Harvest(reservations *reservationTable, byId map[ids.SystemId]*system.Stored) []harvested {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	var out []harvested
	for id, run := range bm.running {
		select {
		case err := <-run.done:
			reservations.Remove(id)
			if run.reservation != nil {
				run.reservation.Release()
			}
			if s, ok := byId[id]; ok {
				s.Reset()
			}
			delete(bm.running, id)
			out = append(out, harvested{Id: id, Err: err})
		default:
		}
	}
	return out
}
