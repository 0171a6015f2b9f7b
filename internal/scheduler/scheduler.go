// Package scheduler drives the seven-phase tick cycle: candidate filtering,
// parallel DAG dispatch, and background system launch/harvest, wired around
// the shared resource map, the symbolic event/interrupt pools, and the
// per-phase blacklists.
package scheduler

import (
	"reflect"
	"sync"
	"time"

	"github.com/forgelabs/pulse/internal/access"
	"github.com/forgelabs/pulse/internal/blacklist"
	"github.com/forgelabs/pulse/internal/bus"
	"github.com/forgelabs/pulse/internal/diag"
	"github.com/forgelabs/pulse/internal/events"
	"github.com/forgelabs/pulse/internal/ids"
	"github.com/forgelabs/pulse/internal/phase"
	"github.com/forgelabs/pulse/internal/resource"
	"github.com/forgelabs/pulse/internal/system"
	"github.com/forgelabs/pulse/internal/tick"
)

// Scheduler owns every registered system, the shared resource map, the
// symbolic event and interrupt pools, the phase blacklists, the access
// reservation table, and the background manager, and drives one tick's
// cycle via Tick.
type Scheduler struct {
	mu      sync.RWMutex
	systems map[ids.SystemId]*system.Stored

	resources *resource.Map
	staging   *resource.Map // NewResources: written during a tick, merged at Movement

	newEvents         *events.NewEvents
	currentEvents     *events.CurrentEvents
	newInterrupts     *events.NewInterrupts
	currentInterrupts *events.CurrentInterrupts

	bubblesMu sync.RWMutex
	bubbles   []*events.Bubble
	catfish   []events.Catfish

	blacklists   *blacklist.Registry
	reservations *reservationTable
	background   *backgroundManager

	// events is the typed payload bus systems may use alongside the
	// symbolic CurrentEvents/NewEvents pools; advanced once per tick at
	// Movement, the same point the staging resource map merges.
	events *bus.Bus

	workers  int
	diagnose diag.Diagnostics

	currentTick *tick.CurrentTick
}

// New creates a Scheduler with workers dispatch workers (clamped to at
// least 1) and the given diagnostics sink (diag.Nop{} if nil). It seeds the
// default blacklist rules protecting scheduler bookkeeping resources and
// registers the built-in tick-incrementor system against PreProcessing.
func New(workers int, diagnose diag.Diagnostics) *Scheduler {
	if workers < 1 {
		workers = 1
	}
	if diagnose == nil {
		diagnose = diag.Nop{}
	}

	s := &Scheduler{
		systems:           make(map[ids.SystemId]*system.Stored),
		resources:         resource.NewMap(),
		staging:           resource.NewMap(),
		newEvents:         events.NewNewEvents(),
		currentEvents:     events.NewCurrentEvents(),
		newInterrupts:     events.NewNewInterrupts(),
		currentInterrupts: events.NewCurrentInterrupts(),
		blacklists:        blacklist.NewRegistry(),
		reservations:      newReservationTable(),
		background:        newBackgroundManager(),
		events:            bus.NewBus(diagnose),
		workers:           workers,
		diagnose:          diagnose,
		currentTick:       tick.NewCurrentTick(),
	}

	resource.Insert(s.resources, s.currentTick)
	// Matches the original's default blacklist set exactly: NewResources,
	// CurrentEvents, CurrentInterrupts, and the blacklist registry itself
	// are perpetually protected from unique access; CurrentTick gets its
	// own narrower Processing/PostProcessing-only block below.
	bookkeeping := []reflect.Type{
		reflect.TypeOf(s.staging),
		reflect.TypeOf(s.currentEvents),
		reflect.TypeOf(s.currentInterrupts),
		reflect.TypeOf(s.blacklists),
	}
	blacklist.InstallDefaults(s.blacklists, bookkeeping, reflect.TypeOf(s.currentTick))
	s.registerTickIncrementor()
	return s
}

func phaseEventId(p phase.Phase) ids.EventId {
	return ids.EventIdFromName("phase:" + p.String())
}

// registerTickIncrementor wires the built-in tick-incrementor system, grounded
// on the original's tick_incrementor: wakes only against the PreProcessing
// marker and advances CurrentTick's counter, Dt, and Time by one increment.
func (s *Scheduler) registerTickIncrementor() {
	accesses := access.NewAccesses()
	accesses.Scheduler.Add(reflect.TypeOf(s.currentTick), access.Unique)

	body := func(resources *resource.Map, _ *resource.Handle) error {
		if t := resource.GetPtr[tick.CurrentTick](resources); t != nil {
			t.Increment()
		}
		return nil
	}
	wakeUp := func(current *events.CurrentEvents) bool {
		return current.Contains(phaseEventId(phase.PreProcessing))
	}
	test := func(map[reflect.Type]struct{}) bool { return true }

	stored := system.NewSync(
		"pulse.tick-incrementor",
		body,
		wakeUp,
		test,
		system.Ordering{},
		system.NewFlags(system.Blocking, system.NotBlacklisted),
		accesses,
		false,
	)
	s.systems[stored.Id] = stored
}

// InsertSystem registers s, keyed by its id. Re-registering the same id
// (same display name) replaces the prior entry.
func (s *Scheduler) InsertSystem(stored *system.Stored) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.systems[stored.Id] = stored
}

// InsertBubble registers a bubble, evaluated every Ticking phase.
func (s *Scheduler) InsertBubble(b *events.Bubble) {
	s.bubblesMu.Lock()
	defer s.bubblesMu.Unlock()
	s.bubbles = append(s.bubbles, b)
}

// InsertCatfish registers a catfish rewrite rule, applied every Ticking
// phase after bubbles evaluate.
func (s *Scheduler) InsertCatfish(c events.Catfish) {
	s.bubblesMu.Lock()
	defer s.bubblesMu.Unlock()
	s.catfish = append(s.catfish, c)
}

// InsertNewEvent posts event into the write-side pool, visible in
// CurrentEvents starting next tick.
func (s *Scheduler) InsertNewEvent(event ids.EventId) {
	s.newEvents.Insert(event)
}

// InsertNewInterrupt marks sys to be skipped (not run) next tick.
func (s *Scheduler) InsertNewInterrupt(sys ids.SystemId) {
	s.newInterrupts.Insert(sys)
}

// Resources returns the scheduler's shared resource map, for direct
// resolver use outside a system body (e.g. seeding initial resources).
func (s *Scheduler) Resources() *resource.Map { return s.resources }

// Resolve reads T from the scheduler's shared resource map from outside a
// system body — between ticks, from a diagnostics handler, from the demo
// CLI. It is access-checked the way the original's AccessCheckedResourceMap
// is: a Shared access to T is checked against every reservation currently
// held (foreground systems mid-run, background systems in flight); if any
// of them holds a conflicting access to T, Resolve reports ok=false instead
// of racing the live Get with whichever system is writing T.
func Resolve[T any](s *Scheduler) (value T, ok bool) {
	m := access.NewMap()
	m.Add(reflect.TypeFor[T](), access.Shared)
	if s.reservations.Conflicts(m) {
		var zero T
		return zero, false
	}
	return resource.Get[T](s.resources)
}

// Staging returns the per-tick staging map merged into Resources at
// Movement — the Go analogue of NewResources.
func (s *Scheduler) Staging() *resource.Map { return s.staging }

// Events returns the scheduler's typed payload bus, for systems and callers
// that need to pass a value alongside (rather than just naming) a symbolic
// event. Advanced once per tick, at Movement.
func (s *Scheduler) Events() *bus.Bus { return s.events }

// CurrentTick returns the scheduler's current tick count.
func (s *Scheduler) CurrentTick() tick.Tick {
	if s.currentTick == nil {
		return 0
	}
	return s.currentTick.Tick
}

// CurrentTickResource returns the full bookkeeping resource (counter, Dt,
// and the timestamp of the last increment), for callers that need more than
// the raw counter — e.g. a diagnostics sink reporting wall-clock drift.
func (s *Scheduler) CurrentTickResource() tick.CurrentTick {
	if s.currentTick == nil {
		return tick.CurrentTick{}
	}
	return *s.currentTick
}

// ownedResourceTypes snapshots every type currently present in the shared
// resource map, for system criteria checks.
func (s *Scheduler) ownedResourceTypes() map[reflect.Type]struct{} {
	keys := s.resources.Keys()
	out := make(map[reflect.Type]struct{}, len(keys))
	for _, t := range keys {
		out[t] = struct{}{}
	}
	return out
}

func (s *Scheduler) snapshotSystems() []*system.Stored {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*system.Stored, 0, len(s.systems))
	for _, sys := range s.systems {
		out = append(out, sys)
	}
	return out
}

// Tick runs one full Ticking -> PreProcessing -> Processing ->
// PostProcessing -> BackgroundEnd -> BackgroundStart -> Movement cycle.
// Every system body error is collected (and logged via diag) rather than
// aborting the tick; a panic escalated by HasRequirements or NotBlacklisted
// propagates to the caller, who is expected to recover it, reset the
// offending system (system.Stored.Reset) and continue next tick.
func (s *Scheduler) Tick() []error {
	var errs []error

	s.diagnose.BeginTick()
	s.runTicking()
	errs = append(errs, s.runForegroundPhase(phase.PreProcessing)...)
	errs = append(errs, s.runForegroundPhase(phase.Processing)...)
	errs = append(errs, s.runForegroundPhase(phase.PostProcessing)...)
	errs = append(errs, s.runBackgroundEnd()...)
	errs = append(errs, s.runBackgroundStart()...)
	s.runMovement()

	return errs
}

func (s *Scheduler) runTicking() {
	started := time.Now()
	name := phase.Ticking.String()
	s.diagnose.PhaseStart(name)
	defer func() { s.diagnose.PhaseEnd(name, time.Since(started)) }()

	s.currentEvents.Tick(s.newEvents)

	s.bubblesMu.RLock()
	for _, b := range s.bubbles {
		if b.Evaluate(s.currentEvents, s.newEvents) {
			s.diagnose.EventEmit(b.Name, 1)
		}
	}
	events.ApplyAll(s.catfish, s.currentEvents)
	s.bubblesMu.RUnlock()

	s.currentInterrupts.Tick(s.newInterrupts)
	s.currentInterrupts.Extend(s.background.Running())

	s.blacklists.TickAll()
}

// runForegroundPhase implements spec §4.5 for one of PreProcessing,
// Processing, or PostProcessing: insert the phase marker event (removed on
// return so it scopes only this phase's wake-ups), build the candidate set,
// post a "this system is about to run" event per chosen system, and
// dispatch.
func (s *Scheduler) runForegroundPhase(p phase.Phase) []error {
	started := time.Now()
	name := p.String()
	s.diagnose.PhaseStart(name)
	defer func() { s.diagnose.PhaseEnd(name, time.Since(started)) }()

	marker := phaseEventId(p)
	s.currentEvents.Insert(marker)
	defer s.currentEvents.Remove(marker)

	candidates := buildCandidates(
		s.snapshotSystems(),
		system.Blocking,
		s.currentEvents,
		s.currentInterrupts,
		s.ownedResourceTypes(),
		s.blacklists.For(p),
	)

	for _, c := range candidates {
		s.newEvents.Insert(ids.EventId(c.Id))
	}

	return dispatchForeground(candidates, s.workers, s.resources, s.reservations, s.diagnose, name)
}

// runBackgroundEnd implements spec §4.4 step 5: harvest every background
// system whose worker finished, emitting its id as an event per the
// original's insert_new_event-on-harvest.
func (s *Scheduler) runBackgroundEnd() []error {
	started := time.Now()
	name := phase.BackgroundEnd.String()
	s.diagnose.PhaseStart(name)
	defer func() { s.diagnose.PhaseEnd(name, time.Since(started)) }()

	s.mu.RLock()
	byId := s.systems
	s.mu.RUnlock()

	var errs []error
	for _, h := range s.background.Harvest(s.reservations, byId) {
		s.diagnose.BackgroundHarvest(displayNameOr(byId, h.Id), time.Since(started))
		s.newEvents.Insert(ids.EventId(h.Id))
		if h.Err != nil {
			errs = append(errs, systemError{Id: h.Id, Err: h.Err})
		}
	}
	return errs
}

func displayNameOr(byId map[ids.SystemId]*system.Stored, id ids.SystemId) string {
	if s, ok := byId[id]; ok {
		return s.DisplayName
	}
	return "unknown"
}

// runBackgroundStart implements spec §4.4 step 6 / §4.8: insert the
// BackgroundStart marker, extend interrupts with already-running background
// systems, and launch every newly eligible NonBlocking system.
func (s *Scheduler) runBackgroundStart() []error {
	started := time.Now()
	name := phase.BackgroundStart.String()
	s.diagnose.PhaseStart(name)
	defer func() { s.diagnose.PhaseEnd(name, time.Since(started)) }()

	marker := phaseEventId(phase.BackgroundStart)
	s.currentEvents.Insert(marker)
	defer s.currentEvents.Remove(marker)

	s.currentInterrupts.Extend(s.background.Running())

	errs := s.background.Launch(
		s.snapshotSystems(),
		s.resources,
		s.reservations,
		s.currentEvents,
		s.currentInterrupts,
		s.ownedResourceTypes(),
		s.blacklists.For(phase.BackgroundStart),
	)
	return errs
}

// runMovement implements spec §4.4 step 7: conservatively merge the per-tick
// staging map into the shared resource map. Collisions are logged, not
// fatal — the colliding resource is dropped and every other type in staging
// still merges.
func (s *Scheduler) runMovement() {
	started := time.Now()
	name := phase.Movement.String()
	s.diagnose.PhaseStart(name)
	defer func() { s.diagnose.PhaseEnd(name, time.Since(started)) }()

	if err := s.resources.ConservativelyMerge(s.staging); err != nil {
		s.diagnose.SystemEnd("pulse.movement-merge", name, err, 0)
	}

	s.events.CompleteNoReader()
	s.events.Advance()
}
