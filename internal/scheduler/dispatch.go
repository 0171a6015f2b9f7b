package scheduler

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/forgelabs/pulse/internal/diag"
	"github.com/forgelabs/pulse/internal/graph"
	"github.com/forgelabs/pulse/internal/ids"
	"github.com/forgelabs/pulse/internal/resource"
	"github.com/forgelabs/pulse/internal/system"
)

// systemError pairs a failed system's id with the error its body returned.
type systemError struct {
	Id  ids.SystemId
	Err error
}

func (e systemError) Error() string {
	return fmt.Sprintf("system %v: %v", e.Id, e.Err)
}

// parkedTask is an async system a worker launched but whose task has not
// yet resolved; kept worker-local, exactly as the original's hand-rolled
// Future::poll loop only ever re-polls a task from the worker that owns it.
type parkedTask struct {
	graphIdx    int
	id          ids.SystemId
	reservation *resource.Handle
	started     time.Time
}

// dispatchForeground runs spec §4.7's parallel dispatcher over one phase's
// candidate set, spread across up to workers goroutines. Every returned
// error wraps a system body's non-nil return value; the system still
// reaches Executed (failure does not block its peers or the phase).
func dispatchForeground(
	candidates []*system.Stored,
	workers int,
	resources *resource.Map,
	reservations *reservationTable,
	diagnose diag.Diagnostics,
	phaseName string,
) []error {
	if len(candidates) == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}

	byId := make(map[ids.SystemId]*system.Stored, len(candidates))
	members := make([]graph.Member, len(candidates))
	for i, s := range candidates {
		s.Reset()
		byId[s.Id] = s
		members[i] = graph.Member{Id: s.Id, Before: s.Ordering.Before, After: s.Ordering.After}
	}

	var groups [][]graph.Member
	if len(candidates) > workers {
		groups = graph.Partition(members)
	} else {
		groups = [][]graph.Member{members}
	}

	graphs := make([]*graph.Graph, len(groups))
	for i, g := range groups {
		graphs[i] = graph.Build(g)
	}
	graphCount := len(graphs)
	graphFinished := make([]atomic.Bool, graphCount)

	var outstanding atomic.Int64
	outstanding.Store(int64(graphCount))

	var errMu sync.Mutex
	var errs []error
	recordErr := func(id ids.SystemId, err error) {
		errMu.Lock()
		errs = append(errs, systemError{Id: id, Err: err})
		errMu.Unlock()
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		start := (w * graphCount) / workers
		go func(start int) {
			defer wg.Done()
			dispatchWorker(start, graphs, byId, resources, reservations, diagnose, phaseName, &outstanding, graphFinished, recordErr)
		}(start)
	}
	wg.Wait()

	return errs
}

// dispatchWorker is one worker's event loop, ported from spec §4.7's
// pseudocode: walk graphs round-robin starting at start, claiming and
// running Ready leaves, re-polling this worker's own parked async tasks
// once per inner-loop pass, and marking a graph finished (decrementing the
// shared outstanding counter exactly once) once every node in it is
// Complete. A worker that finds no leaves in an unfinished graph (its
// remaining nodes are blocked or executing elsewhere) moves on to the next.
func dispatchWorker(
	start int,
	graphs []*graph.Graph,
	byId map[ids.SystemId]*system.Stored,
	resources *resource.Map,
	reservations *reservationTable,
	diagnose diag.Diagnostics,
	phaseName string,
	outstanding *atomic.Int64,
	graphFinished []atomic.Bool,
	recordErr func(ids.SystemId, error),
) {
	graphCount := len(graphs)
	current := start
	var parked []parkedTask

	for outstanding.Load() > 0 {
		g := graphs[current]
		chain := 0
		for {
			if g.Finished() {
				if graphFinished[current].CompareAndSwap(false, true) {
					outstanding.Add(-1)
				}
				break
			}
			leaves := g.Leaves()
			if len(leaves) == 0 || chain > 2*len(leaves) {
				break
			}

			h := leaves[chain%len(leaves)]
			switch h.Status() {
			case graph.Ready:
				s := byId[h.Id()]
				if reservations.TryClaim(h, s) {
					chain = 0
					runClaimedSystem(g, current, h, s, resources, reservations, diagnose, phaseName, &parked, recordErr)
				} else {
					chain++
				}
			default: // Pending (claimed elsewhere) or a transient race on Executing/Complete
				chain++
			}

			parked = pollParked(parked, graphs, byId, reservations, diagnose, phaseName, recordErr)
		}
		current = (current + 1) % graphCount
	}
}

// runClaimedSystem executes a leaf this worker just won TryClaim for: a
// synchronous system runs to completion inline; an asynchronous one is
// polled once, completing immediately if ready or parking into the
// worker-local list otherwise.
func runClaimedSystem(
	g *graph.Graph,
	graphIdx int,
	h graph.LeafHandle,
	s *system.Stored,
	resources *resource.Map,
	reservations *reservationTable,
	diagnose diag.Diagnostics,
	phaseName string,
	parked *[]parkedTask,
	recordErr func(ids.SystemId, error),
) {
	reservation := s.AcquireReservation()
	started := time.Now()
	diagnose.SystemStart(s.DisplayName, phaseName)

	if !s.IsAsync() {
		err := s.RunSync(resources, reservation)
		completeClaimed(g, s, reservation, reservations, diagnose, phaseName, started, err, recordErr)
		return
	}

	ready, err := s.StartAsync(resources, reservation)
	if ready {
		completeClaimed(g, s, reservation, reservations, diagnose, phaseName, started, err, recordErr)
		return
	}
	h.MarkPending()
	*parked = append(*parked, parkedTask{graphIdx: graphIdx, id: s.Id, reservation: reservation, started: started})
}

// completeClaimed marks a system's graph node Complete and releases its
// reservations, for either a synchronous run or an async task that
// resolved (on first poll or a later one).
func completeClaimed(
	g *graph.Graph,
	s *system.Stored,
	reservation *resource.Handle,
	reservations *reservationTable,
	diagnose diag.Diagnostics,
	phaseName string,
	started time.Time,
	err error,
	recordErr func(ids.SystemId, error),
) {
	g.MarkComplete(s.Id)
	reservations.Remove(s.Id)
	if reservation != nil {
		reservation.Release()
	}
	diagnose.SystemEnd(s.DisplayName, phaseName, err, time.Since(started))
	if err != nil {
		recordErr(s.Id, err)
	}
}

// pollParked polls every worker-local parked task once, completing those
// that resolved and returning the still-pending remainder.
func pollParked(
	parked []parkedTask,
	graphs []*graph.Graph,
	byId map[ids.SystemId]*system.Stored,
	reservations *reservationTable,
	diagnose diag.Diagnostics,
	phaseName string,
	recordErr func(ids.SystemId, error),
) []parkedTask {
	remaining := parked[:0]
	for _, p := range parked {
		s := byId[p.id]
		ready, err := s.PollAsync()
		if !ready {
			remaining = append(remaining, p)
			continue
		}
		completeClaimed(graphs[p.graphIdx], s, p.reservation, reservations, diagnose, phaseName, p.started, err, recordErr)
	}
	return remaining
}
