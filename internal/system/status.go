package system

import "sync/atomic"

// Status is a system's position in its own run lifecycle, independent of
// the execution graph's per-tick node status (internal/graph.Status): this
// Status persists on the Stored system itself and survives across the
// dispatcher's Init -> Executing -> {Executed | Pending -> Executed} walk,
// while the graph's node status is rebuilt fresh for every tick's DAG.
type Status int32

const (
	// Init means the system has not been claimed for the current tick yet.
	Init Status = iota
	// Executing means a worker is actively running (or polling) it. Only
	// one worker may ever observe this transition for a given system,
	// enforced by TryBegin's compare-and-swap.
	Executing
	// Pending means an async system's task has not resolved yet; the
	// worker that launched it keeps the task parked and re-polls it until
	// it reports ready.
	Pending
	// Executed means the system finished this tick, synchronously or via
	// a since-resolved async task.
	Executed
)

func (s Status) String() string {
	switch s {
	case Init:
		return "Init"
	case Executing:
		return "Executing"
	case Pending:
		return "Pending"
	case Executed:
		return "Executed"
	default:
		return "Unknown"
	}
}

// AtomicStatus is a Status guarded for concurrent access by racing workers.
type AtomicStatus struct {
	v atomic.Int32
}

// Load returns the current status.
func (a *AtomicStatus) Load() Status {
	return Status(a.v.Load())
}

// TryBegin attempts the Init -> Executing transition; exactly one racing
// caller observes true. The dispatcher claims a system through its graph
// leaf's TryClaim and calls this only after that claim succeeds.
func (a *AtomicStatus) TryBegin() bool {
	return a.v.CompareAndSwap(int32(Init), int32(Executing))
}

// MarkPending transitions an Executing system to Pending (its async task
// returned not-ready). Only the worker that holds the Executing claim may
// call this.
func (a *AtomicStatus) MarkPending() {
	a.v.Store(int32(Pending))
}

// MarkExecuted transitions to Executed, from either Executing (synchronous
// completion, or an async task that resolved on first poll) or Pending (an
// async task resolving on a later poll).
func (a *AtomicStatus) MarkExecuted() {
	a.v.Store(int32(Executed))
}

// Reset returns the status to Init, for the next dispatch, or for a caller
// discarding a mid-flight attempt after recovering a panic.
func (a *AtomicStatus) Reset() {
	a.v.Store(int32(Init))
}
