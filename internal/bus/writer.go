package bus

import (
	"context"
	"runtime"
	"time"
)

// Writer appends events to the current tick's write buffer. Use
// EmitResult/EmitAndWait to observe completion and cancellation; Emit is
// fire-and-forget.
type Writer[T any] struct {
	store *store[T]
}

// Emit appends an event (fire-and-forget).
func (w Writer[T]) Emit(v T) {
	if w.store == nil {
		return
	}
	_ = w.store.appendEntry(v)
}

// EmitResult appends an event and returns a handle to wait for completion/cancellation.
func (w Writer[T]) EmitResult(v T) EventResult[T] {
	if w.store == nil {
		return EventResult[T]{}
	}
	ent := w.store.appendEntry(v)
	return EventResult[T]{ent: ent}
}

// EmitAndWait emits and waits on completion, returning true if cancelled.
func (w Writer[T]) EmitAndWait(ctx context.Context, v T) bool {
	return w.EmitResult(v).Wait(ctx)
}

// EmitMany appends multiple events in one critical section.
func (w Writer[T]) EmitMany(vals []T) {
	if w.store == nil || len(vals) == 0 {
		return
	}
	w.store.appendMany(vals)
}

// EventResult is a handle to observe completion and cancellation for a
// single emitted event.
type EventResult[T any] struct {
	ent *entry[T]
}

// Valid reports whether this result refers to a real emitted event.
func (r EventResult[T]) Valid() bool {
	return r.ent != nil
}

// Cancelled reports the current cancellation state without waiting.
func (r EventResult[T]) Cancelled() bool {
	if r.ent == nil {
		return false
	}
	return r.ent.cancelled.Load()
}

// Wait blocks until the event has been processed by every reader that
// started for the tick, or until ctx is done. Returns true if cancelled.
func (r EventResult[T]) Wait(ctx context.Context) bool {
	if r.ent == nil {
		return false
	}
	if r.ent.IsDone() {
		return r.ent.cancelled.Load()
	}

	done := r.ent.ensureDoneChan()
	select {
	case <-done:
		return r.ent.cancelled.Load()
	case <-ctx.Done():
		return r.ent.cancelled.Load()
	}
}

// WaitCancelled returns as soon as either a reader cancels the event, the
// event completes, or ctx is done.
func (r EventResult[T]) WaitCancelled(ctx context.Context) bool {
	if r.ent == nil {
		return false
	}
	if r.ent.cancelled.Load() {
		return true
	}
	if r.ent.IsDone() {
		return r.ent.cancelled.Load()
	}

	const spins = 4
	for range spins {
		if r.ent.cancelled.Load() {
			return true
		}
		if r.ent.IsDone() {
			return r.ent.cancelled.Load()
		}
		if ctx.Err() != nil {
			return r.ent.cancelled.Load()
		}
		runtime.Gosched()
	}

	ticker := time.NewTicker(250 * time.Microsecond)
	defer ticker.Stop()

	for {
		if r.ent.cancelled.Load() {
			return true
		}
		if r.ent.IsDone() {
			return r.ent.cancelled.Load()
		}
		done := r.ent.ensureDoneChan()
		select {
		case <-ctx.Done():
			return r.ent.cancelled.Load()
		case <-done:
			return r.ent.cancelled.Load()
		case <-ticker.C:
		}
	}
}
