package bus

// Reader iterates the current read buffer snapshot (the previous tick's
// writes). It supports per-event cancellation via Cancel() during
// iteration and exposes the current event's cancellation state via
// IsCancelled(). For batch extraction, use Drain or DrainTo.
type Reader[T any] struct {
	store *store[T]
	cur   *entry[T]
}

// Cancel marks the current event as cancelled. Call inside the ForEach callback.
func (r *Reader[T]) Cancel() {
	if r.cur != nil {
		r.cur.markCancelled()
	}
}

// IsCancelled reports whether the current event has been cancelled by any reader.
func (r *Reader[T]) IsCancelled() bool {
	if r.cur == nil {
		return false
	}
	return r.cur.cancelled.Load()
}

// ForEach iterates the current read buffer snapshot. The callback should
// return false to stop iteration early. Handles completion tracking even
// with early exits.
func (r *Reader[T]) ForEach(yield func(T) bool) {
	entries := r.store.snapshotEntries()
	if len(entries) == 0 {
		return
	}

	for _, ent := range entries {
		if !ent.IsDone() {
			ent.pending.Add(1)
		}
	}

	for i, ent := range entries {
		r.cur = ent
		if !ent.IsDone() {
			if !yield(ent.val) {
				ent.dec()
				for j := i + 1; j < len(entries); j++ {
					entries[j].dec()
				}
				break
			}
		}
		ent.dec()
	}
	r.cur = nil
}

// Drain returns a copy of the values in the current read buffer; the buffer
// itself is left in place until the next Advance. Does not register
// readers, so writers depend on CompleteNoReader to resolve.
func (r Reader[T]) Drain() []T {
	return r.store.drain()
}

// DrainTo fills dst with events from the current read buffer, returning the
// number written.
func (r Reader[T]) DrainTo(dst []T) int {
	if len(dst) == 0 {
		return 0
	}
	vals := r.store.drain()
	n := min(len(vals), len(dst))
	copy(dst, vals[:n])
	return n
}
