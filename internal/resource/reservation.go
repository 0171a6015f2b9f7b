package resource

import "sync/atomic"

// Reservation guards a per-system Map with single-owner, compare-and-swap
// semantics: at most one caller may hold the Map at a time, mirroring the
// scheduler's system-local scratch space (the Local borrow kind). Waiters
// either poll with TryAcquire or block with Acquire.
type Reservation struct {
	inUse     atomic.Bool
	resources *Map
	notify    chan struct{}
}

// NewReservation creates a reservation wrapping an empty resource Map.
func NewReservation() *Reservation {
	return &Reservation{resources: NewMap(), notify: make(chan struct{}, 1)}
}

// TryAcquire attempts to claim the reservation without blocking. On success
// it returns a *Handle that must be released via Handle.Release; on failure
// it returns nil.
func (r *Reservation) TryAcquire() *Handle {
	if !r.inUse.CompareAndSwap(false, true) {
		return nil
	}
	return &Handle{r: r}
}

// Acquire blocks until the reservation can be claimed.
func (r *Reservation) Acquire() *Handle {
	for {
		if h := r.TryAcquire(); h != nil {
			return h
		}
		<-r.notify
	}
}

func (r *Reservation) release() {
	r.inUse.Store(false)
	select {
	case r.notify <- struct{}{}:
	default:
	}
}

// Handle is a held reservation. Its Map must not escape past Release.
type Handle struct {
	r *Reservation
}

// Map returns the reserved resource map.
func (h *Handle) Map() *Map {
	return h.r.resources
}

// Release returns the reservation to the pool, waking one blocked Acquire
// caller if any.
func (h *Handle) Release() {
	h.r.release()
}
