package scheduler

import (
	"sync"

	"github.com/forgelabs/pulse/internal/access"
	"github.com/forgelabs/pulse/internal/graph"
	"github.com/forgelabs/pulse/internal/ids"
	"github.com/forgelabs/pulse/internal/system"
)

// reservationTable is the scheduler-global record of which systems
// currently hold a live access grant — every foreground system while it
// runs, and every background system for its entire launch-to-harvest
// lifetime. Its operations admit (TryInsert, TryClaim), release (Remove), or
// test for a conflict without inserting (Conflicts); the table itself never
// ranks or orders its entries.
type reservationTable struct {
	mu      sync.Mutex
	entries map[ids.SystemId]*access.Map
}

func newReservationTable() *reservationTable {
	return &reservationTable{entries: make(map[ids.SystemId]*access.Map)}
}

// TryInsert admits id with accesses m if m conflicts with no currently held
// reservation, inserting it atomically with the check. Returns false (no
// insertion) on conflict.
func (t *reservationTable) TryInsert(id ids.SystemId, m *access.Map) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, held := range t.entries {
		if m.Conflicts(held) {
			return false
		}
	}
	t.entries[id] = m
	return true
}

// Remove releases id's reservation, if any.
func (t *reservationTable) Remove(id ids.SystemId) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, id)
}

// Conflicts reports whether m conflicts with any currently held
// reservation, without inserting anything — used by Resolve to check a read
// from outside a system body against the live reservations.
func (t *reservationTable) Conflicts(m *access.Map) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, held := range t.entries {
		if m.Conflicts(held) {
			return true
		}
	}
	return false
}

// TryClaim transitions a graph leaf from Ready to Executing and admits the
// matching system's System-half accesses as a reservation, as one
// critical section guarded by the table's own lock — mirroring the
// original dispatcher's nested status-mutex-inside-reservation-lock
// critical section. On an access conflict the graph claim is rolled back
// to Ready via LeafHandle.Abort so another worker may retry the same leaf
// on a later pass; the system's own status is likewise left at Init.
func (t *reservationTable) TryClaim(h graph.LeafHandle, s *system.Stored) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !h.TryClaim() {
		return false
	}
	for _, held := range t.entries {
		if s.Accesses.System.Conflicts(held) {
			h.Abort()
			return false
		}
	}
	t.entries[s.Id] = s.Accesses.System
	s.TryBegin()
	return true
}
