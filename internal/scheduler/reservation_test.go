package scheduler

import (
	"reflect"
	"testing"

	"github.com/forgelabs/pulse/internal/access"
	"github.com/forgelabs/pulse/internal/graph"
	"github.com/forgelabs/pulse/internal/ids"
)

func mapWithUnique(v any) *access.Map {
	m := access.NewMap()
	m.Add(reflect.TypeOf(v), access.Unique)
	return m
}

func TestReservationTableTryInsertRejectsConflict(t *testing.T) {
	rt := newReservationTable()
	m := mapWithUnique(0)

	if !rt.TryInsert(ids.SystemIdFromName("a"), m) {
		t.Fatalf("first insert should succeed")
	}
	if rt.TryInsert(ids.SystemIdFromName("b"), mapWithUnique(0)) {
		t.Fatalf("second insert conflicting on the same type should fail")
	}
}

func TestReservationTableRemoveFreesSlot(t *testing.T) {
	rt := newReservationTable()
	id := ids.SystemIdFromName("a")
	rt.TryInsert(id, mapWithUnique(0))
	rt.Remove(id)

	if !rt.TryInsert(ids.SystemIdFromName("b"), mapWithUnique(0)) {
		t.Fatalf("insert after Remove should succeed")
	}
}

func TestReservationTableConflictsDoesNotInsert(t *testing.T) {
	rt := newReservationTable()
	rt.TryInsert(ids.SystemIdFromName("a"), mapWithUnique(0))

	if !rt.Conflicts(mapWithUnique(0)) {
		t.Fatalf("expected Conflicts to report true without inserting")
	}
	if !rt.TryInsert(ids.SystemIdFromName("b"), mapWithUnique("string type, no conflict")) {
		t.Fatalf("Conflicts must not have consumed or blocked an unrelated type's later insert")
	}
}

func TestReservationTableTryClaimRollsBackGraphOnConflict(t *testing.T) {
	g := graph.Build([]graph.Member{{Id: ids.SystemIdFromName("solo")}})
	h := g.Leaves()[0]

	rt := newReservationTable()
	held := ids.SystemIdFromName("holder")
	rt.TryInsert(held, mapWithUnique(0))

	s := newTestSystem("solo", nil)
	s.Accesses.System.Add(reflect.TypeOf(0), access.Unique)

	if rt.TryClaim(h, s) {
		t.Fatalf("expected TryClaim to fail on a conflicting reservation")
	}
	if h.Status() != graph.Ready {
		t.Fatalf("expected the graph claim to be rolled back to Ready, got %v", h.Status())
	}
}

func TestReservationTableTryClaimSucceedsWithoutConflict(t *testing.T) {
	g := graph.Build([]graph.Member{{Id: ids.SystemIdFromName("solo")}})
	h := g.Leaves()[0]
	rt := newReservationTable()
	s := newTestSystem("solo", nil)

	if !rt.TryClaim(h, s) {
		t.Fatalf("expected TryClaim to succeed")
	}
	if h.Status() != graph.Executing {
		t.Fatalf("expected graph status Executing after a successful claim, got %v", h.Status())
	}
}
