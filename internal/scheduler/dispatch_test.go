package scheduler

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/forgelabs/pulse/internal/access"
	"github.com/forgelabs/pulse/internal/diag"
	"github.com/forgelabs/pulse/internal/ids"
	"github.com/forgelabs/pulse/internal/resource"
	"github.com/forgelabs/pulse/internal/system"
)

func TestDispatchForegroundRunsAllSyncSystems(t *testing.T) {
	var mu sync.Mutex
	ran := map[string]bool{}
	mark := func(name string) system.SyncFunc {
		return func(*resource.Map, *resource.Handle) error {
			mu.Lock()
			ran[name] = true
			mu.Unlock()
			return nil
		}
	}

	a := system.NewSync("a", mark("a"), alwaysWakes, alwaysPasses, system.Ordering{}, nil, access.NewAccesses(), false)
	b := system.NewSync("b", mark("b"), alwaysWakes, alwaysPasses, system.Ordering{}, nil, access.NewAccesses(), false)

	errs := dispatchForeground([]*system.Stored{a, b}, 4, resource.NewMap(), newReservationTable(), diag.Nop{}, "Processing")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !ran["a"] || !ran["b"] {
		t.Fatalf("expected both systems to run, got %v", ran)
	}
}

func TestDispatchForegroundHonorsAfterOrdering(t *testing.T) {
	var mu sync.Mutex
	var order []string
	record := func(name string) system.SyncFunc {
		return func(*resource.Map, *resource.Handle) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		}
	}

	first := system.NewSync("first", record("first"), alwaysWakes, alwaysPasses,
		system.Ordering{}, nil, access.NewAccesses(), false)
	second := system.NewSync("second", record("second"), alwaysWakes, alwaysPasses,
		system.Ordering{After: []ids.SystemId{ids.SystemIdFromName("first")}}, nil, access.NewAccesses(), false)

	errs := dispatchForeground([]*system.Stored{second, first}, 1, resource.NewMap(), newReservationTable(), diag.Nop{}, "Processing")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("expected first before second, got %v", order)
	}
}

func TestDispatchForegroundRecordsBodyErrorsWithoutStoppingOthers(t *testing.T) {
	failing := system.NewSync("failing", func(*resource.Map, *resource.Handle) error {
		return errors.New("boom")
	}, alwaysWakes, alwaysPasses, system.Ordering{}, nil, access.NewAccesses(), false)

	var ran bool
	ok := system.NewSync("ok", func(*resource.Map, *resource.Handle) error {
		ran = true
		return nil
	}, alwaysWakes, alwaysPasses, system.Ordering{}, nil, access.NewAccesses(), false)

	errs := dispatchForeground([]*system.Stored{failing, ok}, 2, resource.NewMap(), newReservationTable(), diag.Nop{}, "Processing")
	if len(errs) != 1 {
		t.Fatalf("expected exactly one recorded error, got %d: %v", len(errs), errs)
	}
	if !ran {
		t.Fatalf("a sibling system's failure must not prevent other systems from running")
	}
}

func TestDispatchForegroundParksAndResolvesAsyncSystem(t *testing.T) {
	release := make(chan struct{})
	body := func(*resource.Map, *resource.Handle) system.Task {
		return system.StartTask(func() error {
			<-release
			return nil
		})
	}
	s := system.NewAsync("async-one", body, alwaysWakes, alwaysPasses, system.Ordering{}, nil, access.NewAccesses(), false)

	done := make(chan []error, 1)
	go func() {
		done <- dispatchForeground([]*system.Stored{s}, 1, resource.NewMap(), newReservationTable(), diag.Nop{}, "Processing")
	}()

	time.Sleep(20 * time.Millisecond)
	close(release)

	select {
	case errs := <-done:
		if len(errs) != 0 {
			t.Fatalf("unexpected errors: %v", errs)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("dispatchForeground never returned for a parked async system")
	}
}

func TestDispatchForegroundEmptyCandidatesReturnsNoErrors(t *testing.T) {
	if errs := dispatchForeground(nil, 4, resource.NewMap(), newReservationTable(), diag.Nop{}, "Processing"); errs != nil {
		t.Fatalf("expected nil errors for an empty candidate set, got %v", errs)
	}
}
