package scheduler

import (
	"reflect"
	"testing"

	"github.com/forgelabs/pulse/internal/access"
	"github.com/forgelabs/pulse/internal/blacklist"
	"github.com/forgelabs/pulse/internal/events"
	"github.com/forgelabs/pulse/internal/ids"
	"github.com/forgelabs/pulse/internal/resource"
	"github.com/forgelabs/pulse/internal/system"
	"github.com/forgelabs/pulse/internal/tick"
)

func alwaysWakes(*events.CurrentEvents) bool { return true }
func alwaysPasses(map[reflect.Type]struct{}) bool { return true }

func newTestSystem(name string, flags system.Flags) *system.Stored {
	return system.NewSync(
		name,
		func(*resource.Map, *resource.Handle) error { return nil },
		alwaysWakes,
		alwaysPasses,
		system.Ordering{},
		flags,
		access.NewAccesses(),
		false,
	)
}

func TestBuildCandidatesIncludesFlaglessSystemsAsBlocking(t *testing.T) {
	s := newTestSystem("flagless", nil)
	current := events.NewCurrentEvents()
	interrupts := events.NewCurrentInterrupts()

	out := buildCandidates([]*system.Stored{s}, system.Blocking, current, interrupts, nil, blacklist.New())
	if len(out) != 1 {
		t.Fatalf("expected the flagless system to be treated as eligible for Blocking, got %d", len(out))
	}
}

func TestBuildCandidatesExcludesNonBlockingOnlySystems(t *testing.T) {
	s := newTestSystem("bg-only", system.NewFlags(system.NonBlocking))
	current := events.NewCurrentEvents()
	interrupts := events.NewCurrentInterrupts()

	out := buildCandidates([]*system.Stored{s}, system.Blocking, current, interrupts, nil, blacklist.New())
	if len(out) != 0 {
		t.Fatalf("a NonBlocking-only system must not appear in a Blocking candidate set")
	}
}

func TestBuildCandidatesSkipsInterruptedSystems(t *testing.T) {
	s := newTestSystem("interrupted", nil)
	current := events.NewCurrentEvents()
	interrupts := events.NewCurrentInterrupts()
	interrupts.Extend([]ids.SystemId{s.Id})

	out := buildCandidates([]*system.Stored{s}, system.Blocking, current, interrupts, nil, blacklist.New())
	if len(out) != 0 {
		t.Fatalf("an interrupted system must be skipped")
	}
}

func TestBuildCandidatesSkipsOnWakeUpFailure(t *testing.T) {
	s := system.NewSync("quiet", func(*resource.Map, *resource.Handle) error { return nil },
		func(*events.CurrentEvents) bool { return false }, alwaysPasses, system.Ordering{}, nil, access.NewAccesses(), false)
	out := buildCandidates([]*system.Stored{s}, system.Blocking, events.NewCurrentEvents(), events.NewCurrentInterrupts(), nil, blacklist.New())
	if len(out) != 0 {
		t.Fatalf("a system whose wake-up predicate fails must be skipped")
	}
}

func TestBuildCandidatesPanicsOnFailedCriteriaWithHasRequirements(t *testing.T) {
	s := system.NewSync("needy", func(*resource.Map, *resource.Handle) error { return nil },
		alwaysWakes, func(map[reflect.Type]struct{}) bool { return false },
		system.Ordering{}, system.NewFlags(system.HasRequirements), access.NewAccesses(), false)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic for a HasRequirements system that fails criteria")
		}
	}()
	buildCandidates([]*system.Stored{s}, system.Blocking, events.NewCurrentEvents(), events.NewCurrentInterrupts(), nil, blacklist.New())
}

func TestBuildCandidatesSkipsFailedCriteriaWithoutHasRequirements(t *testing.T) {
	s := system.NewSync("optional", func(*resource.Map, *resource.Handle) error { return nil },
		alwaysWakes, func(map[reflect.Type]struct{}) bool { return false },
		system.Ordering{}, nil, access.NewAccesses(), false)

	out := buildCandidates([]*system.Stored{s}, system.Blocking, events.NewCurrentEvents(), events.NewCurrentInterrupts(), nil, blacklist.New())
	if len(out) != 0 {
		t.Fatalf("a system without HasRequirements failing criteria should be silently skipped, not appear in candidates")
	}
}

func TestBuildCandidatesPanicsOnBlacklistBlockWithNotBlacklisted(t *testing.T) {
	accesses := access.NewAccesses()
	typ := reflect.TypeOf(0)
	accesses.Scheduler.Add(typ, access.Unique)

	bl := blacklist.New()
	bl.InsertTypedRule(typ, access.Unique, tick.NewPerpetual(0))

	s := system.NewSync("protected", func(*resource.Map, *resource.Handle) error { return nil },
		alwaysWakes, alwaysPasses, system.Ordering{}, system.NewFlags(system.NotBlacklisted), accesses, false)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic for a NotBlacklisted system that is blocked")
		}
	}()
	buildCandidates([]*system.Stored{s}, system.Blocking, events.NewCurrentEvents(), events.NewCurrentInterrupts(), nil, bl)
}

func TestBuildCandidatesSkipsBlacklistBlockWithoutNotBlacklisted(t *testing.T) {
	accesses := access.NewAccesses()
	typ := reflect.TypeOf(0)
	accesses.Scheduler.Add(typ, access.Unique)

	bl := blacklist.New()
	bl.InsertTypedRule(typ, access.Unique, tick.NewPerpetual(0))

	s := system.NewSync("blockable", func(*resource.Map, *resource.Handle) error { return nil },
		alwaysWakes, alwaysPasses, system.Ordering{}, nil, accesses, false)

	out := buildCandidates([]*system.Stored{s}, system.Blocking, events.NewCurrentEvents(), events.NewCurrentInterrupts(), nil, bl)
	if len(out) != 0 {
		t.Fatalf("a blocked system without NotBlacklisted should be silently skipped")
	}
}
