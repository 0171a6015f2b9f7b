package events

import (
	"testing"

	"github.com/forgelabs/pulse/internal/ids"
)

func TestEventsBecomeVisibleNextTick(t *testing.T) {
	newEv := NewNewEvents()
	cur := NewCurrentEvents()

	a := ids.EventIdFromName("A")
	newEv.Insert(a)
	if cur.Contains(a) {
		t.Fatalf("event must not be visible before the Ticking rotation")
	}

	cur.Tick(newEv)
	if !cur.Contains(a) {
		t.Fatalf("event must be visible immediately after rotation")
	}
}

func TestEventsDoNotPersistAcrossTicksUnlessReinserted(t *testing.T) {
	newEv := NewNewEvents()
	cur := NewCurrentEvents()
	a := ids.EventIdFromName("A")
	newEv.Insert(a)
	cur.Tick(newEv)

	cur.Tick(NewNewEvents()) // empty buffer rotates in
	if cur.Contains(a) {
		t.Fatalf("rotating in an empty NewEvents must clear stale events")
	}
}

func TestInterruptsRotateLikeEvents(t *testing.T) {
	newInt := NewNewInterrupts()
	cur := NewCurrentInterrupts()
	sys := ids.SystemIdFromName("sys-a")
	newInt.Insert(sys)
	if cur.Contains(sys) {
		t.Fatalf("interrupt must not be visible before rotation")
	}
	cur.Tick(newInt)
	if !cur.Contains(sys) {
		t.Fatalf("interrupt must be visible after rotation")
	}
}

func TestInterruptsExtendKeepsBackgroundSystemsInterrupted(t *testing.T) {
	cur := NewCurrentInterrupts()
	bg := ids.SystemIdFromName("background-job")
	cur.Extend([]ids.SystemId{bg})
	if !cur.Contains(bg) {
		t.Fatalf("Extend must add the system without waiting for rotation")
	}
}

func TestBubbleEmitsOnPredicateMatch(t *testing.T) {
	cur := NewCurrentEvents()
	newEv := NewNewEvents()
	trigger := ids.EventIdFromName("trigger")
	cur.Insert(trigger)

	bubble := NewBubble("my-bubble", func(c *CurrentEvents) bool {
		return c.Contains(trigger)
	})
	if !bubble.Evaluate(cur, newEv) {
		t.Fatalf("bubble predicate should have matched")
	}

	nextTick := NewCurrentEvents()
	nextTick.Tick(newEv)
	if !nextTick.Contains(bubble.EventId) {
		t.Fatalf("bubble's event should appear in CurrentEvents next tick")
	}
}

func TestBubbleDoesNotEmitWhenPredicateFails(t *testing.T) {
	cur := NewCurrentEvents()
	newEv := NewNewEvents()
	bubble := NewBubble("never", func(c *CurrentEvents) bool { return false })
	if bubble.Evaluate(cur, newEv) {
		t.Fatalf("bubble should not have fired")
	}
}

func TestCatfishInsertsEmittedWhenTriggerObserved(t *testing.T) {
	cur := NewCurrentEvents()
	a := ids.EventIdFromName("A")
	b := ids.EventIdFromName("B")
	cur.Insert(a)

	rule := NewCatfish(a, b)
	if !rule.Apply(cur) {
		t.Fatalf("catfish should have fired since A is present")
	}
	if !cur.Contains(b) {
		t.Fatalf("expected B to be inserted into CurrentEvents")
	}
}

func TestCatfishDoesNothingWithoutTrigger(t *testing.T) {
	cur := NewCurrentEvents()
	a := ids.EventIdFromName("A")
	b := ids.EventIdFromName("B")
	rule := NewCatfish(a, b)
	if rule.Apply(cur) {
		t.Fatalf("catfish should not fire without its trigger present")
	}
	if cur.Contains(b) {
		t.Fatalf("B should not be present")
	}
}

func TestApplyAllRunsRulesInOrderAllowingChaining(t *testing.T) {
	cur := NewCurrentEvents()
	a := ids.EventIdFromName("A")
	b := ids.EventIdFromName("B")
	c := ids.EventIdFromName("C")
	cur.Insert(a)

	rules := []Catfish{NewCatfish(a, b), NewCatfish(b, c)}
	ApplyAll(rules, cur)

	if !cur.Contains(b) || !cur.Contains(c) {
		t.Fatalf("expected chained catfish rules A->B->C to fire within one pass")
	}
}
