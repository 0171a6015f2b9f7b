package events

import "github.com/forgelabs/pulse/internal/ids"

// Predicate decides whether a bubble or wake-up rule fires, given the
// current event set.
type Predicate func(current *CurrentEvents) bool

// Bubble is a named pseudo-system: it runs no body, but when Predicate
// fires against CurrentEvents it contributes an event (named after the
// bubble itself) into NewEvents, making it observable starting next tick.
type Bubble struct {
	Name      string
	EventId   ids.EventId
	Predicate Predicate
}

// NewBubble creates a bubble whose emitted event is the hash of its own
// name.
func NewBubble(name string, predicate Predicate) *Bubble {
	return &Bubble{Name: name, EventId: ids.EventIdFromName(name), Predicate: predicate}
}

// Evaluate checks the bubble's predicate and, if it fires, inserts the
// bubble's event into newEvents. Called once per tick during the Ticking
// phase, after the Current pools have rotated but before catfish rules run.
// The bubble's event lands in NewEvents, so it reaches CurrentEvents (and
// any catfish rule it triggers) only at the next tick's rotation.
func (b *Bubble) Evaluate(current *CurrentEvents, newEvents *NewEvents) bool {
	if !b.Predicate(current) {
		return false
	}
	newEvents.Insert(b.EventId)
	return true
}

// Catfish is a rewrite rule: whenever Trigger is observed in CurrentEvents,
// Emitted is inserted into CurrentEvents as well, within the same tick.
type Catfish struct {
	Trigger ids.EventId
	Emitted ids.EventId
}

// NewCatfish creates a catfish rule mapping trigger to emitted.
func NewCatfish(trigger, emitted ids.EventId) Catfish {
	return Catfish{Trigger: trigger, Emitted: emitted}
}

// Apply inserts c.Emitted into current if c.Trigger is present. Returns
// true if the rule fired.
func (c Catfish) Apply(current *CurrentEvents) bool {
	if !current.Contains(c.Trigger) {
		return false
	}
	current.Insert(c.Emitted)
	return true
}

// ApplyAll runs every catfish rule against current once, in order. Rules
// firing earlier in the slice may trigger rules later in the slice within
// the same pass, matching a single sweep over CurrentEvents post-rotation.
func ApplyAll(rules []Catfish, current *CurrentEvents) {
	for _, rule := range rules {
		rule.Apply(current)
	}
}
