// Package events implements the scheduler's symbolic event and interrupt
// pools: write-side buffers accumulated during a tick, rotated into the
// read-side set that systems observe starting the following tick.
package events

import (
	"sync"

	"github.com/forgelabs/pulse/internal/ids"
)

// NewEvents is the write-side event buffer. Systems (and bubbles) insert
// into it during a tick; its contents become visible in CurrentEvents
// starting the following tick's Ticking phase.
type NewEvents struct {
	mu     sync.Mutex
	events map[ids.EventId]struct{}
}

// NewNewEvents creates an empty write-side event buffer.
func NewNewEvents() *NewEvents {
	return &NewEvents{events: make(map[ids.EventId]struct{})}
}

// Insert adds event to the buffer, returning true if it was not already
// present.
func (e *NewEvents) Insert(event ids.EventId) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.events[event]; ok {
		return false
	}
	e.events[event] = struct{}{}
	return true
}

// drain empties the buffer, returning its prior contents.
func (e *NewEvents) drain() map[ids.EventId]struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	taken := e.events
	e.events = make(map[ids.EventId]struct{})
	return taken
}

// CurrentEvents is the read-side event set systems observe during a tick.
type CurrentEvents struct {
	mu     sync.RWMutex
	events map[ids.EventId]struct{}
}

// NewCurrentEvents creates an empty read-side event set.
func NewCurrentEvents() *CurrentEvents {
	return &CurrentEvents{events: make(map[ids.EventId]struct{})}
}

// Tick rotates newEvents into the current set, replacing its prior
// contents. Called once per tick during the Ticking phase.
func (c *CurrentEvents) Tick(newEvents *NewEvents) {
	drained := newEvents.drain()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = drained
}

// Insert adds event directly to the current set, bypassing the usual
// next-tick delay. Used by catfish rules, which must take effect within the
// same Ticking phase that triggered them.
func (c *CurrentEvents) Insert(event ids.EventId) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events[event] = struct{}{}
}

// Remove deletes event from the current set.
func (c *CurrentEvents) Remove(event ids.EventId) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.events, event)
}

// Contains reports whether event is present in the current set.
func (c *CurrentEvents) Contains(event ids.EventId) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.events[event]
	return ok
}

// Snapshot returns a copy of the current event set for read-only iteration.
func (c *CurrentEvents) Snapshot() map[ids.EventId]struct{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[ids.EventId]struct{}, len(c.events))
	for e := range c.events {
		out[e] = struct{}{}
	}
	return out
}

// NewInterrupts is the write-side interrupt buffer, keyed by the system
// that should be skipped (not run) next tick regardless of its usual
// predicate.
type NewInterrupts struct {
	mu         sync.Mutex
	interrupts map[ids.SystemId]struct{}
}

// NewNewInterrupts creates an empty write-side interrupt buffer.
func NewNewInterrupts() *NewInterrupts {
	return &NewInterrupts{interrupts: make(map[ids.SystemId]struct{})}
}

// Insert marks sys to be skipped next tick, returning true if it was not
// already marked.
func (n *NewInterrupts) Insert(sys ids.SystemId) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.interrupts[sys]; ok {
		return false
	}
	n.interrupts[sys] = struct{}{}
	return true
}

func (n *NewInterrupts) drain() map[ids.SystemId]struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	taken := n.interrupts
	n.interrupts = make(map[ids.SystemId]struct{})
	return taken
}

// CurrentInterrupts is the read-side interrupt set consulted during
// candidate selection.
type CurrentInterrupts struct {
	mu         sync.RWMutex
	interrupts map[ids.SystemId]struct{}
}

// NewCurrentInterrupts creates an empty read-side interrupt set.
func NewCurrentInterrupts() *CurrentInterrupts {
	return &CurrentInterrupts{interrupts: make(map[ids.SystemId]struct{})}
}

// Tick rotates newInterrupts into the current set, replacing its prior
// contents.
func (c *CurrentInterrupts) Tick(newInterrupts *NewInterrupts) {
	drained := newInterrupts.drain()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.interrupts = drained
}

// Contains reports whether sys is currently interrupted.
func (c *CurrentInterrupts) Contains(sys ids.SystemId) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.interrupts[sys]
	return ok
}

// Extend adds every system in systems to the current interrupt set without
// waiting for the next rotation — used to keep still-running background
// systems interrupted across ticks.
func (c *CurrentInterrupts) Extend(systems []ids.SystemId) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range systems {
		c.interrupts[s] = struct{}{}
	}
}
