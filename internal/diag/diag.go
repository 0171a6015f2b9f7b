// Package diag defines the scheduler's diagnostics hook and two ready-made
// implementations: a structured logger and a Prometheus collector.
package diag

import "time"

// Phase names a point in the phase label passed to diagnostics calls. The
// scheduler passes its own Phase.String() value here; diag does not depend
// on the scheduler package to avoid an import cycle.
type Phase = string

// Diagnostics receives scheduler lifecycle events. All methods must be safe
// to call concurrently and must not block the caller for long — a slow
// Diagnostics implementation slows down every tick.
type Diagnostics interface {
	// BeginTick marks the start of a new tick and returns a correlation id
	// an implementation may attach to every diagnostics call made before
	// the next BeginTick, so a phase/system/event trio can be traced back
	// to the tick that produced it.
	BeginTick() string
	PhaseStart(phase Phase)
	PhaseEnd(phase Phase, duration time.Duration)
	SystemStart(name string, phase Phase)
	SystemEnd(name string, phase Phase, err error, duration time.Duration)
	EventEmit(name string, count int)
	BackgroundHarvest(name string, duration time.Duration)
}

// Nop discards every diagnostics call. It is the scheduler's default.
type Nop struct{}

func (Nop) BeginTick() string                                 { return "" }
func (Nop) PhaseStart(Phase)                                 {}
func (Nop) PhaseEnd(Phase, time.Duration)                     {}
func (Nop) SystemStart(string, Phase)                         {}
func (Nop) SystemEnd(string, Phase, error, time.Duration)     {}
func (Nop) EventEmit(string, int)                             {}
func (Nop) BackgroundHarvest(string, time.Duration)           {}

var _ Diagnostics = Nop{}
