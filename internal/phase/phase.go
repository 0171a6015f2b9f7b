// Package phase defines the scheduler's fixed seven-phase tick cycle. It is
// a leaf package with no internal dependencies so both internal/blacklist
// and internal/scheduler can key maps by Phase without an import cycle.
package phase

// Phase names a point in the tick cycle. Phases always run in the order
// they are declared below.
type Phase int

const (
	// Ticking rotates NewEvents into CurrentEvents, applies catfish rules,
	// rotates NewInterrupts into CurrentInterrupts, extends interrupts with
	// still-running background systems, and ages every blacklist.
	Ticking Phase = iota
	// PreProcessing inserts its own marker event and runs matching
	// foreground systems. The built-in tick-incrementor system runs here.
	PreProcessing
	// Processing runs the bulk of a tick's foreground systems.
	Processing
	// PostProcessing runs foreground systems that depend on Processing's
	// output within the same tick.
	PostProcessing
	// BackgroundEnd harvests background systems whose worker has finished.
	BackgroundEnd
	// BackgroundStart launches newly eligible background systems.
	BackgroundStart
	// Movement conservatively merges NewResources into the shared resource
	// map, making them visible to every system starting next tick.
	Movement
)

// All lists every phase in tick order.
func All() []Phase {
	return []Phase{Ticking, PreProcessing, Processing, PostProcessing, BackgroundEnd, BackgroundStart, Movement}
}

func (p Phase) String() string {
	switch p {
	case Ticking:
		return "Ticking"
	case PreProcessing:
		return "PreProcessing"
	case Processing:
		return "Processing"
	case PostProcessing:
		return "PostProcessing"
	case BackgroundEnd:
		return "BackgroundEnd"
	case BackgroundStart:
		return "BackgroundStart"
	case Movement:
		return "Movement"
	default:
		return "Unknown"
	}
}
