package pulse

import "github.com/forgelabs/pulse/internal/phase"

// Phase names one of the seven fixed points in a tick cycle, in the order
// they always run.
type Phase = phase.Phase

const (
	// Ticking rotates events and interrupts and ages every blacklist.
	Ticking = phase.Ticking
	// PreProcessing runs foreground systems first, including the built-in
	// tick-incrementor.
	PreProcessing = phase.PreProcessing
	// Processing runs the bulk of a tick's foreground systems.
	Processing = phase.Processing
	// PostProcessing runs foreground systems depending on Processing's
	// output within the same tick.
	PostProcessing = phase.PostProcessing
	// BackgroundEnd harvests background systems that finished since last
	// tick.
	BackgroundEnd = phase.BackgroundEnd
	// BackgroundStart launches newly eligible background systems.
	BackgroundStart = phase.BackgroundStart
	// Movement merges staged resources into the shared map.
	Movement = phase.Movement
)

// Phases lists every phase in tick order.
func Phases() []Phase { return phase.All() }
