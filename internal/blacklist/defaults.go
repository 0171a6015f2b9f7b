package blacklist

import (
	"reflect"

	"github.com/forgelabs/pulse/internal/access"
	"github.com/forgelabs/pulse/internal/phase"
	"github.com/forgelabs/pulse/internal/tick"
)

// InstallDefaults wires the scheduler's built-in, perpetual-from-tick-0
// blacklist rules: unique access to any bookkeeping type is forbidden
// during every foreground phase, any unique access at all is forbidden
// during BackgroundStart, and unique access to tickType is additionally
// forbidden during Processing and PostProcessing.
func InstallDefaults(reg *Registry, bookkeeping []reflect.Type, tickType reflect.Type) {
	foreground := []phase.Phase{phase.PreProcessing, phase.Processing, phase.PostProcessing}
	for _, p := range foreground {
		bl := reg.For(p)
		for _, t := range bookkeeping {
			bl.InsertTypedRule(t, access.Unique, tick.NewPerpetual(0))
		}
	}

	reg.For(phase.BackgroundStart).InsertKindRule(access.Unique, tick.NewPerpetual(0))

	for _, p := range []phase.Phase{phase.Processing, phase.PostProcessing} {
		reg.For(p).InsertTypedRule(tickType, access.Unique, tick.NewPerpetual(0))
	}
}
