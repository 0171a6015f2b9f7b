package scheduler

import (
	"fmt"
	"reflect"

	"github.com/forgelabs/pulse/internal/blacklist"
	"github.com/forgelabs/pulse/internal/events"
	"github.com/forgelabs/pulse/internal/system"
)

// CriteriaPanic is raised when a system flagged HasRequirements fails its
// resource criteria check.
type CriteriaPanic struct {
	DisplayName string
}

func (e *CriteriaPanic) Error() string {
	return fmt.Sprintf("system %q failed required-resource criteria", e.DisplayName)
}

// BlacklistPanic is raised when a system flagged NotBlacklisted is blocked
// for the current phase.
type BlacklistPanic struct {
	DisplayName string
}

func (e *BlacklistPanic) Error() string {
	return fmt.Sprintf("system %q was blocked by a phase blacklist it opted out of", e.DisplayName)
}

// buildCandidates implements spec §4.5 step 1's filter chain for the three
// foreground phases (wantFlag is always system.Blocking, called once per
// phase by runForegroundPhase): a system that lacks wantFlag is excluded only
// when it carries NonBlocking; one with no flags, or with only
// HasRequirements/NotBlacklisted, is eligible by default, same as one
// explicitly carrying wantFlag. Remaining checks, in order: not
// interrupted, wakes against current, passes criteria against owned, and is
// not blacklisted for bl. A HasRequirements criteria failure or a
// NotBlacklisted blacklist block panics instead of silently skipping.
func buildCandidates(
	systems []*system.Stored,
	wantFlag system.Flag,
	current *events.CurrentEvents,
	interrupts *events.CurrentInterrupts,
	owned map[reflect.Type]struct{},
	bl *blacklist.Blacklist,
) []*system.Stored {
	var out []*system.Stored
	for _, s := range systems {
		if !s.Flags.Has(wantFlag) && s.Flags.Has(system.NonBlocking) {
			continue
		}
		if interrupts.Contains(s.Id) {
			continue
		}
		if !s.WakeUp(current) {
			continue
		}
		if !s.Test(owned) {
			if s.Flags.Has(system.HasRequirements) {
				panic(&CriteriaPanic{DisplayName: s.DisplayName})
			}
			continue
		}
		if bl.CheckBlocked(s.Accesses.Scheduler) {
			if s.Flags.Has(system.NotBlacklisted) {
				panic(&BlacklistPanic{DisplayName: s.DisplayName})
			}
			continue
		}
		out = append(out, s)
	}
	return out
}
