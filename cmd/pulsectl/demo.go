package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/forgelabs/pulse"
)

// counters is the demo resource every demo system shares.
type counters struct {
	Processed int
}

func diagnosticsFor(cmd *cobra.Command) pulse.Diagnostics {
	jsonLogs, _ := cmd.Flags().GetBool("json-logs")
	if !jsonLogs {
		return pulse.NopDiagnostics{}
	}
	return pulse.NewSlogDiagnostics(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
}

// newDemoScheduler wires a small scheduler exercising the public facade end
// to end: a system that increments a shared counter in every foreground
// phase (three times a tick, since it always wakes), a bubble
// that fires an alert event once the counter crosses a threshold, and a
// catfish rule that escalates the alert into a logged shutdown candidate
// the same tick it fires.
func newDemoScheduler(workers int, diagnose pulse.Diagnostics) *pulse.Scheduler {
	s := pulse.New(workers, diagnose)
	pulse.ResourceInsert(s.Resources(), counters{})

	processAccesses := pulse.NewAccesses()
	pulse.AccessWrite[counters](processAccesses)
	process := pulse.NewSyncSystem(
		"demo.process",
		func(resources *pulse.Resources, _ *pulse.ResourceHandle) error {
			c, _ := pulse.ResourceGet[counters](resources)
			c.Processed++
			pulse.ResourceInsert(resources, c)
			return nil
		},
		pulse.AlwaysWakes,
		pulse.AlwaysPasses,
		pulse.Ordering{},
		nil,
		processAccesses,
		false,
	)
	s.InsertSystem(process)

	const alertThreshold = 3
	alertId := pulse.EventIdFromName("demo.alert")
	bubble := pulse.NewBubble("demo.alert", func(current *pulse.EventSet) bool {
		c, ok := pulse.Resolve[counters](s)
		return ok && c.Processed >= alertThreshold && !current.Contains(alertId)
	})
	s.InsertBubble(bubble)

	shutdownId := pulse.EventIdFromName("demo.shutdown-candidate")
	s.InsertCatfish(pulse.NewCatfish(alertId, shutdownId))

	logAccesses := pulse.NewAccesses()
	pulse.AccessRead[counters](logAccesses)
	logger := pulse.NewSyncSystem(
		"demo.log-shutdown-candidate",
		func(resources *pulse.Resources, _ *pulse.ResourceHandle) error {
			c, _ := pulse.ResourceGet[counters](resources)
			fmt.Printf("demo: shutdown candidate raised after %d counter increments\n", c.Processed)
			return nil
		},
		func(current *pulse.EventSet) bool { return current.Contains(shutdownId) },
		pulse.AlwaysPasses,
		pulse.Ordering{},
		nil,
		logAccesses,
		false,
	)
	s.InsertSystem(logger)

	return s
}
