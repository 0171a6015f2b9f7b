package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forgelabs/pulse"
)

func inspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the demo scheduler's phase order and bookkeeping resource",
		RunE: func(cmd *cobra.Command, args []string) error {
			workers, _ := cmd.Flags().GetInt("workers")
			s := newDemoScheduler(workers, diagnosticsFor(cmd))

			fmt.Println("phases, in tick order:")
			for _, p := range pulse.Phases() {
				fmt.Printf("  %s\n", p)
			}

			ct := s.CurrentTickResource()
			fmt.Printf("tick bookkeeping: tick=%d dt=%s time=%s\n", ct.Tick, ct.Dt, ct.Time.Format("15:04:05.000"))
			return nil
		},
	}
	return cmd
}
