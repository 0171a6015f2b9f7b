package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func tickCommand() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "tick",
		Short: "Advance the demo scheduler a fixed number of ticks",
		RunE: func(cmd *cobra.Command, args []string) error {
			workers, _ := cmd.Flags().GetInt("workers")
			s := newDemoScheduler(workers, diagnosticsFor(cmd))

			for i := 0; i < n; i++ {
				if errs := s.Tick(); len(errs) > 0 {
					for _, err := range errs {
						fmt.Println("tick error:", err)
					}
				}
			}
			fmt.Printf("ticked %d time(s); current tick is now %d\n", n, s.CurrentTick())
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "count", "n", 1, "number of ticks to run")
	return cmd
}
