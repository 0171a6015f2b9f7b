package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func runCommand() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the demo scheduler continuously until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			workers, _ := cmd.Flags().GetInt("workers")
			s := newDemoScheduler(workers, diagnosticsFor(cmd))

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			listenSignals(ctx, cancel)

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					fmt.Printf("stopped at tick %d\n", s.CurrentTick())
					return nil
				case <-ticker.C:
					if errs := s.Tick(); len(errs) > 0 {
						for _, err := range errs {
							fmt.Println("tick error:", err)
						}
					}
				}
			}
		},
	}
	cmd.Flags().DurationVarP(&interval, "interval", "i", 200*time.Millisecond, "delay between ticks")
	return cmd
}

// listenSignals cancels cancel on SIGINT/SIGTERM or context cancellation,
// whichever comes first.
func listenSignals(ctx context.Context, cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-ctx.Done():
		case <-sigCh:
			cancel()
		}
	}()
}
