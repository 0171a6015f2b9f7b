// Command pulsectl drives a demo pulse scheduler from the shell: tick it a
// fixed number of times, run it until interrupted, or inspect its phases
// and built-in resources.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "pulsectl",
		Short: "Drive a demo pulse scheduler from the command line",
	}

	root.PersistentFlags().IntP("workers", "w", 4, "dispatch worker count")
	root.PersistentFlags().Bool("json-logs", false, "emit structured JSON diagnostics to stderr (no diagnostics otherwise)")

	root.AddCommand(tickCommand())
	root.AddCommand(runCommand())
	root.AddCommand(inspectCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
