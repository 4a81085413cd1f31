// Command creditguardian serves the credit dashboard API and offers offline
// tools for seeding data and running the score simulators from a terminal.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "creditguardian",
		Short:        "Credit score simulator and dashboard API",
		SilenceUsage: true,
	}
	root.AddCommand(
		newServeCmd(),
		newSeedCmd(),
		newDatagenCmd(),
		newSimulateCmd(),
		newRecommendCmd(),
	)
	return root
}
