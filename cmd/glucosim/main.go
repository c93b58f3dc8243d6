package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set via ldflags at build time.
var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	notifySignals(sigChan)
	go func() {
		<-sigChan
		cancel()
	}()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "glucosim",
		Short: "Mock glucose store for dosing simulations",
		Long: `glucosim serves canned and captured glucose data the way a dosing
algorithm reads it from a glucose store.

Each scenario either replays canned momentum and counteraction fixtures or,
when historical glucose is available, computes momentum from it.`,
		SilenceUsage: true,
	}

	addPersistentFlags(rootCmd)

	rootCmd.AddCommand(
		newVersionCmd(),
		newScenariosCmd(),
		newLatestCmd(),
		newSamplesCmd(),
		newMomentumCmd(),
		newCounteractionCmd(),
		newImportCmd(),
		newConfigCmd(),
		newMCPServerCmd(),
	)
	return rootCmd
}

// addPersistentFlags registers the flags every subcommand reads.
func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	cmd.PersistentFlags().String("config", "", "Config file (default ~/.glucosim/config.yaml)")
	cmd.PersistentFlags().StringP("scenario", "s", "", "Scenario key (default from config)")
}
