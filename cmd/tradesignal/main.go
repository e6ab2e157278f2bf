// Command tradesignal is the process entry point: a cobra root plus
// subcommands wiring together every internal package into a running
// service (spec §4.D), a one-shot scanner, an offline replay tool, and
// operational health/verify checks. Grounded on cmd/cryptorun/main.go's
// TTY-routed root command, generalized from its menu-is-canon interactive
// shell (dropped; spec has no interactive-menu requirement) to a plain
// cobra CLI that defaults to `run` when invoked with no subcommand.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sawpanic/tradesignal/internal/logging"
)

const appName = "tradesignal"

var version = "v1.0.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:     appName,
	Short:   "Swing-trading intelligence aggregator",
	Version: version,
	Long: `tradesignal polls options-flow, dark-pool, technicals and tick data for a
configured watchlist, scores setups through a versioned signal engine, and
broadcasts the resulting state over a WebSocket feed.

Run with no subcommand to start the poll-score-broadcast service (equivalent
to 'tradesignal run').`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRun(cmd, args)
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to YAML config file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	logging.Setup("info", os.Stderr)
}
