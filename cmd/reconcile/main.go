// Command reconcile plays, renders and serves transition scenarios.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reconcile/internal/config"
	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/scenario"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Tree patching with enter/leave transitions",
		Long: `Reconcile patches element trees and runs enter/leave transitions
on the nodes it inserts, removes and toggles.

Scenario files describe trees, stylesheet timings and the steps that
render them. Commands:

  • play    run a scenario on a virtual clock and print snapshots
  • render  server-render one tree of a scenario
  • check   validate scenario files
  • serve   stream a scenario to browsers over WebSocket`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Configuration file (default ./"+config.FileName+" if present)")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("log-format", "", "Log format: text or json")
	flags.String("default-transition", "", "Class prefix of unnamed transitions")
	flags.Duration("safety-margin", 0, "Extra wait before a timed-out transition completes")

	rootCmd.AddCommand(
		playCmd(),
		renderCmd(),
		checkCmd(),
		serveCmd(),
		versionCmd(),
	)
	return rootCmd
}

// loadConfig loads the configuration with the command's flags on top and
// builds the logger it describes, writing to the command's stderr.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	logger := cfg.Log.NewLogger(cmd.ErrOrStderr())
	if cfg.File != "" {
		logger.Debug("configuration loaded", "file", cfg.File)
	}
	return cfg, logger, nil
}

// playerOptions applies the configured transition settings to a player.
func playerOptions(cfg *config.Config, logger *slog.Logger) []scenario.Option {
	return []scenario.Option{
		scenario.WithLogger(logger),
		scenario.WithDefinitions(cfg.Transition.Definitions),
		scenario.WithTransitionOptions(cfg.TransitionOptions()...),
	}
}

// printSnapshot writes a snapshot as a header line and its markup.
func printSnapshot(w io.Writer, snap scenario.Snapshot) {
	fmt.Fprintf(w, "[%d] %s @ %s\n", snap.Step, snap.Label, snap.Time.Round(time.Millisecond))
	fmt.Fprintf(w, "    %s\n", snap.HTML)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}
