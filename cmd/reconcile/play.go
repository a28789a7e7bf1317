package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reconcile/pkg/scenario"
)

func playCmd() *cobra.Command {
	var (
		trace  bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "play <scenario.yaml>",
		Short: "Play a scenario and print its snapshots",
		Long: `Play a scenario on a virtual clock and print the document at every
snapshot step. Times are virtual, so the output is deterministic.

Examples:
  reconcile play fade.yaml
  reconcile play fade.yaml --trace
  reconcile play fade.yaml --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			f, err := scenario.Load(args[0])
			if err != nil {
				return err
			}

			opts := append(playerOptions(cfg, logger), scenario.WithTrace(trace))
			p, err := scenario.NewPlayer(f, opts...)
			if err != nil {
				return err
			}
			snaps, err := p.Play(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if snaps == nil {
					snaps = []scenario.Snapshot{}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(snaps)
			}
			for _, snap := range snaps {
				printSnapshot(out, snap)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&trace, "trace", "t", false, "Print a snapshot after every step")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print snapshots as JSON")

	return cmd
}
