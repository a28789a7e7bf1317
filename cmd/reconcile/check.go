package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/scenario"
)

// checkResult is the outcome of checking one scenario file.
type checkResult struct {
	file  *scenario.File
	snaps int
	err   error
}

func checkCmd() *cobra.Command {
	var play bool

	cmd := &cobra.Command{
		Use:   "check <scenario.yaml>...",
		Short: "Validate scenario files",
		Long: `Parse and validate scenario files. With --play every scenario is also
played on a virtual clock, which catches errors that only show at run
time, such as a done step without a pending callback.

Examples:
  reconcile check scenarios/*.yaml
  reconcile check --play fade.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			results := make([]checkResult, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(runtime.GOMAXPROCS(0))
			for i, path := range args {
				g.Go(func() error {
					results[i] = check(ctx, path, play, playerOptions(cfg, logger))
					return nil
				})
			}
			g.Wait()

			failed := 0
			out := cmd.OutOrStdout()
			for i, r := range results {
				if r.err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", args[i], r.err)
					continue
				}
				msg := fmt.Sprintf("%s: %d trees, %d steps", args[i], len(r.file.Trees), len(r.file.Steps))
				if play {
					msg += fmt.Sprintf(", %d snapshots", r.snaps)
				}
				success(out, "%s", msg)
			}
			if failed > 0 {
				return errors.New("E302").WithDetailf("%d of %d scenarios failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&play, "play", false, "Also play every scenario")

	return cmd
}

func check(ctx context.Context, path string, play bool, opts []scenario.Option) checkResult {
	f, err := scenario.Load(path)
	if err != nil {
		return checkResult{err: err}
	}
	if !play {
		return checkResult{file: f}
	}
	p, err := scenario.NewPlayer(f, opts...)
	if err != nil {
		return checkResult{err: err}
	}
	snaps, err := p.Play(ctx)
	return checkResult{file: f, snaps: len(snaps), err: err}
}
