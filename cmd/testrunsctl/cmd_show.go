package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lei/test-results/internal/aggregate"
	"github.com/lei/test-results/internal/view"
)

func newShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show [test-run-id]",
		Short: "Show one test run with its pass/fail breakdown",
		Long: `Shows a single run. The identifier is either the stored test_run_id
or the TR-<n> placeholder displayed for runs without one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term, err := opts.terminal()
			if err != nil {
				return err
			}

			ctx, cancel := opts.requestContext(cmd.Context())
			defer cancel()

			res := view.Fetch(ctx, func(ctx context.Context) (aggregate.Run, error) {
				return view.LoadRun(ctx, opts.client(), args[0])
			}, logFetch[aggregate.Run](opts.logger, "show"))

			if res.State == view.StateFailed {
				fmt.Fprint(cmd.ErrOrStderr(), term.RenderError(res.Err))
				return res.Err
			}

			fmt.Fprint(cmd.OutOrStdout(), term.RenderDetail(res.Data))
			return nil
		},
	}
}
