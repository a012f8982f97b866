package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lei/test-results/internal/aggregate"
	"github.com/lei/test-results/internal/models"
	"github.com/lei/test-results/internal/view"
)

func newListCmd(opts *options) *cobra.Command {
	var (
		filter models.RunFilter
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List test runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			term, err := opts.terminal()
			if err != nil {
				return err
			}

			ctx, cancel := opts.requestContext(cmd.Context())
			defer cancel()

			res := view.Fetch(ctx, func(ctx context.Context) ([]aggregate.Run, error) {
				return view.LoadRuns(ctx, opts.client(), filter)
			}, logFetch[[]aggregate.Run](opts.logger, "list"))

			out := cmd.OutOrStdout()
			if res.State == view.StateFailed {
				fmt.Fprint(cmd.ErrOrStderr(), term.RenderError(res.Err))
				return res.Err
			}

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res.Data)
			}

			fmt.Fprint(out, term.RenderList(res.Data))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&filter.Status, "status", "", "only runs with this status (case-insensitive)")
	flags.StringVar(&filter.Environment, "environment", "", "only runs in this environment (case-insensitive)")
	flags.StringVar(&filter.TriggeredBy, "triggered-by", "", "only runs started by this actor (case-insensitive)")
	flags.BoolVar(&asJSON, "json", false, "print normalized runs as JSON")

	return cmd
}
