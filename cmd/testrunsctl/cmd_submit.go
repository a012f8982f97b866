package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lei/test-results/internal/models"
)

func newSubmitCmd(opts *options) *cobra.Command {
	var in models.TestRunInput

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a test run result",
		Long: `Posts a test run to {base}/test-runs. The server assigns the
identifier and timestamp.

Example:
  testrunsctl submit --suite smoke --status passed --total 10 --passed 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.SuiteName == "" || in.Status == "" {
				return errors.New("--suite and --status are required")
			}

			ctx, cancel := opts.requestContext(cmd.Context())
			defer cancel()

			opts.logger.Debug("submitting test run", "suite_name", in.SuiteName, "status", in.Status)

			resp, err := opts.client().CreateTestRun(ctx, in)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", resp.Message, resp.TestRunID)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&in.SuiteName, "suite", "", "suite name (required)")
	flags.StringVar(&in.Status, "status", "", "run status, e.g. passed, failed, running (required)")
	flags.StringVar(&in.Environment, "environment", "", "target environment, e.g. qa, stg, prod")
	flags.StringVar(&in.TriggeredBy, "triggered-by", "", "who or what started the run")
	flags.Int64Var(&in.TotalTests, "total", 0, "total number of tests")
	flags.Int64Var(&in.Passed, "passed", 0, "number of passed tests")
	flags.Int64Var(&in.Failed, "failed", 0, "number of failed tests")

	return cmd
}
