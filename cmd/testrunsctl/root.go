package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lei/test-results/internal/view"
	"github.com/lei/test-results/pkg/client"
	"github.com/lei/test-results/pkg/logger"
)

const envAPIURL = "TEST_RESULTS_API_URL"

// options holds the persistent flags shared by every subcommand
type options struct {
	apiURL   string
	timeout  time.Duration
	timeZone string
	verbose  bool

	logger *logger.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "testrunsctl",
		Short: "Submit and inspect test runs",
		Long: `testrunsctl talks to a test-results deployment.

The API base URL comes from --api-url or the TEST_RESULTS_API_URL
environment variable. Endpoints are resolved as {base}/test-runs.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			opts.logger = logger.New(level, "text")

			if opts.apiURL == "" {
				opts.apiURL = os.Getenv(envAPIURL)
			}
			if opts.apiURL == "" {
				return errors.New("API URL is not set: use --api-url or " + envAPIURL)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.apiURL, "api-url", "", "test-results API base URL (env "+envAPIURL+")")
	flags.DurationVar(&opts.timeout, "timeout", 0, "request timeout (0 for none)")
	flags.StringVar(&opts.timeZone, "time-zone", "Local", "IANA time zone used to display start times")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newSubmitCmd(opts),
		newListCmd(opts),
		newShowCmd(opts),
	)

	return cmd
}

func (o *options) client() *client.Client {
	return client.New(o.apiURL)
}

func (o *options) terminal() (*view.Terminal, error) {
	loc, err := time.LoadLocation(o.timeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", o.timeZone, err)
	}
	return view.NewTerminal(loc), nil
}

// requestContext bounds a single API call by --timeout
func (o *options) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.timeout)
}

// logFetch reports lifecycle transitions of a CLI fetch
func logFetch[T any](log *logger.Logger, what string) func(view.Result[T]) {
	return func(res view.Result[T]) {
		if res.Err != nil {
			log.Debug("fetch "+res.State.String(), "what", what, "error", res.Err)
			return
		}
		log.Debug("fetch "+res.State.String(), "what", what)
	}
}
