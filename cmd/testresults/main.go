// Command testresults serves the test-run ingest and query API and the
// results dashboard.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/lei/test-results/pkg/gateway"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("testresults: %v", err)
	}
}

func run() error {
	// Local development keeps TEST_RUNS_TABLE_NAME and friends in .env
	_ = godotenv.Load()

	// CONFIG_FILE points at an optional YAML file; the store kind, table
	// name and dashboard time zone can all come from the environment instead
	gw, err := gateway.NewFromEnv(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Serves until a signal arrives, then drains requests and closes the store
	return gw.Start(ctx)
}
