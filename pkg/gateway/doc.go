// Package gateway provides the test-results service as a library that can be embedded into other Go applications.
//
// # Overview
//
// The gateway accepts test-run results over HTTP, stores them in DynamoDB,
// SQLite or memory, and serves them back as filtered JSON and as an HTML
// dashboard with a per-run detail page.
//
// # Basic Usage
//
// Create a gateway programmatically:
//
//	cfg := &gateway.Config{
//		Server: gateway.ServerConfig{
//			Port:         8080,
//			ReadTimeout:  30 * time.Second,
//			WriteTimeout: 30 * time.Second,
//		},
//		Store: gateway.StoreConfig{
//			Kind: "dynamodb",
//			DynamoDB: &gateway.DynamoDBConfig{
//				TableName: "test-runs",
//				Region:    "us-east-1",
//			},
//		},
//		UI: gateway.UIConfig{
//			Enabled:  true,
//			TimeZone: "America/New_York",
//		},
//		Logging: gateway.LoggingConfig{
//			Level:  "info",
//			Format: "json",
//		},
//	}
//
//	gw, err := gateway.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer cancel()
//
//	if err := gw.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//
// # Using with Existing HTTP Server
//
// Integrate the gateway into an existing HTTP server:
//
//	gw, err := gateway.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer gw.Close()
//
//	// Mount the gateway under a specific path
//	http.Handle("/results/", http.StripPrefix("/results", gw.Handler()))
//
//	http.ListenAndServe(":8080", nil)
//
// Dashboard links are absolute, so mount under a prefix only when the UI
// is disabled.
//
// # Environment-based Configuration
//
// Load configuration from an optional YAML file plus environment variables
// (TEST_RUNS_TABLE_NAME, STORE_KIND, SQLITE_PATH, PORT, LOG_LEVEL, LOG_FORMAT):
//
//	gw, err := gateway.NewFromEnv("configs/config.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Direct Service Access
//
// Access the service layer directly for programmatic ingest:
//
//	rec, err := gw.Service().Ingest(ctx, models.TestRunInput{
//		SuiteName: "nightly",
//		Status:    "passed",
//		Passed:    120,
//	})
package gateway
