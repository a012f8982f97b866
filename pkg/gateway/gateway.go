// Package gateway provides the test-results service as a library that can
// be embedded into other Go applications.
package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lei/test-results/internal/api"
	"github.com/lei/test-results/internal/config"
	"github.com/lei/test-results/internal/service"
	"github.com/lei/test-results/internal/store"
	"github.com/lei/test-results/internal/view"
	"github.com/lei/test-results/pkg/logger"
)

// Gateway represents a test-results service instance that can be embedded in applications
type Gateway struct {
	config  *Config
	service *service.Service
	store   store.RecordStore
	router  http.Handler
	server  *http.Server
	logger  *logger.Logger
}

// Config holds the configuration for the Gateway
type Config struct {
	// Server configuration
	Server ServerConfig

	// Record store configuration
	Store StoreConfig

	// HTML dashboard configuration
	UI UIConfig

	// Logger configuration
	Logging LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// StoreConfig holds record store configuration
type StoreConfig struct {
	Kind string // "dynamodb", "sqlite" or "memory"

	// DynamoDB-specific configuration
	DynamoDB *DynamoDBConfig

	// SQLite-specific configuration
	SQLite *SQLiteConfig
}

// DynamoDBConfig holds DynamoDB table and connection settings
type DynamoDBConfig struct {
	TableName       string
	Region          string
	EndpointURL     string
	AccessKeyID     string
	SecretAccessKey string
}

// SQLiteConfig holds the SQLite database location
type SQLiteConfig struct {
	Path string
}

// UIConfig holds HTML dashboard settings
type UIConfig struct {
	Enabled  bool
	TimeZone string // IANA name, empty for UTC
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json or text
}

// New creates a new Gateway instance with the provided configuration
func New(cfg *Config) (*Gateway, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	// Initialize logger
	appLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	// Initialize store
	st, err := store.Open(context.Background(), cfg.Store.internal(), appLogger)
	if err != nil {
		return nil, fmt.Errorf("initialize store: %w", err)
	}

	// Initialize service layer
	svc := service.NewService(st, appLogger)

	// Initialize presentation layer
	var pages *view.Pages
	if cfg.UI.Enabled {
		loc, err := config.UIConfig{TimeZone: cfg.UI.TimeZone}.Location()
		if err != nil {
			closeStore(st)
			return nil, err
		}
		pages, err = view.NewPages(svc, loc, appLogger)
		if err != nil {
			closeStore(st)
			return nil, fmt.Errorf("initialize pages: %w", err)
		}
		appLogger.Info("dashboard enabled", "time_zone", loc.String())
	}

	// Initialize API layer
	handlers := api.NewHandlers(svc)
	loggingMiddleware := api.NewLoggingMiddleware(appLogger)
	router := api.NewRouter(handlers, loggingMiddleware, pages)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Gateway{
		config:  cfg,
		service: svc,
		store:   st,
		router:  router,
		server:  srv,
		logger:  appLogger,
	}, nil
}

// internal converts the public store settings to the loader's form
func (s StoreConfig) internal() *config.StoreConfig {
	out := &config.StoreConfig{Kind: s.Kind}
	if s.DynamoDB != nil {
		out.DynamoDB = config.DynamoDBConfig{
			TableName:       s.DynamoDB.TableName,
			Region:          s.DynamoDB.Region,
			EndpointURL:     s.DynamoDB.EndpointURL,
			AccessKeyID:     s.DynamoDB.AccessKeyID,
			SecretAccessKey: s.DynamoDB.SecretAccessKey,
		}
	}
	if s.SQLite != nil {
		out.SQLite = config.SQLiteConfig{Path: s.SQLite.Path}
	}
	return out
}

// Start starts the HTTP server
// This is a blocking call that will run until the context is canceled or an error occurs
func (g *Gateway) Start(ctx context.Context) error {
	defer g.Close()

	serverErrors := make(chan error, 1)

	// Start server in goroutine
	go func() {
		g.logger.Info("starting http server", "port", g.config.Server.Port)
		serverErrors <- g.server.ListenAndServe()
	}()

	// Wait for context cancellation or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case <-ctx.Done():
		g.logger.Info("shutdown signal received")

		// Graceful shutdown with 30s timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := g.server.Shutdown(shutdownCtx); err != nil {
			g.server.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}

		g.logger.Info("server stopped gracefully")
		return nil
	}
}

// Close releases the store and flushes logs. Start calls it on return.
func (g *Gateway) Close() error {
	err := closeStore(g.store)
	g.logger.Sync()
	return err
}

func closeStore(st store.RecordStore) error {
	if c, ok := st.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Handler returns the http.Handler for the gateway
// Use this if you want to integrate the gateway into an existing HTTP server
func (g *Gateway) Handler() http.Handler {
	return g.router
}

// Service returns the underlying service layer
// Use this for direct programmatic access to ingest and query
func (g *Gateway) Service() *service.Service {
	return g.service
}

// NewFromEnv creates a Gateway instance from an optional YAML file and
// environment variables. An empty configFile uses defaults and environment only.
func NewFromEnv(configFile string) (*Gateway, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return New(fromConfig(cfg))
}

// fromConfig converts a loaded configuration to a Gateway configuration
func fromConfig(cfg *config.Config) *Config {
	return &Config{
		Server: ServerConfig{
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		Store: StoreConfig{
			Kind: cfg.Store.Kind,
			DynamoDB: &DynamoDBConfig{
				TableName:       cfg.Store.DynamoDB.TableName,
				Region:          cfg.Store.DynamoDB.Region,
				EndpointURL:     cfg.Store.DynamoDB.EndpointURL,
				AccessKeyID:     cfg.Store.DynamoDB.AccessKeyID,
				SecretAccessKey: cfg.Store.DynamoDB.SecretAccessKey,
			},
			SQLite: &SQLiteConfig{
				Path: cfg.Store.SQLite.Path,
			},
		},
		UI: UIConfig{
			Enabled:  cfg.UI.IsEnabled(),
			TimeZone: cfg.UI.TimeZone,
		},
		Logging: LoggingConfig{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		},
	}
}
