package store

import (
	"context"
	"fmt"

	"github.com/lei/test-results/internal/config"
	"github.com/lei/test-results/internal/models"
	"github.com/lei/test-results/pkg/logger"
)

// RecordStore abstracts the table holding one item per test run
type RecordStore interface {
	// Ready reports whether the store has the configuration it needs.
	// It returns ErrNotConfigured otherwise.
	Ready() error

	// Put writes rec keyed by its test_run_id, overwriting any
	// existing item with the same key
	Put(ctx context.Context, rec models.TestRunRecord) error

	// Scan returns every item a single full read produces
	Scan(ctx context.Context) ([]models.TestRunRecord, error)
}

// Open builds the store selected by cfg.Kind
func Open(ctx context.Context, cfg *config.StoreConfig, log *logger.Logger) (RecordStore, error) {
	switch cfg.Kind {
	case config.StoreDynamoDB:
		if cfg.DynamoDB.TableName == "" {
			log.Warn("dynamodb table name is not set; requests will fail until TEST_RUNS_TABLE_NAME is configured")
		}
		client, err := NewDynamoDBClient(ctx, &cfg.DynamoDB)
		if err != nil {
			return nil, fmt.Errorf("create dynamodb client: %w", err)
		}
		log.Info("initialized dynamodb store",
			"table", cfg.DynamoDB.TableName,
			"region", cfg.DynamoDB.Region,
			"endpoint", cfg.DynamoDB.EndpointURL)
		return NewDynamoDBStore(client, cfg.DynamoDB.TableName, log), nil

	case config.StoreSQLite:
		s, err := NewSQLiteStore(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		log.Info("initialized sqlite store", "path", cfg.SQLite.Path)
		return s, nil

	case config.StoreMemory:
		log.Info("initialized in-memory store")
		return NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unsupported store kind: %s", cfg.Kind)
	}
}

// requireID returns the record key or an error when it is absent
func requireID(rec models.TestRunRecord) (string, error) {
	if rec.TestRunID == nil || *rec.TestRunID == "" {
		return "", ErrMissingKey
	}
	return *rec.TestRunID, nil
}
