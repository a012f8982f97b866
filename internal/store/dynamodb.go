package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/lei/test-results/internal/config"
	"github.com/lei/test-results/internal/models"
	"github.com/lei/test-results/pkg/logger"
)

// Compile-time interface check.
var _ RecordStore = (*DynamoDBStore)(nil)

// DynamoDBAPI is the subset of the DynamoDB client the store uses
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoDBStore keeps records in a DynamoDB table whose partition key
// is test_run_id
type DynamoDBStore struct {
	client DynamoDBAPI
	table  string
	logger *logger.Logger
}

// NewDynamoDBStore creates a store over an existing client
func NewDynamoDBStore(client DynamoDBAPI, table string, log *logger.Logger) *DynamoDBStore {
	return &DynamoDBStore{
		client: client,
		table:  table,
		logger: log,
	}
}

// NewDynamoDBClient builds a client from the default AWS credential chain,
// overridden by any static credentials, region or endpoint in cfg
func NewDynamoDBClient(ctx context.Context, cfg *config.DynamoDBConfig) (*dynamodb.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error

	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
		}
	}), nil
}

// getLogger retrieves logger from context or falls back to store logger
func (s *DynamoDBStore) getLogger(ctx context.Context) *logger.Logger {
	if ctxLogger := logger.FromContext(ctx); ctxLogger != nil {
		return ctxLogger
	}
	return s.logger
}

// Ready fails when no table name is configured
func (s *DynamoDBStore) Ready() error {
	if s.table == "" {
		return ErrNotConfigured
	}
	return nil
}

// Put writes rec with an unconditional PutItem
func (s *DynamoDBStore) Put(ctx context.Context, rec models.TestRunRecord) error {
	logger := s.getLogger(ctx)

	if err := s.Ready(); err != nil {
		return err
	}
	id, err := requireID(rec)
	if err != nil {
		return err
	}

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", id, err)
	}

	logger.Debug("store: putting item", "table", s.table, "test_run_id", id)

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		logger.Error("store: put item failed", "table", s.table, "test_run_id", id, "error", err)
		return fmt.Errorf("put item %s: %w", id, err)
	}

	return nil
}

// Scan performs one Scan call. A LastEvaluatedKey in the response is
// not followed.
func (s *DynamoDBStore) Scan(ctx context.Context) ([]models.TestRunRecord, error) {
	logger := s.getLogger(ctx)

	if err := s.Ready(); err != nil {
		return nil, err
	}

	out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(s.table),
	})
	if err != nil {
		logger.Error("store: scan failed", "table", s.table, "error", err)
		return nil, fmt.Errorf("scan table %s: %w", s.table, err)
	}

	if len(out.LastEvaluatedKey) > 0 {
		logger.Warn("store: scan result truncated, remaining items not read",
			"table", s.table,
			"count", len(out.Items))
	}

	records := make([]models.TestRunRecord, 0, len(out.Items))
	for _, item := range out.Items {
		raw := make(map[string]any, len(item))
		for name, av := range item {
			var v any
			if err := attributevalue.Unmarshal(av, &v); err != nil {
				logger.Warn("store: skipping undecodable attribute", "attribute", name, "error", err)
				continue
			}
			raw[name] = v
		}
		records = append(records, models.RecordFromItem(raw))
	}

	logger.Debug("store: scan completed", "table", s.table, "count", len(records))
	return records, nil
}
