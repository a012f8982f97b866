package store

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lei/test-results/internal/models"
	"github.com/lei/test-results/pkg/logger"
)

// fakeDynamoDB records calls and returns canned responses
type fakeDynamoDB struct {
	putInput  *dynamodb.PutItemInput
	putErr    error
	scanCalls int
	scanOut   *dynamodb.ScanOutput
	scanErr   error
}

func (f *fakeDynamoDB) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.putInput = params
	if f.putErr != nil {
		return nil, f.putErr
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamoDB) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.scanCalls++
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	return f.scanOut, nil
}

func TestDynamoDBStore_Ready(t *testing.T) {
	assert.ErrorIs(t, NewDynamoDBStore(&fakeDynamoDB{}, "", logger.Nop()).Ready(), ErrNotConfigured)
	assert.NoError(t, NewDynamoDBStore(&fakeDynamoDB{}, "TestRuns", logger.Nop()).Ready())
}

func TestDynamoDBStore_PutMarshalsTypedAttributes(t *testing.T) {
	fake := &fakeDynamoDB{}
	s := NewDynamoDBStore(fake, "TestRuns", logger.Nop())

	require.NoError(t, s.Put(context.Background(), sampleRecord("1-smoke", "smoke")))

	require.NotNil(t, fake.putInput)
	assert.Equal(t, "TestRuns", *fake.putInput.TableName)
	assert.Nil(t, fake.putInput.ConditionExpression)

	item := fake.putInput.Item
	assert.Equal(t, &types.AttributeValueMemberS{Value: "1-smoke"}, item["test_run_id"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "passed"}, item["status"])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "10"}, item["total_tests"])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "0"}, item["failed"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "2024-01-01T00:00:00.000Z"}, item["created_at"])
}

func TestDynamoDBStore_PutErrors(t *testing.T) {
	ctx := context.Background()

	unconfigured := NewDynamoDBStore(&fakeDynamoDB{}, "", logger.Nop())
	assert.ErrorIs(t, unconfigured.Put(ctx, sampleRecord("1", "a")), ErrNotConfigured)

	boom := errors.New("throttled")
	failing := NewDynamoDBStore(&fakeDynamoDB{putErr: boom}, "TestRuns", logger.Nop())
	assert.ErrorIs(t, failing.Put(ctx, sampleRecord("1", "a")), boom)
}

func TestDynamoDBStore_ScanDenormalizesItems(t *testing.T) {
	fake := &fakeDynamoDB{scanOut: &dynamodb.ScanOutput{
		Items: []map[string]types.AttributeValue{
			{
				"test_run_id": &types.AttributeValueMemberS{Value: "1-smoke"},
				"status":      &types.AttributeValueMemberS{Value: "failed"},
				"total_tests": &types.AttributeValueMemberN{Value: "12"},
				"passed":      &types.AttributeValueMemberN{Value: "10"},
				"failed":      &types.AttributeValueMemberN{Value: "2"},
			},
			{
				// Wrong attribute types are read as missing.
				"test_run_id": &types.AttributeValueMemberS{Value: "2-odd"},
				"status":      &types.AttributeValueMemberN{Value: "5"},
				"passed":      &types.AttributeValueMemberS{Value: "many"},
				"created_at":  &types.AttributeValueMemberBOOL{Value: true},
			},
		},
		LastEvaluatedKey: map[string]types.AttributeValue{
			"test_run_id": &types.AttributeValueMemberS{Value: "2-odd"},
		},
	}}
	s := NewDynamoDBStore(fake, "TestRuns", logger.Nop())

	records, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, fake.scanCalls, "pagination must not be followed")
	require.Len(t, records, 2)

	assert.Equal(t, models.TestRunRecord{
		TestRunID:  models.Ptr("1-smoke"),
		Status:     models.Ptr("failed"),
		TotalTests: models.Ptr(int64(12)),
		Passed:     models.Ptr(int64(10)),
		Failed:     models.Ptr(int64(2)),
	}, records[0])

	assert.Equal(t, models.TestRunRecord{TestRunID: models.Ptr("2-odd")}, records[1])
}

func TestDynamoDBStore_ScanError(t *testing.T) {
	boom := errors.New("access denied")
	s := NewDynamoDBStore(&fakeDynamoDB{scanErr: boom}, "TestRuns", logger.Nop())

	_, err := s.Scan(context.Background())
	assert.ErrorIs(t, err, boom)
}
