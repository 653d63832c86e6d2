package vitals

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoUserIndex is the GSI keyed by userId (hash) and timestamp (range).
const DynamoUserIndex = "userId-timestamp-index"

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(context.Context, *dynamodb.QueryInput, ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DynamoStore persists readings as DynamoDB documents.
type DynamoStore struct {
	client    dynamoAPI
	tableName string
}

// NewDynamoStore builds a store backed by the provided DynamoDB client.
func NewDynamoStore(client dynamoAPI, tableName string) *DynamoStore {
	if client == nil {
		panic("vitals: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("vitals: table name cannot be empty")
	}
	return &DynamoStore{client: client, tableName: tableName}
}

// Put writes the reading unless an item with the same id already exists.
func (s *DynamoStore) Put(ctx context.Context, r *Reading) error {
	if err := prepare(r); err != nil {
		return err
	}
	item, err := attributevalue.MarshalMap(r)
	if err != nil {
		return fmt.Errorf("vitals: failed to marshal reading: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrReadingExists
		}
		return fmt.Errorf("vitals: failed to persist reading: %w", err)
	}
	return nil
}

// Get loads a reading by id.
func (s *DynamoStore) Get(ctx context.Context, id string) (*Reading, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("vitals: failed to load reading: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrReadingNotFound
	}

	var r Reading
	if err := attributevalue.UnmarshalMap(out.Item, &r); err != nil {
		return nil, fmt.Errorf("vitals: failed to decode reading: %w", err)
	}
	return &r, nil
}

// ListByUser queries the user index newest first.
func (s *DynamoStore) ListByUser(ctx context.Context, userID string, limit int) ([]*Reading, error) {
	if limit <= 0 {
		limit = 50
	}
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		IndexName:              aws.String(DynamoUserIndex),
		KeyConditionExpression: aws.String("userId = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("vitals: failed to query readings: %w", err)
	}

	readings := make([]*Reading, 0, len(out.Items))
	for _, item := range out.Items {
		var r Reading
		if err := attributevalue.UnmarshalMap(item, &r); err != nil {
			return nil, fmt.Errorf("vitals: failed to decode reading: %w", err)
		}
		readings = append(readings, &r)
	}
	return readings, nil
}
