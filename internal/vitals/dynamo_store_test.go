package vitals

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDynamo struct {
	items      map[string]map[string]types.AttributeValue
	lastQuery  *dynamodb.QueryInput
	queryItems []map[string]types.AttributeValue
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: map[string]map[string]types.AttributeValue{}}
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	id := in.Item["id"].(*types.AttributeValueMemberS).Value
	if _, exists := f.items[id]; exists && in.ConditionExpression != nil {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("exists")}
	}
	f.items[id] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	id := in.Key["id"].(*types.AttributeValueMemberS).Value
	return &dynamodb.GetItemOutput{Item: f.items[id]}, nil
}

func (f *fakeDynamo) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.lastQuery = in
	return &dynamodb.QueryOutput{Items: f.queryItems}, nil
}

func TestDynamoStorePutAndGet(t *testing.T) {
	client := newFakeDynamo()
	store := NewDynamoStore(client, "vitals")
	ctx := context.Background()

	r := &Reading{UserID: "user-1", Systolic: 130, Diastolic: 85, Temperature: floatPtr(99.1)}
	require.NoError(t, store.Put(ctx, r))
	require.Contains(t, client.items, r.ID)
	assert.Equal(t, "user-1", client.items[r.ID]["userId"].(*types.AttributeValueMemberS).Value)

	got, err := store.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 130, got.Systolic)
	require.NotNil(t, got.Temperature)
	assert.Equal(t, 99.1, *got.Temperature)
	assert.Nil(t, got.HeartRate)

	assert.ErrorIs(t, store.Put(ctx, &Reading{ID: r.ID, UserID: "user-1"}), ErrReadingExists)
}

func TestDynamoStoreGetMissing(t *testing.T) {
	_, err := NewDynamoStore(newFakeDynamo(), "vitals").Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrReadingNotFound)
}

func TestDynamoStoreListByUser(t *testing.T) {
	client := newFakeDynamo()
	item, err := attributevalue.MarshalMap(Reading{ID: "r-1", UserID: "user-1", Timestamp: time.Now().UTC(), Systolic: 120, Diastolic: 80})
	require.NoError(t, err)
	client.queryItems = []map[string]types.AttributeValue{item}

	got, err := NewDynamoStore(client, "vitals").ListByUser(context.Background(), "user-1", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "r-1", got[0].ID)

	require.NotNil(t, client.lastQuery)
	assert.Equal(t, DynamoUserIndex, aws.ToString(client.lastQuery.IndexName))
	assert.False(t, aws.ToBool(client.lastQuery.ScanIndexForward))
	assert.Equal(t, int32(10), aws.ToInt32(client.lastQuery.Limit))
}
