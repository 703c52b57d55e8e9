package dynamodb

import (
	"context"
	"errors"
	"testing"

	"ahkneemay/application/ports"
	pkgerrors "ahkneemay/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fakeClient records inputs and returns canned outputs
type fakeClient struct {
	createInput *dynamodb.CreateTableInput
	createErr   error
	putInput    *dynamodb.PutItemInput
	putErr      error
	getOutput   *dynamodb.GetItemOutput
	scanInputs  []*dynamodb.ScanInput
	scanPages   []*dynamodb.ScanOutput
}

func (f *fakeClient) CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	f.createInput = in
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &dynamodb.CreateTableOutput{TableDescription: &types.TableDescription{TableName: in.TableName}}, nil
}

func (f *fakeClient) DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	return &dynamodb.DescribeTableOutput{Table: &types.TableDescription{TableName: in.TableName, TableStatus: types.TableStatusActive}}, nil
}

func (f *fakeClient) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.putInput = in
	return &dynamodb.PutItemOutput{}, f.putErr
}

func (f *fakeClient) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.getOutput == nil {
		return &dynamodb.GetItemOutput{}, nil
	}
	return f.getOutput, nil
}

func (f *fakeClient) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeClient) Scan(ctx context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.scanInputs = append(f.scanInputs, in)
	page := f.scanPages[0]
	f.scanPages = f.scanPages[1:]
	return page, nil
}

func noWait() ItemStoreOptions {
	opts := DefaultItemStoreOptions()
	opts.WaitTimeout = 0
	return opts
}

func TestItemStore_CreateTable(t *testing.T) {
	ctx := context.Background()

	t.Run("composite key schema", func(t *testing.T) {
		client := &fakeClient{}
		store := NewItemStore(client, noWait(), zap.NewNop())

		name, err := store.CreateTable(ctx, ports.TableSpec{
			Name:      "ahkneemay_animes",
			KeySchema: ports.KeySchema{HashKey: "title", RangeKey: "owner"},
		})
		require.NoError(t, err)
		assert.Equal(t, "ahkneemay_animes", name)

		require.Len(t, client.createInput.KeySchema, 2)
		assert.Equal(t, types.KeyTypeHash, client.createInput.KeySchema[0].KeyType)
		assert.Equal(t, "owner", aws.ToString(client.createInput.KeySchema[1].AttributeName))
		assert.Equal(t, int64(1), aws.ToInt64(client.createInput.ProvisionedThroughput.ReadCapacityUnits))
	})

	t.Run("existing table is a conflict", func(t *testing.T) {
		client := &fakeClient{createErr: &types.ResourceInUseException{Message: aws.String("Table already exists")}}
		store := NewItemStore(client, noWait(), zap.NewNop())

		_, err := store.CreateTable(ctx, ports.TableSpec{Name: "t", KeySchema: ports.KeySchema{HashKey: "username"}})
		require.True(t, pkgerrors.IsConflict(err))
		assert.Equal(t, pkgerrors.CodeResourceInUse, pkgerrors.GetAppError(err).Code)
	})

	t.Run("other failures are store errors", func(t *testing.T) {
		client := &fakeClient{createErr: errors.New("access denied")}
		store := NewItemStore(client, noWait(), zap.NewNop())

		_, err := store.CreateTable(ctx, ports.TableSpec{Name: "t", KeySchema: ports.KeySchema{HashKey: "username"}})
		assert.True(t, pkgerrors.IsStore(err))
		assert.True(t, pkgerrors.IsFatal(err))
	})
}

func TestItemStore_PutItem(t *testing.T) {
	ctx := context.Background()

	t.Run("unconditional", func(t *testing.T) {
		client := &fakeClient{}
		store := NewItemStore(client, noWait(), zap.NewNop())

		require.NoError(t, store.PutItem(ctx, "animes", ports.Item{"title": "naruto", "owner": "alice"}))
		assert.Nil(t, client.putInput.ConditionExpression)
		assert.Equal(t, &types.AttributeValueMemberS{Value: "naruto"}, client.putInput.Item["title"])
	})

	t.Run("conditional insert", func(t *testing.T) {
		client := &fakeClient{putErr: &types.ConditionalCheckFailedException{Message: aws.String("failed")}}
		store := NewItemStore(client, noWait(), zap.NewNop())

		err := store.PutItem(ctx, "users", ports.Item{"username": "alice99"}, ports.IfNotExists("username"))
		require.True(t, pkgerrors.IsConflict(err))
		assert.Equal(t, pkgerrors.CodeConditionFailed, pkgerrors.GetAppError(err).Code)

		require.NotNil(t, client.putInput.ConditionExpression)
		assert.Contains(t, aws.ToString(client.putInput.ConditionExpression), "attribute_not_exists")
		assert.Contains(t, client.putInput.ExpressionAttributeNames, "#0")
	})
}

func TestItemStore_GetItem(t *testing.T) {
	ctx := context.Background()

	client := &fakeClient{}
	store := NewItemStore(client, noWait(), zap.NewNop())

	item, err := store.GetItem(ctx, "users", ports.Key{"username": "nobody"})
	require.NoError(t, err)
	assert.Nil(t, item)

	client.getOutput = &dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
		"username": &types.AttributeValueMemberS{Value: "alice99"},
		"logins":   &types.AttributeValueMemberN{Value: "3"},
		"active":   &types.AttributeValueMemberBOOL{Value: true},
	}}
	item, err = store.GetItem(ctx, "users", ports.Key{"username": "alice99"})
	require.NoError(t, err)
	assert.Equal(t, ports.Item{"username": "alice99", "logins": "3", "active": "true"}, item)
}

func TestItemStore_GetItemUndecodableAttribute(t *testing.T) {
	ctx := context.Background()

	core, logs := observer.New(zapcore.WarnLevel)
	client := &fakeClient{getOutput: &dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
		"username": &types.AttributeValueMemberS{Value: "alice99"},
		"future":   &types.UnknownUnionMember{Tag: "Z"},
	}}}
	store := NewItemStore(client, noWait(), zap.New(core))

	item, err := store.GetItem(ctx, "users", ports.Key{"username": "alice99"})
	require.NoError(t, err)
	assert.Equal(t, ports.Item{"username": "alice99"}, item)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Dropping undecodable attribute", entry.Message)
	assert.Equal(t, "future", entry.ContextMap()["attribute"])
	assert.Equal(t, "users", entry.ContextMap()["table"])
}

func TestItemStore_ScanPaginates(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{scanPages: []*dynamodb.ScanOutput{
		{
			Items: []map[string]types.AttributeValue{
				{"title": &types.AttributeValueMemberS{Value: "naruto"}, "owner": &types.AttributeValueMemberS{Value: "alice"}},
			},
			LastEvaluatedKey: map[string]types.AttributeValue{
				"title": &types.AttributeValueMemberS{Value: "naruto"}, "owner": &types.AttributeValueMemberS{Value: "alice"},
			},
		},
		{
			Items: []map[string]types.AttributeValue{
				{"title": &types.AttributeValueMemberS{Value: "bleach"}, "owner": &types.AttributeValueMemberS{Value: "alice"}},
			},
		},
	}}
	store := NewItemStore(client, noWait(), zap.NewNop())

	res, err := store.Scan(ctx, "animes", &ports.Filter{Attribute: "owner", Equals: "alice"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	require.Len(t, client.scanInputs, 2)
	assert.NotNil(t, client.scanInputs[0].FilterExpression)
	assert.NotEmpty(t, client.scanInputs[1].ExclusiveStartKey)
}
