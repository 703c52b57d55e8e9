package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"ahkneemay/application/ports"
	pkgerrors "ahkneemay/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// Client is the subset of the DynamoDB API used by ItemStore
type Client interface {
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// ItemStoreOptions tunes table creation
type ItemStoreOptions struct {
	ReadCapacity  int64
	WriteCapacity int64
	// WaitTimeout bounds the wait for a new table to become active. Zero
	// skips the wait.
	WaitTimeout time.Duration
}

// DefaultItemStoreOptions returns the smallest provisioned throughput and a
// five minute activation wait
func DefaultItemStoreOptions() ItemStoreOptions {
	return ItemStoreOptions{
		ReadCapacity:  1,
		WriteCapacity: 1,
		WaitTimeout:   5 * time.Minute,
	}
}

// ItemStore implements ports.ItemStore on DynamoDB
type ItemStore struct {
	client  Client
	options ItemStoreOptions
	logger  *zap.Logger
}

// NewItemStore creates a DynamoDB-backed item store
func NewItemStore(client Client, options ItemStoreOptions, logger *zap.Logger) *ItemStore {
	return &ItemStore{
		client:  client,
		options: options,
		logger:  logger,
	}
}

// CreateTable creates a table with string key attributes and waits until it
// is active
func (s *ItemStore) CreateTable(ctx context.Context, spec ports.TableSpec) (string, error) {
	attrs := []types.AttributeDefinition{
		{AttributeName: aws.String(spec.HashKey), AttributeType: types.ScalarAttributeTypeS},
	}
	schema := []types.KeySchemaElement{
		{AttributeName: aws.String(spec.HashKey), KeyType: types.KeyTypeHash},
	}
	if spec.RangeKey != "" {
		attrs = append(attrs, types.AttributeDefinition{
			AttributeName: aws.String(spec.RangeKey), AttributeType: types.ScalarAttributeTypeS,
		})
		schema = append(schema, types.KeySchemaElement{
			AttributeName: aws.String(spec.RangeKey), KeyType: types.KeyTypeRange,
		})
	}

	out, err := s.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:            aws.String(spec.Name),
		AttributeDefinitions: attrs,
		KeySchema:            schema,
		ProvisionedThroughput: &types.ProvisionedThroughput{
			ReadCapacityUnits:  aws.Int64(s.options.ReadCapacity),
			WriteCapacityUnits: aws.Int64(s.options.WriteCapacity),
		},
	})
	if err != nil {
		return "", s.translate("CreateTable", spec.Name, err)
	}

	if s.options.WaitTimeout > 0 {
		waiter := dynamodb.NewTableExistsWaiter(s.client)
		if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(spec.Name)}, s.options.WaitTimeout); err != nil {
			return "", s.translate("CreateTable", spec.Name, fmt.Errorf("wait for table to exist: %w", err))
		}
	}

	name := spec.Name
	if out != nil && out.TableDescription != nil && aws.ToString(out.TableDescription.TableName) != "" {
		name = aws.ToString(out.TableDescription.TableName)
	}

	s.logger.Info("Table created", zap.String("table", name))
	return name, nil
}

// PutItem writes an item, optionally only when it does not exist yet
func (s *ItemStore) PutItem(ctx context.Context, table string, item ports.Item, opts ...ports.PutOption) error {
	options := ports.ApplyPutOptions(opts...)

	av, err := attributevalue.MarshalMap(map[string]string(item))
	if err != nil {
		return pkgerrors.NewStoreError("PutItem", fmt.Errorf("failed to marshal item: %w", err))
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      av,
	}

	if options.IfNotExists != "" {
		expr, err := expression.NewBuilder().
			WithCondition(expression.Name(options.IfNotExists).AttributeNotExists()).
			Build()
		if err != nil {
			return pkgerrors.NewStoreError("PutItem", fmt.Errorf("failed to build condition: %w", err))
		}
		input.ConditionExpression = expr.Condition()
		input.ExpressionAttributeNames = expr.Names()
	}

	if _, err := s.client.PutItem(ctx, input); err != nil {
		return s.translate("PutItem", table, err)
	}
	return nil
}

// GetItem reads an item with a consistent read
func (s *ItemStore) GetItem(ctx context.Context, table string, key ports.Key) (ports.Item, error) {
	av, err := attributevalue.MarshalMap(map[string]string(key))
	if err != nil {
		return nil, pkgerrors.NewStoreError("GetItem", fmt.Errorf("failed to marshal key: %w", err))
	}

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(table),
		Key:            av,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, s.translate("GetItem", table, err)
	}
	if out == nil || len(out.Item) == 0 {
		return nil, nil
	}
	return s.toItem(table, out.Item), nil
}

// DeleteItem removes an item
func (s *ItemStore) DeleteItem(ctx context.Context, table string, key ports.Key) error {
	av, err := attributevalue.MarshalMap(map[string]string(key))
	if err != nil {
		return pkgerrors.NewStoreError("DeleteItem", fmt.Errorf("failed to marshal key: %w", err))
	}

	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(table),
		Key:       av,
	}); err != nil {
		return s.translate("DeleteItem", table, err)
	}
	return nil
}

// Scan reads every page of the table, filtered server side
func (s *ItemStore) Scan(ctx context.Context, table string, filter *ports.Filter) (*ports.ScanResult, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(table),
	}

	if filter != nil {
		expr, err := expression.NewBuilder().
			WithFilter(expression.Name(filter.Attribute).Equal(expression.Value(filter.Equals))).
			Build()
		if err != nil {
			return nil, pkgerrors.NewStoreError("Scan", fmt.Errorf("failed to build filter: %w", err))
		}
		input.FilterExpression = expr.Filter()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	result := &ports.ScanResult{Items: []ports.Item{}}
	paginator := dynamodb.NewScanPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, s.translate("Scan", table, err)
		}
		for _, av := range page.Items {
			result.Items = append(result.Items, s.toItem(table, av))
		}
	}
	result.Count = len(result.Items)
	return result, nil
}

// translate maps DynamoDB errors onto application errors
func (s *ItemStore) translate(op, table string, err error) error {
	var inUse *types.ResourceInUseException
	if errors.As(err, &inUse) {
		return pkgerrors.NewConflictError(pkgerrors.CodeResourceInUse,
			fmt.Sprintf("table %s already exists", table)).WithCause(err)
	}

	var condFailed *types.ConditionalCheckFailedException
	if errors.As(err, &condFailed) {
		return pkgerrors.NewConflictError(pkgerrors.CodeConditionFailed,
			"the conditional request failed").WithCause(err)
	}

	fields := []zap.Field{
		zap.String("operation", op),
		zap.String("table", table),
		zap.Error(err),
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		fields = append(fields, zap.String("error_code", apiErr.ErrorCode()))
	}
	s.logger.Error("DynamoDB operation failed", fields...)

	return pkgerrors.NewStoreError(op, err)
}

// toItem flattens attribute values to strings. Only scalar types occur in
// records written by this store. Attributes that cannot be decoded are
// dropped with a warning.
func (s *ItemStore) toItem(table string, av map[string]types.AttributeValue) ports.Item {
	item := make(ports.Item, len(av))
	for name, value := range av {
		switch v := value.(type) {
		case *types.AttributeValueMemberS:
			item[name] = v.Value
		case *types.AttributeValueMemberN:
			item[name] = v.Value
		case *types.AttributeValueMemberBOOL:
			item[name] = strconv.FormatBool(v.Value)
		default:
			var decoded interface{}
			if err := attributevalue.Unmarshal(value, &decoded); err != nil {
				s.logger.Warn("Dropping undecodable attribute",
					zap.String("table", table),
					zap.String("attribute", name),
					zap.Error(err),
				)
				continue
			}
			item[name] = fmt.Sprint(decoded)
		}
	}
	return item
}

var _ ports.ItemStore = (*ItemStore)(nil)
