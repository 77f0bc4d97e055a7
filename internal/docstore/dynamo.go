package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/google/uuid"
)

const (
	backendDynamo = "dynamodb"
	dynamoIDAttr  = "id"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoStore.
type DynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	ListTables(context.Context, *dynamodb.ListTablesInput, ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error)
}

// DynamoStore maps each collection onto a table named prefix+collection,
// keyed by a string "id" attribute.
type DynamoStore struct {
	client DynamoAPI
	prefix string
	name   string
	closed atomic.Bool
}

var _ Store = (*DynamoStore)(nil)

// NewDynamoStore builds a store backed by the provided DynamoDB client.
func NewDynamoStore(client DynamoAPI, tablePrefix, name string) *DynamoStore {
	if client == nil {
		panic("docstore: dynamodb client cannot be nil")
	}
	return &DynamoStore{client: client, prefix: tablePrefix, name: name}
}

func (s *DynamoStore) table(collection string) string {
	return s.prefix + collection
}

func (s *DynamoStore) Insert(ctx context.Context, collection string, doc any) (string, error) {
	item, err := attributevalue.MarshalMap(doc)
	if err != nil {
		return "", persistenceErr(backendDynamo, collection, fmt.Errorf("marshal document: %w", err))
	}
	if s.closed.Load() {
		return "", ErrUnavailable
	}
	id := uuid.NewString()
	item[dynamoIDAttr] = &types.AttributeValueMemberS{Value: id}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table(collection)),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return "", classifyDynamoErr(collection, err)
	}
	return id, nil
}

func (s *DynamoStore) Fetch(ctx context.Context, collection, id string, out any) error {
	resp, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table(collection)),
		Key: map[string]types.AttributeValue{
			dynamoIDAttr: &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("docstore: get %s/%s: %w", collection, id, err)
	}
	if len(resp.Item) == 0 {
		return ErrNotFound
	}
	if err := attributevalue.UnmarshalMap(resp.Item, out); err != nil {
		return fmt.Errorf("docstore: decode %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *DynamoStore) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return ErrUnavailable
	}
	_, err := s.client.ListTables(ctx, &dynamodb.ListTablesInput{Limit: aws.Int32(1)})
	return err
}

// ListCollections pages through ListTables and keeps tables carrying the prefix.
func (s *DynamoStore) ListCollections(ctx context.Context, limit int) ([]string, error) {
	names := []string{}
	var start *string
	for {
		resp, err := s.client.ListTables(ctx, &dynamodb.ListTablesInput{
			ExclusiveStartTableName: start,
			Limit:                   aws.Int32(int32(MaxListedCollections)),
		})
		if err != nil {
			return nil, fmt.Errorf("docstore: list tables: %w", err)
		}
		for _, table := range resp.TableNames {
			if !strings.HasPrefix(table, s.prefix) {
				continue
			}
			names = append(names, table)
			if limit > 0 && len(names) >= limit {
				return names, nil
			}
		}
		if resp.LastEvaluatedTableName == nil {
			return names, nil
		}
		start = resp.LastEvaluatedTableName
	}
}

func (s *DynamoStore) Name() string    { return s.name }
func (s *DynamoStore) Backend() string { return backendDynamo }

// Close marks the store closed; the SDK client holds no connections to release.
func (s *DynamoStore) Close(ctx context.Context) error {
	s.closed.Store(true)
	return nil
}

// classifyDynamoErr treats a request that never reached DynamoDB as unavailable.
func classifyDynamoErr(collection string, err error) error {
	var sendErr *smithyhttp.RequestSendError
	if errors.As(err, &sendErr) {
		return unavailableErr(backendDynamo, err)
	}
	return persistenceErr(backendDynamo, collection, err)
}
