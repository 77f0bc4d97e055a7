package docstore

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockDynamo struct {
	tables   []string
	items    map[string]map[string]map[string]types.AttributeValue
	putInput *dynamodb.PutItemInput
	putErr   error
	listErr  error
	listReqs int
}

func newMockDynamo(tables ...string) *mockDynamo {
	return &mockDynamo{
		tables: tables,
		items:  map[string]map[string]map[string]types.AttributeValue{},
	}
}

func (m *mockDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.putInput = in
	if m.putErr != nil {
		return nil, m.putErr
	}
	table := aws.ToString(in.TableName)
	if m.items[table] == nil {
		m.items[table] = map[string]map[string]types.AttributeValue{}
	}
	id := in.Item["id"].(*types.AttributeValueMemberS).Value
	m.items[table][id] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	id := in.Key["id"].(*types.AttributeValueMemberS).Value
	return &dynamodb.GetItemOutput{Item: m.items[aws.ToString(in.TableName)][id]}, nil
}

// ListTables pages two tables at a time.
func (m *mockDynamo) ListTables(_ context.Context, in *dynamodb.ListTablesInput, _ ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error) {
	m.listReqs++
	if m.listErr != nil {
		return nil, m.listErr
	}
	start := 0
	if in.ExclusiveStartTableName != nil {
		for i, name := range m.tables {
			if name == *in.ExclusiveStartTableName {
				start = i + 1
			}
		}
	}
	end := start + 2
	if end > len(m.tables) {
		end = len(m.tables)
	}
	out := &dynamodb.ListTablesOutput{TableNames: m.tables[start:end]}
	if end < len(m.tables) {
		out.LastEvaluatedTableName = aws.String(m.tables[end-1])
	}
	return out, nil
}

type dynamoDoc struct {
	Name    string  `dynamodbav:"name"`
	Company *string `dynamodbav:"company,omitempty"`
}

func TestDynamoStoreInsertAndFetch(t *testing.T) {
	mock := newMockDynamo()
	store := NewDynamoStore(mock, "mastry_", "mastry")

	id, err := store.Insert(context.Background(), "lead", dynamoDoc{Name: "Ada"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NotNil(t, mock.putInput)
	assert.Equal(t, "mastry_lead", aws.ToString(mock.putInput.TableName))
	assert.Equal(t, "attribute_not_exists(id)", aws.ToString(mock.putInput.ConditionExpression))
	_, hasCompany := mock.putInput.Item["company"]
	assert.False(t, hasCompany, "absent optional fields must not be written")

	var got dynamoDoc
	require.NoError(t, store.Fetch(context.Background(), "lead", id, &got))
	assert.Equal(t, "Ada", got.Name)
	assert.Nil(t, got.Company)

	assert.ErrorIs(t, store.Fetch(context.Background(), "lead", "missing", &got), ErrNotFound)
}

func TestDynamoStoreInsertFailure(t *testing.T) {
	mock := newMockDynamo()
	mock.putErr = errors.New("ResourceNotFoundException")
	store := NewDynamoStore(mock, "", "")

	_, err := store.Insert(context.Background(), "lead", dynamoDoc{Name: "Ada"})
	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "dynamodb", perr.Backend)
}

func TestDynamoStoreInsertTransportFailure(t *testing.T) {
	mock := newMockDynamo()
	mock.putErr = &smithyhttp.RequestSendError{Err: errors.New("dial tcp 127.0.0.1:8000: connect: connection refused")}
	store := NewDynamoStore(mock, "", "")

	_, err := store.Insert(context.Background(), "lead", dynamoDoc{Name: "Ada"})
	assert.ErrorIs(t, err, ErrUnavailable)
	var perr *PersistenceError
	assert.False(t, errors.As(err, &perr))
}

func TestDynamoStoreAfterClose(t *testing.T) {
	mock := newMockDynamo()
	store := NewDynamoStore(mock, "", "")
	require.NoError(t, store.Close(context.Background()))

	_, err := store.Insert(context.Background(), "lead", dynamoDoc{Name: "Ada"})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Nil(t, mock.putInput)
	assert.ErrorIs(t, store.Ping(context.Background()), ErrUnavailable)
}

func TestDynamoStoreListCollectionsFiltersPrefixAcrossPages(t *testing.T) {
	mock := newMockDynamo("audit", "mastry_lead", "mastry_newsletter", "other", "mastry_partner")
	store := NewDynamoStore(mock, "mastry_", "mastry")

	names, err := store.ListCollections(context.Background(), MaxListedCollections)
	require.NoError(t, err)
	assert.Equal(t, []string{"mastry_lead", "mastry_newsletter", "mastry_partner"}, names)
	assert.Equal(t, 3, mock.listReqs)
}

func TestDynamoStoreListCollectionsStopsAtLimit(t *testing.T) {
	mock := newMockDynamo("a", "b", "c", "d")
	store := NewDynamoStore(mock, "", "")

	names, err := store.ListCollections(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestDynamoStoreIntrospectError(t *testing.T) {
	mock := newMockDynamo()
	mock.listErr = errors.New("AccessDeniedException")
	store := NewDynamoStore(mock, "", "mastry")

	info, err := Introspect(context.Background(), store)
	require.Error(t, err)
	assert.False(t, info.Connected)
	assert.False(t, Available(context.Background(), store).Connected)
}
