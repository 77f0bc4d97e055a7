package docstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreInsertFetch(t *testing.T) {
	store := NewMemoryStore("local")
	ctx := context.Background()

	id, err := store.Insert(ctx, "lead", sampleDoc{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	var got sampleDoc
	require.NoError(t, store.Fetch(ctx, "lead", id, &got))
	assert.Equal(t, "Ada", got.Name)

	assert.ErrorIs(t, store.Fetch(ctx, "lead", "missing", &got), ErrNotFound)
	assert.ErrorIs(t, store.Fetch(ctx, "other", id, &got), ErrNotFound)
}

func TestMemoryStoreDuplicatePayloadsGetDistinctIDs(t *testing.T) {
	store := NewMemoryStore("")
	ctx := context.Background()
	doc := sampleDoc{Name: "Ada", Email: "ada@example.com"}

	first, err := store.Insert(ctx, "lead", doc)
	require.NoError(t, err)
	second, err := store.Insert(ctx, "lead", doc)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, store.Count("lead"))
}

func TestMemoryStoreConcurrentInserts(t *testing.T) {
	store := NewMemoryStore("")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.Insert(ctx, "lead", sampleDoc{Name: fmt.Sprintf("lead-%d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, store.Count("lead"))
}

func TestMemoryStoreListCollectionsSortedAndCapped(t *testing.T) {
	store := NewMemoryStore("")
	ctx := context.Background()
	for i := 11; i >= 0; i-- {
		_, err := store.Insert(ctx, fmt.Sprintf("c%02d", i), sampleDoc{})
		require.NoError(t, err)
	}

	info, err := Introspect(ctx, store)
	require.NoError(t, err)
	assert.True(t, info.Connected)
	assert.Len(t, info.Collections, MaxListedCollections)
	assert.Equal(t, "c00", info.Collections[0])
	assert.Equal(t, "c09", info.Collections[9])
}

func TestMemoryStoreClosed(t *testing.T) {
	store := NewMemoryStore("")
	ctx := context.Background()
	require.NoError(t, store.Close(ctx))

	_, err := store.Insert(ctx, "lead", sampleDoc{})
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.False(t, Available(ctx, store).Connected)
}

func TestIntrospectNilStore(t *testing.T) {
	info, err := Introspect(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.False(t, info.Connected)
	assert.Equal(t, Availability{}, Available(context.Background(), nil))
}

func TestIntrospectEmptyStoreListsNoCollections(t *testing.T) {
	info, err := Introspect(context.Background(), NewMemoryStore("x"))
	require.NoError(t, err)
	assert.NotNil(t, info.Collections)
	assert.Empty(t, info.Collections)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, "", OpenOptions{})
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = Open(ctx, "redis://localhost:6379", OpenOptions{})
	assert.ErrorIs(t, err, ErrUnsupportedScheme)

	_, err = Open(ctx, "dynamodb://mastry_", OpenOptions{})
	assert.Error(t, err)

	s, err := Open(ctx, "memory://sandbox", OpenOptions{})
	require.NoError(t, err)
	assert.Equal(t, "memory", s.Backend())
	assert.Equal(t, "sandbox", s.Name())

	s, err = Open(ctx, "memory://", OpenOptions{DatabaseName: "override"})
	require.NoError(t, err)
	assert.Equal(t, "override", s.Name())

	s, err = Open(ctx, "dynamodb://mastry_", OpenOptions{Dynamo: newMockDynamo()})
	require.NoError(t, err)
	assert.Equal(t, "dynamodb", s.Backend())
	assert.Equal(t, "mastry_", s.Name())
}

func TestScheme(t *testing.T) {
	assert.Equal(t, "postgresql", Scheme(" PostgreSQL://u@h/db"))
	assert.Equal(t, "mongodb+srv", Scheme("mongodb+srv://cluster/db"))
	assert.Equal(t, "", Scheme("localhost:5432"))
}

func TestWithTracingDelegates(t *testing.T) {
	assert.Nil(t, WithTracing(nil))

	inner := NewMemoryStore("traced")
	store := WithTracing(inner)
	id, err := store.Insert(context.Background(), "lead", sampleDoc{Name: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, 1, inner.Count("lead"))

	names, err := store.ListCollections(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"lead"}, names)

	var got sampleDoc
	require.NoError(t, store.Fetch(context.Background(), "lead", id, &got))
	assert.Equal(t, "traced", store.Name())
}
