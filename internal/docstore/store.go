// Package docstore persists schemaless documents into named collections.
//
// A collection maps onto whatever the backend calls it: a Postgres table, a
// MongoDB collection or a DynamoDB table. Callers only ever insert and fetch
// by the identifier the backend hands back.
package docstore

import (
	"context"
)

// MaxListedCollections caps the collection listing used by diagnostics.
const MaxListedCollections = 10

// Store is implemented by every document backend.
type Store interface {
	// Insert writes doc into collection and returns its backend-assigned id.
	Insert(ctx context.Context, collection string, doc any) (string, error)
	// Fetch decodes the document with the given id into out.
	Fetch(ctx context.Context, collection, id string, out any) error
	Ping(ctx context.Context) error
	// ListCollections returns at most limit collection names, sorted.
	ListCollections(ctx context.Context, limit int) ([]string, error)
	// Name is the configured database name, or "" when unknown.
	Name() string
	Backend() string
	Close(ctx context.Context) error
}

// Availability is the cheap connectivity answer for a store.
type Availability struct {
	Connected bool
	Name      string
}

// Info is the diagnostic snapshot of a store.
type Info struct {
	Backend     string
	Connected   bool
	Name        string
	Collections []string
}

// Available pings the store. A nil store is reported as disconnected.
func Available(ctx context.Context, s Store) Availability {
	if s == nil {
		return Availability{}
	}
	return Availability{
		Connected: s.Ping(ctx) == nil,
		Name:      s.Name(),
	}
}

// Introspect pings the store and lists up to MaxListedCollections names.
// The returned Info is partially filled when an error occurs.
func Introspect(ctx context.Context, s Store) (Info, error) {
	if s == nil {
		return Info{}, ErrUnavailable
	}
	info := Info{Backend: s.Backend(), Name: s.Name()}
	if err := s.Ping(ctx); err != nil {
		return info, err
	}
	info.Connected = true

	names, err := s.ListCollections(ctx, MaxListedCollections)
	if err != nil {
		return info, err
	}
	info.Collections = capNames(names, MaxListedCollections)
	return info, nil
}

func capNames(names []string, limit int) []string {
	if names == nil {
		return []string{}
	}
	if limit > 0 && len(names) > limit {
		return names[:limit]
	}
	return names
}
