package docstore

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("mastry.internal.docstore")

type tracedStore struct {
	Store
}

// WithTracing wraps s so inserts and listings emit spans. A nil store stays nil.
func WithTracing(s Store) Store {
	if s == nil {
		return nil
	}
	return &tracedStore{Store: s}
}

func (t *tracedStore) Insert(ctx context.Context, collection string, doc any) (string, error) {
	ctx, span := tracer.Start(ctx, "docstore.insert", trace.WithAttributes(
		attribute.String("db.system", t.Backend()),
		attribute.String("db.collection.name", collection),
	))
	defer span.End()

	id, err := t.Store.Insert(ctx, collection, doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return "", err
	}
	span.SetAttributes(attribute.String("docstore.id", id))
	return id, nil
}

func (t *tracedStore) ListCollections(ctx context.Context, limit int) ([]string, error) {
	ctx, span := tracer.Start(ctx, "docstore.list_collections", trace.WithAttributes(
		attribute.String("db.system", t.Backend()),
	))
	defer span.End()

	names, err := t.Store.ListCollections(ctx, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
	}
	return names, err
}
