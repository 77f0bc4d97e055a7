package docstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const backendMongo = "mongodb"

// MongoStore writes documents into collections of a single MongoDB database.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ Store = (*MongoStore)(nil)

// ConnectMongo opens a client for uri and verifies it with a ping. When name
// is empty the database is taken from the URI path.
func ConnectMongo(ctx context.Context, uri, name string) (*MongoStore, error) {
	if name == "" {
		name = mongoDatabaseFromURI(uri)
	}
	if name == "" {
		return nil, errors.New("docstore: mongodb requires DATABASE_NAME or a database in the url path")
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("docstore: mongo client: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, unavailableErr(backendMongo, err)
	}
	return &MongoStore{client: client, db: client.Database(name)}, nil
}

func (s *MongoStore) Insert(ctx context.Context, collection string, doc any) (string, error) {
	res, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return "", classifyMongoErr(collection, err)
	}
	return mongoID(res.InsertedID), nil
}

func (s *MongoStore) Fetch(ctx context.Context, collection, id string, out any) error {
	var filter bson.D
	if oid, err := bson.ObjectIDFromHex(id); err == nil {
		filter = bson.D{{Key: "_id", Value: oid}}
	} else {
		filter = bson.D{{Key: "_id", Value: id}}
	}

	err := s.db.Collection(collection).FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("docstore: find %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) ListCollections(ctx context.Context, limit int) ([]string, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("docstore: list collections: %w", err)
	}
	sort.Strings(names)
	return capNames(names, limit), nil
}

func (s *MongoStore) Name() string    { return s.db.Name() }
func (s *MongoStore) Backend() string { return backendMongo }

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func mongoID(v any) string {
	switch id := v.(type) {
	case bson.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}

func mongoDatabaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	return strings.Trim(u.Path, "/")
}

func classifyMongoErr(collection string, err error) error {
	if mongo.IsNetworkError(err) || errors.Is(err, mongo.ErrClientDisconnected) {
		return unavailableErr(backendMongo, err)
	}
	return persistenceErr(backendMongo, collection, err)
}
