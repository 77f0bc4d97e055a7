package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// OpenOptions carries what Open cannot derive from the URL itself.
type OpenOptions struct {
	// DatabaseName overrides the database named in the URL.
	DatabaseName string
	// Dynamo is required for dynamodb:// URLs.
	Dynamo DynamoAPI
}

// Scheme returns the lower-cased scheme of a DATABASE_URL, or "".
func Scheme(rawURL string) string {
	scheme, _, ok := strings.Cut(strings.TrimSpace(rawURL), "://")
	if !ok {
		return ""
	}
	return strings.ToLower(scheme)
}

// Open connects to the backend named by the scheme of rawURL:
//
//	memory://                     in-process map
//	postgres://, postgresql://    pgx pool
//	mongodb://, mongodb+srv://    mongo-driver
//	dynamodb://<table-prefix>     DynamoDB, client supplied in opts
func Open(ctx context.Context, rawURL string, opts OpenOptions) (Store, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, ErrUnavailable
	}

	switch scheme := Scheme(rawURL); scheme {
	case "memory":
		name := opts.DatabaseName
		if name == "" {
			name = strings.TrimPrefix(rawURL[len("memory://"):], "/")
		}
		return NewMemoryStore(name), nil
	case "postgres", "postgresql":
		s, err := ConnectPostgres(ctx, rawURL, opts.DatabaseName)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "mongodb", "mongodb+srv":
		s, err := ConnectMongo(ctx, rawURL, opts.DatabaseName)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "dynamodb":
		if opts.Dynamo == nil {
			return nil, errors.New("docstore: dynamodb url requires a dynamodb client")
		}
		prefix := strings.Trim(rawURL[len("dynamodb://"):], "/")
		name := opts.DatabaseName
		if name == "" {
			name = prefix
		}
		return NewDynamoStore(opts.Dynamo, prefix, name), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
}
