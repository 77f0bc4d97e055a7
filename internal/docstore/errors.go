package docstore

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable is returned when no database connection is configured or reachable.
	ErrUnavailable = errors.New("docstore: database not available")

	// ErrNotFound is returned by Fetch when no document has the given id.
	ErrNotFound = errors.New("docstore: document not found")

	// ErrUnsupportedScheme is returned by Open for unknown DATABASE_URL schemes.
	ErrUnsupportedScheme = errors.New("docstore: unsupported database url scheme")
)

// PersistenceError reports a failed write after a connection existed.
type PersistenceError struct {
	Backend    string
	Collection string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("docstore: %s insert into %q failed: %v", e.Backend, e.Collection, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func persistenceErr(backend, collection string, err error) error {
	return &PersistenceError{Backend: backend, Collection: collection, Err: err}
}

func unavailableErr(backend string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, backend, err)
}
