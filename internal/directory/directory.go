// Package directory reads and patches the user and operator collections held in the remote document
// store. Collections are addressed by slash-delimited paths (e.g. "users", "operator"); records by id.
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"ai-planner/backend/internal/recovery"
)

// ErrRecordNotFound is returned by Update when the store can tell the record does not exist.
var ErrRecordNotFound = errors.New("directory: record not found")

// Store is the document store as seen by the backend.
type Store interface {
	// FetchAll returns every record of collection in the store's iteration order. A missing
	// collection is an empty directory, not an error.
	FetchAll(ctx context.Context, collection string) (recovery.Directory, error)
	// Update merges fields into the record collection/id.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	// Put replaces the record collection/id with fields, creating it if needed.
	Put(ctx context.Context, collection, id string, fields map[string]any) error
	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}

// cleanPath trims surrounding slashes and whitespace from a collection path.
func cleanPath(p string) string {
	return strings.Trim(strings.TrimSpace(p), "/")
}

func validateKey(collection, id string) error {
	if cleanPath(collection) == "" {
		return errors.New("directory: collection is required")
	}
	if strings.TrimSpace(id) == "" || strings.Contains(id, "/") {
		return errors.New("directory: invalid record id")
	}
	return nil
}

func copyFields(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

var (
	_ Store                   = (*RTDBStore)(nil)
	_ Store                   = (*PostgresStore)(nil)
	_ Store                   = (*MemoryStore)(nil)
	_ recovery.DirectoryStore = Store(nil)
)

// decodeFields decodes a stored object keeping numbers as json.Number, so numeric phone fields keep
// every digit.
func decodeFields(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	return fields, nil
}
