package directory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"ai-planner/backend/internal/recovery"
)

const (
	fetchAllQuery = `SELECT id, data FROM directory_records WHERE collection = $1 ORDER BY position`
	updateQuery   = `UPDATE directory_records SET data = data || $3::jsonb, updated_at = now() WHERE collection = $1 AND id = $2`
	putQuery      = `INSERT INTO directory_records (collection, id, data) VALUES ($1, $2, $3::jsonb)
ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`
	pingQuery = `SELECT 1`
)

// PostgresStore keeps directory records as JSONB documents in the directory_records table
// (see internal/db/migrations). Iteration order is insertion order (the position column).
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore returns a store that uses the given db (opened with the pgx driver, see db.Open).
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// FetchAll returns the records of collection ordered by insertion.
func (s *PostgresStore) FetchAll(ctx context.Context, collection string) (recovery.Directory, error) {
	rows, err := s.db.QueryContext(ctx, fetchAllQuery, cleanPath(collection))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	dir := recovery.Directory{}
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		fields, err := decodeFields(raw)
		if err != nil {
			return nil, fmt.Errorf("directory: record %s/%s: %w", collection, id, err)
		}
		dir = append(dir, recovery.Record{ID: id, Fields: fields})
	}
	return dir, rows.Err()
}

// Update merges fields into the stored document. Returns ErrRecordNotFound when no row matched.
func (s *PostgresStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := validateKey(collection, id); err != nil {
		return err
	}
	patch, err := json.Marshal(copyFields(fields))
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, updateQuery, cleanPath(collection), id, string(patch))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Put inserts or replaces the document. A replaced record keeps its original position.
func (s *PostgresStore) Put(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := validateKey(collection, id); err != nil {
		return err
	}
	doc, err := json.Marshal(copyFields(fields))
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, putQuery, cleanPath(collection), id, string(doc))
	return err
}

// Ping checks that the database answers a trivial query. Used by the health service.
func (s *PostgresStore) Ping(ctx context.Context) error {
	var one int
	return s.db.QueryRowContext(ctx, pingQuery).Scan(&one)
}
