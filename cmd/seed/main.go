// seed writes development users and operators into the configured directory. Run via ./scripts/seed.sh.
// Idempotent: records whose id already exists are left untouched.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"ai-planner/backend/internal/config"
	"ai-planner/backend/internal/db"
	"ai-planner/backend/internal/directory"
	"ai-planner/backend/internal/logger"
	"ai-planner/backend/internal/recovery"
)

type seedRecord struct {
	id     string
	fields map[string]any
}

const devPassword = "password123"

func users() []seedRecord {
	return []seedRecord{
		{id: "dev-user-001", fields: map[string]any{
			recovery.FieldName: "Dev User", recovery.FieldPhone: "081234567890", recovery.FieldPassword: devPassword,
		}},
		{id: "dev-user-002", fields: map[string]any{
			recovery.FieldNameAlt: "Second Dev", recovery.FieldPhoneAlt: "+62 812-9876-5432", recovery.FieldPassword: devPassword,
		}},
	}
}

func operators() []seedRecord {
	return []seedRecord{
		{id: "dev-operator-001", fields: map[string]any{
			recovery.FieldName: "Operator Satu", recovery.FieldPhone: "6281311112222", recovery.FieldPassword: devPassword,
		}},
	}
}

type seeder interface {
	recovery.DirectoryStore
	Put(ctx context.Context, collection, id string, fields map[string]any) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zlog, err := logger.NewLogger(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	store, conn, err := open(cfg)
	if err != nil {
		zlog.Fatal("seed: open directory", zap.Error(err))
	}
	if conn != nil {
		defer conn.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for collection, records := range map[string][]seedRecord{cfg.UsersPath: users(), cfg.OperatorsPath: operators()} {
		n, err := seed(ctx, store, collection, records)
		if err != nil {
			zlog.Fatal("seed failed", zap.String("collection", collection), zap.Error(err))
		}
		zlog.Info("seeded", zap.String("collection", collection), zap.Int("inserted", n), zap.Int("total", len(records)))
	}
}

func open(cfg *config.Config) (seeder, *sql.DB, error) {
	switch cfg.DirectoryDriver {
	case config.DirectoryRTDB:
		return directory.NewRTDBStore(cfg.FirebaseDatabaseURL, cfg.FirebaseAuthToken), nil, nil
	case config.DirectoryPostgres:
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return directory.NewPostgresStore(conn), conn, nil
	default:
		return nil, nil, fmt.Errorf("DIRECTORY_DRIVER=%s cannot be seeded from outside the server process", cfg.DirectoryDriver)
	}
}

// seed puts every record whose id is not yet present and returns how many were written.
func seed(ctx context.Context, store seeder, collection string, records []seedRecord) (int, error) {
	existing, err := store.FetchAll(ctx, collection)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", collection, err)
	}
	have := make(map[string]bool, len(existing))
	for _, r := range existing {
		have[r.ID] = true
	}
	n := 0
	for _, r := range records {
		if have[r.id] {
			continue
		}
		if err := store.Put(ctx, collection, r.id, r.fields); err != nil {
			return n, fmt.Errorf("put %s/%s: %w", collection, r.id, err)
		}
		n++
	}
	return n, nil
}
