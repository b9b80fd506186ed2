// Package databasetest opens throwaway SQLite databases with the advert schema applied.
package databasetest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"advert-service/pkg/database"
)

func Open(t testing.TB) (*sql.DB, database.Dialect) {
	t.Helper()

	opts := database.Options{
		Driver: database.DriverSQLite,
		Name:   filepath.Join(t.TempDir(), "adverts.db"),
	}

	db, dialect, err := database.NewDatabase(context.Background(), opts)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.EnsureSchema(context.Background(), db, dialect); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	return db, dialect
}
