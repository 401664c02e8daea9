package testutil

import (
	"testing"

	"findv/internal/database"
)

// NewTestStore creates a new in-memory SQLite catalog with schema applied,
// using a stub clock and "event-N" IDs for the events it writes.
// The store is automatically closed when the test completes.
func NewTestStore(t *testing.T) *database.SQLiteDatabase {
	t.Helper()

	sqlDB, err := database.OpenConnection(database.MemoryPath)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if _, err := sqlDB.Exec(database.Schema); err != nil {
		sqlDB.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	db := database.NewSQLiteDatabaseFromDB(sqlDB, NewPrefixedIDGenerator("event"), FixedClock())

	t.Cleanup(func() {
		db.Close()
	})

	return db
}
