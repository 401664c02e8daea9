package migrations

import (
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestMigrateUp_FreshDatabase(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	for _, table := range []string{"file", "events", "schema_migrations"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s was not created: %v", table, err)
		}
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateUp(db); err != nil {
		t.Fatalf("first MigrateUp() error = %v", err)
	}
	if err := MigrateUp(db); err != nil {
		t.Errorf("second MigrateUp() error = %v", err)
	}
	if err := CheckDBMigrationStatus(db); err != nil {
		t.Errorf("CheckDBMigrationStatus() error = %v", err)
	}
}

func TestMigrateDown(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}
	if err := MigrateDown(db); err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}

	var n int
	if err := db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type='table' AND name IN ('file','events')").Scan(&n); err != nil {
		t.Fatalf("counting tables: %v", err)
	}
	if n != 0 {
		t.Errorf("%d catalog tables left after MigrateDown", n)
	}
}

func TestCheckDBMigrationStatus(t *testing.T) {
	t.Run("fresh database needs migration", func(t *testing.T) {
		db := openTestDB(t)
		err := CheckDBMigrationStatus(db)
		if !errors.Is(err, ErrNoSchema) {
			t.Errorf("CheckDBMigrationStatus() error = %v, want ErrNoSchema", err)
		}
	})

	t.Run("current after migration", func(t *testing.T) {
		db := openTestDB(t)
		if err := MigrateUp(db); err != nil {
			t.Fatalf("MigrateUp() error = %v", err)
		}
		if err := CheckDBMigrationStatus(db); err != nil {
			t.Errorf("CheckDBMigrationStatus() error = %v", err)
		}

		v, dirty, err := Version(db)
		if err != nil {
			t.Fatalf("Version() error = %v", err)
		}
		latest, err := LatestVersion()
		if err != nil {
			t.Fatalf("LatestVersion() error = %v", err)
		}
		if v != latest || dirty {
			t.Errorf("Version() = %d, dirty=%v; want %d, clean", v, dirty, latest)
		}
	})
}

func TestSchema_FileConstraints(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	insert := "INSERT INTO file (id, timestamp, full_path, file_name, dir, hostname) VALUES (?, 0, '/v/a.mp4', 'a.mp4', 0, 'h:u')"
	if _, err := db.Exec(insert, "id-1"); err != nil {
		t.Fatalf("inserting file: %v", err)
	}
	if _, err := db.Exec(insert, "id-1"); err == nil {
		t.Error("duplicate id accepted, want primary key violation")
	}
	if _, err := db.Exec(insert, ""); err == nil {
		t.Error("empty id accepted, want check violation")
	}
}

func TestSchema_EventTypeConstraint(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	insert := "INSERT INTO events (id, timestamp, hostname, event_type, file_id, full_path, file_name) VALUES (?, 0, 'h:u', ?, 'f', '/v/a.mp4', 'a.mp4')"
	if _, err := db.Exec(insert, "e-1", "create"); err != nil {
		t.Fatalf("inserting create event: %v", err)
	}
	if _, err := db.Exec(insert, "e-2", "rename"); err == nil {
		t.Error("unknown event type accepted, want check violation")
	}
}

// openTestDB opens a single-connection in-memory SQLite database.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}
