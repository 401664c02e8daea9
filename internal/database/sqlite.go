package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"findv/internal/catalog"
	"findv/internal/database/migrations"
	"findv/internal/database/sqlc"

	"github.com/mattn/go-sqlite3"
)

// MemoryPath opens a private in-memory catalog.
const MemoryPath = ":memory:"

// DriverName is the go-sqlite3 driver registered with the catalog's SQL
// functions. fold(s) lowercases s with full Unicode case mapping; the
// built-in lower() and LIKE only fold ASCII.
const DriverName = "sqlite3_findv"

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("fold", strings.ToLower, true)
		},
	})
}

// SQLiteDatabase is the SQLite implementation of catalog.Store.
// Every write runs in its own transaction; a failed write leaves no rows.
type SQLiteDatabase struct {
	db      *sql.DB
	queries *sqlc.Queries
	path    string
	idgen   catalog.IDGenerator
	clock   catalog.Clock
}

// NewSQLiteDatabase opens the catalog at path, creating the file and its
// parent directory if needed, and migrates it to the latest schema.
// idgen and clock are used for delete events; nil selects UUIDs and the
// real clock.
func NewSQLiteDatabase(path string, idgen catalog.IDGenerator, clock catalog.Clock) (*SQLiteDatabase, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
	}

	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating catalog %s: %w", path, err)
	}

	s := NewSQLiteDatabaseFromDB(db, idgen, clock)
	s.path = path
	return s, nil
}

// NewSQLiteDatabaseFromDB wraps an existing, already migrated connection.
func NewSQLiteDatabaseFromDB(db *sql.DB, idgen catalog.IDGenerator, clock catalog.Clock) *SQLiteDatabase {
	if idgen == nil {
		idgen = catalog.UUIDGenerator{}
	}
	if clock == nil {
		clock = catalog.RealClock{}
	}
	return &SQLiteDatabase{
		db:      db,
		queries: sqlc.New(db),
		path:    MemoryPath,
		idgen:   idgen,
		clock:   clock,
	}
}

// OpenConnection opens a SQLite connection configured for the catalog.
// File catalogs use WAL with a busy timeout so readers do not block a scan.
// An in-memory catalog is pinned to one connection, since each connection
// would otherwise see its own empty database.
func OpenConnection(path string) (*sql.DB, error) {
	dsn := path
	if path != MemoryPath {
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	}

	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	if path == MemoryPath {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to catalog %s: %w", path, err)
	}
	return db, nil
}

func storageErr(op string, err error) error {
	return &catalog.StorageError{Op: op, Err: err}
}

// saveTx inserts e and, only if the row is new, its create event.
func (s *SQLiteDatabase) saveTx(ctx context.Context, qtx *sqlc.Queries, e *catalog.Entry) error {
	res, err := qtx.InsertFile(ctx, sqlc.InsertFileParams{
		ID:        e.ID,
		Timestamp: e.Timestamp.UnixNano(),
		FullPath:  e.FullPath,
		FileName:  e.FileName,
		Dir:       e.IsDirectory,
		Hostname:  e.Hostname,
	})
	if err != nil {
		return fmt.Errorf("inserting entry %s: %w", e.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("inserting entry %s: %w", e.ID, err)
	}
	if n == 0 {
		return nil
	}

	if err := insertEvent(ctx, qtx, catalog.NewCreateEvent(s.idgen.New(), e)); err != nil {
		return fmt.Errorf("inserting create event for %s: %w", e.ID, err)
	}
	return nil
}

func insertEvent(ctx context.Context, qtx *sqlc.Queries, ev *catalog.Event) error {
	return qtx.InsertEvent(ctx, sqlc.InsertEventParams{
		ID:        ev.ID,
		Timestamp: ev.Timestamp.UnixNano(),
		Hostname:  ev.Hostname,
		EventType: string(ev.Type),
		FileID:    ev.FileID,
		FullPath:  ev.FullPath,
		FileName:  ev.FileName,
	})
}

// Save inserts e with its create event. Saving an ID that already exists
// changes nothing.
func (s *SQLiteDatabase) Save(e *catalog.Entry) error {
	return s.SaveBulk([]*catalog.Entry{e})
}

// SaveBulk saves every entry in one transaction.
func (s *SQLiteDatabase) SaveBulk(entries []*catalog.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("save", fmt.Errorf("starting transaction: %w", err))
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)
	for _, e := range entries {
		if err := s.saveTx(ctx, qtx, e); err != nil {
			return storageErr("save", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("save", fmt.Errorf("committing transaction: %w", err))
	}
	return nil
}

// Update overwrites the mutable fields of the entry with e.ID.
func (s *SQLiteDatabase) Update(e *catalog.Entry) error {
	_, err := s.queries.UpdateFile(context.Background(), sqlc.UpdateFileParams{
		Timestamp: e.Timestamp.UnixNano(),
		FullPath:  e.FullPath,
		FileName:  e.FileName,
		Hostname:  e.Hostname,
		ID:        e.ID,
	})
	if err != nil {
		return storageErr("update", err)
	}
	return nil
}

// Remove deletes the entry and records who removed it.
func (s *SQLiteDatabase) Remove(id string, hostname string) (*catalog.Entry, error) {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageErr("remove", fmt.Errorf("starting transaction: %w", err))
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)

	row, err := qtx.GetFile(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("remove", fmt.Errorf("finding entry %s: %w", id, err))
	}
	e := toEntry(row)

	if _, err := qtx.DeleteFile(ctx, id); err != nil {
		return nil, storageErr("remove", fmt.Errorf("deleting entry %s: %w", id, err))
	}
	ev := catalog.NewDeleteEvent(s.idgen.New(), e, hostname, s.clock.Now())
	if err := insertEvent(ctx, qtx, ev); err != nil {
		return nil, storageErr("remove", fmt.Errorf("inserting delete event for %s: %w", id, err))
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr("remove", fmt.Errorf("committing transaction: %w", err))
	}
	return e, nil
}

func (s *SQLiteDatabase) Get(id string) (*catalog.Entry, error) {
	row, err := s.queries.GetFile(context.Background(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("get", err)
	}
	return toEntry(row), nil
}

func (s *SQLiteDatabase) FileCount() (int64, error) {
	n, err := s.queries.CountFiles(context.Background())
	if err != nil {
		return 0, storageErr("count files", err)
	}
	return n, nil
}

func (s *SQLiteDatabase) EventCount() (int64, error) {
	n, err := s.queries.CountEvents(context.Background())
	if err != nil {
		return 0, storageErr("count events", err)
	}
	return n, nil
}

// Query searches current-state entries by file name. Results are ordered by
// full path.
func (s *SQLiteDatabase) Query(q catalog.Query) ([]*catalog.Entry, error) {
	ctx := context.Background()

	var rows []sqlc.File
	var err error
	switch q.Mode {
	case catalog.MatchSubstring, "":
		if q.CaseSensitive {
			rows, err = s.queries.SearchFilesInstr(ctx, sqlc.SearchFilesInstrParams{Pattern: q.Pattern, DirsOnly: q.DirsOnly})
		} else {
			rows, err = s.queries.SearchFilesLike(ctx, sqlc.SearchFilesLikeParams{Pattern: likePattern(q.Pattern), DirsOnly: q.DirsOnly})
		}
	case catalog.MatchGlob:
		if q.CaseSensitive {
			rows, err = s.queries.SearchFilesGlob(ctx, sqlc.SearchFilesGlobParams{Pattern: q.Pattern, DirsOnly: q.DirsOnly})
		} else {
			rows, err = s.queries.SearchFilesGlobFold(ctx, sqlc.SearchFilesGlobFoldParams{Pattern: q.Pattern, DirsOnly: q.DirsOnly})
		}
	default:
		return nil, storageErr("query", fmt.Errorf("%w: %q", catalog.ErrUnknownMatchMode, q.Mode))
	}
	if err != nil {
		return nil, storageErr("query", err)
	}

	entries := make([]*catalog.Entry, len(rows))
	for i, r := range rows {
		entries[i] = toEntry(r)
	}
	return entries, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern turns a literal substring into a LIKE pattern.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func (s *SQLiteDatabase) EventsForName(name string) ([]*catalog.Event, error) {
	rows, err := s.queries.GetEventsByFileName(context.Background(), name)
	if err != nil {
		return nil, storageErr("history", err)
	}

	events := make([]*catalog.Event, 0, len(rows))
	for _, r := range rows {
		t, err := catalog.ParseEventType(r.EventType)
		if err != nil {
			return nil, storageErr("history", err)
		}
		events = append(events, &catalog.Event{
			ID:        r.ID,
			Timestamp: time.Unix(0, r.Timestamp).UTC(),
			Hostname:  r.Hostname,
			Type:      t,
			FileID:    r.FileID,
			FullPath:  r.FullPath,
			FileName:  r.FileName,
		})
	}
	return events, nil
}

func toEntry(r sqlc.File) *catalog.Entry {
	return &catalog.Entry{
		ID:          r.ID,
		FullPath:    r.FullPath,
		FileName:    r.FileName,
		IsDirectory: r.Dir,
		Hostname:    r.Hostname,
		Timestamp:   time.Unix(0, r.Timestamp).UTC(),
	}
}

// CheckMigrations reports whether the schema matches this binary.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// BackupTo writes a consistent copy of the catalog with VACUUM INTO.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	if _, err := s.db.Exec("VACUUM INTO ?", destPath); err != nil {
		return storageErr("backup", err)
	}
	return nil
}

func (s *SQLiteDatabase) Location() string {
	return s.path
}

func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

var _ catalog.Store = (*SQLiteDatabase)(nil)
