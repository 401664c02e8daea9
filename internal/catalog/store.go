package catalog

// MatchMode selects how Query.Pattern is compared against file names.
type MatchMode string

const (
	// MatchSubstring matches names containing the pattern.
	MatchSubstring MatchMode = "substring"
	// MatchGlob matches names against a shell glob (*, ?, [...]).
	MatchGlob MatchMode = "glob"
)

// Query is a read-only name search over current-state entries.
type Query struct {
	Pattern       string
	DirsOnly      bool
	Mode          MatchMode // empty means MatchSubstring
	CaseSensitive bool
}

// Store is the durable catalog: current-state entries plus the append-only
// event log. Implementations wrap every failure in a *StorageError.
type Store interface {
	// Save inserts e if no entry with its ID exists, together with its paired
	// create event, in one transaction. Saving an existing ID is a no-op.
	Save(e *Entry) error

	// SaveBulk applies Save to every entry inside a single transaction.
	// On failure nothing from the batch is persisted.
	SaveBulk(entries []*Entry) error

	// Update overwrites the mutable fields of the entry with e.ID.
	// It is a no-op when no such entry exists.
	Update(e *Entry) error

	// Remove deletes the entry with the given ID and appends a delete event
	// attributed to hostname, atomically. Returns nil, nil if absent.
	Remove(id string, hostname string) (*Entry, error)

	// Get returns the entry with the given ID, or nil if absent.
	Get(id string) (*Entry, error)

	// FileCount and EventCount return the row count of each table.
	FileCount() (int64, error)
	EventCount() (int64, error)

	// Query returns the current-state entries whose name matches q.
	Query(q Query) ([]*Entry, error)

	// EventsForName returns every event whose subject had exactly this
	// file name, oldest first.
	EventsForName(name string) ([]*Event, error)

	// BackupTo writes a consistent copy of the catalog to destPath.
	BackupTo(destPath string) error

	// Location describes where the catalog lives (a file path or ":memory:").
	Location() string

	Close() error
}
