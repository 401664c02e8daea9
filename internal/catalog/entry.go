package catalog

import (
	"fmt"
	"time"
)

// Entry is the current-state record of one discovered file or directory.
// ID is assigned at discovery time and never reused. Only FullPath, FileName,
// Hostname and Timestamp may change afterwards, and only through Store.Update.
type Entry struct {
	ID          string
	FullPath    string
	FileName    string
	IsDirectory bool
	Hostname    string    // "<host>:<user>" of the scanning process
	Timestamp   time.Time // discovery instant, UTC
}

// NewEntry builds an Entry for a freshly discovered path.
func NewEntry(id, fullPath, fileName string, isDir bool, hostname string, now time.Time) *Entry {
	return &Entry{
		ID:          id,
		FullPath:    fullPath,
		FileName:    fileName,
		IsDirectory: isDir,
		Hostname:    hostname,
		Timestamp:   now.UTC(),
	}
}

// EventType enumerates the state changes recorded in the event log.
type EventType string

const (
	EventCreate EventType = "create"
	EventDelete EventType = "delete"
)

// ParseEventType converts the stored text form back into an EventType.
func ParseEventType(s string) (EventType, error) {
	switch EventType(s) {
	case EventCreate, EventDelete:
		return EventType(s), nil
	default:
		return "", fmt.Errorf("unknown event type: %q", s)
	}
}

// Event is an immutable history record. It carries a snapshot of the subject
// entry's identity, path and name so it stays meaningful after the entry is
// updated or removed.
type Event struct {
	ID        string
	Timestamp time.Time
	Hostname  string
	Type      EventType
	FileID    string
	FullPath  string
	FileName  string
}

// NewCreateEvent pairs a creation event with a newly inserted entry.
// The event shares the entry's discovery instant and hostname.
func NewCreateEvent(id string, e *Entry) *Event {
	return &Event{
		ID:        id,
		Timestamp: e.Timestamp,
		Hostname:  e.Hostname,
		Type:      EventCreate,
		FileID:    e.ID,
		FullPath:  e.FullPath,
		FileName:  e.FileName,
	}
}

// NewDeleteEvent records the removal of e by hostname at the given instant.
func NewDeleteEvent(id string, e *Entry, hostname string, at time.Time) *Event {
	return &Event{
		ID:        id,
		Timestamp: at.UTC(),
		Hostname:  hostname,
		Type:      EventDelete,
		FileID:    e.ID,
		FullPath:  e.FullPath,
		FileName:  e.FileName,
	}
}
