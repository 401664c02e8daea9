package catalog

import (
	"fmt"
	"io"
	"strings"
)

// FindOptions describes a user search.
type FindOptions struct {
	Name     string
	ShowPath bool
	DirsOnly bool
}

// Find searches the catalog for entries whose name matches opts.Name under
// the configured match policy. Store errors are returned unchanged.
func (s *Service) Find(opts FindOptions) ([]*Entry, error) {
	if strings.TrimSpace(opts.Name) == "" {
		return nil, ErrEmptyPattern
	}

	q := Query{
		Pattern:       opts.Name,
		DirsOnly:      opts.DirsOnly,
		Mode:          s.opts.MatchMode,
		CaseSensitive: s.opts.CaseSensitive,
	}
	s.logger.Debug("querying catalog", "pattern", q.Pattern, "dirs_only", q.DirsOnly, "mode", string(q.Mode))

	return s.store.Query(q)
}

// FormatEntry renders an entry as its bare name, or "name:(full_path)".
func FormatEntry(e *Entry, showPath bool) string {
	if !showPath {
		return e.FileName
	}
	return fmt.Sprintf("%s:(%s)", e.FileName, e.FullPath)
}

// RenderEntries writes one formatted line per entry to w.
func RenderEntries(w io.Writer, entries []*Entry, showPath bool) error {
	for _, e := range entries {
		if _, err := fmt.Fprintln(w, FormatEntry(e, showPath)); err != nil {
			return err
		}
	}
	return nil
}

// CountReport holds catalog diagnostics.
type CountReport struct {
	Files    int64
	Events   int64
	Location string
}

func (r *CountReport) String() string {
	return fmt.Sprintf("file.count: %d, events.count: %d and in db path: %s", r.Files, r.Events, r.Location)
}

// Count reports the size of both catalog tables and where the catalog lives.
func (s *Service) Count() (*CountReport, error) {
	files, err := s.store.FileCount()
	if err != nil {
		return nil, err
	}
	events, err := s.store.EventCount()
	if err != nil {
		return nil, err
	}
	return &CountReport{
		Files:    files,
		Events:   events,
		Location: s.store.Location(),
	}, nil
}

// History returns the event log for entries named exactly name, oldest first.
func (s *Service) History(name string) ([]*Event, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyPattern
	}
	return s.store.EventsForName(name)
}

// Forget removes one entry from the catalog and records a delete event.
// It returns nil if no entry has that ID.
func (s *Service) Forget(id string) (*Entry, error) {
	e, err := s.store.Remove(id, s.opts.Hostname)
	if err != nil {
		return nil, err
	}
	if e != nil {
		s.logger.Info("entry forgotten", "id", id, "path", e.FullPath)
	}
	return e, nil
}
