package catalog

import (
	"path/filepath"
	"strings"
)

// PathMatcher reports whether a root-relative path matches a set of patterns.
type PathMatcher interface {
	Match(relativePath string) bool
}

// Filter decides which walked entries belong in the catalog.
// It is a pure function of the entry and its static configuration.
type Filter struct {
	excludes   []string
	extensions map[string]bool
	ignore     PathMatcher
}

// NewFilter creates a Filter.
// excludes are absolute path prefixes whose subtrees are never indexed; a
// trailing separator is dropped so the named directory itself is excluded.
// extensions lists the indexable file extensions, with or without the leading
// dot; matching is case-insensitive. ignore may be nil.
func NewFilter(excludes []string, extensions []string, ignore PathMatcher) *Filter {
	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = normalizeExt(ext)
		if ext == "" {
			continue
		}
		exts[ext] = true
	}

	var prefixes []string
	for _, p := range excludes {
		if p = strings.TrimSpace(p); p != "" {
			prefixes = append(prefixes, filepath.Clean(p))
		}
	}

	return &Filter{
		excludes:   prefixes,
		extensions: exts,
		ignore:     ignore,
	}
}

// WithIgnore returns a copy of f that uses m as its ignore matcher.
func (f *Filter) WithIgnore(m PathMatcher) *Filter {
	cp := *f
	cp.ignore = m
	return &cp
}

// Accept applies the rules in order: hidden names are rejected, then
// excluded subtrees, then non-directories without an indexable extension.
// Directories that pass the first two rules are always accepted.
func (f *Filter) Accept(e WalkEntry) bool {
	if IsHidden(e.Name) {
		return false
	}
	if f.Excluded(e) {
		return false
	}
	if e.IsDir {
		return true
	}
	return f.extensions[normalizeExt(filepath.Ext(e.Name))]
}

// Excluded reports whether the entry falls under volume policy exclusions:
// a configured path prefix or an ignore pattern.
func (f *Filter) Excluded(e WalkEntry) bool {
	for _, prefix := range f.excludes {
		if strings.HasPrefix(e.Path, prefix) {
			return true
		}
	}
	if f.ignore != nil && e.RelPath != "" && f.ignore.Match(e.RelPath) {
		return true
	}
	return false
}

// Extensions returns the normalized indexable extensions.
func (f *Filter) Extensions() []string {
	out := make([]string, 0, len(f.extensions))
	for ext := range f.extensions {
		out = append(out, ext)
	}
	return out
}

// IsHidden reports whether a base name denotes a hidden entry.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
