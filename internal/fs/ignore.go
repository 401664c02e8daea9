package fs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"findv/internal/catalog"
)

// IgnoreFileName is the per-volume ignore file read from a scan root.
const IgnoreFileName = ".findvignore"

type ignoreRule struct {
	glob     string
	anchored bool // match the whole relative path instead of the base name
	negate   bool
}

// IgnoreMatcher decides whether a root-relative path is excluded from a scan.
//
// A rule without '/' is matched against the base name of every path, so
// "*.part" hides partial downloads at any depth. A rule containing '/' is
// matched against the full relative path; a leading '/' is optional.
// A rule starting with '!' re-includes paths hidden by earlier rules.
// The last matching rule wins.
type IgnoreMatcher struct {
	rules []ignoreRule
}

// NewIgnoreMatcher parses raw rule lines. Blank lines and '#' comments are
// dropped, as are rules filepath.Match would reject.
func NewIgnoreMatcher(lines []string) *IgnoreMatcher {
	m := &IgnoreMatcher{}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var r ignoreRule
		if strings.HasPrefix(line, "!") {
			r.negate = true
			line = line[1:]
		}
		line = strings.TrimSuffix(line, "/")
		if strings.Contains(line, "/") {
			r.anchored = true
			line = strings.TrimPrefix(line, "/")
		}
		if line == "" {
			continue
		}
		if _, err := filepath.Match(line, ""); err != nil {
			continue
		}
		r.glob = line
		m.rules = append(m.rules, r)
	}
	return m
}

// Len returns the number of usable rules.
func (m *IgnoreMatcher) Len() int {
	return len(m.rules)
}

// Match reports whether relativePath is ignored.
func (m *IgnoreMatcher) Match(relativePath string) bool {
	if relativePath == "" || len(m.rules) == 0 {
		return false
	}

	slashed := filepath.ToSlash(relativePath)
	base := filepath.Base(relativePath)

	ignored := false
	for _, r := range m.rules {
		subject := base
		if r.anchored {
			subject = slashed
		}
		if ok, _ := filepath.Match(r.glob, subject); ok {
			ignored = !r.negate
		}
	}
	return ignored
}

// ReadIgnoreFile returns the raw lines of an ignore file.
// A missing file yields no lines and no error.
func ReadIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file %s: %w", path, err)
	}
	return lines, nil
}

// IgnoreLoader returns a function that builds the matcher for a scan root:
// the configured rules followed by the root's own ignore file, so the
// volume can re-include what the configuration hides.
func IgnoreLoader(configured []string) func(root string) (catalog.PathMatcher, error) {
	return func(root string) (catalog.PathMatcher, error) {
		fromRoot, err := ReadIgnoreFile(filepath.Join(root, IgnoreFileName))
		if err != nil {
			return nil, err
		}
		lines := make([]string, 0, len(configured)+len(fromRoot))
		lines = append(lines, configured...)
		lines = append(lines, fromRoot...)
		return NewIgnoreMatcher(lines), nil
	}
}

var _ catalog.PathMatcher = (*IgnoreMatcher)(nil)
