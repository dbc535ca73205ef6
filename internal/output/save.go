// Package output persists crawl aggregates as timestamped JSON files.
package output

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/AlbertoFerragosti/crawl-lyrics/internal/crawl"
	"github.com/AlbertoFerragosti/crawl-lyrics/internal/filesystem"
)

// Writer saves aggregates into a directory, one file per crawl.
type Writer struct {
	dir string
}

// NewWriter creates a Writer rooted at dir. The directory is created on
// first save.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Save writes the aggregate as indented JSON and returns the file path.
// The write is atomic: a crash mid-save never corrupts a previous
// result.
func (w *Writer) Save(agg *crawl.Aggregate) (string, error) {
	data, err := json.MarshalIndent(agg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding aggregate: %w", err)
	}

	path := filepath.Join(w.dir, Filename(agg.CrawledAt, agg.Artist.Name))
	if err := filesystem.WriteFileAtomic(path, data, 0o644); err != nil {
		return "", fmt.Errorf("saving aggregate: %w", err)
	}
	return path, nil
}

// Filename builds the result file name: a sortable timestamp followed
// by the sanitized artist name, e.g. "20260823_141530.radiohead.json".
func Filename(t time.Time, artist string) string {
	return fmt.Sprintf("%s.%s.json", t.Format("20060102_150405"), sanitize(artist))
}

// sanitize lowercases the artist name and collapses every run of
// characters outside [a-z0-9] to a single underscore, keeping the file
// name portable across filesystems.
func sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		} else {
			pendingSep = true
		}
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}
