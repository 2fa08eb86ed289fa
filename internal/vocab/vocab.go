// Package vocab holds the static vocabulary table quiz words are drawn from.
package vocab

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/vocadrill/pkg/models"
)

// Source supplies the word pairs for a difficulty level. The table behind it
// is fixed at startup and read-only afterwards.
type Source interface {
	WordsForLevel(level models.Level) []models.WordPair
}

// Library is an in-memory Source keyed by level.
type Library struct {
	buckets map[models.Level][]models.WordPair
}

// NewLibrary builds a library from explicit per-level buckets.
func NewLibrary(buckets map[models.Level][]models.WordPair) *Library {
	return &Library{buckets: buckets}
}

// WordsForLevel returns the bucket for level, or nil if the level has no words.
func (l *Library) WordsForLevel(level models.Level) []models.WordPair {
	return l.buckets[level]
}

// Size returns the total number of word pairs across all levels.
func (l *Library) Size() int {
	n := 0
	for _, bucket := range l.buckets {
		n += len(bucket)
	}
	return n
}

// Load builds the library for the given file, dispatching on extension:
// .json, .xlsx or .csv. An empty path yields the built-in default word set.
func Load(path string) (*Library, error) {
	if path == "" {
		return NewLibrary(defaultWords()), nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return loadJSON(path)
	case ".xlsx", ".csv":
		return loadSpreadsheet(path)
	default:
		return nil, fmt.Errorf("unsupported vocabulary file %s: want .json, .xlsx or .csv", path)
	}
}

// loadJSON reads a {"easy": [{"ru": ..., "en": ...}, ...], ...} document.
func loadJSON(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file: %w", err)
	}

	raw := map[string][]models.WordPair{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("vocabulary file %s is malformed: %w", path, err)
	}

	buckets := map[models.Level][]models.WordPair{}
	for name, pairs := range raw {
		level := models.Level(name)
		if !level.Valid() {
			return nil, fmt.Errorf("vocabulary file %s: unknown level %q", path, name)
		}
		buckets[level] = pairs
	}

	lib := NewLibrary(buckets)
	if lib.Size() == 0 {
		return nil, fmt.Errorf("vocabulary file %s contains no words", path)
	}
	return lib, nil
}
