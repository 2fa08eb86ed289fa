package userstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/vocadrill/pkg/models"
)

// FileStore keeps all user records in a single JSON document and rewrites the
// whole document on every upsert. Cost grows with the total user count, which
// is fine at this scale; SQLStore is the keyed alternative.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the JSON file at path. The parent
// directory is created if needed; the file itself is created lazily on the
// first upsert.
func NewFileStore(path string) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}
	return &FileStore{path: path}, nil
}

// LoadAll reads every record from the store file. A missing file is the
// normal first-run condition and yields an empty map.
func (s *FileStore) LoadAll(_ context.Context) (map[string]models.UserRecord, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]models.UserRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user store %s: %w", s.path, err)
	}

	users := map[string]models.UserRecord{}
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("user store %s is malformed: %w", s.path, err)
	}
	return users, nil
}

// Upsert replaces the record for id and persists the full store back,
// writing to a temp file first so a crash never leaves a half-written store.
func (s *FileStore) Upsert(ctx context.Context, id string, rec models.UserRecord) error {
	users, err := s.LoadAll(ctx)
	if err != nil {
		return err
	}
	users[id] = rec

	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode user store: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write user store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace user store: %w", err)
	}
	return nil
}

// Close is a no-op; the file is only held open during reads and writes.
func (s *FileStore) Close() error { return nil }
