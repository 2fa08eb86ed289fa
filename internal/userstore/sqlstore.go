package userstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/example/vocadrill/pkg/models"
)

// SQLStore keeps one row per user, so an upsert touches a single record
// instead of rewriting the whole store.
type SQLStore struct {
	db *sqlx.DB
}

type userRow struct {
	UserID       string  `db:"user_id"`
	DisplayName  string  `db:"display_name"`
	Handle       string  `db:"handle"`
	Level        string  `db:"level"`
	Direction    string  `db:"direction"`
	Score        float64 `db:"score"`
	JoinedAt     string  `db:"joined_at"`
	LastActiveAt string  `db:"last_active_at"`
}

// NewSQLiteStore opens (or creates) a sqlite-backed store at path.
func NewSQLiteStore(path string) (*SQLStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}
	// SQLite doesn't support multiple writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return newSQLStore(db)
}

// NewPostgresStore connects to a postgres-backed store.
func NewPostgresStore(dsn string) (*SQLStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres store: %w", err)
	}
	return newSQLStore(db)
}

func newSQLStore(db *sqlx.DB) (*SQLStore, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			user_id TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			handle TEXT NOT NULL DEFAULT '',
			level TEXT NOT NULL,
			direction TEXT NOT NULL,
			score REAL NOT NULL DEFAULT 0,
			joined_at TEXT NOT NULL,
			last_active_at TEXT NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create users table: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// LoadAll reads every record from the users table. An empty table is the
// normal first-run condition.
func (s *SQLStore) LoadAll(ctx context.Context) (map[string]models.UserRecord, error) {
	var rows []userRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT user_id, display_name, handle, level, direction, score, joined_at, last_active_at FROM users")
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	users := make(map[string]models.UserRecord, len(rows))
	for _, r := range rows {
		level := models.Level(r.Level)
		direction := models.Direction(r.Direction)
		if !level.Valid() || !direction.Valid() {
			return nil, fmt.Errorf("user store row %s is malformed: level=%q direction=%q",
				r.UserID, r.Level, r.Direction)
		}
		users[r.UserID] = models.UserRecord{
			DisplayName:  r.DisplayName,
			Handle:       r.Handle,
			Level:        level,
			Direction:    direction,
			Score:        r.Score,
			JoinedAt:     r.JoinedAt,
			LastActiveAt: r.LastActiveAt,
		}
	}
	return users, nil
}

// Upsert writes or overwrites the row for id.
func (s *SQLStore) Upsert(ctx context.Context, id string, rec models.UserRecord) error {
	var query string
	if s.db.DriverName() == "postgres" {
		query = `
			INSERT INTO users (user_id, display_name, handle, level, direction, score, joined_at, last_active_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (user_id) DO UPDATE SET
				display_name = EXCLUDED.display_name,
				handle = EXCLUDED.handle,
				level = EXCLUDED.level,
				direction = EXCLUDED.direction,
				score = EXCLUDED.score,
				joined_at = EXCLUDED.joined_at,
				last_active_at = EXCLUDED.last_active_at
		`
	} else {
		query = `
			INSERT OR REPLACE INTO users (user_id, display_name, handle, level, direction, score, joined_at, last_active_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`
	}

	_, err := s.db.ExecContext(ctx, query,
		id, rec.DisplayName, rec.Handle, string(rec.Level), string(rec.Direction),
		rec.Score, rec.JoinedAt, rec.LastActiveAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", id, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
