// Package userstore provides durable key-value persistence for user records.
package userstore

import (
	"context"

	"github.com/example/vocadrill/pkg/models"
)

// Store is the durable mapping from user identifier to user record.
//
// LoadAll must treat an absent store as a normal first-run condition and
// return an empty map; any other failure (unreadable, malformed) is an error
// the caller should treat as fatal. Upsert is idempotent: repeating the same
// write produces the same stored state.
type Store interface {
	LoadAll(ctx context.Context) (map[string]models.UserRecord, error)
	Upsert(ctx context.Context, id string, rec models.UserRecord) error
	Close() error
}
