// Package cache persists the last-known signed-in user across process
// restarts. It is a single-key store overwritten wholesale on each update -
// a pure cache of provider-derived truth, never a source of truth itself.
package cache

import (
	"context"

	id "gesher/pkg/domain"
)

// Snapshot is the denormalized view persisted for cold-start continuity.
type Snapshot struct {
	Phone     id.Phone `json:"phone"`
	FirstName string   `json:"first_name,omitempty"`
	FullName  string   `json:"full_name,omitempty"`
}

// Store is the single-key persistence contract. Last-writer-wins; no merge
// semantics.
type Store interface {
	// Load returns the stored snapshot, or sentinel.ErrNotFound when empty.
	Load(ctx context.Context) (*Snapshot, error)
	// Save overwrites the snapshot.
	Save(ctx context.Context, snap *Snapshot) error
	// Clear removes the snapshot. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
