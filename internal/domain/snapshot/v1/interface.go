package snapshotv1

import "context"

// Store persists and reloads book snapshots.
type Store interface {
	Store(ctx context.Context, snapshot *Snapshot) error
	// Load returns (nil, nil) when no snapshot has been stored yet.
	Load(ctx context.Context) (*Snapshot, error)
}
