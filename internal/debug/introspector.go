package debug

import "context"

// Introspector is implemented by components that can provide debug snapshots.
//
// Safe to compile in all builds; only debug builds serve it.
type Introspector interface {
	// SnapshotData returns a view of the current vault state.
	SnapshotData(ctx context.Context) Snapshot
}
