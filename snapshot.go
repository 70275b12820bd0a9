package authkit

import (
	"context"
	"encoding/json"
	"sync/atomic"
)

// Snapshot is an immutable point-in-time view of the item catalog, rule
// metadata and hierarchy adjacency. A snapshot is built once and never
// mutated; readers that obtained it keep resolving against it even while a
// newer one is being installed.
type Snapshot struct {
	Items   map[string]Item     `json:"items"`
	Rules   map[string]Rule     `json:"rules"`
	Parents map[string][]string `json:"parents"` // child -> parent names
}

// SnapshotStore persists a serialized Snapshot across processes, keyed by an
// opaque string. Implementations are treated as best-effort and eventually
// consistent: a racing re-scan is redundant work, not a correctness hazard.
type SnapshotStore interface {
	// Get returns the payload stored under key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores the payload under key.
	Set(ctx context.Context, key string, payload []byte) error
	// Delete evicts the payload stored under key.
	Delete(ctx context.Context, key string) error
}

// DefaultSnapshotKey is the backing-store key used unless WithCacheKey is set.
const DefaultSnapshotKey = "authkit:snapshot"

// snapshotCache holds the swappable in-memory snapshot and its backing
// persistent store. Without a backing store the cache stays cold and the
// resolver queries the PolicyStore per step.
type snapshotCache struct {
	store   PolicyStore
	backing SnapshotStore
	key     string
	snap    atomic.Pointer[Snapshot]
}

func newSnapshotCache(store PolicyStore, backing SnapshotStore, key string) *snapshotCache {
	if key == "" {
		key = DefaultSnapshotKey
	}
	return &snapshotCache{store: store, backing: backing, key: key}
}

// current returns the warm snapshot, or nil when cold.
func (c *snapshotCache) current() *Snapshot {
	return c.snap.Load()
}

// load returns a warm snapshot, hydrating it from the backing store or, when
// the backing entry is absent, from a full scan of the policy store. Returns
// nil when no backing store is configured. Concurrent redundant loads are
// safe: inputs are read-only during the scan, so both build the same result.
func (c *snapshotCache) load(ctx context.Context) (*Snapshot, error) {
	if c.backing == nil {
		return nil, nil
	}
	if snap := c.snap.Load(); snap != nil {
		return snap, nil
	}

	payload, found, err := c.backing.Get(ctx, c.key)
	if err != nil {
		return nil, err
	}
	if found {
		var snap Snapshot
		if err := json.Unmarshal(payload, &snap); err == nil {
			c.snap.Store(&snap)
			return &snap, nil
		}
		// Undecodable payload is treated as a miss and rebuilt below.
	}

	snap, err := c.scan(ctx)
	if err != nil {
		return nil, err
	}

	payload, err = json.Marshal(snap)
	if err != nil {
		return nil, err
	}
	if err := c.backing.Set(ctx, c.key, payload); err != nil {
		return nil, err
	}

	c.snap.Store(snap)
	return snap, nil
}

// scan builds a snapshot from the policy store. Edges whose child is unknown
// to the catalog are dropped from the adjacency.
func (c *snapshotCache) scan(ctx context.Context) (*Snapshot, error) {
	items, err := c.store.LoadItems(ctx)
	if err != nil {
		return nil, err
	}
	rules, err := c.store.LoadRules(ctx)
	if err != nil {
		return nil, err
	}
	allParents, err := c.store.LoadParents(ctx)
	if err != nil {
		return nil, err
	}

	parents := make(map[string][]string, len(allParents))
	for child, names := range allParents {
		if _, ok := items[child]; ok {
			parents[child] = names
		}
	}

	return &Snapshot{Items: items, Rules: rules, Parents: parents}, nil
}

// invalidate discards the in-memory snapshot and evicts the backing entry.
// Called by every mutating operation.
func (c *snapshotCache) invalidate(ctx context.Context) error {
	c.snap.Store(nil)
	if c.backing == nil {
		return nil
	}
	return c.backing.Delete(ctx, c.key)
}
