package authkit

import (
	"context"
	"log/slog"
	"sync"
)

// Manager is the authorization engine. It owns no authoritative state: items,
// rules, hierarchy edges and assignments live in the PolicyStore, and an
// optional SnapshotStore carries a warmed point-in-time view across
// processes. One Manager is meant to be shared by many concurrent callers.
type Manager struct {
	store        PolicyStore
	rules        RuleFactory
	cache        *snapshotCache
	logger       *slog.Logger
	defaultRoles []string

	// Serializes cycle detection and edge insertion so two concurrent
	// AddChild calls cannot jointly introduce a cycle.
	hierarchyMu sync.Mutex

	// Per-user assignment memo used by UserHasPermission.
	memoMu     sync.Mutex
	assignMemo map[string]map[string]Assignment
}

// Option configures a Manager.
type Option func(*Manager)

// WithSnapshotStore attaches a backing persistent snapshot cache. Without it
// the Manager always resolves cold, one store query per ancestor step.
func WithSnapshotStore(backing SnapshotStore) Option {
	return func(m *Manager) {
		m.cache.backing = backing
	}
}

// WithCacheKey overrides the key the snapshot is stored under in the backing
// store. Defaults to DefaultSnapshotKey.
func WithCacheKey(key string) Option {
	return func(m *Manager) {
		m.cache.key = key
	}
}

// WithDefaultRoles sets the role names implicitly granted to every user
// without an assignment, regardless of authentication state.
func WithDefaultRoles(roles ...string) Option {
	return func(m *Manager) {
		m.defaultRoles = roles
	}
}

// WithLogger sets the logger used for debug output during resolution.
// The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates an authorization manager over the given policy store and
// rule factory.
//
// Example:
//
//	store := authkit.NewDBStore(db)
//	mgr := authkit.NewManager(store, rules,
//	    authkit.WithSnapshotStore(authkit.NewRedisSnapshotStore(rdb)),
//	    authkit.WithDefaultRoles("guest"))
func NewManager(store PolicyStore, rules RuleFactory, opts ...Option) *Manager {
	m := &Manager{
		store:      store,
		rules:      rules,
		cache:      newSnapshotCache(store, nil, DefaultSnapshotKey),
		logger:     slog.New(slog.DiscardHandler),
		assignMemo: make(map[string]map[string]Assignment),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DefaultRoles returns the configured default role names.
func (m *Manager) DefaultRoles() []string {
	return m.defaultRoles
}

// Checker returns a permission-checking view bound to one user.
func (m *Manager) Checker(userID string) *Checker {
	return NewChecker(m, userID)
}

// cleanCache discards the snapshot, evicts the backing cache entry and drops
// every memoized assignment set. Called after catalog or hierarchy mutations.
func (m *Manager) cleanCache(ctx context.Context) error {
	m.memoMu.Lock()
	m.assignMemo = make(map[string]map[string]Assignment)
	m.memoMu.Unlock()
	return m.cache.invalidate(ctx)
}

// invalidateUser drops one user's memoized assignments and the snapshot.
// Called after assignment mutations.
func (m *Manager) invalidateUser(ctx context.Context, userID string) error {
	m.memoMu.Lock()
	delete(m.assignMemo, userID)
	m.memoMu.Unlock()
	return m.cache.invalidate(ctx)
}
