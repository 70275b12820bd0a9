// Package authkit provides a hierarchical role/permission authorization engine.
//
// AuthKit decides whether a user holds a permission by walking an inheritance
// hierarchy of named items (roles and permissions), gated by pluggable boolean
// rules, with direct user-to-item assignments as the base case.
//
// # Core Concepts
//
// Item: a uniquely named Role or Permission. Roles group permissions and other
// roles; permissions are leaf capabilities. Items are immutable values: every
// change produces a new value via the WithX methods.
//
// Hierarchy: directed parent -> child edges between items. A child inherits a
// grant whenever any of its ancestors is assigned to the user. The edge set is
// kept acyclic at all times, and a permission can never be made an ancestor of
// a role.
//
// Rule: a named predicate attached to an item. When an item carries a rule
// name, the rule is executed for every visit of that item during resolution;
// a false result prunes that path. Rules are registered by name in a
// RuleRegistry and are never serialized.
//
// Assignment: a direct grant of an item to a user ID. Default roles can be
// configured to apply to every user without an assignment.
//
// # Storage
//
// The engine operates over a PolicyStore collaborator. Two implementations
// ship with the package: DBStore (PostgreSQL via bun/dbkit) and MemoryStore.
// An optional SnapshotStore (e.g. RedisSnapshotStore) persists a point-in-time
// snapshot of the catalog and hierarchy so resolution can run against an
// in-memory adjacency instead of per-step store queries. Warm and cold paths
// always produce identical results; the snapshot exists purely for latency.
//
// # Basic Usage
//
//	rules := authkit.NewRuleRegistry().
//	    Register("business-hours", func(ctx context.Context, userID string, item authkit.Item, params map[string]any) (bool, error) {
//	        h := time.Now().Hour()
//	        return h >= 9 && h < 18, nil
//	    })
//
//	store := authkit.NewMemoryStore()
//	mgr := authkit.NewManager(store, rules,
//	    authkit.WithDefaultRoles("guest"),
//	    authkit.WithSnapshotStore(authkit.NewRedisSnapshotStore(redisClient)))
//
//	admin := authkit.NewRole("admin")
//	editPost := authkit.NewPermission("editPost")
//	_ = mgr.Add(ctx, admin)
//	_ = mgr.Add(ctx, editPost)
//	_ = mgr.AddChild(ctx, admin, editPost)
//	_, _ = mgr.Assign(ctx, admin, "u1")
//
//	ok, err := mgr.UserHasPermission(ctx, "u1", "editPost", nil)
//
// # Concurrency
//
// A Manager is safe for concurrent use. Reads resolve against a single
// atomically swapped snapshot reference and never observe a partially built
// view; edge insertion runs its cycle check and insert inside one critical
// section so concurrent calls cannot jointly introduce a cycle.
package authkit
