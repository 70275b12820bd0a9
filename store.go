package authkit

import "context"

// PolicyStore is the durable source of truth for items, rules, hierarchy
// edges and assignments. The Manager never keeps authoritative state of its
// own: every mutation goes through the store, and the cold resolution path
// issues targeted queries against it.
//
// Absence is not an error: the GetX methods return a nil pointer (or an empty
// collection) when the record does not exist. I/O failures propagate
// unchanged; the store performs no retries.
//
// Implementations must be safe for concurrent use. DBStore (PostgreSQL via
// bun) and MemoryStore satisfy this interface.
type PolicyStore interface {
	// Items

	// GetItem returns the item with the given name, or nil when absent.
	GetItem(ctx context.Context, name string) (*Item, error)
	// GetItemsByType returns all items of the given type.
	GetItemsByType(ctx context.Context, typ ItemType) ([]Item, error)
	// InsertItem persists a new item.
	InsertItem(ctx context.Context, item Item) error
	// UpdateItem replaces the item stored under oldName. When the item is
	// renamed, the store re-keys all edges and assignments referencing
	// oldName to the new name.
	UpdateItem(ctx context.Context, oldName string, item Item) error
	// DeleteItem removes the item and cascades: all edges where it is parent
	// or child and all assignments referencing it are removed too.
	DeleteItem(ctx context.Context, name string) error
	// DeleteItemsByType removes all items of one type, cascading like
	// DeleteItem.
	DeleteItemsByType(ctx context.Context, typ ItemType) error
	// LoadItems returns the full item catalog keyed by name.
	LoadItems(ctx context.Context) (map[string]Item, error)

	// Rules

	// GetRule returns the rule metadata stored under name, or nil when
	// absent. The Execute field is never populated by a store.
	GetRule(ctx context.Context, name string) (*Rule, error)
	// InsertRule persists a new rule's metadata.
	InsertRule(ctx context.Context, rule Rule) error
	// UpdateRule replaces the rule stored under oldName.
	UpdateRule(ctx context.Context, oldName string, rule Rule) error
	// DeleteRule removes the rule and clears the rule reference on every
	// item that pointed at it.
	DeleteRule(ctx context.Context, name string) error
	// DeleteAllRules removes all rules, clearing item references as
	// DeleteRule does.
	DeleteAllRules(ctx context.Context) error
	// LoadRules returns all rule metadata keyed by name.
	LoadRules(ctx context.Context) (map[string]Rule, error)

	// Hierarchy edges

	// HasEdge reports whether the direct parent -> child edge exists.
	HasEdge(ctx context.Context, parent, child string) (bool, error)
	// InsertEdge persists a direct parent -> child edge.
	InsertEdge(ctx context.Context, parent, child string) error
	// DeleteEdge removes a direct edge; absent edges are a no-op.
	DeleteEdge(ctx context.Context, parent, child string) error
	// DeleteEdgesFrom removes every edge where parent is the parent side.
	DeleteEdgesFrom(ctx context.Context, parent string) error
	// GetParentNames returns the direct parents of child.
	GetParentNames(ctx context.Context, child string) ([]string, error)
	// GetChildren returns the direct children of parent as items.
	GetChildren(ctx context.Context, parent string) ([]Item, error)
	// LoadParents returns the full adjacency as child -> parent names.
	LoadParents(ctx context.Context) (map[string][]string, error)
	// LoadChildren returns the full adjacency as parent -> child names.
	LoadChildren(ctx context.Context) (map[string][]string, error)

	// Assignments

	// GetAssignment returns the assignment of itemName to userID, or nil.
	GetAssignment(ctx context.Context, itemName, userID string) (*Assignment, error)
	// GetAssignments returns all assignments of one user keyed by item name.
	GetAssignments(ctx context.Context, userID string) (map[string]Assignment, error)
	// InsertAssignment persists a new assignment.
	InsertAssignment(ctx context.Context, assignment Assignment) error
	// DeleteAssignment removes one assignment; absent pairs are a no-op.
	DeleteAssignment(ctx context.Context, itemName, userID string) error
	// DeleteAssignmentsByUser removes all assignments of one user.
	DeleteAssignmentsByUser(ctx context.Context, userID string) error
	// DeleteAllAssignments removes every assignment.
	DeleteAllAssignments(ctx context.Context) error
	// GetUserIDsByItem returns the IDs of all users directly assigned the
	// named item.
	GetUserIDsByItem(ctx context.Context, itemName string) ([]string, error)
}
