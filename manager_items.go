package authkit

import (
	"context"
	"time"
)

// ============================================================================
// GENERIC ENTRY POINTS
// ============================================================================

// Add adds an Item or a Rule to the authorization data.
//
// Adding an item whose name is already taken fails with ErrInvalidArgument.
// When the item references a rule name not yet known, the rule is
// auto-provisioned through the RuleFactory before the item is persisted.
// Entities other than Item or Rule fail with ErrInvalidArgument.
func (m *Manager) Add(ctx context.Context, entity any) error {
	switch v := entity.(type) {
	case Item:
		return m.addItem(ctx, v)
	case Rule:
		return m.addRule(ctx, v)
	default:
		return NewError(ErrInvalidArgument, "adding unsupported entity type")
	}
}

// Update replaces the Item or Rule stored under name with the given value.
// Renaming an item to a name already in use fails with ErrInvalidArgument;
// a successful rename re-keys all dependent edges and assignments.
func (m *Manager) Update(ctx context.Context, name string, entity any) error {
	switch v := entity.(type) {
	case Item:
		return m.updateItem(ctx, name, v)
	case Rule:
		return m.updateRule(ctx, name, v)
	default:
		return NewError(ErrInvalidArgument, "updating unsupported entity type")
	}
}

// Remove removes an Item or a Rule. Removing an item cascades to all edges
// and assignments referencing it; removing a rule detaches it from every item
// that referenced it. Removing something absent is a no-op.
func (m *Manager) Remove(ctx context.Context, entity any) error {
	switch v := entity.(type) {
	case Item:
		return m.removeItem(ctx, v)
	case Rule:
		return m.removeRule(ctx, v)
	default:
		return NewError(ErrInvalidArgument, "removing unsupported entity type")
	}
}

// ============================================================================
// ITEMS
// ============================================================================

func (m *Manager) addItem(ctx context.Context, item Item) error {
	existing, err := m.store.GetItem(ctx, item.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return NewError(ErrInvalidArgument, "item already exists").WithItem(item.Name)
	}

	now := time.Now()
	if item.CreatedAt.IsZero() {
		item = item.WithCreatedAt(now)
	}
	if item.UpdatedAt.IsZero() {
		item = item.WithUpdatedAt(now)
	}

	if err := m.provisionRule(ctx, item.RuleName); err != nil {
		return err
	}

	if err := m.store.InsertItem(ctx, item); err != nil {
		return err
	}
	return m.cleanCache(ctx)
}

func (m *Manager) updateItem(ctx context.Context, oldName string, item Item) error {
	if item.Name != oldName {
		existing, err := m.store.GetItem(ctx, item.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			return NewError(ErrInvalidArgument, "item name already in use").WithItem(item.Name)
		}
	}

	if err := m.provisionRule(ctx, item.RuleName); err != nil {
		return err
	}

	item = item.WithUpdatedAt(time.Now())
	if err := m.store.UpdateItem(ctx, oldName, item); err != nil {
		return err
	}
	return m.cleanCache(ctx)
}

func (m *Manager) removeItem(ctx context.Context, item Item) error {
	if err := m.store.DeleteItem(ctx, item.Name); err != nil {
		return err
	}
	return m.cleanCache(ctx)
}

// provisionRule creates the named rule through the factory when it is
// referenced but not yet stored.
func (m *Manager) provisionRule(ctx context.Context, ruleName string) error {
	if ruleName == "" {
		return nil
	}
	existing, err := m.store.GetRule(ctx, ruleName)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	rule, err := m.rules.Create(ruleName)
	if err != nil {
		return err
	}
	return m.addRule(ctx, rule)
}

// ============================================================================
// RULES
// ============================================================================

func (m *Manager) addRule(ctx context.Context, rule Rule) error {
	existing, err := m.store.GetRule(ctx, rule.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return NewError(ErrInvalidArgument, "rule already exists").WithItem(rule.Name)
	}

	now := time.Now()
	if rule.CreatedAt.IsZero() {
		rule = rule.WithCreatedAt(now)
	}
	if rule.UpdatedAt.IsZero() {
		rule = rule.WithUpdatedAt(now)
	}

	if err := m.store.InsertRule(ctx, rule); err != nil {
		return err
	}
	return m.cleanCache(ctx)
}

func (m *Manager) updateRule(ctx context.Context, oldName string, rule Rule) error {
	rule = rule.WithUpdatedAt(time.Now())
	if err := m.store.UpdateRule(ctx, oldName, rule); err != nil {
		return err
	}
	return m.cleanCache(ctx)
}

func (m *Manager) removeRule(ctx context.Context, rule Rule) error {
	if err := m.store.DeleteRule(ctx, rule.Name); err != nil {
		return err
	}
	return m.cleanCache(ctx)
}

// ============================================================================
// ACCESSORS
// ============================================================================

// GetItem returns the item with the given name, or nil when absent.
func (m *Manager) GetItem(ctx context.Context, name string) (*Item, error) {
	if name == "" {
		return nil, nil
	}
	return m.store.GetItem(ctx, name)
}

// GetItems returns all items of the given type.
func (m *Manager) GetItems(ctx context.Context, typ ItemType) ([]Item, error) {
	return m.store.GetItemsByType(ctx, typ)
}

// GetRole returns the named item when it is a role, nil otherwise.
func (m *Manager) GetRole(ctx context.Context, name string) (*Item, error) {
	item, err := m.GetItem(ctx, name)
	if err != nil || item == nil || !item.IsRole() {
		return nil, err
	}
	return item, nil
}

// GetRoles returns all roles.
func (m *Manager) GetRoles(ctx context.Context) ([]Item, error) {
	return m.store.GetItemsByType(ctx, TypeRole)
}

// GetPermission returns the named item when it is a permission, nil otherwise.
func (m *Manager) GetPermission(ctx context.Context, name string) (*Item, error) {
	item, err := m.GetItem(ctx, name)
	if err != nil || item == nil || !item.IsPermission() {
		return nil, err
	}
	return item, nil
}

// GetPermissions returns all permissions.
func (m *Manager) GetPermissions(ctx context.Context) ([]Item, error) {
	return m.store.GetItemsByType(ctx, TypePermission)
}

// GetRule returns the stored metadata of the named rule, or nil when absent.
// The Execute field is not populated; predicates are resolved through the
// RuleFactory.
func (m *Manager) GetRule(ctx context.Context, name string) (*Rule, error) {
	return m.store.GetRule(ctx, name)
}

// GetRules returns all stored rule metadata keyed by name.
func (m *Manager) GetRules(ctx context.Context) (map[string]Rule, error) {
	return m.store.LoadRules(ctx)
}

// ============================================================================
// BULK REMOVAL
// ============================================================================

// RemoveAll removes all items, rules, edges and assignments.
func (m *Manager) RemoveAll(ctx context.Context) error {
	if err := m.store.DeleteAllAssignments(ctx); err != nil {
		return err
	}
	if err := m.store.DeleteItemsByType(ctx, TypeRole); err != nil {
		return err
	}
	if err := m.store.DeleteItemsByType(ctx, TypePermission); err != nil {
		return err
	}
	if err := m.store.DeleteAllRules(ctx); err != nil {
		return err
	}
	return m.cleanCache(ctx)
}

// RemoveAllRoles removes all roles, cascading to their edges and assignments.
func (m *Manager) RemoveAllRoles(ctx context.Context) error {
	if err := m.store.DeleteItemsByType(ctx, TypeRole); err != nil {
		return err
	}
	return m.cleanCache(ctx)
}

// RemoveAllPermissions removes all permissions, cascading to their edges and
// assignments.
func (m *Manager) RemoveAllPermissions(ctx context.Context) error {
	if err := m.store.DeleteItemsByType(ctx, TypePermission); err != nil {
		return err
	}
	return m.cleanCache(ctx)
}

// RemoveAllRules removes all rules and detaches them from every item.
func (m *Manager) RemoveAllRules(ctx context.Context) error {
	if err := m.store.DeleteAllRules(ctx); err != nil {
		return err
	}
	return m.cleanCache(ctx)
}

// RemoveAllAssignments removes every assignment.
func (m *Manager) RemoveAllAssignments(ctx context.Context) error {
	if err := m.store.DeleteAllAssignments(ctx); err != nil {
		return err
	}
	return m.cleanCache(ctx)
}
