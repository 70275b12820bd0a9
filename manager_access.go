package authkit

import (
	"context"
)

// ============================================================================
// ACCESS CHECKS
// ============================================================================

// UserHasPermission reports whether the user is granted the named permission.
//
// The check starts at the permission and walks the hierarchy upward toward
// the user's assignments and the default roles. Every item on a granting
// path must pass its rule, if it has one; a failing rule vetoes that item
// and every path through it. A user with no assignments and no default roles
// is denied without touching the hierarchy; an unauthenticated (empty) user
// still receives whatever the default roles grant.
//
// Example:
//
//	allowed, err := mgr.UserHasPermission(ctx, "42", "updatePost",
//		map[string]any{"post": post})
func (m *Manager) UserHasPermission(ctx context.Context, userID, permissionName string, params map[string]any) (bool, error) {
	if permissionName == "" {
		return false, nil
	}

	assignments, err := m.userAssignments(ctx, userID)
	if err != nil {
		return false, err
	}
	if len(assignments) == 0 && len(m.defaultRoles) == 0 {
		return false, nil
	}

	snap, err := m.cache.load(ctx)
	if err != nil {
		m.logger.Warn("snapshot load failed, falling back to store",
			"error", err)
		snap = nil
	}
	if snap != nil {
		return m.checkAccessWarm(ctx, snap, userID, permissionName, params, assignments, map[string]struct{}{})
	}
	return m.checkAccessCold(ctx, userID, permissionName, params, assignments, map[string]struct{}{})
}

// checkAccessWarm resolves the check entirely from an in-memory snapshot.
// onPath holds the names on the current recursion path and turns a stored
// cycle into an error instead of an endless walk.
func (m *Manager) checkAccessWarm(ctx context.Context, snap *Snapshot, userID, itemName string, params map[string]any, assignments map[string]Assignment, onPath map[string]struct{}) (bool, error) {
	item, ok := snap.Items[itemName]
	if !ok {
		return false, nil
	}
	if _, ok := onPath[itemName]; ok {
		return false, NewError(ErrInvalidCall, "loop detected in hierarchy").WithItem(itemName)
	}

	m.logger.Debug("checking access", "user", userID, "item", itemName, "type", item.Type)

	var pass bool
	var err error
	if item.RuleName == "" {
		pass = true
	} else if _, ok := snap.Rules[item.RuleName]; !ok {
		return false, NewError(ErrInvalidConfig, "rule does not exist").WithItem(item.RuleName)
	} else {
		pass, err = m.runRule(ctx, userID, item, params)
	}
	if err != nil {
		return false, err
	}
	if !pass {
		return false, nil
	}

	if _, ok := assignments[itemName]; ok || m.isDefaultRole(itemName) {
		return true, nil
	}

	onPath[itemName] = struct{}{}
	defer delete(onPath, itemName)

	for _, parent := range snap.Parents[itemName] {
		granted, err := m.checkAccessWarm(ctx, snap, userID, parent, params, assignments, onPath)
		if err != nil {
			return false, err
		}
		if granted {
			return true, nil
		}
	}
	return false, nil
}

// checkAccessCold resolves the check against the store directly, one item at
// a time. It yields the same answers as the warm path.
func (m *Manager) checkAccessCold(ctx context.Context, userID, itemName string, params map[string]any, assignments map[string]Assignment, onPath map[string]struct{}) (bool, error) {
	item, err := m.store.GetItem(ctx, itemName)
	if err != nil {
		return false, err
	}
	if item == nil {
		return false, nil
	}
	if _, ok := onPath[itemName]; ok {
		return false, NewError(ErrInvalidCall, "loop detected in hierarchy").WithItem(itemName)
	}

	m.logger.Debug("checking access", "user", userID, "item", itemName, "type", item.Type)

	pass, err := m.executeRule(ctx, userID, *item, params)
	if err != nil {
		return false, err
	}
	if !pass {
		return false, nil
	}

	if _, ok := assignments[itemName]; ok || m.isDefaultRole(itemName) {
		return true, nil
	}

	onPath[itemName] = struct{}{}
	defer delete(onPath, itemName)

	parents, err := m.store.GetParentNames(ctx, itemName)
	if err != nil {
		return false, err
	}
	for _, parent := range parents {
		granted, err := m.checkAccessCold(ctx, userID, parent, params, assignments, onPath)
		if err != nil {
			return false, err
		}
		if granted {
			return true, nil
		}
	}
	return false, nil
}

// executeRule evaluates the rule attached to an item. Items without a rule
// pass. A rule name that resolves to no stored rule or no registered
// predicate means the deployment is misconfigured and fails with
// ErrInvalidConfig rather than silently denying.
func (m *Manager) executeRule(ctx context.Context, userID string, item Item, params map[string]any) (bool, error) {
	if item.RuleName == "" {
		return true, nil
	}

	stored, err := m.store.GetRule(ctx, item.RuleName)
	if err != nil {
		return false, err
	}
	if stored == nil {
		return false, NewError(ErrInvalidConfig, "rule does not exist").WithItem(item.RuleName)
	}
	return m.runRule(ctx, userID, item, params)
}

// runRule resolves the predicate through the factory and runs it. Rules with
// no predicate pass; registering the predicate is what makes a rule gate.
func (m *Manager) runRule(ctx context.Context, userID string, item Item, params map[string]any) (bool, error) {
	rule, err := m.rules.Create(item.RuleName)
	if err != nil {
		return false, err
	}
	if rule.Execute == nil {
		return true, nil
	}
	return rule.Execute(ctx, userID, item, params)
}

func (m *Manager) isDefaultRole(name string) bool {
	for _, role := range m.defaultRoles {
		if role == name {
			return true
		}
	}
	return false
}

// ============================================================================
// PER-USER VIEWS
// ============================================================================

// GetRolesByUser returns the roles directly assigned to the user plus the
// configured default roles, keyed by name so an assigned default role appears
// once. Inherited roles are not included; use GetChildRoles to expand a role
// downward.
func (m *Manager) GetRolesByUser(ctx context.Context, userID string) ([]Item, error) {
	byName := make(map[string]Item, len(m.defaultRoles))
	for _, name := range m.defaultRoles {
		byName[name] = NewRole(name)
	}

	if userID != "" {
		assignments, err := m.store.GetAssignments(ctx, userID)
		if err != nil {
			return nil, err
		}
		for itemName := range assignments {
			item, err := m.store.GetItem(ctx, itemName)
			if err != nil {
				return nil, err
			}
			if item != nil && item.IsRole() {
				byName[item.Name] = *item
			}
		}
	}

	roles := make([]Item, 0, len(byName))
	for _, role := range byName {
		roles = append(roles, role)
	}
	return roles, nil
}

// GetPermissionsByUser returns every permission the user can reach, both
// directly assigned and inherited through assigned roles and default roles.
// Rules are not evaluated; this is the structural view of the graph.
func (m *Manager) GetPermissionsByUser(ctx context.Context, userID string) ([]Item, error) {
	seeds := make([]string, 0, len(m.defaultRoles))
	seeds = append(seeds, m.defaultRoles...)

	if userID != "" {
		assignments, err := m.store.GetAssignments(ctx, userID)
		if err != nil {
			return nil, err
		}
		for itemName := range assignments {
			seeds = append(seeds, itemName)
		}
	}

	visited := make(map[string]struct{})
	result := make(map[string]Item)
	for _, name := range seeds {
		item, err := m.store.GetItem(ctx, name)
		if err != nil {
			return nil, err
		}
		if item == nil {
			continue
		}
		if item.IsPermission() {
			result[item.Name] = *item
		}
		if err := m.getChildrenRecursive(ctx, name, visited, result); err != nil {
			return nil, err
		}
	}

	var permissions []Item
	for _, item := range result {
		if item.IsPermission() {
			permissions = append(permissions, item)
		}
	}
	return permissions, nil
}
