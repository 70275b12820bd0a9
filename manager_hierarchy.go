package authkit

import "context"

// ============================================================================
// HIERARCHY
// ============================================================================

// AddChild adds an inheritance edge between two existing items. The parent
// inherits everything granted to the child.
//
// The edge is rejected when either item is missing, when parent and child are
// the same item, or when a permission would become the parent of a role
// (ErrInvalidArgument), and when the edge already exists or would close a
// cycle (ErrInvalidCall).
func (m *Manager) AddChild(ctx context.Context, parent, child Item) error {
	m.hierarchyMu.Lock()
	defer m.hierarchyMu.Unlock()

	if parent.Name == child.Name {
		return NewError(ErrInvalidArgument, "cannot add item as a child of itself").WithItem(parent.Name)
	}

	parentItem, err := m.store.GetItem(ctx, parent.Name)
	if err != nil {
		return err
	}
	if parentItem == nil {
		return NewError(ErrInvalidArgument, "parent item does not exist").WithItem(parent.Name)
	}
	childItem, err := m.store.GetItem(ctx, child.Name)
	if err != nil {
		return err
	}
	if childItem == nil {
		return NewError(ErrInvalidArgument, "child item does not exist").WithItem(child.Name)
	}

	if parentItem.IsPermission() && childItem.IsRole() {
		return NewError(ErrInvalidArgument, "cannot add a role as a child of a permission").
			WithParentChild(parent.Name, child.Name)
	}

	exists, err := m.store.HasEdge(ctx, parent.Name, child.Name)
	if err != nil {
		return err
	}
	if exists {
		return NewError(ErrInvalidCall, "edge already exists").WithParentChild(parent.Name, child.Name)
	}

	loop, err := m.detectLoop(ctx, parent.Name, child.Name)
	if err != nil {
		return err
	}
	if loop {
		return NewError(ErrInvalidCall, "adding edge would create a cycle").
			WithParentChild(parent.Name, child.Name)
	}

	if err := m.store.InsertEdge(ctx, parent.Name, child.Name); err != nil {
		return err
	}
	return m.cleanCache(ctx)
}

// CanAddChild reports whether AddChild would be allowed to link the two
// items, without modifying anything.
func (m *Manager) CanAddChild(ctx context.Context, parent, child Item) (bool, error) {
	if parent.Name == child.Name {
		return false, nil
	}
	if parent.IsPermission() && child.IsRole() {
		return false, nil
	}
	loop, err := m.detectLoop(ctx, parent.Name, child.Name)
	if err != nil {
		return false, err
	}
	return !loop, nil
}

// detectLoop reports whether parent is reachable from child by following
// edges downward. Linking them in that case would close a cycle.
func (m *Manager) detectLoop(ctx context.Context, parentName, childName string) (bool, error) {
	return m.detectLoopFrom(ctx, parentName, childName, map[string]struct{}{}, map[string]struct{}{})
}

// detectLoopFrom walks downward from node. A node seen again on the current
// recursion path means the stored edge set is already cyclic and fails with
// ErrInvalidCall; a node seen on another path is a diamond and is skipped.
func (m *Manager) detectLoopFrom(ctx context.Context, parentName, node string, onPath, visited map[string]struct{}) (bool, error) {
	if node == parentName {
		return true, nil
	}
	if _, ok := onPath[node]; ok {
		return false, NewError(ErrInvalidCall, "loop detected in hierarchy").WithItem(node)
	}
	if _, ok := visited[node]; ok {
		return false, nil
	}
	visited[node] = struct{}{}
	onPath[node] = struct{}{}
	defer delete(onPath, node)

	children, err := m.store.GetChildren(ctx, node)
	if err != nil {
		return false, err
	}
	for _, child := range children {
		loop, err := m.detectLoopFrom(ctx, parentName, child.Name, onPath, visited)
		if err != nil {
			return false, err
		}
		if loop {
			return true, nil
		}
	}
	return false, nil
}

// RemoveChild removes the edge between parent and child. Removing an absent
// edge is a no-op. The items themselves are untouched.
func (m *Manager) RemoveChild(ctx context.Context, parent, child Item) error {
	if err := m.store.DeleteEdge(ctx, parent.Name, child.Name); err != nil {
		return err
	}
	return m.cleanCache(ctx)
}

// RemoveChildren removes every outgoing edge of the given parent.
func (m *Manager) RemoveChildren(ctx context.Context, parent Item) error {
	if err := m.store.DeleteEdgesFrom(ctx, parent.Name); err != nil {
		return err
	}
	return m.cleanCache(ctx)
}

// HasChild reports whether a direct edge exists between parent and child.
func (m *Manager) HasChild(ctx context.Context, parent, child Item) (bool, error) {
	return m.store.HasEdge(ctx, parent.Name, child.Name)
}

// GetChildren returns the direct children of the named item.
func (m *Manager) GetChildren(ctx context.Context, name string) ([]Item, error) {
	return m.store.GetChildren(ctx, name)
}

// getChildrenRecursive collects every descendant of name into result, keyed
// by item name. The visited set keeps diamond-shaped hierarchies from being
// walked twice.
func (m *Manager) getChildrenRecursive(ctx context.Context, name string, visited map[string]struct{}, result map[string]Item) error {
	if _, ok := visited[name]; ok {
		return nil
	}
	visited[name] = struct{}{}

	children, err := m.store.GetChildren(ctx, name)
	if err != nil {
		return err
	}
	for _, child := range children {
		result[child.Name] = child
		if err := m.getChildrenRecursive(ctx, child.Name, visited, result); err != nil {
			return err
		}
	}
	return nil
}

// GetChildRoles returns the named role together with every role reachable
// below it. The role itself is always the first entry.
func (m *Manager) GetChildRoles(ctx context.Context, roleName string) ([]Item, error) {
	role, err := m.store.GetItem(ctx, roleName)
	if err != nil {
		return nil, err
	}
	if role == nil || !role.IsRole() {
		return nil, NewError(ErrInvalidArgument, "role not found").WithItem(roleName)
	}

	descendants := make(map[string]Item)
	if err := m.getChildrenRecursive(ctx, roleName, make(map[string]struct{}), descendants); err != nil {
		return nil, err
	}

	roles := []Item{*role}
	for _, item := range descendants {
		if item.IsRole() {
			roles = append(roles, item)
		}
	}
	return roles, nil
}

// GetPermissionsByRole returns every permission reachable below the named
// role, direct or inherited.
func (m *Manager) GetPermissionsByRole(ctx context.Context, roleName string) ([]Item, error) {
	descendants := make(map[string]Item)
	if err := m.getChildrenRecursive(ctx, roleName, make(map[string]struct{}), descendants); err != nil {
		return nil, err
	}

	var permissions []Item
	for _, item := range descendants {
		if item.IsPermission() {
			permissions = append(permissions, item)
		}
	}
	return permissions, nil
}
