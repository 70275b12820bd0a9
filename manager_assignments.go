package authkit

import (
	"context"
	"time"
)

// ============================================================================
// ASSIGNMENTS
// ============================================================================

// Assign grants the given role or permission to a user and returns the
// created assignment. Assigning an unknown item or assigning the same item
// twice fails with ErrInvalidArgument.
func (m *Manager) Assign(ctx context.Context, item Item, userID string) (Assignment, error) {
	if userID == "" {
		return Assignment{}, NewError(ErrInvalidArgument, "user id must not be empty")
	}

	stored, err := m.store.GetItem(ctx, item.Name)
	if err != nil {
		return Assignment{}, err
	}
	if stored == nil {
		return Assignment{}, NewError(ErrInvalidArgument, "unknown item").WithItem(item.Name)
	}

	existing, err := m.store.GetAssignment(ctx, item.Name, userID)
	if err != nil {
		return Assignment{}, err
	}
	if existing != nil {
		return Assignment{}, NewError(ErrInvalidArgument, "item already assigned to user").
			WithItem(item.Name).WithUser(userID)
	}

	assignment := Assignment{
		UserID:    userID,
		ItemName:  item.Name,
		CreatedAt: time.Now(),
	}
	if err := m.store.InsertAssignment(ctx, assignment); err != nil {
		return Assignment{}, err
	}
	if err := m.invalidateUser(ctx, userID); err != nil {
		return Assignment{}, err
	}
	return assignment, nil
}

// Revoke removes the assignment of item to user. Revoking an assignment that
// does not exist is a no-op.
func (m *Manager) Revoke(ctx context.Context, item Item, userID string) error {
	if userID == "" {
		return nil
	}
	if err := m.store.DeleteAssignment(ctx, item.Name, userID); err != nil {
		return err
	}
	return m.invalidateUser(ctx, userID)
}

// RevokeAll removes every assignment the user holds.
func (m *Manager) RevokeAll(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	if err := m.store.DeleteAssignmentsByUser(ctx, userID); err != nil {
		return err
	}
	return m.invalidateUser(ctx, userID)
}

// GetAssignment returns the assignment of item to user, or nil when the user
// does not hold it.
func (m *Manager) GetAssignment(ctx context.Context, itemName, userID string) (*Assignment, error) {
	if userID == "" {
		return nil, nil
	}
	return m.store.GetAssignment(ctx, itemName, userID)
}

// GetAssignments returns all assignments of the user keyed by item name.
func (m *Manager) GetAssignments(ctx context.Context, userID string) (map[string]Assignment, error) {
	if userID == "" {
		return map[string]Assignment{}, nil
	}
	return m.store.GetAssignments(ctx, userID)
}

// GetUserIDsByRole returns the ids of every user directly assigned the named
// role.
func (m *Manager) GetUserIDsByRole(ctx context.Context, roleName string) ([]string, error) {
	if roleName == "" {
		return nil, nil
	}
	return m.store.GetUserIDsByItem(ctx, roleName)
}

// userAssignments returns the user's assignments through a per-user memo so
// that a single access check hits the store at most once for them.
func (m *Manager) userAssignments(ctx context.Context, userID string) (map[string]Assignment, error) {
	m.memoMu.Lock()
	cached, ok := m.assignMemo[userID]
	m.memoMu.Unlock()
	if ok {
		return cached, nil
	}

	assignments, err := m.store.GetAssignments(ctx, userID)
	if err != nil {
		return nil, err
	}

	m.memoMu.Lock()
	m.assignMemo[userID] = assignments
	m.memoMu.Unlock()
	return assignments, nil
}
