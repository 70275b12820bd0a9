package authkit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uniqueName avoids collisions in the shared test database.
func uniqueName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// TestDatabaseItemLifecycle tests item CRUD against Postgres
func TestDatabaseItemLifecycle(t *testing.T) {
	if !RequireDatabase(t) {
		return
	}

	ctx := context.Background()
	m, err := SetupTestDatabase(ctx, newTestRegistry())
	require.NoError(t, err)

	roleName := uniqueName("admin")
	role := NewRole(roleName).WithDescription("site administrator")
	require.NoError(t, m.Add(ctx, role))
	defer func() { _ = m.Remove(ctx, role) }()

	t.Run("Round trip", func(t *testing.T) {
		stored, err := m.GetRole(ctx, roleName)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, "site administrator", stored.Description)
		assert.True(t, stored.Enabled)
	})

	t.Run("Duplicate rejected", func(t *testing.T) {
		err := m.Add(ctx, NewRole(roleName))
		assert.True(t, IsInvalidArgument(err))
	})

	t.Run("Update", func(t *testing.T) {
		require.NoError(t, m.Update(ctx, roleName, role.WithDescription("updated")))

		stored, err := m.GetRole(ctx, roleName)
		require.NoError(t, err)
		assert.Equal(t, "updated", stored.Description)
	})
}

// TestDatabaseHierarchyAndAccess tests the full grant path against Postgres
func TestDatabaseHierarchyAndAccess(t *testing.T) {
	if !RequireDatabase(t) {
		return
	}

	ctx := context.Background()
	m, err := SetupTestDatabase(ctx, newTestRegistry())
	require.NoError(t, err)

	admin := NewRole(uniqueName("admin"))
	author := NewRole(uniqueName("author"))
	createPost := NewPermission(uniqueName("createPost"))
	updateOwnPost := NewPermission(uniqueName("updateOwnPost")).WithRuleName("isAuthor")

	for _, item := range []Item{admin, author, createPost, updateOwnPost} {
		require.NoError(t, m.Add(ctx, item))
	}
	defer func() {
		for _, item := range []Item{admin, author, createPost, updateOwnPost} {
			_ = m.Remove(ctx, item)
		}
	}()

	require.NoError(t, m.AddChild(ctx, admin, author))
	require.NoError(t, m.AddChild(ctx, author, createPost))
	require.NoError(t, m.AddChild(ctx, author, updateOwnPost))

	userID := uniqueName("user")
	_, err = m.Assign(ctx, admin, userID)
	require.NoError(t, err)
	defer func() { _ = m.RevokeAll(ctx, userID) }()

	t.Run("Inherited permission", func(t *testing.T) {
		allowed, err := m.UserHasPermission(ctx, userID, createPost.Name, nil)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("Rule gates inherited permission", func(t *testing.T) {
		allowed, err := m.UserHasPermission(ctx, userID, updateOwnPost.Name,
			map[string]any{"authorID": userID})
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = m.UserHasPermission(ctx, userID, updateOwnPost.Name,
			map[string]any{"authorID": "someone-else"})
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("Cycle rejected", func(t *testing.T) {
		err := m.AddChild(ctx, author, admin)
		assert.True(t, IsInvalidCall(err))
	})

	t.Run("Cascade on item removal", func(t *testing.T) {
		require.NoError(t, m.Remove(ctx, author))

		allowed, err := m.UserHasPermission(ctx, userID, createPost.Name, nil)
		require.NoError(t, err)
		assert.False(t, allowed)
	})
}
