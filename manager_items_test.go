package authkit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestManagerAdd tests the generic Add entry point
func TestManagerAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("Add role and permission", func(t *testing.T) {
		m := newTestManager(t)

		require.NoError(t, m.Add(ctx, NewRole("admin")))
		require.NoError(t, m.Add(ctx, NewPermission("updatePost")))

		role, err := m.GetRole(ctx, "admin")
		require.NoError(t, err)
		require.NotNil(t, role)
		assert.False(t, role.CreatedAt.IsZero())

		perm, err := m.GetPermission(ctx, "updatePost")
		require.NoError(t, err)
		require.NotNil(t, perm)
	})

	t.Run("Duplicate item is rejected", func(t *testing.T) {
		m := newTestManager(t)

		require.NoError(t, m.Add(ctx, NewRole("admin")))
		err := m.Add(ctx, NewRole("admin"))
		assert.True(t, IsInvalidArgument(err))
	})

	t.Run("Role and permission share one namespace", func(t *testing.T) {
		m := newTestManager(t)

		require.NoError(t, m.Add(ctx, NewRole("editor")))
		err := m.Add(ctx, NewPermission("editor"))
		assert.True(t, IsInvalidArgument(err))
	})

	t.Run("Add rule", func(t *testing.T) {
		m := newTestManager(t)

		require.NoError(t, m.Add(ctx, NewRule("isAuthor", nil)))

		rule, err := m.GetRule(ctx, "isAuthor")
		require.NoError(t, err)
		require.NotNil(t, rule)
		assert.False(t, rule.CreatedAt.IsZero())
	})

	t.Run("Duplicate rule is rejected", func(t *testing.T) {
		m := newTestManager(t)

		require.NoError(t, m.Add(ctx, NewRule("isAuthor", nil)))
		err := m.Add(ctx, NewRule("isAuthor", nil))
		assert.True(t, IsInvalidArgument(err))
	})

	t.Run("Unsupported entity type is rejected", func(t *testing.T) {
		m := newTestManager(t)

		err := m.Add(ctx, 42)
		assert.True(t, IsInvalidArgument(err))
	})

	t.Run("Item with registered rule name auto-provisions the rule", func(t *testing.T) {
		m := newTestManager(t)

		perm := NewPermission("updateOwnPost").WithRuleName("isAuthor")
		require.NoError(t, m.Add(ctx, perm))

		rule, err := m.GetRule(ctx, "isAuthor")
		require.NoError(t, err)
		require.NotNil(t, rule)
	})

	t.Run("Item with unknown rule name is rejected", func(t *testing.T) {
		m := newTestManager(t)

		perm := NewPermission("updateOwnPost").WithRuleName("missing")
		err := m.Add(ctx, perm)
		assert.True(t, IsInvalidConfig(err))
	})
}

// TestManagerUpdate tests updates and renames
func TestManagerUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("Update description", func(t *testing.T) {
		m := newTestManager(t)
		require.NoError(t, m.Add(ctx, NewRole("admin")))

		updated := NewRole("admin").WithDescription("site administrator")
		require.NoError(t, m.Update(ctx, "admin", updated))

		role, err := m.GetRole(ctx, "admin")
		require.NoError(t, err)
		assert.Equal(t, "site administrator", role.Description)
	})

	t.Run("Rename re-keys edges and assignments", func(t *testing.T) {
		m := newTestManager(t)
		seedBlogGraph(t, m)

		require.NoError(t, m.Update(ctx, "admin", NewRole("root")))

		role, err := m.GetRole(ctx, "admin")
		require.NoError(t, err)
		assert.Nil(t, role)

		ok, err := m.HasChild(ctx, NewRole("root"), NewRole("author"))
		require.NoError(t, err)
		assert.True(t, ok)

		assignment, err := m.GetAssignment(ctx, "root", "1")
		require.NoError(t, err)
		require.NotNil(t, assignment)
	})

	t.Run("Rename collision is rejected", func(t *testing.T) {
		m := newTestManager(t)
		require.NoError(t, m.Add(ctx, NewRole("admin")))
		require.NoError(t, m.Add(ctx, NewRole("author")))

		err := m.Update(ctx, "author", NewRole("admin"))
		assert.True(t, IsInvalidArgument(err))
	})

	t.Run("Update rule", func(t *testing.T) {
		m := newTestManager(t)
		require.NoError(t, m.Add(ctx, NewRule("isAuthor", nil)))

		require.NoError(t, m.Update(ctx, "isAuthor", NewRule("isOwner", nil)))

		rule, err := m.GetRule(ctx, "isOwner")
		require.NoError(t, err)
		require.NotNil(t, rule)

		old, err := m.GetRule(ctx, "isAuthor")
		require.NoError(t, err)
		assert.Nil(t, old)
	})
}

// TestManagerRemove tests removal and cascades
func TestManagerRemove(t *testing.T) {
	ctx := context.Background()

	t.Run("Remove item cascades to edges and assignments", func(t *testing.T) {
		m := newTestManager(t)
		seedBlogGraph(t, m)

		require.NoError(t, m.Remove(ctx, NewRole("author")))

		role, err := m.GetRole(ctx, "author")
		require.NoError(t, err)
		assert.Nil(t, role)

		ok, err := m.HasChild(ctx, NewRole("admin"), NewRole("author"))
		require.NoError(t, err)
		assert.False(t, ok)

		assignment, err := m.GetAssignment(ctx, "author", "2")
		require.NoError(t, err)
		assert.Nil(t, assignment)
	})

	t.Run("Remove absent item is a no-op", func(t *testing.T) {
		m := newTestManager(t)

		require.NoError(t, m.Remove(ctx, NewRole("ghost")))
	})

	t.Run("Remove rule detaches it from items", func(t *testing.T) {
		m := newTestManager(t)
		seedBlogGraph(t, m)

		require.NoError(t, m.Remove(ctx, NewRule("isAuthor", nil)))

		perm, err := m.GetPermission(ctx, "updateOwnPost")
		require.NoError(t, err)
		require.NotNil(t, perm)
		assert.Empty(t, perm.RuleName)
	})
}

// TestManagerAccessors tests the read-side helpers
func TestManagerAccessors(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	seedBlogGraph(t, m)

	t.Run("GetRoles", func(t *testing.T) {
		roles, err := m.GetRoles(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"admin", "author", "reader"}, itemNames(roles))
	})

	t.Run("GetPermissions", func(t *testing.T) {
		perms, err := m.GetPermissions(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t,
			[]string{"createPost", "updatePost", "readPost", "updateOwnPost"},
			itemNames(perms))
	})

	t.Run("GetRole on a permission name returns nil", func(t *testing.T) {
		role, err := m.GetRole(ctx, "updatePost")
		require.NoError(t, err)
		assert.Nil(t, role)
	})

	t.Run("GetItem with empty name returns nil", func(t *testing.T) {
		item, err := m.GetItem(ctx, "")
		require.NoError(t, err)
		assert.Nil(t, item)
	})

	t.Run("GetRules", func(t *testing.T) {
		rules, err := m.GetRules(ctx)
		require.NoError(t, err)
		assert.Len(t, rules, 1)
		assert.Contains(t, rules, "isAuthor")
	})
}

// TestManagerRemoveAll tests the bulk removal family
func TestManagerRemoveAll(t *testing.T) {
	ctx := context.Background()

	t.Run("RemoveAll empties everything", func(t *testing.T) {
		m := newTestManager(t)
		seedBlogGraph(t, m)

		require.NoError(t, m.RemoveAll(ctx))

		roles, err := m.GetRoles(ctx)
		require.NoError(t, err)
		assert.Empty(t, roles)

		perms, err := m.GetPermissions(ctx)
		require.NoError(t, err)
		assert.Empty(t, perms)

		rules, err := m.GetRules(ctx)
		require.NoError(t, err)
		assert.Empty(t, rules)

		assignments, err := m.GetAssignments(ctx, "1")
		require.NoError(t, err)
		assert.Empty(t, assignments)
	})

	t.Run("RemoveAllRoles keeps permissions", func(t *testing.T) {
		m := newTestManager(t)
		seedBlogGraph(t, m)

		require.NoError(t, m.RemoveAllRoles(ctx))

		roles, err := m.GetRoles(ctx)
		require.NoError(t, err)
		assert.Empty(t, roles)

		perms, err := m.GetPermissions(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, perms)
	})

	t.Run("RemoveAllRules detaches rules from items", func(t *testing.T) {
		m := newTestManager(t)
		seedBlogGraph(t, m)

		require.NoError(t, m.RemoveAllRules(ctx))

		perm, err := m.GetPermission(ctx, "updateOwnPost")
		require.NoError(t, err)
		require.NotNil(t, perm)
		assert.Empty(t, perm.RuleName)
	})

	t.Run("RemoveAllAssignments keeps the graph", func(t *testing.T) {
		m := newTestManager(t)
		seedBlogGraph(t, m)

		require.NoError(t, m.RemoveAllAssignments(ctx))

		assignments, err := m.GetAssignments(ctx, "1")
		require.NoError(t, err)
		assert.Empty(t, assignments)

		roles, err := m.GetRoles(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, roles)
	})
}
