package authkit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestChecker tests the user-bound convenience view
func TestChecker(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	seedBlogGraph(t, m)

	t.Run("Can mirrors UserHasPermission", func(t *testing.T) {
		c := m.Checker("2")

		ok, err := c.Can(ctx, "createPost", nil)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = c.Can(ctx, "updatePost", map[string]any{"authorID": "2"})
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = c.Can(ctx, "updatePost", nil)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Roles", func(t *testing.T) {
		roles, err := m.Checker("1").Roles(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"admin"}, itemNames(roles))
	})

	t.Run("Permissions", func(t *testing.T) {
		perms, err := m.Checker("3").Permissions(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"readPost"}, itemNames(perms))
	})

	t.Run("UserID", func(t *testing.T) {
		assert.Equal(t, "42", m.Checker("42").UserID())
	})
}
