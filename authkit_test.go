package authkit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestRegistry builds the rule set shared by the tests. The isAuthor rule
// grants only when the checked user wrote the post in params.
func newTestRegistry() *RuleRegistry {
	return NewRuleRegistry().
		Register("isAuthor", func(ctx context.Context, userID string, item Item, params map[string]any) (bool, error) {
			authorID, _ := params["authorID"].(string)
			return authorID != "" && authorID == userID, nil
		})
}

// newTestManager returns a manager over an in-memory store with the test
// rules registered.
func newTestManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	return NewManager(NewMemoryStore(), newTestRegistry(), opts...)
}

// seedBlogGraph builds the blog authorization graph used across the tests:
//
//	admin ─▶ author ─▶ reader ─▶ readPost
//	  │        │  └──▶ createPost
//	  │        └─────▶ updateOwnPost [isAuthor] ─▶ updatePost
//	  └──────────────▶ updatePost
//
// User "1" is admin, user "2" is author, user "3" is reader.
func seedBlogGraph(t *testing.T, m *Manager) {
	t.Helper()
	ctx := context.Background()

	admin := NewRole("admin")
	author := NewRole("author")
	reader := NewRole("reader")

	createPost := NewPermission("createPost").WithDescription("create a post")
	updatePost := NewPermission("updatePost").WithDescription("update any post")
	readPost := NewPermission("readPost").WithDescription("read a post")
	updateOwnPost := NewPermission("updateOwnPost").
		WithDescription("update own post").
		WithRuleName("isAuthor")

	for _, item := range []Item{admin, author, reader, createPost, updatePost, readPost, updateOwnPost} {
		require.NoError(t, m.Add(ctx, item))
	}

	require.NoError(t, m.AddChild(ctx, admin, author))
	require.NoError(t, m.AddChild(ctx, author, reader))
	require.NoError(t, m.AddChild(ctx, author, createPost))
	require.NoError(t, m.AddChild(ctx, reader, readPost))
	require.NoError(t, m.AddChild(ctx, admin, updatePost))
	require.NoError(t, m.AddChild(ctx, updateOwnPost, updatePost))
	require.NoError(t, m.AddChild(ctx, author, updateOwnPost))

	_, err := m.Assign(ctx, admin, "1")
	require.NoError(t, err)
	_, err = m.Assign(ctx, author, "2")
	require.NoError(t, err)
	_, err = m.Assign(ctx, reader, "3")
	require.NoError(t, err)
}

// itemNames extracts the names of a slice of items, for order-insensitive
// assertions.
func itemNames(items []Item) []string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	return names
}
