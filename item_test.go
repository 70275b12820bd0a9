package authkit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestNewRole tests role construction
func TestNewRole(t *testing.T) {
	t.Run("Create new role", func(t *testing.T) {
		role := NewRole("admin")

		assert.Equal(t, "admin", role.Name)
		assert.Equal(t, TypeRole, role.Type)
		assert.True(t, role.Enabled)
		assert.True(t, role.IsRole())
		assert.False(t, role.IsPermission())
	})

	t.Run("With description and rule", func(t *testing.T) {
		role := NewRole("moderator").
			WithDescription("forum moderator").
			WithRuleName("isActive")

		assert.Equal(t, "moderator", role.Name)
		assert.Equal(t, "forum moderator", role.Description)
		assert.Equal(t, "isActive", role.RuleName)
	})
}

// TestNewPermission tests permission construction
func TestNewPermission(t *testing.T) {
	t.Run("Create new permission", func(t *testing.T) {
		perm := NewPermission("updatePost")

		assert.Equal(t, "updatePost", perm.Name)
		assert.Equal(t, TypePermission, perm.Type)
		assert.True(t, perm.Enabled)
		assert.True(t, perm.IsPermission())
		assert.False(t, perm.IsRole())
	})
}

// TestItemCopyOnWrite tests that With methods leave the receiver untouched
func TestItemCopyOnWrite(t *testing.T) {
	t.Run("WithName returns a copy", func(t *testing.T) {
		original := NewRole("admin")
		renamed := original.WithName("superadmin")

		assert.Equal(t, "admin", original.Name)
		assert.Equal(t, "superadmin", renamed.Name)
	})

	t.Run("WithEnabled returns a copy", func(t *testing.T) {
		original := NewRole("admin")
		disabled := original.WithEnabled(false)

		assert.True(t, original.Enabled)
		assert.False(t, disabled.Enabled)
	})

	t.Run("Timestamps", func(t *testing.T) {
		now := time.Now()
		item := NewPermission("readPost").
			WithCreatedAt(now).
			WithUpdatedAt(now)

		assert.Equal(t, now, item.CreatedAt)
		assert.Equal(t, now, item.UpdatedAt)
	})
}

// TestAssignment tests the Assignment value
func TestAssignment(t *testing.T) {
	t.Run("Create new assignment", func(t *testing.T) {
		assignment := Assignment{
			UserID:    "42",
			ItemName:  "admin",
			CreatedAt: time.Now(),
		}

		assert.Equal(t, "42", assignment.UserID)
		assert.Equal(t, "admin", assignment.ItemName)
	})

	t.Run("WithItemName returns a copy", func(t *testing.T) {
		original := Assignment{UserID: "42", ItemName: "admin"}
		rekeyed := original.WithItemName("superadmin")

		assert.Equal(t, "admin", original.ItemName)
		assert.Equal(t, "superadmin", rekeyed.ItemName)
	})
}
