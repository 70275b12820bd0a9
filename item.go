package authkit

import "time"

// ItemType identifies the two item variants.
type ItemType string

const (
	// TypeRole groups permissions and other roles.
	TypeRole ItemType = "role"
	// TypePermission is a leaf capability.
	TypePermission ItemType = "permission"
)

// Item is a named node of the authorization hierarchy: a role or a permission.
//
// Item is an immutable value: the WithX methods return a modified copy, and
// the catalog replaces the stored value for a name instead of mutating shared
// state. The name is the sole identity; the type is fixed at creation.
type Item struct {
	Name        string    `json:"name"`
	Type        ItemType  `json:"type"`
	Description string    `json:"description,omitempty"`
	RuleName    string    `json:"rule_name,omitempty"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewRole creates a new enabled role item.
func NewRole(name string) Item {
	return Item{Name: name, Type: TypeRole, Enabled: true}
}

// NewPermission creates a new enabled permission item.
func NewPermission(name string) Item {
	return Item{Name: name, Type: TypePermission, Enabled: true}
}

// IsRole reports whether the item is a role.
func (i Item) IsRole() bool { return i.Type == TypeRole }

// IsPermission reports whether the item is a permission.
func (i Item) IsPermission() bool { return i.Type == TypePermission }

// WithName returns a copy of the item with a new name.
// Use Manager.Update to rename an item that is already stored.
func (i Item) WithName(name string) Item {
	i.Name = name
	return i
}

// WithDescription returns a copy of the item with a new description.
func (i Item) WithDescription(description string) Item {
	i.Description = description
	return i
}

// WithRuleName returns a copy of the item referencing the named rule.
// An empty name detaches the rule.
func (i Item) WithRuleName(ruleName string) Item {
	i.RuleName = ruleName
	return i
}

// WithEnabled returns a copy of the item with the enabled flag set.
func (i Item) WithEnabled(enabled bool) Item {
	i.Enabled = enabled
	return i
}

// WithCreatedAt returns a copy of the item with the creation time set.
func (i Item) WithCreatedAt(t time.Time) Item {
	i.CreatedAt = t
	return i
}

// WithUpdatedAt returns a copy of the item with the update time set.
func (i Item) WithUpdatedAt(t time.Time) Item {
	i.UpdatedAt = t
	return i
}

// Assignment is a direct grant of an item to a user.
// The (UserID, ItemName) pair is unique.
type Assignment struct {
	UserID    string    `json:"user_id"`
	ItemName  string    `json:"item_name"`
	CreatedAt time.Time `json:"created_at"`
}

// WithItemName returns a copy of the assignment pointing at a new item name.
// Used when an item is renamed.
func (a Assignment) WithItemName(name string) Assignment {
	a.ItemName = name
	return a
}
