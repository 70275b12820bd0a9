package authkit

import (
	"time"

	"github.com/uptrace/bun"
)

// AuthItem is the database row for an Item.
type AuthItem struct {
	bun.BaseModel `bun:"table:auth_items,alias:ai"`

	Name        string    `bun:"name,pk"`
	Type        string    `bun:"type,notnull"`
	Description string    `bun:"description"`
	RuleName    string    `bun:"rule_name"`
	Enabled     bool      `bun:"enabled,notnull,default:true"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// Item converts the row into the package value type.
func (m *AuthItem) Item() Item {
	return Item{
		Name:        m.Name,
		Type:        ItemType(m.Type),
		Description: m.Description,
		RuleName:    m.RuleName,
		Enabled:     m.Enabled,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func newAuthItem(item Item) *AuthItem {
	return &AuthItem{
		Name:        item.Name,
		Type:        string(item.Type),
		Description: item.Description,
		RuleName:    item.RuleName,
		Enabled:     item.Enabled,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

// AuthRule is the database row for rule metadata. The predicate itself is
// never persisted; it is resolved through the RuleFactory by name.
type AuthRule struct {
	bun.BaseModel `bun:"table:auth_rules,alias:ar"`

	Name      string    `bun:"name,pk"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// Rule converts the row into the package value type.
func (m *AuthRule) Rule() Rule {
	return Rule{Name: m.Name, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

func newAuthRule(rule Rule) *AuthRule {
	return &AuthRule{Name: rule.Name, CreatedAt: rule.CreatedAt, UpdatedAt: rule.UpdatedAt}
}

// AuthItemChild is the database row for a direct parent -> child edge.
type AuthItemChild struct {
	bun.BaseModel `bun:"table:auth_item_children,alias:aic"`

	Parent string `bun:"parent,pk"`
	Child  string `bun:"child,pk"`
}

// AuthAssignment is the database row for a direct user grant.
type AuthAssignment struct {
	bun.BaseModel `bun:"table:auth_assignments,alias:aa"`

	UserID    string    `bun:"user_id,pk"`
	ItemName  string    `bun:"item_name,pk"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Assignment converts the row into the package value type.
func (m *AuthAssignment) Assignment() Assignment {
	return Assignment{UserID: m.UserID, ItemName: m.ItemName, CreatedAt: m.CreatedAt}
}

func newAuthAssignment(a Assignment) *AuthAssignment {
	return &AuthAssignment{UserID: a.UserID, ItemName: a.ItemName, CreatedAt: a.CreatedAt}
}
