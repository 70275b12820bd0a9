package authkit

import (
	"github.com/fernandezvara/dbkit"
)

// Migrations returns all database migrations required by DBStore.
// Use dbkit's Migrate to run them:
//
//	db, _ := dbkit.New(dbkit.Config{URL: "postgres://..."})
//	_, err := db.Migrate(ctx, authkit.Migrations())
//
// Edges and assignments reference auth_items with ON UPDATE/DELETE CASCADE,
// so item renames re-key them and item removals cascade in the database.
func Migrations() []dbkit.Migration {
	return []dbkit.Migration{
		{
			ID:          "authkit-001",
			Description: "Create auth_items table",
			SQL: `
                CREATE TABLE IF NOT EXISTS auth_items (
                    name TEXT PRIMARY KEY,
                    type TEXT NOT NULL,
                    description TEXT NOT NULL DEFAULT '',
                    rule_name TEXT NOT NULL DEFAULT '',
                    enabled BOOLEAN NOT NULL DEFAULT TRUE,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                );
                CREATE INDEX IF NOT EXISTS auth_items_type_idx ON auth_items (type)`,
		},
		{
			ID:          "authkit-002",
			Description: "Create auth_rules table",
			SQL: `
                CREATE TABLE IF NOT EXISTS auth_rules (
                    name TEXT PRIMARY KEY,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "authkit-003",
			Description: "Create auth_item_children table",
			SQL: `
                CREATE TABLE IF NOT EXISTS auth_item_children (
                    parent TEXT NOT NULL REFERENCES auth_items (name) ON UPDATE CASCADE ON DELETE CASCADE,
                    child TEXT NOT NULL REFERENCES auth_items (name) ON UPDATE CASCADE ON DELETE CASCADE,
                    PRIMARY KEY (parent, child)
                );
                CREATE INDEX IF NOT EXISTS auth_item_children_child_idx ON auth_item_children (child)`,
		},
		{
			ID:          "authkit-004",
			Description: "Create auth_assignments table",
			SQL: `
                CREATE TABLE IF NOT EXISTS auth_assignments (
                    user_id TEXT NOT NULL,
                    item_name TEXT NOT NULL REFERENCES auth_items (name) ON UPDATE CASCADE ON DELETE CASCADE,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    PRIMARY KEY (user_id, item_name)
                );
                CREATE INDEX IF NOT EXISTS auth_assignments_item_name_idx ON auth_assignments (item_name)`,
		},
	}
}
