package authkit

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// DBStore is the PostgreSQL-backed PolicyStore. It integrates with the
// database through dbkit with enhanced error handling: failed operations are
// wrapped with the operation name and preserve the original error types for
// classification (dbkit.IsNotFound, dbkit.IsDuplicate, ...).
//
// Renames and removals cascade to edges and assignments through the foreign
// keys created by Migrations.
type DBStore struct {
	db dbkit.IDB
}

// NewDBStore creates a policy store on top of an existing dbkit database.
//
// Example:
//
//	db, _ := dbkit.New(dbkit.Config{URL: "postgres://..."})
//	_, _ = db.Migrate(ctx, authkit.Migrations())
//	store := authkit.NewDBStore(db)
func NewDBStore(db dbkit.IDB) *DBStore {
	return &DBStore{db: db}
}

// IsHealthy reports whether the database backing the store is reachable.
func (s *DBStore) IsHealthy(ctx context.Context) bool {
	if db, ok := s.db.(*dbkit.DBKit); ok {
		return db.IsHealthy(ctx)
	}
	var one int
	err := s.db.NewRaw("SELECT 1").Scan(ctx, &one)
	return err == nil
}

// ============================================================================
// ITEMS
// ============================================================================

// GetItem implements PolicyStore.
func (s *DBStore) GetItem(ctx context.Context, name string) (*Item, error) {
	var row AuthItem
	err := dbkit.WithErr1(s.db.NewSelect().Model(&row).Where("name = ?", name).Limit(1).Scan(ctx), "GetItem").Err()
	if err != nil {
		if dbkit.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	item := row.Item()
	return &item, nil
}

// GetItemsByType implements PolicyStore.
func (s *DBStore) GetItemsByType(ctx context.Context, typ ItemType) ([]Item, error) {
	var rows []AuthItem
	err := dbkit.WithErr1(s.db.NewSelect().Model(&rows).Where("type = ?", string(typ)).Scan(ctx), "GetItemsByType").Err()
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].Item())
	}
	return items, nil
}

// InsertItem implements PolicyStore.
func (s *DBStore) InsertItem(ctx context.Context, item Item) error {
	result, err := s.db.NewInsert().Model(newAuthItem(item)).Exec(ctx)
	return dbkit.WithErr(result, err, "InsertItem").Err()
}

// UpdateItem implements PolicyStore. A rename cascades to edges and
// assignments through the schema's foreign keys.
func (s *DBStore) UpdateItem(ctx context.Context, oldName string, item Item) error {
	result, err := s.db.NewUpdate().Model(newAuthItem(item)).Where("name = ?", oldName).Exec(ctx)
	return dbkit.WithErr(result, err, "UpdateItem").Err()
}

// DeleteItem implements PolicyStore.
func (s *DBStore) DeleteItem(ctx context.Context, name string) error {
	result, err := s.db.NewDelete().Table("auth_items").Where("name = ?", name).Exec(ctx)
	return dbkit.WithErr(result, err, "DeleteItem").Err()
}

// DeleteItemsByType implements PolicyStore.
func (s *DBStore) DeleteItemsByType(ctx context.Context, typ ItemType) error {
	result, err := s.db.NewDelete().Table("auth_items").Where("type = ?", string(typ)).Exec(ctx)
	return dbkit.WithErr(result, err, "DeleteItemsByType").Err()
}

// LoadItems implements PolicyStore.
func (s *DBStore) LoadItems(ctx context.Context) (map[string]Item, error) {
	var rows []AuthItem
	err := dbkit.WithErr1(s.db.NewSelect().Model(&rows).Scan(ctx), "LoadItems").Err()
	if err != nil {
		return nil, err
	}
	items := make(map[string]Item, len(rows))
	for i := range rows {
		items[rows[i].Name] = rows[i].Item()
	}
	return items, nil
}

// ============================================================================
// RULES
// ============================================================================

// GetRule implements PolicyStore.
func (s *DBStore) GetRule(ctx context.Context, name string) (*Rule, error) {
	var row AuthRule
	err := dbkit.WithErr1(s.db.NewSelect().Model(&row).Where("name = ?", name).Limit(1).Scan(ctx), "GetRule").Err()
	if err != nil {
		if dbkit.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	rule := row.Rule()
	return &rule, nil
}

// InsertRule implements PolicyStore.
func (s *DBStore) InsertRule(ctx context.Context, rule Rule) error {
	result, err := s.db.NewInsert().Model(newAuthRule(rule)).Exec(ctx)
	return dbkit.WithErr(result, err, "InsertRule").Err()
}

// UpdateRule implements PolicyStore.
func (s *DBStore) UpdateRule(ctx context.Context, oldName string, rule Rule) error {
	if oldName != rule.Name {
		result, err := s.db.NewUpdate().Table("auth_items").
			Set("rule_name = ?", rule.Name).
			Where("rule_name = ?", oldName).
			Exec(ctx)
		if err := dbkit.WithErr(result, err, "UpdateRuleItemRefs").Err(); err != nil {
			return err
		}
	}
	result, err := s.db.NewUpdate().Model(newAuthRule(rule)).Where("name = ?", oldName).Exec(ctx)
	return dbkit.WithErr(result, err, "UpdateRule").Err()
}

// DeleteRule implements PolicyStore. Items referencing the rule are detached
// from it first, never left dangling.
func (s *DBStore) DeleteRule(ctx context.Context, name string) error {
	result, err := s.db.NewUpdate().Table("auth_items").
		Set("rule_name = ''").
		Where("rule_name = ?", name).
		Exec(ctx)
	if err := dbkit.WithErr(result, err, "DeleteRuleItemRefs").Err(); err != nil {
		return err
	}
	result, err = s.db.NewDelete().Table("auth_rules").Where("name = ?", name).Exec(ctx)
	return dbkit.WithErr(result, err, "DeleteRule").Err()
}

// DeleteAllRules implements PolicyStore.
func (s *DBStore) DeleteAllRules(ctx context.Context) error {
	result, err := s.db.NewUpdate().Table("auth_items").
		Set("rule_name = ''").
		Where("rule_name <> ''").
		Exec(ctx)
	if err := dbkit.WithErr(result, err, "DeleteAllRulesItemRefs").Err(); err != nil {
		return err
	}
	result, err = s.db.NewDelete().Table("auth_rules").Where("1 = 1").Exec(ctx)
	return dbkit.WithErr(result, err, "DeleteAllRules").Err()
}

// LoadRules implements PolicyStore.
func (s *DBStore) LoadRules(ctx context.Context) (map[string]Rule, error) {
	var rows []AuthRule
	err := dbkit.WithErr1(s.db.NewSelect().Model(&rows).Scan(ctx), "LoadRules").Err()
	if err != nil {
		return nil, err
	}
	rules := make(map[string]Rule, len(rows))
	for i := range rows {
		rules[rows[i].Name] = rows[i].Rule()
	}
	return rules, nil
}

// ============================================================================
// HIERARCHY EDGES
// ============================================================================

// HasEdge implements PolicyStore.
func (s *DBStore) HasEdge(ctx context.Context, parent, child string) (bool, error) {
	return dbkit.Exists[AuthItemChild](ctx, s.db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("parent = ? AND child = ?", parent, child)
	})
}

// InsertEdge implements PolicyStore.
func (s *DBStore) InsertEdge(ctx context.Context, parent, child string) error {
	result, err := s.db.NewInsert().Model(&AuthItemChild{Parent: parent, Child: child}).Exec(ctx)
	return dbkit.WithErr(result, err, "InsertEdge").Err()
}

// DeleteEdge implements PolicyStore.
func (s *DBStore) DeleteEdge(ctx context.Context, parent, child string) error {
	result, err := s.db.NewDelete().Table("auth_item_children").
		Where("parent = ? AND child = ?", parent, child).
		Exec(ctx)
	return dbkit.WithErr(result, err, "DeleteEdge").Err()
}

// DeleteEdgesFrom implements PolicyStore.
func (s *DBStore) DeleteEdgesFrom(ctx context.Context, parent string) error {
	result, err := s.db.NewDelete().Table("auth_item_children").Where("parent = ?", parent).Exec(ctx)
	return dbkit.WithErr(result, err, "DeleteEdgesFrom").Err()
}

// GetParentNames implements PolicyStore.
func (s *DBStore) GetParentNames(ctx context.Context, child string) ([]string, error) {
	var parents []string
	err := dbkit.WithErr1(s.db.NewRaw("SELECT parent FROM auth_item_children WHERE child = ?", child).Scan(ctx, &parents), "GetParentNames").Err()
	if err != nil {
		if dbkit.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return parents, nil
}

// GetChildren implements PolicyStore.
func (s *DBStore) GetChildren(ctx context.Context, parent string) ([]Item, error) {
	var rows []AuthItem
	err := dbkit.WithErr1(s.db.NewRaw(
		"SELECT i.* FROM auth_items i JOIN auth_item_children c ON c.child = i.name WHERE c.parent = ?",
		parent).Scan(ctx, &rows), "GetChildren").Err()
	if err != nil {
		if dbkit.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	items := make([]Item, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].Item())
	}
	return items, nil
}

// LoadParents implements PolicyStore.
func (s *DBStore) LoadParents(ctx context.Context) (map[string][]string, error) {
	edges, err := s.loadEdges(ctx)
	if err != nil {
		return nil, err
	}
	parents := make(map[string][]string)
	for _, e := range edges {
		parents[e.Child] = append(parents[e.Child], e.Parent)
	}
	return parents, nil
}

// LoadChildren implements PolicyStore.
func (s *DBStore) LoadChildren(ctx context.Context) (map[string][]string, error) {
	edges, err := s.loadEdges(ctx)
	if err != nil {
		return nil, err
	}
	children := make(map[string][]string)
	for _, e := range edges {
		children[e.Parent] = append(children[e.Parent], e.Child)
	}
	return children, nil
}

func (s *DBStore) loadEdges(ctx context.Context) ([]AuthItemChild, error) {
	var rows []AuthItemChild
	err := dbkit.WithErr1(s.db.NewSelect().Model(&rows).Scan(ctx), "LoadEdges").Err()
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ============================================================================
// ASSIGNMENTS
// ============================================================================

// GetAssignment implements PolicyStore.
func (s *DBStore) GetAssignment(ctx context.Context, itemName, userID string) (*Assignment, error) {
	var row AuthAssignment
	err := dbkit.WithErr1(s.db.NewSelect().Model(&row).
		Where("user_id = ? AND item_name = ?", userID, itemName).
		Limit(1).Scan(ctx), "GetAssignment").Err()
	if err != nil {
		if dbkit.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	assignment := row.Assignment()
	return &assignment, nil
}

// GetAssignments implements PolicyStore.
func (s *DBStore) GetAssignments(ctx context.Context, userID string) (map[string]Assignment, error) {
	var rows []AuthAssignment
	err := dbkit.WithErr1(s.db.NewSelect().Model(&rows).Where("user_id = ?", userID).Scan(ctx), "GetAssignments").Err()
	if err != nil {
		return nil, err
	}
	assignments := make(map[string]Assignment, len(rows))
	for i := range rows {
		assignments[rows[i].ItemName] = rows[i].Assignment()
	}
	return assignments, nil
}

// InsertAssignment implements PolicyStore.
func (s *DBStore) InsertAssignment(ctx context.Context, assignment Assignment) error {
	result, err := s.db.NewInsert().Model(newAuthAssignment(assignment)).Exec(ctx)
	return dbkit.WithErr(result, err, "InsertAssignment").Err()
}

// DeleteAssignment implements PolicyStore.
func (s *DBStore) DeleteAssignment(ctx context.Context, itemName, userID string) error {
	result, err := s.db.NewDelete().Table("auth_assignments").
		Where("user_id = ? AND item_name = ?", userID, itemName).
		Exec(ctx)
	return dbkit.WithErr(result, err, "DeleteAssignment").Err()
}

// DeleteAssignmentsByUser implements PolicyStore.
func (s *DBStore) DeleteAssignmentsByUser(ctx context.Context, userID string) error {
	result, err := s.db.NewDelete().Table("auth_assignments").Where("user_id = ?", userID).Exec(ctx)
	return dbkit.WithErr(result, err, "DeleteAssignmentsByUser").Err()
}

// DeleteAllAssignments implements PolicyStore.
func (s *DBStore) DeleteAllAssignments(ctx context.Context) error {
	result, err := s.db.NewDelete().Table("auth_assignments").Where("1 = 1").Exec(ctx)
	return dbkit.WithErr(result, err, "DeleteAllAssignments").Err()
}

// GetUserIDsByItem implements PolicyStore.
func (s *DBStore) GetUserIDsByItem(ctx context.Context, itemName string) ([]string, error) {
	var userIDs []string
	err := dbkit.WithErr1(s.db.NewRaw("SELECT user_id FROM auth_assignments WHERE item_name = ?", itemName).Scan(ctx, &userIDs), "GetUserIDsByItem").Err()
	if err != nil {
		if dbkit.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return userIDs, nil
}

var _ PolicyStore = (*DBStore)(nil)
