package authkit

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory PolicyStore. It is the storage analog of a
// flat-file deployment: suitable for tests and for authorization data small
// enough to live in the process. All methods are safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	items       map[string]Item
	rules       map[string]Rule
	children    map[string]map[string]struct{} // parent -> set of children
	assignments map[string]map[string]Assignment
}

// NewMemoryStore creates an empty in-memory policy store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:       make(map[string]Item),
		rules:       make(map[string]Rule),
		children:    make(map[string]map[string]struct{}),
		assignments: make(map[string]map[string]Assignment),
	}
}

// ============================================================================
// ITEMS
// ============================================================================

// GetItem implements PolicyStore.
func (s *MemoryStore) GetItem(_ context.Context, name string) (*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if item, ok := s.items[name]; ok {
		return &item, nil
	}
	return nil, nil
}

// GetItemsByType implements PolicyStore.
func (s *MemoryStore) GetItemsByType(_ context.Context, typ ItemType) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var items []Item
	for _, item := range s.items {
		if item.Type == typ {
			items = append(items, item)
		}
	}
	return items, nil
}

// InsertItem implements PolicyStore.
func (s *MemoryStore) InsertItem(_ context.Context, item Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.Name] = item
	return nil
}

// UpdateItem implements PolicyStore. Renames re-key edges and assignments.
func (s *MemoryStore) UpdateItem(_ context.Context, oldName string, item Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if oldName != item.Name {
		delete(s.items, oldName)

		if children, ok := s.children[oldName]; ok {
			s.children[item.Name] = children
			delete(s.children, oldName)
		}
		for _, children := range s.children {
			if _, ok := children[oldName]; ok {
				delete(children, oldName)
				children[item.Name] = struct{}{}
			}
		}

		for _, byItem := range s.assignments {
			if a, ok := byItem[oldName]; ok {
				delete(byItem, oldName)
				byItem[item.Name] = a.WithItemName(item.Name)
			}
		}
	}

	s.items[item.Name] = item
	return nil
}

// DeleteItem implements PolicyStore. Edges and assignments referencing the
// item are removed as well.
func (s *MemoryStore) DeleteItem(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteItemLocked(name)
	return nil
}

func (s *MemoryStore) deleteItemLocked(name string) {
	delete(s.items, name)
	delete(s.children, name)
	for _, children := range s.children {
		delete(children, name)
	}
	for _, byItem := range s.assignments {
		delete(byItem, name)
	}
}

// DeleteItemsByType implements PolicyStore.
func (s *MemoryStore) DeleteItemsByType(_ context.Context, typ ItemType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, item := range s.items {
		if item.Type == typ {
			s.deleteItemLocked(name)
		}
	}
	return nil
}

// LoadItems implements PolicyStore.
func (s *MemoryStore) LoadItems(_ context.Context) (map[string]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make(map[string]Item, len(s.items))
	for name, item := range s.items {
		items[name] = item
	}
	return items, nil
}

// ============================================================================
// RULES
// ============================================================================

// GetRule implements PolicyStore.
func (s *MemoryStore) GetRule(_ context.Context, name string) (*Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rule, ok := s.rules[name]; ok {
		rule.Execute = nil
		return &rule, nil
	}
	return nil, nil
}

// InsertRule implements PolicyStore.
func (s *MemoryStore) InsertRule(_ context.Context, rule Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rule.Execute = nil
	s.rules[rule.Name] = rule
	return nil
}

// UpdateRule implements PolicyStore.
func (s *MemoryStore) UpdateRule(_ context.Context, oldName string, rule Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if oldName != rule.Name {
		delete(s.rules, oldName)
		for name, item := range s.items {
			if item.RuleName == oldName {
				s.items[name] = item.WithRuleName(rule.Name)
			}
		}
	}
	rule.Execute = nil
	s.rules[rule.Name] = rule
	return nil
}

// DeleteRule implements PolicyStore. Items referencing the rule are detached
// from it, never left dangling.
func (s *MemoryStore) DeleteRule(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rules, name)
	for itemName, item := range s.items {
		if item.RuleName == name {
			s.items[itemName] = item.WithRuleName("")
		}
	}
	return nil
}

// DeleteAllRules implements PolicyStore.
func (s *MemoryStore) DeleteAllRules(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = make(map[string]Rule)
	for name, item := range s.items {
		if item.RuleName != "" {
			s.items[name] = item.WithRuleName("")
		}
	}
	return nil
}

// LoadRules implements PolicyStore.
func (s *MemoryStore) LoadRules(_ context.Context) (map[string]Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rules := make(map[string]Rule, len(s.rules))
	for name, rule := range s.rules {
		rule.Execute = nil
		rules[name] = rule
	}
	return rules, nil
}

// ============================================================================
// HIERARCHY EDGES
// ============================================================================

// HasEdge implements PolicyStore.
func (s *MemoryStore) HasEdge(_ context.Context, parent, child string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.children[parent][child]
	return ok, nil
}

// InsertEdge implements PolicyStore.
func (s *MemoryStore) InsertEdge(_ context.Context, parent, child string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.children[parent] == nil {
		s.children[parent] = make(map[string]struct{})
	}
	s.children[parent][child] = struct{}{}
	return nil
}

// DeleteEdge implements PolicyStore.
func (s *MemoryStore) DeleteEdge(_ context.Context, parent, child string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.children[parent], child)
	return nil
}

// DeleteEdgesFrom implements PolicyStore.
func (s *MemoryStore) DeleteEdgesFrom(_ context.Context, parent string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.children, parent)
	return nil
}

// GetParentNames implements PolicyStore.
func (s *MemoryStore) GetParentNames(_ context.Context, child string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var parents []string
	for parent, children := range s.children {
		if _, ok := children[child]; ok {
			parents = append(parents, parent)
		}
	}
	return parents, nil
}

// GetChildren implements PolicyStore.
func (s *MemoryStore) GetChildren(_ context.Context, parent string) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var items []Item
	for child := range s.children[parent] {
		if item, ok := s.items[child]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// LoadParents implements PolicyStore.
func (s *MemoryStore) LoadParents(_ context.Context) (map[string][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	parents := make(map[string][]string)
	for parent, children := range s.children {
		for child := range children {
			parents[child] = append(parents[child], parent)
		}
	}
	return parents, nil
}

// LoadChildren implements PolicyStore.
func (s *MemoryStore) LoadChildren(_ context.Context) (map[string][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	children := make(map[string][]string)
	for parent, set := range s.children {
		for child := range set {
			children[parent] = append(children[parent], child)
		}
	}
	return children, nil
}

// ============================================================================
// ASSIGNMENTS
// ============================================================================

// GetAssignment implements PolicyStore.
func (s *MemoryStore) GetAssignment(_ context.Context, itemName, userID string) (*Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.assignments[userID][itemName]; ok {
		return &a, nil
	}
	return nil, nil
}

// GetAssignments implements PolicyStore.
func (s *MemoryStore) GetAssignments(_ context.Context, userID string) (map[string]Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	assignments := make(map[string]Assignment, len(s.assignments[userID]))
	for name, a := range s.assignments[userID] {
		assignments[name] = a
	}
	return assignments, nil
}

// InsertAssignment implements PolicyStore.
func (s *MemoryStore) InsertAssignment(_ context.Context, assignment Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.assignments[assignment.UserID] == nil {
		s.assignments[assignment.UserID] = make(map[string]Assignment)
	}
	s.assignments[assignment.UserID][assignment.ItemName] = assignment
	return nil
}

// DeleteAssignment implements PolicyStore.
func (s *MemoryStore) DeleteAssignment(_ context.Context, itemName, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.assignments[userID], itemName)
	return nil
}

// DeleteAssignmentsByUser implements PolicyStore.
func (s *MemoryStore) DeleteAssignmentsByUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.assignments, userID)
	return nil
}

// DeleteAllAssignments implements PolicyStore.
func (s *MemoryStore) DeleteAllAssignments(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments = make(map[string]map[string]Assignment)
	return nil
}

// GetUserIDsByItem implements PolicyStore.
func (s *MemoryStore) GetUserIDsByItem(_ context.Context, itemName string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var userIDs []string
	for userID, byItem := range s.assignments {
		if _, ok := byItem[itemName]; ok {
			userIDs = append(userIDs, userID)
		}
	}
	return userIDs, nil
}

var _ PolicyStore = (*MemoryStore)(nil)
