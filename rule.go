package authkit

import (
	"context"
	"sync"
	"time"
)

// RuleFunc is the predicate behind a rule. It decides whether the given item
// applies to the user for this check. The params map is the one passed to
// Manager.UserHasPermission, untouched.
//
// A RuleFunc must be total and side-effect-free; any error it returns aborts
// the check and propagates to the caller.
type RuleFunc func(ctx context.Context, userID string, item Item, params map[string]any) (bool, error)

// Rule is a named boolean predicate gating whether an item's grant applies.
//
// Only the metadata (name, timestamps) is ever persisted; the executable
// predicate is resolved through a RuleFactory by name. A rule whose Execute
// is nil evaluates to true.
type Rule struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Execute RuleFunc `json:"-"`
}

// NewRule creates a rule with the given name and predicate.
// A nil predicate yields a rule that always evaluates to true.
func NewRule(name string, fn RuleFunc) Rule {
	return Rule{Name: name, Execute: fn}
}

// WithName returns a copy of the rule with a new name.
func (r Rule) WithName(name string) Rule {
	r.Name = name
	return r
}

// WithCreatedAt returns a copy of the rule with the creation time set.
func (r Rule) WithCreatedAt(t time.Time) Rule {
	r.CreatedAt = t
	return r
}

// WithUpdatedAt returns a copy of the rule with the update time set.
func (r Rule) WithUpdatedAt(t time.Time) Rule {
	r.UpdatedAt = t
	return r
}

// RuleFactory turns a rule name into a runnable Rule. The Manager uses it to
// auto-provision rules referenced by items and to resolve predicates at check
// time. Implementations must be safe for concurrent use.
type RuleFactory interface {
	// Create returns the rule registered under name. An unknown name fails
	// with an error wrapping ErrInvalidConfig.
	Create(name string) (Rule, error)
}

// RuleRegistry is an explicit name -> RuleFunc registry implementing
// RuleFactory. Register rules at startup, then hand the registry to
// NewManager.
//
// Example:
//
//	rules := authkit.NewRuleRegistry().
//	    Register("is-author", isAuthor).
//	    Register("business-hours", businessHours)
type RuleRegistry struct {
	mu    sync.RWMutex
	funcs map[string]RuleFunc
}

// NewRuleRegistry creates an empty rule registry.
func NewRuleRegistry() *RuleRegistry {
	return &RuleRegistry{funcs: make(map[string]RuleFunc)}
}

// Register adds a predicate under the given name, replacing any previous
// registration. Returns the registry for chaining.
func (r *RuleRegistry) Register(name string, fn RuleFunc) *RuleRegistry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
	return r
}

// Names returns all registered rule names.
func (r *RuleRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	return names
}

// Create implements RuleFactory.
func (r *RuleRegistry) Create(name string) (Rule, error) {
	r.mu.RLock()
	fn, ok := r.funcs[name]
	r.mu.RUnlock()
	if !ok {
		return Rule{}, NewError(ErrInvalidConfig, "rule not registered: "+name)
	}
	return NewRule(name, fn), nil
}
