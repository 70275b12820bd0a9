package authkit

import "context"

// Checker is a convenience view of the manager bound to a single user.
// It is cheap to create and safe to pass around request handlers.
//
// Example:
//
//	c := mgr.Checker(userID)
//	if ok, _ := c.Can(ctx, "updatePost", params); !ok {
//		return ErrForbidden
//	}
type Checker struct {
	manager *Manager
	userID  string
}

// NewChecker returns a checker bound to the given user.
func NewChecker(manager *Manager, userID string) *Checker {
	return &Checker{manager: manager, userID: userID}
}

// UserID returns the user the checker is bound to.
func (c *Checker) UserID() string {
	return c.userID
}

// Can reports whether the bound user holds the named permission.
func (c *Checker) Can(ctx context.Context, permission string, params map[string]any) (bool, error) {
	return c.manager.UserHasPermission(ctx, c.userID, permission, params)
}

// Roles returns the roles assigned to the bound user, default roles included.
func (c *Checker) Roles(ctx context.Context) ([]Item, error) {
	return c.manager.GetRolesByUser(ctx, c.userID)
}

// Permissions returns every permission reachable by the bound user.
func (c *Checker) Permissions(ctx context.Context) ([]Item, error) {
	return c.manager.GetPermissionsByUser(ctx, c.userID)
}
