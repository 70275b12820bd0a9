package authkit

import (
	"errors"
	"fmt"
)

// Sentinel errors for AuthKit operations.
var (
	// ErrInvalidArgument is returned for structurally invalid requests:
	// self-referencing edges, a permission made parent of a role, unsupported
	// entity types passed to the generic entry points, duplicate assignments
	// and rename collisions.
	ErrInvalidArgument = errors.New("authkit: invalid argument")

	// ErrInvalidCall is returned when an operation is rejected by the current
	// hierarchy state: an edge that would close a cycle, or an edge that
	// already exists.
	ErrInvalidCall = errors.New("authkit: invalid call")

	// ErrInvalidConfig is returned when an item references a rule name that
	// cannot be resolved at check time.
	ErrInvalidConfig = errors.New("authkit: invalid configuration")
)

// Error wraps a sentinel error with additional context.
type Error struct {
	Err     error  // Underlying sentinel error
	Message string // Additional context
	Item    string // Item involved (if applicable)
	Parent  string // Parent item of a hierarchy operation (if applicable)
	Child   string // Child item of a hierarchy operation (if applicable)
	UserID  string // User involved (if applicable)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is checks if the error matches a target error.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewError creates a new Error with context.
func NewError(err error, message string) *Error {
	return &Error{
		Err:     err,
		Message: message,
	}
}

// WithItem adds item information to the error.
func (e *Error) WithItem(name string) *Error {
	e.Item = name
	return e
}

// WithParentChild adds hierarchy edge information to the error.
func (e *Error) WithParentChild(parent, child string) *Error {
	e.Parent = parent
	e.Child = child
	return e
}

// WithUser adds user information to the error.
func (e *Error) WithUser(userID string) *Error {
	e.UserID = userID
	return e
}

// IsInvalidArgument checks if an error is an invalid-argument error.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsInvalidCall checks if an error is an invalid-call error.
func IsInvalidCall(err error) bool {
	return errors.Is(err, ErrInvalidCall)
}

// IsInvalidConfig checks if an error is an invalid-configuration error.
func IsInvalidConfig(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}
