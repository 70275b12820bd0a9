package authkit

import (
	"net/http"
)

// Middleware provides HTTP middleware for permission checking.
type Middleware struct {
	manager       *Manager
	getUserID     func(*http.Request) string
	getParams     func(*http.Request) map[string]any
	errorHandler  func(http.ResponseWriter, *http.Request, error)
	deniedHandler func(http.ResponseWriter, *http.Request)
}

// MiddlewareOption configures the Middleware.
type MiddlewareOption func(*Middleware)

// NewMiddleware creates a new Middleware instance.
//
// Example:
//
//	mw := authkit.NewMiddleware(manager,
//	    authkit.WithUserIDExtractor(func(r *http.Request) string {
//	        return r.Header.Get("X-User-ID")
//	    }),
//	)
func NewMiddleware(manager *Manager, opts ...MiddlewareOption) *Middleware {
	m := &Middleware{
		manager:       manager,
		getUserID:     defaultGetUserID,
		getParams:     defaultGetParams,
		errorHandler:  defaultErrorHandler,
		deniedHandler: defaultDeniedHandler,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// WithUserIDExtractor sets a custom function to extract user ID from request.
func WithUserIDExtractor(fn func(*http.Request) string) MiddlewareOption {
	return func(m *Middleware) {
		m.getUserID = fn
	}
}

// WithParamsExtractor sets a custom function to build the rule parameters
// passed to permission checks from the request.
func WithParamsExtractor(fn func(*http.Request) map[string]any) MiddlewareOption {
	return func(m *Middleware) {
		m.getParams = fn
	}
}

// WithErrorHandler sets a custom error handler for middleware.
func WithErrorHandler(fn func(http.ResponseWriter, *http.Request, error)) MiddlewareOption {
	return func(m *Middleware) {
		m.errorHandler = fn
	}
}

// WithDeniedHandler sets a custom handler for denied requests.
func WithDeniedHandler(fn func(http.ResponseWriter, *http.Request)) MiddlewareOption {
	return func(m *Middleware) {
		m.deniedHandler = fn
	}
}

func defaultGetUserID(r *http.Request) string {
	return GetUserID(r.Context())
}

func defaultGetParams(r *http.Request) map[string]any {
	return nil
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	if IsInvalidArgument(err) {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func defaultDeniedHandler(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "Forbidden", http.StatusForbidden)
}

// RequirePermission creates middleware that requires a specific permission.
//
// Example:
//
//	router.With(mw.RequirePermission("updatePost")).
//	    Post("/posts/{postID}", updatePostHandler)
func (m *Middleware) RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			userID := m.getUserID(r)
			if userID == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			allowed, err := m.manager.UserHasPermission(ctx, userID, permission, m.getParams(r))
			if err != nil {
				m.errorHandler(w, r, err)
				return
			}
			if !allowed {
				m.deniedHandler(w, r)
				return
			}

			// Add checker to context for use in handlers
			ctx = WithChecker(ctx, m.manager.Checker(userID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAnyPermission creates middleware that requires any of the specified
// permissions.
//
// Example:
//
//	router.With(mw.RequireAnyPermission("readPost", "updatePost")).
//	    Get("/posts/{postID}", readPostHandler)
func (m *Middleware) RequireAnyPermission(permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			userID := m.getUserID(r)
			if userID == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			params := m.getParams(r)
			for _, permission := range permissions {
				allowed, err := m.manager.UserHasPermission(ctx, userID, permission, params)
				if err != nil {
					m.errorHandler(w, r, err)
					return
				}
				if allowed {
					ctx = WithChecker(ctx, m.manager.Checker(userID))
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			m.deniedHandler(w, r)
		})
	}
}

// LoadChecker creates middleware that loads the user's Checker into context.
// Use this when you want to do permission checks in the handler rather than
// middleware.
//
// Example:
//
//	router.With(mw.LoadChecker()).Get("/dashboard", dashboardHandler)
//
//	func dashboardHandler(w http.ResponseWriter, r *http.Request) {
//	    checker := authkit.FromContext(r.Context())
//	    if ok, _ := checker.Can(r.Context(), "viewReports", nil); ok {
//	        // Show report widgets
//	    }
//	}
func (m *Middleware) LoadChecker() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := m.getUserID(r)
			if userID == "" {
				// No user, continue without checker
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithChecker(r.Context(), m.manager.Checker(userID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
