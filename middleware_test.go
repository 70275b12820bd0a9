package authkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headerUserID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// TestRequirePermission tests the single-permission middleware
func TestRequirePermission(t *testing.T) {
	m := newTestManager(t)
	seedBlogGraph(t, m)
	mw := NewMiddleware(m, WithUserIDExtractor(headerUserID))

	handler := mw.RequirePermission("createPost")(okHandler())

	t.Run("Granted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/posts", nil)
		req.Header.Set("X-User-ID", "2")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Denied", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/posts", nil)
		req.Header.Set("X-User-ID", "3")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Missing user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/posts", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Checker available downstream", func(t *testing.T) {
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			checker := FromContext(r.Context())
			require.NotNil(t, checker)
			assert.Equal(t, "2", checker.UserID())
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodPost, "/posts", nil)
		req.Header.Set("X-User-ID", "2")
		rec := httptest.NewRecorder()

		mw.RequirePermission("createPost")(inner).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Custom denied handler", func(t *testing.T) {
		custom := NewMiddleware(m,
			WithUserIDExtractor(headerUserID),
			WithDeniedHandler(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", http.StatusTeapot)
			}),
		)

		req := httptest.NewRequest(http.MethodPost, "/posts", nil)
		req.Header.Set("X-User-ID", "3")
		rec := httptest.NewRecorder()

		custom.RequirePermission("createPost")(okHandler()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusTeapot, rec.Code)
	})
}

// TestRequireAnyPermission tests the any-of middleware
func TestRequireAnyPermission(t *testing.T) {
	m := newTestManager(t)
	seedBlogGraph(t, m)
	mw := NewMiddleware(m, WithUserIDExtractor(headerUserID))

	handler := mw.RequireAnyPermission("createPost", "readPost")(okHandler())

	t.Run("Reader passes through readPost", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/posts", nil)
		req.Header.Set("X-User-ID", "3")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Unassigned user is denied", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/posts", nil)
		req.Header.Set("X-User-ID", "999")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

// TestRequirePermissionParams tests the params extractor
func TestRequirePermissionParams(t *testing.T) {
	m := newTestManager(t)
	seedBlogGraph(t, m)

	mw := NewMiddleware(m,
		WithUserIDExtractor(headerUserID),
		WithParamsExtractor(func(r *http.Request) map[string]any {
			return map[string]any{"authorID": r.Header.Get("X-Author-ID")}
		}),
	)
	handler := mw.RequirePermission("updatePost")(okHandler())

	t.Run("Author updates own post", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/posts/1", nil)
		req.Header.Set("X-User-ID", "2")
		req.Header.Set("X-Author-ID", "2")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Author denied on foreign post", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/posts/1", nil)
		req.Header.Set("X-User-ID", "2")
		req.Header.Set("X-Author-ID", "1")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

// TestLoadChecker tests the checker-loading middleware
func TestLoadChecker(t *testing.T) {
	m := newTestManager(t)
	seedBlogGraph(t, m)
	mw := NewMiddleware(m, WithUserIDExtractor(headerUserID))

	t.Run("Checker loaded for known user", func(t *testing.T) {
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NotNil(t, FromContext(r.Context()))
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.Header.Set("X-User-ID", "2")
		rec := httptest.NewRecorder()

		mw.LoadChecker()(inner).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Anonymous continues without checker", func(t *testing.T) {
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Nil(t, FromContext(r.Context()))
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		rec := httptest.NewRecorder()

		mw.LoadChecker()(inner).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
