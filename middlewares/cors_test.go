package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/drive/internal"
	"github.com/dmitrymomot/drive/middlewares"
)

func TestCORS(t *testing.T) {
	t.Parallel()

	ok := func(c internal.Context) error { return c.String(http.StatusOK, "ok") }
	mw := middlewares.CORS(middlewares.WithAllowOrigins("https://app.example.com"))

	t.Run("allowed origin", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := serve(t, req, ok, mw)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("foreign origin", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := serve(t, req, ok, mw)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodOptions, "/x", nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
		rec := httptest.NewRecorder()

		app := internal.New(internal.WithMiddleware(mw), internal.WithHandlers(routes(func(r internal.Router) {
			r.DELETE("/x", ok)
		})))
		app.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodDelete)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), middlewares.DefaultAccountHeader)
		assert.Equal(t, "43200", rec.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("wildcard with credentials echoes origin", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Origin", "https://any.example.com")
		rec := serve(t, req, ok, middlewares.CORS(
			middlewares.WithAllowOrigins("*"),
			middlewares.WithAllowCredentials(),
		))

		assert.Equal(t, "https://any.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("wildcard without credentials", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Origin", "https://any.example.com")
		rec := serve(t, req, ok, middlewares.CORS(middlewares.WithAllowOrigins("*")))
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
