package middlewares_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/drive/internal"
	"github.com/dmitrymomot/drive/middlewares"
	"github.com/dmitrymomot/drive/pkg/logger"
)

func TestAccount(t *testing.T) {
	t.Parallel()

	whoami := func(c internal.Context) error {
		fromLog, _ := logger.AccountIDFromContext(c.Context())
		return c.JSON(http.StatusOK, map[string]string{"account": c.AccountID(), "log": fromLog})
	}

	t.Run("default header", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(middlewares.DefaultAccountHeader, " acc-1 ")
		rec := serve(t, req, whoami, middlewares.Account(nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "acc-1", body["account"])
		assert.Equal(t, "acc-1", body["log"])
	})

	t.Run("custom header", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("X-User", "u-9")
		rec := serve(t, req, whoami, middlewares.Account(middlewares.HeaderAccountResolver("X-User")))
		assert.Contains(t, rec.Body.String(), `"account":"u-9"`)
	})

	t.Run("missing account", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("X-Request-ID", "req-1")
		called := false
		rec := serve(t, req, func(c internal.Context) error {
			called = true
			return nil
		}, middlewares.RequestID(), middlewares.Account(nil))

		assert.False(t, called)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "req-1", body["request_id"])
	})

	t.Run("resolver refusing", func(t *testing.T) {
		t.Parallel()

		deny := func(internal.Context) (string, bool) { return "", false }
		rec := serve(t, httptest.NewRequest(http.MethodGet, "/x", nil), whoami, middlewares.Account(deny))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
