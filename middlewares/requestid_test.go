package middlewares_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/drive/internal"
	"github.com/dmitrymomot/drive/middlewares"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	echo := func(c internal.Context) error {
		return c.String(http.StatusOK, middlewares.GetRequestID(c.Context()))
	}

	t.Run("generates an id", func(t *testing.T) {
		t.Parallel()

		rec := serve(t, httptest.NewRequest(http.MethodGet, "/x", nil), echo, middlewares.RequestID())
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, rec.Body.String(), 26)
		assert.Equal(t, rec.Body.String(), rec.Header().Get("X-Request-ID"))
	})

	t.Run("reuses upstream id", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("X-Correlation-ID", "corr-1")
		rec := serve(t, req, echo, middlewares.RequestID())
		assert.Equal(t, "corr-1", rec.Body.String())
		assert.Equal(t, "corr-1", rec.Header().Get("X-Request-ID"))
	})

	t.Run("rejects unprintable or oversized upstream ids", func(t *testing.T) {
		t.Parallel()

		gen := middlewares.WithRequestIDGenerator(func() string { return "generated" })
		for _, v := range []string{"has space", strings.Repeat("a", 129)} {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.Header.Set("X-Request-ID", v)
			rec := serve(t, req, echo, middlewares.RequestID(gen))
			assert.Equal(t, "generated", rec.Body.String(), v)
		}
	})

	t.Run("custom headers", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("X-Request-ID", "ignored")
		req.Header.Set("X-Trace", "trace-7")
		rec := serve(t, req, echo, middlewares.RequestID(middlewares.WithRequestIDHeaders("X-Trace")))
		assert.Equal(t, "trace-7", rec.Body.String())
	})

	t.Run("missing id", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, middlewares.GetRequestID(context.Background()))
		_, ok := middlewares.RequestIDExtractor()(context.Background())
		assert.False(t, ok)
	})

	t.Run("extractor", func(t *testing.T) {
		t.Parallel()

		var attr slog.Attr
		var ok bool
		h := func(c internal.Context) error {
			attr, ok = middlewares.RequestIDExtractor()(c.Context())
			return c.NoContent(http.StatusNoContent)
		}
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("X-Request-ID", "abc")
		serve(t, req, h, middlewares.RequestID())

		require.True(t, ok)
		assert.Equal(t, "request_id", attr.Key)
		assert.Equal(t, "abc", attr.Value.String())
	})
}
