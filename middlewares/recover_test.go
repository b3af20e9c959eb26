package middlewares_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/drive/internal"
	"github.com/dmitrymomot/drive/middlewares"
)

func TestRecover(t *testing.T) {
	t.Parallel()

	boom := func(internal.Context) error { panic("boom") }

	t.Run("renders 500", func(t *testing.T) {
		t.Parallel()

		rec := serve(t, httptest.NewRequest(http.MethodGet, "/x", nil), boom, middlewares.Recover())
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "boom")
	})

	t.Run("passes the panic to the error handler", func(t *testing.T) {
		t.Parallel()

		var got *middlewares.PanicError
		app := internal.New(
			internal.WithMiddleware(middlewares.Recover(middlewares.WithRecoverStackSize(512))),
			internal.WithErrorHandler(func(c internal.Context, err error) error {
				got, _ = middlewares.AsPanicError(err)
				return c.NoContent(http.StatusTeapot)
			}),
			internal.WithHandlers(routes(func(r internal.Router) { r.GET("/x", boom) })),
		)
		rec := httptest.NewRecorder()
		app.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.Equal(t, http.StatusTeapot, rec.Code)
		require.NotNil(t, got)
		assert.Equal(t, "boom", got.Value)
		assert.NotEmpty(t, got.Stack)
		assert.LessOrEqual(t, len(got.Stack), 512)
	})

	t.Run("stack disabled", func(t *testing.T) {
		t.Parallel()

		var got *middlewares.PanicError
		h := func(c internal.Context) (err error) {
			err = middlewares.Recover(middlewares.WithRecoverDisablePrintStack())(boom)(c)
			got, _ = middlewares.AsPanicError(err)
			return c.NoContent(http.StatusOK)
		}
		serve(t, httptest.NewRequest(http.MethodGet, "/x", nil), h)

		require.NotNil(t, got)
		assert.Nil(t, got.Stack)
		assert.Equal(t, "panic: boom", got.Error())
	})

	t.Run("no panic", func(t *testing.T) {
		t.Parallel()

		rec := serve(t, httptest.NewRequest(http.MethodGet, "/x", nil), func(c internal.Context) error {
			return c.String(http.StatusOK, "fine")
		}, middlewares.Recover())
		assert.Equal(t, "fine", rec.Body.String())
	})

	t.Run("as panic error", func(t *testing.T) {
		t.Parallel()

		_, ok := middlewares.AsPanicError(errors.New("plain"))
		assert.False(t, ok)
		pe, ok := middlewares.AsPanicError(fmt.Errorf("wrapped: %w", &middlewares.PanicError{Value: 1}))
		require.True(t, ok)
		assert.Equal(t, 1, pe.Value)
	})
}
