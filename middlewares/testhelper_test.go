package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrymomot/drive/internal"
)

type routes func(r internal.Router)

func (fn routes) Routes(r internal.Router) { fn(r) }

// serve mounts h at GET and POST /x behind mw and performs req.
func serve(t *testing.T, req *http.Request, h internal.HandlerFunc, mw ...internal.Middleware) *httptest.ResponseRecorder {
	t.Helper()

	app := internal.New(
		internal.WithMiddleware(mw...),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/x", h)
			r.POST("/x", h)
		})),
	)

	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)
	return rec
}
