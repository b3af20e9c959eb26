// Package middlewares provides the HTTP middleware used by the drive API.
//
// # Request ID
//
// RequestID assigns every request an ID, reusing X-Request-ID from the
// gateway when it looks sane and generating a ULID otherwise. Pair it with
// RequestIDExtractor so the ID shows up in every log entry:
//
//	app := drive.New(
//	    drive.WithLogger("api", middlewares.RequestIDExtractor(), logger.AccountIDExtractor()),
//	    drive.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	)
//
// # Recover
//
// Recover converts panics into *PanicError values, which the error handler
// renders as 500 responses.
//
// # Account
//
// Account resolves the authenticated account for a route group and rejects
// anonymous requests with 401. The default resolver trusts the X-Account-ID
// header set by the authenticating gateway; pass a custom AccountResolver to
// integrate with other identity providers.
//
//	r.Group(func(r drive.Router) {
//	    r.Use(middlewares.Account(nil))
//	    r.GET("/api/storage/root", h.root)
//	})
//
// # CORS
//
// CORS answers browser preflight requests for configured origins.
package middlewares
