package internal

// Handler declares routes on a router.
//
// Example:
//
//	type StorageHandler struct {
//	    engine *tree.Engine
//	}
//
//	func (h *StorageHandler) Routes(r drive.Router) {
//	    r.GET("/api/storage/{id}", h.detail)
//	    r.DELETE("/api/storage/{id}", h.remove)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature for route handlers.
// Returning a non-nil error hands it to the app's ErrorHandler.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
// Middleware can inspect the request, short-circuit processing,
// or wrap the response.
//
// Example:
//
//	func RequireAccount(next drive.HandlerFunc) drive.HandlerFunc {
//	    return func(c drive.Context) error {
//	        if c.AccountID() == "" {
//	            return drive.ErrUnauthorized("account required")
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors returned from handlers.
type ErrorHandler func(Context, error) error
