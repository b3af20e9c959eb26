package middlewares

import (
	"net/http"

	"github.com/dmitrymomot/drive/internal"
	"github.com/dmitrymomot/drive/pkg/logger"
)

// DefaultAccountHeader carries the account id set by the upstream gateway
// after it has authenticated the caller.
const DefaultAccountHeader = "X-Account-ID"

// AccountResolver returns the authenticated account for a request.
// ok is false for anonymous requests.
type AccountResolver func(c internal.Context) (accountID string, ok bool)

// HeaderAccountResolver trusts the given header. Only use it behind a
// gateway that strips the header from client requests.
func HeaderAccountResolver(header string) AccountResolver {
	ext := internal.NewExtractor(internal.FromHeader(header))
	return ext.Extract
}

// Account returns middleware that resolves the caller's account and stores
// it in the request context, where Context.AccountID and the account_id
// log extractor read it. Requests without an account get 401.
func Account(resolve AccountResolver) internal.Middleware {
	if resolve == nil {
		resolve = HeaderAccountResolver(DefaultAccountHeader)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			accountID, ok := resolve(c)
			if !ok || accountID == "" {
				return internal.ErrUnauthorized(http.StatusText(http.StatusUnauthorized),
					internal.WithError(ErrAccountRequired),
					internal.WithRequestID(GetRequestID(c.Context())),
				)
			}

			c.Set(logger.AccountIDKey{}, accountID)
			return next(c)
		}
	}
}
