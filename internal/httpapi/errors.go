package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/drive/internal"
	"github.com/dmitrymomot/drive/middlewares"
	"github.com/dmitrymomot/drive/pkg/sanitizer"
	"github.com/dmitrymomot/drive/pkg/tree"
)

// Error codes returned in the "code" field of error bodies.
const (
	CodeNotFound       = "not_found"
	CodeForbidden      = "forbidden"
	CodeBadRequest     = "bad_request"
	CodeRootDeletion   = "root_deletion"
	CodeInvalidName    = "invalid_name"
	CodeUnauthorized   = "unauthorized"
	CodeInternal       = "internal"
	CodeBodyTooLarge   = "body_too_large"
	CodeRouteNotFound  = "route_not_found"
	internalErrMessage = "internal server error"
)

// ErrorHandler renders handler errors as JSON with a status derived from
// the tree error taxonomy.
func ErrorHandler(c internal.Context, err error) error {
	return internal.DefaultErrorHandler(c, toHTTPError(c, err))
}

func toHTTPError(c internal.Context, err error) *internal.HTTPError {
	opts := []internal.HTTPErrorOption{
		internal.WithError(err),
		internal.WithRequestID(middlewares.GetRequestID(c.Context())),
	}

	if httpErr := internal.AsHTTPError(err); httpErr != nil {
		httpErr.RequestID = middlewares.GetRequestID(c.Context())
		return httpErr
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, tree.ErrInternal):
		return internal.ErrInternal(internalErrMessage, append(opts, internal.WithErrorCode(CodeInternal))...)
	case errors.Is(err, tree.ErrNotFound):
		return internal.ErrNotFound(err.Error(), append(opts, internal.WithErrorCode(CodeNotFound))...)
	case errors.Is(err, tree.ErrForbidden):
		return internal.ErrForbidden(err.Error(), append(opts, internal.WithErrorCode(CodeForbidden))...)
	case errors.Is(err, tree.ErrRootDeletion):
		return internal.ErrBadRequest(err.Error(), append(opts, internal.WithErrorCode(CodeRootDeletion))...)
	case errors.Is(err, tree.ErrBadRequest):
		return internal.ErrBadRequest(err.Error(), append(opts, internal.WithErrorCode(CodeBadRequest))...)
	case errors.Is(err, tree.ErrUnauthorized):
		return internal.ErrUnauthorized(err.Error(), append(opts, internal.WithErrorCode(CodeUnauthorized))...)
	case errors.Is(err, sanitizer.ErrEmptyName),
		errors.Is(err, sanitizer.ErrNameTooLong),
		errors.Is(err, sanitizer.ErrInvalidName):
		return internal.ErrBadRequest(err.Error(), append(opts, internal.WithErrorCode(CodeInvalidName))...)
	case errors.As(err, &tooLarge):
		return internal.ErrRequestTooLarge("request body too large", append(opts, internal.WithErrorCode(CodeBodyTooLarge))...)
	default:
		return internal.ErrInternal(internalErrMessage, append(opts, internal.WithErrorCode(CodeInternal))...)
	}
}

// NotFound answers unknown routes in the same JSON shape as other errors.
func NotFound(c internal.Context) error {
	return internal.ErrNotFound(http.StatusText(http.StatusNotFound), internal.WithErrorCode(CodeRouteNotFound))
}
