// Package httpapi exposes the file tree engine over HTTP.
//
// All /api/storage routes except the token download require an account,
// resolved by middlewares.Account. Display names are sanitized here, before
// they reach the engine. Engine errors are mapped to status codes by
// ErrorHandler:
//
//	tree.ErrNotFound     404
//	tree.ErrForbidden    403
//	tree.ErrBadRequest   400
//	tree.ErrUnauthorized 401
//	anything else        500
package httpapi
