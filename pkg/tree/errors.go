package tree

import (
	"errors"
	"fmt"
)

// Every error returned by Engine matches exactly one of the first five
// sentinels with errors.Is.
var (
	ErrNotFound     = errors.New("tree: not found")
	ErrForbidden    = errors.New("tree: forbidden")
	ErrBadRequest   = errors.New("tree: bad request")
	ErrUnauthorized = errors.New("tree: unauthorized")
	ErrInternal     = errors.New("tree: internal error")

	// ErrRootDeletion also matches ErrBadRequest.
	ErrRootDeletion = fmt.Errorf("%w: the root folder cannot be deleted", ErrBadRequest)
)

func notFound(id string) error {
	return fmt.Errorf("%w: node %q", ErrNotFound, id)
}

func forbidden(id string) error {
	return fmt.Errorf("%w: node %q belongs to another account", ErrForbidden, id)
}

func internal(err error) error {
	return errors.Join(ErrInternal, err)
}
