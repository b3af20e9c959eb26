package blobstore

import (
	"context"
	"io"
)

// Store is a flat blob store with metadata documents and filter-based
// listing and deletion. It has no notion of hierarchy.
type Store interface {
	// Upload writes a new blob and returns its generated id.
	// A nil content reader stores no bytes; the blob has length 0.
	Upload(ctx context.Context, name string, meta Metadata, content io.Reader) (string, error)

	// GetByID returns ErrNotFound if no blob has the id.
	GetByID(ctx context.Context, id string) (*Record, error)

	// List returns every record matching f, oldest first.
	List(ctx context.Context, f Filter) ([]Record, error)

	// DeleteMany removes every record matching f in one operation and
	// reports how many were removed.
	DeleteMany(ctx context.Context, f Filter) (int, error)

	// OpenDownloadStream returns the blob's bytes. The caller must close it.
	OpenDownloadStream(ctx context.Context, id string) (io.ReadCloser, error)
}

// OrphanLister finds non-root records whose parent no longer exists.
type OrphanLister interface {
	ListOrphans(ctx context.Context, limit int) ([]Record, error)
}
