package tree

import (
	"context"
	"fmt"
	"io"
)

// Content is an open download stream with the node it belongs to.
// The caller must close it.
type Content struct {
	io.ReadCloser
	Node Node
}

// GetDetail returns a node owned by requesterID.
func (e *Engine) GetDetail(ctx context.Context, requesterID, id string) (*Node, error) {
	return e.owned(ctx, requesterID, id)
}

// ListFolder returns the direct children of folderID owned by requesterID.
// Unknown or foreign folder ids yield an empty list, not an error.
func (e *Engine) ListFolder(ctx context.Context, requesterID, folderID string) ([]Node, error) {
	if requesterID == "" {
		return nil, ErrUnauthorized
	}
	recs, err := e.store.List(ctx, childrenOf(requesterID, folderID))
	if err != nil {
		return nil, internal(err)
	}
	return nodesFromRecords(recs), nil
}

// Download opens a file owned by requesterID.
func (e *Engine) Download(ctx context.Context, requesterID, id string) (*Content, error) {
	n, err := e.owned(ctx, requesterID, id)
	if err != nil {
		return nil, err
	}
	return e.open(ctx, n)
}

func (e *Engine) open(ctx context.Context, n *Node) (*Content, error) {
	if n.Type != File {
		return nil, fmt.Errorf("%w: %q is a folder", ErrBadRequest, n.ID)
	}
	rc, err := e.store.OpenDownloadStream(ctx, n.ID)
	if err != nil {
		return nil, internal(err)
	}
	return &Content{ReadCloser: rc, Node: *n}, nil
}
