package tree

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dmitrymomot/drive/pkg/blobstore"
)

// CreateFolder creates an empty folder under parentID.
func (e *Engine) CreateFolder(ctx context.Context, ownerID, parentID, name string) (*Node, error) {
	return e.create(ctx, ownerID, parentID, name, Folder, nil)
}

// CreateFile stores content as a new file under parentID.
// A nil content reader creates an empty file.
func (e *Engine) CreateFile(ctx context.Context, ownerID, parentID, name string, content io.Reader) (*Node, error) {
	if content == nil {
		content = bytes.NewReader(nil)
	}
	return e.create(ctx, ownerID, parentID, name, File, content)
}

// create validates the parent in a fixed order: existence, type, ownership.
// Sibling names are not checked for uniqueness.
func (e *Engine) create(ctx context.Context, ownerID, parentID, name string, typ NodeType, content io.Reader) (*Node, error) {
	if ownerID == "" {
		return nil, ErrUnauthorized
	}

	parent, err := e.node(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent.Type != Folder {
		return nil, fmt.Errorf("%w: parent %q is not a folder", ErrBadRequest, parentID)
	}
	if parent.OwnerID != ownerID {
		return nil, forbidden(parentID)
	}

	id, err := e.store.Upload(ctx, name, blobstore.Metadata{
		OwnerID:        ownerID,
		ParentFolderID: parent.ID,
		Type:           string(typ),
	}, content)
	if err != nil {
		return nil, internal(err)
	}

	rec, err := e.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s %q was uploaded but cannot be read back", ErrInternal, typ, id)
		}
		return nil, internal(err)
	}

	e.opts.logger.DebugContext(ctx, "node created",
		slog.String("owner_id", ownerID),
		slog.String("node_id", id),
		slog.String("parent_id", parent.ID),
		slog.String("type", string(typ)),
	)
	return nodeFromRecord(rec), nil
}
