package tree

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/drive/pkg/blobstore"
)

// DeleteRequest identifies a subtree to remove.
type DeleteRequest struct {
	OwnerID string `json:"owner_id"`
	NodeID  string `json:"node_id"`
}

// RequestDelete checks ownership synchronously, refuses to delete the
// account root, and hands the subtree removal to the dispatcher. A nil
// error means the deletion was accepted, not that it has finished.
func (e *Engine) RequestDelete(ctx context.Context, requesterID, id string) error {
	n, err := e.owned(ctx, requesterID, id)
	if err != nil {
		return err
	}
	if n.IsRoot() {
		return ErrRootDeletion
	}

	if err := e.dispatcher.Dispatch(ctx, DeleteRequest{OwnerID: requesterID, NodeID: id}); err != nil {
		return internal(err)
	}
	return nil
}

// DeleteSubtree removes targetID and everything below it, deepest levels
// first. The caller must have verified that ownerID owns targetID; children
// are only listed within ownerID's nodes.
//
// The removal is not atomic. On error part of the subtree may remain, and
// calling DeleteSubtree again removes whatever is left.
func (e *Engine) DeleteSubtree(ctx context.Context, ownerID, targetID string) error {
	start := time.Now()
	log := e.opts.logger.With(
		slog.String("owner_id", ownerID),
		slog.String("node_id", targetID),
	)

	removed, err := e.deleteLevel(ctx, ownerID, targetID, 0)
	if err != nil {
		log.ErrorContext(ctx, "subtree deletion failed",
			slog.Int("removed", removed),
			slog.Any("error", err),
		)
		return err
	}

	log.InfoContext(ctx, "subtree deleted",
		slog.Int("removed", removed),
		slog.Duration("took", time.Since(start)),
	)
	return nil
}

func (e *Engine) deleteLevel(ctx context.Context, ownerID, folderID string, depth int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, internal(err)
	}

	e.opts.logger.DebugContext(ctx, "deleting subtree level",
		slog.String("owner_id", ownerID),
		slog.String("node_id", folderID),
		slog.Int("depth", depth),
	)

	children, err := e.store.List(ctx, childrenOf(ownerID, folderID))
	if err != nil {
		return 0, internal(err)
	}

	removed := 0
	for _, child := range children {
		if NodeType(child.Metadata.Type) != Folder {
			continue
		}
		n, err := e.deleteLevel(ctx, ownerID, child.ID, depth+1)
		removed += n
		if err != nil {
			return removed, err
		}
	}

	n, err := e.store.DeleteMany(ctx, blobstore.Or(
		blobstore.Eq(blobstore.FieldParentFolderID, folderID),
		blobstore.Eq(blobstore.FieldID, folderID),
	))
	removed += n
	if err != nil {
		return removed, internal(err)
	}
	return removed, nil
}
