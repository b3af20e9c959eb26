package tree

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/drive/pkg/blobstore"
	"github.com/dmitrymomot/drive/pkg/cache"
)

// ProvisionRoot creates the root folder of ownerID: a Folder with no parent
// whose name is the owner id and whose content is empty. It returns the root id.
//
// Unless the engine was built WithRootGuard, no existence check is made and
// a second call creates a second root.
func (e *Engine) ProvisionRoot(ctx context.Context, ownerID string) (string, error) {
	if ownerID == "" {
		return "", fmt.Errorf("%w: owner id is empty", ErrBadRequest)
	}

	if e.opts.rootGuard {
		roots, err := e.store.List(ctx, rootsOf(ownerID))
		if err != nil {
			return "", internal(err)
		}
		if len(roots) > 0 {
			return roots[0].ID, nil
		}
	}

	id, err := e.store.Upload(ctx, ownerID, blobstore.Metadata{
		OwnerID: ownerID,
		Type:    string(Folder),
	}, nil)
	if err != nil {
		return "", internal(err)
	}

	e.opts.logger.InfoContext(ctx, "root provisioned",
		slog.String("owner_id", ownerID),
		slog.String("node_id", id),
	)
	return id, nil
}

// GetRoot returns the id of ownerID's root. Zero or several roots are a
// broken invariant and yield ErrInternal.
func (e *Engine) GetRoot(ctx context.Context, ownerID string) (string, error) {
	if ownerID == "" {
		return "", ErrUnauthorized
	}
	if e.opts.rootCache == nil {
		return e.findRoot(ctx, ownerID)
	}
	return cache.GetOrSet(ctx, e.opts.rootCache, "tree-root/"+ownerID, 0, func(ctx context.Context) (string, error) {
		return e.findRoot(ctx, ownerID)
	})
}

func (e *Engine) findRoot(ctx context.Context, ownerID string) (string, error) {
	roots, err := e.store.List(ctx, rootsOf(ownerID))
	if err != nil {
		return "", internal(err)
	}
	if len(roots) != 1 {
		return "", fmt.Errorf("%w: account %q has %d root folders", ErrInternal, ownerID, len(roots))
	}
	return roots[0].ID, nil
}
