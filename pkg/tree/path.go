package tree

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// ResolvePath returns the chain of nodes from the account root down to
// targetID, root first.
//
// Parents are fetched one at a time. An ancestor that disappears mid-walk
// (concurrent deletion) yields ErrNotFound; a parent chain that revisits a
// node yields ErrInternal instead of looping.
func (e *Engine) ResolvePath(ctx context.Context, requesterID, targetID string) ([]Node, error) {
	target, err := e.owned(ctx, requesterID, targetID)
	if err != nil {
		return nil, err
	}

	path := []Node{*target}
	seen := map[string]struct{}{target.ID: {}}

	for cur := target; !cur.IsRoot(); {
		if err := ctx.Err(); err != nil {
			return nil, internal(err)
		}

		parentID := cur.ParentFolderID
		if _, ok := seen[parentID]; ok {
			return nil, fmt.Errorf("%w: parent chain of %q loops at %q", ErrInternal, targetID, parentID)
		}

		parent, err := e.node(ctx, parentID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("%w: ancestor %q of %q", ErrNotFound, parentID, targetID)
			}
			return nil, err
		}

		seen[parent.ID] = struct{}{}
		path = append(path, *parent)
		cur = parent
	}

	slices.Reverse(path)
	return path, nil
}
