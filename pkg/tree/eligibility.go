package tree

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/drive/pkg/cache"
)

func eligibilityKey(blobID string) string {
	return "blob-download/" + blobID
}

// IssueEligibility returns a short-lived token that lets anyone holding it
// download blobID without authenticating. Issuing again replaces the
// previous token.
func (e *Engine) IssueEligibility(ctx context.Context, requesterID, blobID string) (string, error) {
	n, err := e.owned(ctx, requesterID, blobID)
	if err != nil {
		return "", err
	}
	if n.Type != File {
		return "", fmt.Errorf("%w: %q is a folder", ErrBadRequest, blobID)
	}

	token := e.opts.newToken()
	if err := e.tokens.Set(ctx, eligibilityKey(blobID), token, e.opts.eligibilityTTL); err != nil {
		return "", internal(err)
	}

	e.opts.logger.DebugContext(ctx, "download eligibility issued",
		slog.String("owner_id", requesterID),
		slog.String("node_id", blobID),
	)
	return token, nil
}

// ConsumeEligibility opens blobID if token matches the latest token issued
// for it and has not expired. The token is not invalidated: it keeps
// working until its TTL runs out.
func (e *Engine) ConsumeEligibility(ctx context.Context, blobID, token string) (*Content, error) {
	cached, err := e.tokens.Get(ctx, eligibilityKey(blobID))
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, fmt.Errorf("%w: no valid download token for %q", ErrUnauthorized, blobID)
		}
		return nil, internal(err)
	}
	if token == "" || subtle.ConstantTimeCompare([]byte(cached), []byte(token)) != 1 {
		return nil, fmt.Errorf("%w: download token mismatch for %q", ErrUnauthorized, blobID)
	}

	n, err := e.node(ctx, blobID)
	if err != nil {
		return nil, err
	}
	return e.open(ctx, n)
}
