package tree

import (
	"context"
	"errors"

	"github.com/dmitrymomot/drive/pkg/blobstore"
	"github.com/dmitrymomot/drive/pkg/cache"
)

// Engine maintains per-account file trees on top of a flat blob store.
// All operations are stateless; concurrent use is safe.
type Engine struct {
	store      blobstore.Store
	tokens     cache.Cache[string]
	dispatcher Dispatcher
	opts       *options
}

// NewEngine wires the engine. tokens holds download eligibility tokens.
func NewEngine(store blobstore.Store, tokens cache.Cache[string], opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, errors.New("tree: blob store is required")
	}
	if tokens == nil {
		return nil, errors.New("tree: token cache is required")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	e := &Engine{store: store, tokens: tokens, opts: o}
	e.dispatcher = o.dispatcher
	if e.dispatcher == nil {
		e.dispatcher = NewLocalDispatcher(e, append([]LocalOption{withLocalLogger(o.logger)}, o.localOpts...)...)
	}

	return e, nil
}

// Wait blocks until deletions started by the in-process dispatcher finish.
// It returns immediately for queue-backed dispatchers.
func (e *Engine) Wait() {
	if w, ok := e.dispatcher.(interface{ Wait() }); ok {
		w.Wait()
	}
}

// Shutdown returns a hook that waits for in-process deletions to finish or
// ctx to expire. Queue-backed dispatchers need no waiting.
func (e *Engine) Shutdown() func(ctx context.Context) error {
	if s, ok := e.dispatcher.(interface {
		Shutdown() func(context.Context) error
	}); ok {
		return s.Shutdown()
	}
	return func(context.Context) error { return nil }
}

// node fetches a node, mapping a missing record to ErrNotFound.
func (e *Engine) node(ctx context.Context, id string) (*Node, error) {
	if id == "" {
		return nil, notFound(id)
	}
	rec, err := e.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, notFound(id)
		}
		return nil, internal(err)
	}
	return nodeFromRecord(rec), nil
}

// owned fetches a node and checks that requesterID owns it.
func (e *Engine) owned(ctx context.Context, requesterID, id string) (*Node, error) {
	if requesterID == "" {
		return nil, ErrUnauthorized
	}
	n, err := e.node(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.OwnerID != requesterID {
		return nil, forbidden(id)
	}
	return n, nil
}
