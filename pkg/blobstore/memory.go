package blobstore

import (
	"cmp"
	"context"
	"io"
	"slices"
	"sync"

	"github.com/dmitrymomot/drive/pkg/storage"
)

// Memory keeps metadata in a map and bytes in a storage.Storage.
type Memory struct {
	records map[string]Record
	opts    *options
	mu      sync.RWMutex
}

// NewMemory returns an empty in-process store.
func NewMemory(opts ...Option) *Memory {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.objects == nil {
		o.objects = storage.NewMemory()
	}

	return &Memory{records: make(map[string]Record), opts: o}
}

// Upload stores the bytes first, then publishes the record.
func (m *Memory) Upload(ctx context.Context, name string, meta Metadata, content io.Reader) (string, error) {
	id := m.opts.newID()

	size, contentType, err := putObject(ctx, m.opts.objects, id, content)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.records[id] = Record{
		ID:          id,
		Name:        name,
		Length:      size,
		ContentType: contentType,
		UploadDate:  m.opts.now().UTC(),
		Metadata:    meta,
	}
	m.mu.Unlock()

	return id, nil
}

// GetByID returns a copy of the record.
func (m *Memory) GetByID(_ context.Context, id string) (*Record, error) {
	m.mu.RLock()
	rec, ok := m.records[id]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

// List returns matches ordered by upload date, then id.
func (m *Memory) List(_ context.Context, f Filter) ([]Record, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	out := make([]Record, 0)
	for _, rec := range m.records {
		if f.Match(rec) {
			out = append(out, rec)
		}
	}
	m.mu.RUnlock()

	sortRecords(out)
	return out, nil
}

// DeleteMany removes matching records atomically, then their bytes.
func (m *Memory) DeleteMany(ctx context.Context, f Filter) (int, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	var ids []string
	for id, rec := range m.records {
		if f.Match(rec) {
			ids = append(ids, id)
			delete(m.records, id)
		}
	}
	m.mu.Unlock()

	return len(ids), deleteObjects(ctx, m.opts.objects, ids, m.opts.deleteConcurrency, m.opts.logger)
}

// OpenDownloadStream returns the blob's bytes.
func (m *Memory) OpenDownloadStream(ctx context.Context, id string) (io.ReadCloser, error) {
	rec, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return openObject(ctx, m.opts.objects, rec)
}

// ListOrphans returns up to limit non-root records whose parent is missing.
func (m *Memory) ListOrphans(_ context.Context, limit int) ([]Record, error) {
	m.mu.RLock()
	var out []Record
	for _, rec := range m.records {
		parent := rec.Metadata.ParentFolderID
		if parent == "" {
			continue
		}
		if _, ok := m.records[parent]; !ok {
			out = append(out, rec)
		}
	}
	m.mu.RUnlock()

	sortRecords(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Len returns the number of stored records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Healthcheck always succeeds.
func (m *Memory) Healthcheck() func(ctx context.Context) error {
	return func(context.Context) error { return nil }
}

func sortRecords(recs []Record) {
	slices.SortFunc(recs, func(a, b Record) int {
		if c := a.UploadDate.Compare(b.UploadDate); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

var (
	_ Store        = (*Memory)(nil)
	_ OrphanLister = (*Memory)(nil)
)
