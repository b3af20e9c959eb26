package blobstore

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/drive/pkg/db"
)

// DB is the subset of *pgxpool.Pool used by Postgres.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

const selectColumns = `SELECT id, name, owner_id, parent_folder_id, type, length, content_type, upload_date FROM blobs`

// Postgres keeps metadata in the blobs table and bytes in object storage
// under "blobs/{id}".
type Postgres struct {
	db   DB
	opts *options
}

// NewPostgres creates a store. WithObjectStorage is required.
func NewPostgres(conn DB, opts ...Option) (*Postgres, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if conn == nil || o.objects == nil {
		return nil, errors.New("blobstore: postgres store needs a connection and object storage")
	}
	return &Postgres{db: conn, opts: o}, nil
}

// Upload writes the bytes before the row exists, then inserts the row with
// its final length and content type. If the insert does not commit, the
// object is removed again; no object outlives its row.
func (p *Postgres) Upload(ctx context.Context, name string, meta Metadata, content io.Reader) (string, error) {
	id := p.opts.newID()

	size, contentType, err := putObject(ctx, p.opts.objects, id, content)
	if err != nil {
		return "", err
	}

	err = db.WithTx(ctx, p.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, insertBlob,
			id, name, meta.OwnerID, meta.ParentFolderID, meta.Type, size, contentType, p.opts.now().UTC(),
		)
		return err
	})
	if err != nil {
		if content != nil {
			p.discardObject(ctx, id)
		}
		return "", errors.Join(ErrUploadFailed, err)
	}

	return id, nil
}

const insertBlob = `INSERT INTO blobs (id, name, owner_id, parent_folder_id, type, length, content_type, upload_date)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// discardObject removes the bytes of an upload whose row was never stored.
// It runs even when ctx is already canceled.
func (p *Postgres) discardObject(ctx context.Context, id string) {
	ctx = context.WithoutCancel(ctx)
	if err := p.opts.objects.Delete(ctx, objectKey(id)); err != nil {
		p.opts.logger.WarnContext(ctx, "failed to remove object of failed upload",
			slog.String("blob_id", id),
			slog.Any("error", err),
		)
	}
}

// GetByID returns ErrNotFound when no row has the id.
func (p *Postgres) GetByID(ctx context.Context, id string) (*Record, error) {
	rec, err := scanRecord(p.db.QueryRow(ctx, selectColumns+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Join(ErrQueryFailed, err)
	}
	return rec, nil
}

// List returns matching rows ordered by upload date, then id.
func (p *Postgres) List(ctx context.Context, f Filter) ([]Record, error) {
	query, args, err := listQuery(f)
	if err != nil {
		return nil, err
	}

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	return collect(rows)
}

// DeleteMany removes matching rows in one statement, then deletes their
// objects with bounded parallelism.
func (p *Postgres) DeleteMany(ctx context.Context, f Filter) (int, error) {
	query, args, err := deleteQuery(f)
	if err != nil {
		return 0, err
	}

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return 0, errors.Join(ErrDeleteFailed, err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return 0, errors.Join(ErrDeleteFailed, err)
	}

	p.opts.logger.DebugContext(ctx, "deleted blob rows",
		slog.String("filter", f.String()),
		slog.Int("count", len(ids)),
	)

	return len(ids), deleteObjects(ctx, p.opts.objects, ids, p.opts.deleteConcurrency, p.opts.logger)
}

// OpenDownloadStream streams the blob's bytes from object storage.
func (p *Postgres) OpenDownloadStream(ctx context.Context, id string) (io.ReadCloser, error) {
	rec, err := p.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return openObject(ctx, p.opts.objects, rec)
}

// ListOrphans returns up to limit non-root rows whose parent row is gone.
func (p *Postgres) ListOrphans(ctx context.Context, limit int) ([]Record, error) {
	rows, err := p.db.Query(ctx, orphansQuery, limit)
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	return collect(rows)
}

// Healthcheck pings the database.
func (p *Postgres) Healthcheck() func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := p.db.Ping(ctx); err != nil {
			return errors.Join(ErrQueryFailed, err)
		}
		return nil
	}
}

const orphansQuery = selectColumns + ` c
WHERE c.parent_folder_id <> ''
  AND NOT EXISTS (SELECT 1 FROM blobs p WHERE p.id = c.parent_folder_id)
ORDER BY c.upload_date, c.id
LIMIT $1`

func listQuery(f Filter) (string, []any, error) {
	if err := f.Validate(); err != nil {
		return "", nil, err
	}
	var args []any
	where := f.sql(&args)
	return selectColumns + ` WHERE ` + where + ` ORDER BY upload_date, id`, args, nil
}

func deleteQuery(f Filter) (string, []any, error) {
	if err := f.Validate(); err != nil {
		return "", nil, err
	}
	var args []any
	where := f.sql(&args)
	return `DELETE FROM blobs WHERE ` + where + ` RETURNING id`, args, nil
}

func scanRecord(row pgx.Row) (*Record, error) {
	var r Record
	err := row.Scan(
		&r.ID, &r.Name,
		&r.Metadata.OwnerID, &r.Metadata.ParentFolderID, &r.Metadata.Type,
		&r.Length, &r.ContentType, &r.UploadDate,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func collect(rows pgx.Rows) ([]Record, error) {
	recs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		r, err := scanRecord(row)
		if err != nil {
			return Record{}, err
		}
		return *r, nil
	})
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	return recs, nil
}

var (
	_ Store        = (*Postgres)(nil)
	_ OrphanLister = (*Postgres)(nil)
)
