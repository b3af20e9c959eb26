package blobstore

import (
	"embed"
	"io/fs"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrations returns the goose migrations for the blobs table, rooted so
// they can be passed to db.Migrate directly.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		panic(err) // embedded path is fixed at compile time
	}
	return sub
}
