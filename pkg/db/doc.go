// Package db wraps [github.com/jackc/pgx/v5/pgxpool] with the pieces the
// service needs at startup and runtime: a retrying [Connect], [Migrate] on
// top of [github.com/pressly/goose/v3], [WithTx], and closures for the
// health and shutdown hooks.
//
//	pool, err := db.Connect(ctx, cfg.Database)
//	if err != nil {
//		return err
//	}
//	if err := db.Migrate(ctx, pool, blobstore.Migrations(), cfg.Database.MigrationsTable, log); err != nil {
//		return err
//	}
//
// Configuration is read from DATABASE_* environment variables, see [Config].
// Errors are joined with the package sentinels, so errors.Is works on both
// the sentinel and the pgx cause.
package db
