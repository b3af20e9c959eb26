// Package drive serves per-account file trees stored as flat blobs.
//
// The tree semantics live in pkg/tree; this package assembles them into an
// HTTP application. NewAPI returns an App with the /api/storage routes, the
// standard middleware and JSON error rendering:
//
//	store, _ := blobstore.NewPostgres(pool, blobstore.WithObjectStorage(s3))
//	engine, _ := tree.NewEngine(store, cache.NewMemory[string](), tree.WithRootGuard())
//
//	app := drive.NewAPI(engine,
//	    drive.WithLogger("drive", middlewares.RequestIDExtractor(), logger.AccountIDExtractor()),
//	    drive.WithHealthChecks(drive.WithReadinessCheck("db", db.Healthcheck(pool))),
//	)
//	if err := app.Run(":8080", drive.ShutdownHook(db.Shutdown(pool))); err != nil {
//	    log.Fatal(err)
//	}
//
// Callers are identified by the upstream gateway. By default the account id
// is read from the X-Account-ID header; NewAPIWithResolver accepts any other
// AccountResolver.
//
// # Routes
//
//	POST   /api/storage/root               provision the account root (201)
//	GET    /api/storage/root               root folder id
//	GET    /api/storage/list?folderId=     children of a folder
//	POST   /api/storage/folders            create a folder
//	POST   /api/storage/upload             upload a file (multipart)
//	GET    /api/storage/{id}               node details
//	GET    /api/storage/{id}/path          root-to-node path
//	GET    /api/storage/{id}/content       authenticated download
//	DELETE /api/storage/{id}               schedule subtree deletion (202)
//	POST   /api/storage/{id}/eligibility   issue a download token
//	GET    /api/storage/{id}/download      download with ?token=, no account needed
package drive
