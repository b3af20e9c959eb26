// Package tree builds per-account file hierarchies on a flat blob store.
//
// The store knows nothing about folders. Every node is a blob whose metadata
// carries its owner, its type (File or Folder) and the id of its parent
// folder; the account root is the single Folder with an empty parent. All
// structure is enforced here:
//
//   - children can only be created under an existing Folder of the same owner
//   - the parent of a node never changes
//   - folders are deleted depth first, one bulk delete per level
//
// # Usage
//
//	engine, err := tree.NewEngine(store, tokens, tree.WithLogger(log))
//
//	rootID, _ := engine.ProvisionRoot(ctx, accountID)
//	docs, _ := engine.CreateFolder(ctx, accountID, rootID, "docs")
//	file, _ := engine.CreateFile(ctx, accountID, docs.ID, "a.txt", r)
//	path, _ := engine.ResolvePath(ctx, accountID, file.ID) // [root, docs, a.txt]
//
//	_ = engine.RequestDelete(ctx, accountID, docs.ID) // accepted, runs in background
//
// # Deletion
//
// RequestDelete validates ownership inline and passes the work to a
// [Dispatcher]. The default [LocalDispatcher] runs it in a goroutine;
// [JobDispatcher] enqueues a [DeleteSubtreeTask] on the job queue instead.
// [SweepTask] periodically removes subtrees left without a parent.
//
// # Downloads
//
// IssueEligibility stores a random token for a file for 60 seconds.
// ConsumeEligibility accepts the token any number of times until it expires.
//
// # Errors
//
// Every error matches one of [ErrNotFound], [ErrForbidden], [ErrBadRequest],
// [ErrUnauthorized] or [ErrInternal].
package tree
