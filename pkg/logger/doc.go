// Package logger builds the slog loggers used across drive.
//
// Loggers write JSON to stdout by default and enrich every record with
// request-scoped attributes pulled from the context by [ContextExtractor]
// functions, such as the request id set by the HTTP layer and the account id
// set by [WithAccountID].
//
//	log := logger.New(
//		logger.WithLevel(slog.LevelDebug),
//		logger.WithExtractors(logger.AccountIDExtractor()),
//	)
//	ctx := logger.WithAccountID(ctx, "acc_1")
//	log.InfoContext(ctx, "folder created", slog.String("node_id", id))
//	// {"level":"INFO","msg":"folder created","node_id":"...","account_id":"acc_1"}
//
// [NewWithSentry] additionally forwards warnings and errors to Sentry when a
// DSN is configured, and falls back to plain output otherwise.
// [NewNope] returns a logger that discards everything and is the default for
// components constructed without a logger.
package logger
