package logger

import (
	"context"
	"log/slog"
)

// AccountIDKey is the context key holding the authenticated account id.
type AccountIDKey struct{}

// WithAccountID stores the authenticated account id in ctx so that
// AccountIDExtractor can attach it to every log entry.
func WithAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, AccountIDKey{}, accountID)
}

// AccountIDFromContext returns the account id stored by WithAccountID.
func AccountIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(AccountIDKey{}).(string)
	return v, ok && v != ""
}

// AccountIDExtractor adds "account_id" to log entries when present in context.
func AccountIDExtractor() ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := AccountIDFromContext(ctx); ok {
			return slog.String("account_id", v), true
		}
		return slog.Attr{}, false
	}
}
