package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("unreachable") }

func TestFanout(t *testing.T) {
	t.Parallel()

	t.Run("delivers past a failing handler", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		ok := slog.NewTextHandler(&buf, nil)
		log := slog.New(fanout{failingHandler{ok}, ok})

		log.Info("hello", "k", "v")
		assert.Contains(t, buf.String(), "msg=hello")
		assert.Contains(t, buf.String(), "k=v")
	})

	t.Run("respects per handler levels", func(t *testing.T) {
		t.Parallel()

		var info, errs bytes.Buffer
		f := fanout{
			slog.NewTextHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
			slog.NewTextHandler(&errs, &slog.HandlerOptions{Level: slog.LevelError}),
		}
		require.True(t, f.Enabled(context.Background(), slog.LevelInfo))
		require.False(t, f.Enabled(context.Background(), slog.LevelDebug))

		log := slog.New(f).With("component", "tree").WithGroup("node")
		log.Info("created", "id", "n1")
		log.Error("failed", "id", "n2")

		assert.Contains(t, info.String(), "component=tree")
		assert.Contains(t, info.String(), "node.id=n1")
		assert.NotContains(t, errs.String(), "n1")
		assert.Contains(t, errs.String(), "node.id=n2")
	})
}
