package log

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

// Тесты меняют slog.Default(), поэтому без t.Parallel().

func bufLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

func TestFrom_FallsBackToDefault(t *testing.T) {
	old := slog.Default()
	t.Cleanup(func() { slog.SetDefault(old) })

	def, _ := bufLogger()
	slog.SetDefault(def)

	require.Same(t, def, From(context.Background()))
	require.Same(t, def, From(context.WithValue(context.Background(), ctxKey{}, "not-a-logger")))

	var nilLogger *slog.Logger
	require.Same(t, def, From(Into(context.Background(), nilLogger)))
}

func TestInto_ChildShadowsParent(t *testing.T) {
	parentLogger, _ := bufLogger()
	childLogger, _ := bufLogger()

	parent := Into(context.Background(), parentLogger)
	child := Into(parent, childLogger)

	require.Same(t, childLogger, From(child))
	require.Same(t, parentLogger, From(parent))
}

func TestWith_AddsAttrs(t *testing.T) {
	l, buf := bufLogger()

	ctx := With(Into(context.Background(), l), "request_id", "r-1")
	ctx = With(ctx, "user_id", "u-1")
	From(ctx).Info("hello")

	out := buf.String()
	require.Contains(t, out, "request_id=r-1")
	require.Contains(t, out, "user_id=u-1")
	require.Contains(t, out, "msg=hello")
}
