package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZapLogger_WritesLevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(BackendZap, "debug", &buf)
	require.NoError(t, err)

	ctx := context.Background()
	log.Debug(ctx, "dbg-line", "a", 1)
	log.With("req_id", "123").Error(ctx, "err-line", "b", 2)

	out := buf.String()
	require.Contains(t, out, "DEBUG")
	require.Contains(t, out, "dbg-line")
	require.Contains(t, out, "ERROR")
	require.Contains(t, out, "err-line")
	require.Contains(t, out, "req_id")
}

func TestZapLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(BackendZap, "error", &buf)
	require.NoError(t, err)

	log.Info(context.Background(), "quiet")
	require.NotContains(t, buf.String(), "quiet")
}

func TestZapLogger_BadLevel(t *testing.T) {
	_, err := New(BackendZap, "shouty", &bytes.Buffer{})
	require.Error(t, err)
}
