package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	zl, lg := New(Options{Level: 0, Output: &buf})
	lg.Info("search applied", "gen", 3)
	require.NoError(t, zl.Sync())

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "search applied", lines[0][MessageKey])
	assert.Equal(t, float64(3), lines[0]["gen"])
	assert.Contains(t, lines[0], TimeStampKey)
	assert.Contains(t, lines[0], VersionKey)
	assert.Contains(t, lines[0], CommitKey)
}

func TestDebugLevelGatesVerbosity(t *testing.T) {
	tests := []struct {
		name  string
		level int8
		want  int
	}{
		{"info drops V(1)", 0, 1},
		{"debug keeps V(1)", -1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			_, lg := New(Options{Level: tt.level, Output: &buf})
			lg.Info("visible")
			lg.V(1).Info("trace")
			assert.Len(t, decodeLines(t, &buf), tt.want)
		})
	}
}

func TestNewNilOutputDiscards(t *testing.T) {
	_, lg := New(Options{})
	assert.NotPanics(t, func() { lg.Info("nowhere") })
}

func TestSetupInstallsOnce(t *testing.T) {
	first := Setup(Options{Output: &bytes.Buffer{}})
	second := Setup(Options{Level: -1})
	assert.Same(t, first, second)
	assert.Same(t, first, GetGlobalLogger())
}

func TestContextPropagation(t *testing.T) {
	ctx := context.Background()
	lg := logr.Discard()

	ctx2 := WithLogger(ctx, &lg)
	assert.Same(t, &lg, FromContext(ctx2))
	assert.Equal(t, ctx2, WithLogger(ctx2, &lg), "same logger keeps the context")

	other := logr.Discard()
	assert.Same(t, &other, FromContext(WithLogger(ctx2, &other)))
}

func TestFromContextFallsBack(t *testing.T) {
	orig := globalLogrLogger
	defer func() { globalLogrLogger = orig }()

	globalLogrLogger = nil
	assert.Same(t, &defaultNoopLogger, FromContext(context.Background()))

	lg := logr.Discard()
	globalLogrLogger = &lg
	assert.Same(t, &lg, FromContext(context.Background()))
}

func TestSyncWithoutLogger(t *testing.T) {
	orig := globalZapLogger
	globalZapLogger = nil
	defer func() { globalZapLogger = orig }()
	assert.NotPanics(t, Sync)
}

func TestIsIgnorableSyncError(t *testing.T) {
	assert.True(t, isIgnorableSyncError(&os.PathError{Op: "sync", Path: "/dev/stderr", Err: syscall.EINVAL}))
	assert.True(t, isIgnorableSyncError(errors.New("sync: The handle is invalid.")))
	assert.False(t, isIgnorableSyncError(errors.New("disk full")))
}

func TestWithValues(t *testing.T) {
	lg := logr.Discard()
	got := WithValues(&lg, "k", "v")
	require.NotNil(t, got)
	assert.NotSame(t, &lg, got)
}

func TestOpenLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qbar.log")
	f, err := OpenLogFile(path)
	require.NoError(t, err)
	zl, lg := New(Options{Output: f})
	lg.Info("to file")
	_ = zl.Sync()
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")

	_, err = OpenLogFile(filepath.Join(t.TempDir(), "missing", "x.log"))
	assert.Error(t, err)
}
