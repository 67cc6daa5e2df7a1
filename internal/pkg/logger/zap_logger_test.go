package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestObservedLogger_ModuleAndDetails(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewObservedLogger(core)

	l.Info("DIALOGUE", "Turn processed", map[string]interface{}{"turn": 3})
	l.Error("DIALOGUE", "Turn aborted", map[string]interface{}{"error": "redis down"})
	l.Debug("DIALOGUE", "nil details", nil)

	entries := logs.All()
	require.Len(t, entries, 3)

	ctx := entries[0].ContextMap()
	assert.Equal(t, "DIALOGUE", ctx["module"])
	assert.Equal(t, map[string]interface{}{"turn": 3}, ctx["details"])

	assert.Equal(t, "redis down", entries[1].ContextMap()["error_ref"])
	assert.Equal(t, map[string]interface{}{}, entries[2].ContextMap()["details"])
}

func TestZapLogger_FileSink(t *testing.T) {
	l := NewZapLogger(Options{FilePath: filepath.Join(t.TempDir(), "app.log"), Level: "warn", IsProd: true})
	l.Warn("TEST", "written", nil)
	_ = l.Sync()
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Info("TEST", "dropped", nil)
	assert.NoError(t, l.Sync())
}
