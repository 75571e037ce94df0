package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webdevsha/permitak/internal/infrastructure/config"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"fatal":   zapcore.FatalLevel,
		"bogus":   zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l := New(config.LogConfig{Level: "info", Format: "json", Output: path})
	l.Info("hello")
	l.Debug("dropped")
	Sync(l)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.NotContains(t, string(data), "dropped")
}

func TestNew_UnwritablePathFallsBack(t *testing.T) {
	l := New(config.LogConfig{Level: "info", Output: filepath.Join(t.TempDir(), "missing", "x.log")})
	require.NotNil(t, l)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}

func TestForEnvironment(t *testing.T) {
	assert.False(t, ForEnvironment("production").Core().Enabled(zapcore.DebugLevel))
	assert.True(t, ForEnvironment("development").Core().Enabled(zapcore.DebugLevel))
}
