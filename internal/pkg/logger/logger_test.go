package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/Gopher0727/Ideario/config"
)

func TestNewStdoutLogger(t *testing.T) {
	l, err := New(&config.LoggingConfig{Level: "debug", Format: "text", Output: "stdout"})
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	l.Info("stdout logger works")
}

func TestNewJSONFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := New(&config.LoggingConfig{Level: "warn", Format: "json", Output: "file", FilePath: path})
	require.NoError(t, err)

	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	l.Warn("written to file")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"written to file"`)
	assert.Contains(t, string(data), `"level":"warn"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.FatalLevel, parseLevel("fatal"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("nonsense"))
}

func TestWithTraceIDContext(t *testing.T) {
	t.Run("keeps a provided trace ID", func(t *testing.T) {
		ctx := WithTraceID(context.Background(), "trace-123")
		assert.Equal(t, "trace-123", GetTraceID(ctx))
	})

	t.Run("mints a UUID when none given", func(t *testing.T) {
		ctx := WithTraceID(context.Background(), "")
		assert.Len(t, GetTraceID(ctx), 36)
	})

	t.Run("absent trace ID reads as empty", func(t *testing.T) {
		assert.Empty(t, GetTraceID(context.Background()))
	})
}

func TestWithContextStampsEntries(t *testing.T) {
	l, err := NewDevelopment()
	require.NoError(t, err)

	ctx := WithTraceID(context.Background(), "abc")
	stamped := l.WithContext(ctx)
	require.NotNil(t, stamped)
	assert.NotSame(t, l, stamped)

	// No trace ID in the context returns the receiver unchanged.
	assert.Same(t, l, l.WithContext(context.Background()))
}
