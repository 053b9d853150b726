package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"fatal": zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestFromContext verifies the global fallback and context round-trip.
func TestFromContext(t *testing.T) {
	t.Parallel()

	require.Same(t, global, FromContext(context.Background()))
	//nolint:staticcheck // Explicitly testing nil-context behavior.
	require.Same(t, global, FromContext(nil))

	named := New(nil).Named("test")
	ctx := ToContext(context.Background(), named)
	require.Same(t, named, FromContext(ctx))
}
