package xlog

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestStreamCore(t *testing.T) {
	w := newTestMemOut(t)
	lvlEnabler := zap.NewAtomicLevelAt(LogLevelDebug.zapLevel())
	// Unknown encoder type falls back to JSON.
	sc := newStreamCore(
		&lvlEnabler,
		getEncoderByType(logEncoderType(6)),
		getOutWriterByType(testMemAsOut),
		zapcore.CapitalLevelEncoder,
		zapcore.ISO8601TimeEncoder,
		entryEncoderCfg,
	)

	require.True(t, sc.Enabled(zapcore.DebugLevel))
	lvlEnabler.SetLevel(zapcore.ErrorLevel)
	require.False(t, sc.Enabled(zapcore.WarnLevel))
	require.True(t, sc.Enabled(zapcore.ErrorLevel))
	require.Nil(t, sc.Check(zapcore.Entry{Level: zapcore.DebugLevel}, nil))
	lvlEnabler.SetLevel(zapcore.DebugLevel)

	l := zap.New(sc, zap.AddCaller()).Named("rbtree")
	l.Debug("rotate", zap.Int("key", 7))
	require.NoError(t, sc.Sync())
	require.Contains(t, string(w.data), `"component":"rbtree"`)
	require.Contains(t, string(w.data), `"key":7`)
	require.Contains(t, string(w.data), `"callAt":"xlog/common_core_test.go`)
}

func TestStreamCore_WithEncoderConfig(t *testing.T) {
	w := newTestMemOut(t)
	lvlEnabler := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	sc := newStreamCore(
		&lvlEnabler,
		zapcore.NewJSONEncoder,
		getOutWriterByType(testMemAsOut),
		zapcore.CapitalLevelEncoder,
		zapcore.ISO8601TimeEncoder,
		entryEncoderCfg,
	)
	child := sc.With([]zap.Field{zap.String("policy", "avl")})
	xc, ok := child.(xLogCore)
	require.True(t, ok)

	// The context field survives, the call site is dropped.
	wrapped := xc.withEncoderConfig(componentEncoderCfg)
	zap.New(wrapped, zap.AddCaller()).Info("rebalanced")
	require.NoError(t, wrapped.Sync())
	lines := w.lines()
	require.Len(t, lines, 1)
	require.Contains(t, lines[0], `"policy":"avl"`)
	require.Contains(t, lines[0], `"lvl":"INFO"`)
	require.NotContains(t, lines[0], "callAt")

	// The level is still shared with the origin core.
	lvlEnabler.SetLevel(zapcore.ErrorLevel)
	require.False(t, wrapped.Enabled(zapcore.InfoLevel))

	// The parent does not see the fields of the child.
	w.Reset()
	lvlEnabler.SetLevel(zapcore.InfoLevel)
	zap.New(sc).Info("plain")
	require.NotContains(t, w.lines()[0], "policy")
}
