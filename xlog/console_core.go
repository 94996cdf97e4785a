package xlog

import (
	"io"

	"go.uber.org/zap/zapcore"
)

// newConsoleCore is the default core constructor. The writer is one of
// the process streams or the output given by WithXLoggerOutput.
func newConsoleCore(
	lvlEnabler zapcore.LevelEnabler,
	encoder logEncoderType,
	ws zapcore.WriteSyncer,
	lvlEnc zapcore.LevelEncoder,
	tsEnc zapcore.TimeEncoder,
) xLogCore {
	if ws == nil {
		return nil
	}
	return newStreamCore(lvlEnabler, getEncoderByType(encoder), ws, lvlEnc, tsEnc, entryEncoderCfg)
}

// DefaultXLogCore writes to the logger's own writer.
var DefaultXLogCore XLogCoreConstructor = newConsoleCore

// NewOutputCore writes a copy of the entries to w, using the level and
// the encoders of the logger.
func NewOutputCore(w io.Writer) XLogCoreConstructor {
	ws := zapcore.Lock(zapcore.AddSync(w))
	return func(
		lvlEnabler zapcore.LevelEnabler,
		encoder logEncoderType,
		_ zapcore.WriteSyncer,
		lvlEnc zapcore.LevelEncoder,
		tsEnc zapcore.TimeEncoder,
	) xLogCore {
		return newConsoleCore(lvlEnabler, encoder, ws, lvlEnc, tsEnc)
	}
}
