package xlog

import (
	"go.uber.org/zap/zapcore"
)

var _ xLogCore = (*streamCore)(nil)

// streamCore encodes the entries into a single write syncer.
type streamCore struct {
	zapcore.Core
	lvlEnabler zapcore.LevelEnabler
	lvlEnc     zapcore.LevelEncoder
	tsEnc      zapcore.TimeEncoder
	ws         zapcore.WriteSyncer
	newEnc     func(cfg zapcore.EncoderConfig) zapcore.Encoder
	fields     []zapcore.Field
}

func newStreamCore(
	lvlEnabler zapcore.LevelEnabler,
	newEnc func(cfg zapcore.EncoderConfig) zapcore.Encoder,
	ws zapcore.WriteSyncer,
	lvlEnc zapcore.LevelEncoder,
	tsEnc zapcore.TimeEncoder,
	cfg zapcore.EncoderConfig,
) *streamCore {
	sc := &streamCore{
		lvlEnabler: lvlEnabler,
		lvlEnc:     lvlEnc,
		tsEnc:      tsEnc,
		ws:         ws,
		newEnc:     newEnc,
	}
	cfg.EncodeLevel, cfg.EncodeTime = lvlEnc, tsEnc
	sc.Core = zapcore.NewCore(newEnc(cfg), ws, lvlEnabler)
	return sc
}

// Check registers the stream core itself, so the wrappers made by
// withEncoderConfig are the ones receiving the entries.
func (sc *streamCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if sc.Enabled(ent.Level) {
		return ce.AddCore(ent, sc)
	}
	return ce
}

func (sc *streamCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *sc
	clone.fields = append(sc.fields[:len(sc.fields):len(sc.fields)], fields...)
	clone.Core = sc.Core.With(fields)
	return &clone
}

// withEncoderConfig keeps the context fields added by With.
func (sc *streamCore) withEncoderConfig(cfg zapcore.EncoderConfig) xLogCore {
	nc := newStreamCore(sc.lvlEnabler, sc.newEnc, sc.ws, sc.lvlEnc, sc.tsEnc, cfg)
	if len(sc.fields) > 0 {
		nc.fields = sc.fields
		nc.Core = nc.Core.With(sc.fields)
	}
	return nc
}

var (
	// entryEncoderCfg is used by the application logs.
	entryEncoderCfg = zapcore.EncoderConfig{
		MessageKey:    "msg",
		LevelKey:      "lvl",
		TimeKey:       "ts",
		CallerKey:     "callAt",
		EncodeCaller:  zapcore.ShortCallerEncoder,
		FunctionKey:   "fn",
		NameKey:       "component",
		EncodeName:    zapcore.FullNameEncoder,
		StacktraceKey: coreKeyIgnored,
	}
	// componentEncoderCfg drops the call sites, framework components
	// (fx) report their own.
	componentEncoderCfg = zapcore.EncoderConfig{
		MessageKey:    "msg",
		LevelKey:      "lvl",
		TimeKey:       "ts",
		CallerKey:     coreKeyIgnored,
		FunctionKey:   coreKeyIgnored,
		NameKey:       "component",
		EncodeName:    zapcore.FullNameEncoder,
		StacktraceKey: coreKeyIgnored,
	}
)
