package xlog

import (
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

var _ xLogCore = (teeCore)(nil)

// teeCore duplicates the entries to every core. Unlike zapcore.NewTee
// it stays an xLogCore after With, so child loggers can still be
// re-encoded.
type teeCore []xLogCore

func newTeeCore(cores ...xLogCore) xLogCore {
	if len(cores) == 1 {
		return cores[0]
	}
	return teeCore(cores)
}

func (tc teeCore) With(fields []zapcore.Field) zapcore.Core {
	clone := make(teeCore, 0, len(tc))
	for _, c := range tc {
		if wc, ok := c.With(fields).(xLogCore); ok {
			clone = append(clone, wc)
		}
	}
	return clone
}

func (tc teeCore) Enabled(lvl zapcore.Level) bool {
	for _, c := range tc {
		if c.Enabled(lvl) {
			return true
		}
	}
	return false
}

func (tc teeCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	for _, c := range tc {
		ce = c.Check(ent, ce)
	}
	return ce
}

func (tc teeCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	var err error
	for _, c := range tc {
		err = multierr.Append(err, c.Write(ent, fields))
	}
	return err
}

func (tc teeCore) Sync() error {
	var err error
	for _, c := range tc {
		err = multierr.Append(err, c.Sync())
	}
	return err
}

func (tc teeCore) withEncoderConfig(cfg zapcore.EncoderConfig) xLogCore {
	cores := make(teeCore, 0, len(tc))
	for _, c := range tc {
		cores = append(cores, c.withEncoderConfig(cfg))
	}
	return cores
}
