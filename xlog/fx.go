package xlog

import (
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ fxevent.Logger = (*FxXLogger)(nil)

// FxXLogger prints the fx application lifecycle by XLogger.
// The hook and provide details are debug level, the failures are error level.
type FxXLogger struct {
	logger XLogger
}

// outcome logs the failure at error level, otherwise the success message
// at debug level if there is one.
func (l *FxXLogger) outcome(err error, failed, succeeded string, fields ...zap.Field) {
	if err != nil {
		l.logger.Error(err, failed, fields...)
		return
	}
	if len(succeeded) > 0 {
		l.logger.Debug(succeeded, fields...)
	}
}

func (l *FxXLogger) LogEvent(event fxevent.Event) {
	if l == nil || l.logger == nil {
		return
	}

	switch e := event.(type) {
	case *fxevent.OnStartExecuting:
		l.logger.Debug("HOOK OnStart",
			zap.String("function", e.FunctionName),
			zap.String("caller", e.CallerName),
		)
	case *fxevent.OnStartExecuted:
		l.outcome(e.Err, "HOOK OnStart failed", "HOOK OnStart successfully",
			zap.String("function", e.FunctionName),
			zap.String("caller", e.CallerName),
			zap.Duration("in", e.Runtime),
		)
	case *fxevent.OnStopExecuting:
		l.logger.Debug("HOOK OnStop",
			zap.String("function", e.FunctionName),
			zap.String("caller", e.CallerName),
		)
	case *fxevent.OnStopExecuted:
		l.outcome(e.Err, "HOOK OnStop failed", "HOOK OnStop successfully",
			zap.String("function", e.FunctionName),
			zap.String("caller", e.CallerName),
			zap.Duration("in", e.Runtime),
		)
	case *fxevent.Supplied:
		l.outcome(e.Err, "SUPPLY failed", "SUPPLY", zap.String("type", e.TypeName))
	case *fxevent.Provided:
		l.outcome(e.Err, "PROVIDE failed", "PROVIDE",
			zap.String("constructor", e.ConstructorName),
			zap.Strings("types", e.OutputTypeNames),
		)
	case *fxevent.Invoking:
		l.logger.Debug("INVOKING", zap.String("function", e.FunctionName))
	case *fxevent.Invoked:
		l.outcome(e.Err, "INVOKE failed", "",
			zap.String("function", e.FunctionName),
			zap.String("trace", e.Trace),
		)
	case *fxevent.Stopping:
		l.logger.Info("STOPPING", zap.String("signal", e.Signal.String()))
	case *fxevent.Stopped:
		l.outcome(e.Err, "Failed to stop cleanly", "")
	case *fxevent.RollingBack:
		l.logger.Warn("Start failed, rolling back", zap.Error(e.StartErr))
	case *fxevent.RolledBack:
		l.outcome(e.Err, "Couldn't roll back cleanly", "")
	case *fxevent.Started:
		l.outcome(e.Err, "Failed to start", "RUNNING")
	case *fxevent.LoggerInitialized:
		l.outcome(e.Err, "Failed to initialize custom logger", "LOGGER initialized",
			zap.String("constructor", e.ConstructorName),
		)
	}
}

// NewFxXLogger derives a child logger named "Fx" which drops the caller
// and function keys. Foreign loggers keep their own cores.
func NewFxXLogger(logger XLogger) *FxXLogger {
	if logger == nil {
		return &FxXLogger{}
	}
	l := &xLogger{}
	if parent, ok := logger.(*xLogger); ok {
		l.dynamicLevelEnabler = parent.dynamicLevelEnabler
		l.ws, l.encoder = parent.ws, parent.encoder
	} else {
		l.dynamicLevelEnabler = zap.NewAtomicLevelAt(getLogLevelOrDefault(logger.Level()))
		l.ws = getOutWriterByType(StdErr)
	}
	l.logger.Store(logger.
		zap().
		Named("Fx").
		WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			if xc, ok := core.(xLogCore); ok {
				return xc.withEncoderConfig(componentEncoderCfg)
			}
			return core
		})),
	)
	return &FxXLogger{logger: l}
}
