package xlog

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type logLevel string

const (
	LogLevelDebug logLevel = "DEBUG"
	LogLevelInfo  logLevel = "INFO"
	LogLevelWarn  logLevel = "WARN"
	LogLevelError logLevel = "ERROR"
)

func (lvl logLevel) zapLevel() zapcore.Level {
	switch lvl {
	case LogLevelInfo:
		return zapcore.InfoLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelError:
		return zapcore.ErrorLevel
	case LogLevelDebug:
		fallthrough
	default:
	}
	return zapcore.DebugLevel
}

func (lvl logLevel) String() string {
	return string(lvl)
}

type logEncoderType uint8

const (
	JSON logEncoderType = iota
	PlainText
	_encMax
)

type logOutWriterType uint8

const (
	StdOut logOutWriterType = iota
	StdErr
	testMemAsOut
	_writerMax
)

const (
	// EnvLogLevel is read when no level option is given.
	EnvLogLevel    = "XTREE_LOG_LVL"
	coreKeyIgnored = ""
)

var (
	writerLock = sync.RWMutex{}
	writerMap  = map[logOutWriterType]zapcore.WriteSyncer{
		StdOut: zapcore.Lock(os.Stdout),
		StdErr: zapcore.Lock(os.Stderr),
	}
	encoderMap = map[logEncoderType]func(cfg zapcore.EncoderConfig) zapcore.Encoder{
		JSON:      zapcore.NewJSONEncoder,
		PlainText: zapcore.NewConsoleEncoder,
	}
)

func getEncoderByType(typ logEncoderType) func(cfg zapcore.EncoderConfig) zapcore.Encoder {
	enc, ok := encoderMap[typ]
	if !ok {
		return zapcore.NewJSONEncoder
	}
	return enc
}

func getOutWriterByType(typ logOutWriterType) zapcore.WriteSyncer {
	writerLock.RLock()
	defer writerLock.RUnlock()
	out, ok := writerMap[typ]
	if !ok {
		return zapcore.Lock(os.Stdout)
	}
	return out
}

func setOutWriter(typ logOutWriterType, ws zapcore.WriteSyncer) {
	writerLock.Lock()
	defer writerLock.Unlock()
	writerMap[typ] = ws
}

type Banner interface {
	JSON() string
	PlainText() string
}

// xLogCore is a zap core that can be rebuilt with another encoder
// config, keeping its writer, level and key encoders.
type xLogCore interface {
	zapcore.Core
	withEncoderConfig(cfg zapcore.EncoderConfig) xLogCore
}

type XLogCoreConstructor func(
	zapcore.LevelEnabler,
	logEncoderType,
	zapcore.WriteSyncer,
	zapcore.LevelEncoder,
	zapcore.TimeEncoder,
) xLogCore

// XLogger mainly implemented by Uber zap logger.
//
// zap() is used to create child logger which will redefine
// the zapcore.Core, e.g. the fx event logger.
//
// ErrorStack prints the frames carried by infra.ErrorStack
// as a JSON array instead of the zap default stacktrace.
//
// Log format is not recommended, because it is low performance.
type XLogger interface {
	zap() *zap.Logger

	IncreaseLogLevel(level zapcore.Level)
	Level() string
	Sync() error
	Banner(banner Banner)

	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(err error, msg string, fields ...zap.Field)
	ErrorStack(err error, msg string, fields ...zap.Field)

	Logf(lvl zapcore.Level, format string, args ...any)
}
