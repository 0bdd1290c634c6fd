// Package log wraps zap.SugaredLogger behind a narrow interface, the
// way drand's common/log package does, so node.Engine and
// coordinator.Coordinator depend on a small logging contract rather
// than a concrete zap type.
package log

import (
	"context"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type log struct {
	*zap.SugaredLogger
}

// Logger is the logging contract injected into the node and
// coordinator packages.
//
//nolint:interfacebloat
type Logger interface {
	Debug(keyvals ...interface{})
	Info(keyvals ...interface{})
	Warn(keyvals ...interface{})
	Error(keyvals ...interface{})
	Debugw(msg string, keyvals ...interface{})
	Infow(msg string, keyvals ...interface{})
	Warnw(msg string, keyvals ...interface{})
	Errorw(msg string, keyvals ...interface{})
	With(args ...interface{}) Logger
	Named(s string) Logger
}

func (l *log) With(args ...interface{}) Logger {
	return &log{l.SugaredLogger.With(args...)}
}

func (l *log) Named(s string) Logger {
	return &log{l.SugaredLogger.Named(s)}
}

const (
	DebugLevel = int(zapcore.DebugLevel)
	InfoLevel  = int(zapcore.InfoLevel)
	WarnLevel  = int(zapcore.WarnLevel)
	ErrorLevel = int(zapcore.ErrorLevel)
)

// DefaultLevel is used by DefaultLogger; set FROSTD_DEBUG=1 to raise it
// before the first call to DefaultLogger.
var DefaultLevel = InfoLevel

func init() {
	if os.Getenv("FROSTD_DEBUG") == "1" {
		DefaultLevel = DebugLevel
	}
}

var defaultOnce sync.Once
var defaultLogger Logger

// DefaultLogger returns a process-wide JSON logger at DefaultLevel.
func DefaultLogger() Logger {
	defaultOnce.Do(func() {
		defaultLogger = &log{newZapLogger(os.Stdout, DefaultLevel).Sugar()}
	})
	return defaultLogger
}

// New returns a fresh logger writing to output at level.
func New(output zapcore.WriteSyncer, level int) Logger {
	return &log{newZapLogger(output, level).Sugar()}
}

func newZapLogger(output zapcore.WriteSyncer, level int) *zap.Logger {
	if output == nil {
		output = os.Stdout
	}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), output, zapcore.Level(level))
	return zap.New(core, zap.WithCaller(true))
}

type ctxKey struct{}

// ToContext attaches l to ctx.
func ToContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContextOrDefault returns the logger attached to ctx, or
// DefaultLogger if none was attached.
func FromContextOrDefault(ctx context.Context) Logger {
	if l, ok := ctx.Value(ctxKey{}).(Logger); ok {
		return l
	}
	return DefaultLogger()
}
