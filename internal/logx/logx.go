// Package logx extends structured logging to allow multiple independent
// scopes (one per package/subsystem), each carrying the process's
// instance id, in the spirit of minilog's named-logger model — backed by
// zap instead of the standard log package.
package logx

import (
	"sync"

	"github.com/sixafter/nanoid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	instanceOnce sync.Once
	instanceID   string
)

// InstanceID returns a short id generated once per process, attached to
// every log line so that log aggregation can separate concurrently
// running instances.
func InstanceID() string {
	instanceOnce.Do(func() {
		id, err := nanoid.New()
		if err != nil {
			id = "unknown"
		}
		instanceID = id
	})
	return instanceID
}

// Logger is a named, leveled logging scope. Named returns one of these
// for a given subsystem ("store", "dispatch", "server"); package-level
// helpers are intentionally not provided — every caller names its scope.
type Logger struct {
	sugar *zap.SugaredLogger
}

var (
	baseMu sync.Mutex
	base   *zap.Logger
)

func buildLogger(lvl zapcore.Level) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return l.With(zap.String("instance", InstanceID())), nil
}

// rootLogger returns the current root logger, building an info-level
// default the first time it's needed if SetLevel was never called.
func rootLogger() *zap.Logger {
	baseMu.Lock()
	defer baseMu.Unlock()
	if base == nil {
		l, err := buildLogger(zap.InfoLevel)
		if err != nil {
			l = zap.NewNop()
		}
		base = l
	}
	return base
}

// SetLevel reconfigures the root logger's minimum level. It accepts the
// level names zap parses ("debug", "info", "warn", "error", and zap's
// higher levels). It may be called any number of times; each call
// replaces the root logger that later Named calls share, while Loggers
// returned by earlier Named calls keep the level they were built with.
func SetLevel(level string) error {
	lvl := zap.InfoLevel
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return err
	}
	l, err := buildLogger(lvl)
	if err != nil {
		return err
	}

	baseMu.Lock()
	base = l
	baseMu.Unlock()
	return nil
}

// Named returns a Logger scoped to name, e.g. logx.Named("dispatch").
func Named(name string) Logger {
	return Logger{sugar: rootLogger().Named(name).Sugar()}
}

func (l Logger) Debugf(format string, args ...any) { l.sugar.Debugf(format, args...) }
func (l Logger) Infof(format string, args ...any)  { l.sugar.Infof(format, args...) }
func (l Logger) Warnf(format string, args ...any)  { l.sugar.Warnf(format, args...) }
func (l Logger) Errorf(format string, args ...any) { l.sugar.Errorf(format, args...) }

// Sync flushes any buffered log entries; call before process exit.
func Sync() {
	if base != nil {
		_ = base.Sync()
	}
}
