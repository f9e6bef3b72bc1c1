package log

import (
	"fmt"
	stdlog "log"
	"os"
)

// MustInit initializes the logger for the given app name, exiting on
// failure.
func MustInit(dbPath string, debug bool) {
	if err := Init(dbPath, debug); err != nil {
		stdlog.Fatalf("FATAL: failed to initialize logger: %v", err)
	}
}

// Printf logs at info level.
func Printf(format string, v ...any) {
	mu.RLock()
	l := pkgLogger
	mu.RUnlock()
	l.Info().Msg(fmt.Sprintf(format, v...))
}

// Debugf logs at debug level.
func Debugf(format string, v ...any) {
	mu.RLock()
	l := pkgLogger
	mu.RUnlock()
	l.Debug().Msg(fmt.Sprintf(format, v...))
}

// Warnf logs at warn level.
func Warnf(format string, v ...any) {
	mu.RLock()
	l := pkgLogger
	mu.RUnlock()
	l.Warn().Msg(fmt.Sprintf(format, v...))
}

// Errorf logs at error level.
func Errorf(format string, v ...any) {
	mu.RLock()
	l := pkgLogger
	mu.RUnlock()
	l.Error().Msg(fmt.Sprintf(format, v...))
}

// Fatalf logs at error level and exits.
func Fatalf(format string, v ...any) {
	mu.RLock()
	l := pkgLogger
	mu.RUnlock()
	l.Error().Msg(fmt.Sprintf(format, v...))
	Close()
	os.Exit(1)
}
