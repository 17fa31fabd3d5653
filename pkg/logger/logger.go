// Package logger provides the process-wide leveled logging facade.
//
// All waggle components log through this package with printf-style calls and
// a component tag prefix, e.g. logger.Info("[Swarm] message %s sent", id).
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var std = newDefault()

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	return l
}

// SetOutput redirects log output. The hook bridge binary uses this to keep
// stdout clean for the protocol exchange.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// SetLevel sets the minimum level by name ("debug", "info", "warn", "error").
// Unknown names leave the level unchanged.
func SetLevel(name string) {
	lvl, err := logrus.ParseLevel(name)
	if err != nil {
		return
	}
	std.SetLevel(lvl)
}

// Debug logs a formatted message at debug level.
func Debug(format string, args ...interface{}) {
	std.Debugf(format, args...)
}

// Info logs a formatted message at info level.
func Info(format string, args ...interface{}) {
	std.Infof(format, args...)
}

// Warn logs a formatted message at warn level.
func Warn(format string, args ...interface{}) {
	std.Warnf(format, args...)
}

// Error logs a formatted message at error level.
func Error(format string, args ...interface{}) {
	std.Errorf(format, args...)
}

// Fatal logs a formatted message at fatal level and exits.
func Fatal(format string, args ...interface{}) {
	std.Fatalf(format, args...)
}
