// Package log provides named, leveled loggers backed by go-logging.
// Every package of the module logs through a module-scoped logger obtained with New.
package log

import (
	"io"
	"os"
	"sync"

	"github.com/op/go-logging"
)

type Level logging.Level

// The levels that can be passed to SetLevel, ordered from most to least verbose.
const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
)

var format = logging.MustStringFormatter(
	`%{time:15:04:05.000} %{level:.4s} [%{module}] %{message}`,
)

var (
	mu             = &sync.Mutex{}
	leveledBackend logging.LeveledBackend
	currentLevel   = Notice
)

// Logger is the leveled logging surface used across the module.
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})

	Info(v ...interface{})
	Infof(format string, v ...interface{})

	Notice(v ...interface{})
	Noticef(format string, v ...interface{})

	Warning(v ...interface{})
	Warningf(format string, v ...interface{})

	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

// New returns the logger for the named module.
func New(module string) Logger {
	return logging.MustGetLogger(module)
}

// SetSink redirects all loggers to sink, keeping the current level.
func SetSink(sink io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	backend := logging.NewLogBackend(sink, "", 0)
	formatted := logging.NewBackendFormatter(backend, format)
	leveledBackend = logging.AddModuleLevel(formatted)
	leveledBackend.SetLevel(toBackendLevel(currentLevel), "")
	logging.SetBackend(leveledBackend)
}

// SetLevel sets the verbosity of every module.
func SetLevel(level Level) {
	mu.Lock()
	defer mu.Unlock()

	currentLevel = level
	leveledBackend.SetLevel(toBackendLevel(level), "")
}

// SetModuleLevel overrides the verbosity of a single module.
func SetModuleLevel(module string, level Level) {
	mu.Lock()
	defer mu.Unlock()

	leveledBackend.SetLevel(toBackendLevel(level), module)
}

func toBackendLevel(level Level) logging.Level {
	switch level {
	case Debug:
		return logging.DEBUG
	case Info:
		return logging.INFO
	case Warning:
		return logging.WARNING
	case Error:
		return logging.ERROR
	default:
		return logging.NOTICE
	}
}

func init() {
	SetSink(os.Stderr)
	SetLevel(Notice)
}
