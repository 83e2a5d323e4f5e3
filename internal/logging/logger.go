// Package logging provides the application's component logger: a minimal
// printf-style contract plus a file-backed default implementation writing to
// ~/suri-debug.log.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// Logger defines a minimal, printf-style logging contract.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Level represents the severity of a log message.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Nop returns a logger that discards all output.
func Nop() Logger {
	return nopLogger{}
}

// OrNop returns logger when non-nil, otherwise a no-op logger.
func OrNop(logger Logger) Logger {
	if logger == nil {
		return Nop()
	}
	return logger
}

var (
	rootInstance *FileLogger
	rootOnce     sync.Once
)

// FileLogger is the default logger. All component loggers share one
// append-only file handle.
type FileLogger struct {
	file      *os.File
	logger    *log.Logger
	level     Level
	mu        *sync.Mutex
	component string
}

func rootLogger() *FileLogger {
	rootOnce.Do(func() {
		rootInstance = newFileLogger(DEBUG)
	})
	return rootInstance
}

// NewComponentLogger creates a logger scoped to a component name.
func NewComponentLogger(component string) *FileLogger {
	r := rootLogger()
	return &FileLogger{
		file:      r.file,
		logger:    r.logger,
		level:     r.level,
		mu:        r.mu,
		component: component,
	}
}

func newFileLogger(level Level) *FileLogger {
	l := &FileLogger{level: level, mu: &sync.Mutex{}}

	home, err := os.UserHomeDir()
	if err != nil {
		log.Printf("Failed to get home directory: %v", err)
		return l
	}

	logPath := filepath.Join(home, "suri-debug.log")
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Printf("Failed to open log file: %v", err)
		return l
	}

	l.file = file
	l.logger = log.New(file, "", 0) // we format ourselves
	return l
}

// SetLevel sets the minimum level on the shared root logger.
func SetLevel(level Level) {
	r := rootLogger()
	r.mu.Lock()
	r.level = level
	r.mu.Unlock()
}

// Close closes the shared log file.
func Close() error {
	r := rootLogger()
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

func (l *FileLogger) log(level Level, format string, args ...any) {
	if level < l.level || l.logger == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	_, file, line, ok := runtime.Caller(2)
	if ok {
		file = filepath.Base(file)
	} else {
		file = "???"
		line = 0
	}

	// Format: 2025-09-30 12:34:56 [INFO] [Component] file.go:123 - Message
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	component := l.component
	if component == "" {
		component = "SURI"
	}
	message := fmt.Sprintf(format, args...)
	l.logger.Printf("%s [%s] [%s] %s:%d - %s",
		timestamp, levelString(level), component, file, line, message)
}

func (l *FileLogger) Debug(format string, args ...any) { l.log(DEBUG, format, args...) }
func (l *FileLogger) Info(format string, args ...any)  { l.log(INFO, format, args...) }
func (l *FileLogger) Warn(format string, args ...any)  { l.log(WARN, format, args...) }
func (l *FileLogger) Error(format string, args ...any) { l.log(ERROR, format, args...) }

func levelString(level Level) string {
	switch level {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
