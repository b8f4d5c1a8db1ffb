package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Logger writes leveled, printf-style messages to a console writer and,
// optionally, a log file.
type Logger struct {
	Verbose bool
	writer  io.Writer
	mu      sync.Mutex
	fileLog *os.File
}

// New creates a Logger writing to stderr, so command output on stdout stays
// machine-readable.
func New(verbose bool) *Logger {
	return NewWithWriter(verbose, os.Stderr)
}

// NewWithWriter creates a Logger writing console output to w.
func NewWithWriter(verbose bool, w io.Writer) *Logger {
	if w == nil {
		w = io.Discard
	}
	return &Logger{
		Verbose: verbose,
		writer:  w,
	}
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return NewWithWriter(false, io.Discard)
}

// SetFileLog enables logging to a file
func (l *Logger) SetFileLog(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.fileLog = f
	return nil
}

// Close closes the log file if open
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fileLog != nil {
		err := l.fileLog.Close()
		l.fileLog = nil
		return err
	}
	return nil
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.log("INFO", true, format, args...)
}

// Debug logs only in verbose mode; the file log always receives it.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log("DEBUG", l.Verbose, format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.log("WARN", true, format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.log("ERROR", true, format, args...)
}

func (l *Logger) log(level string, console bool, format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf("["+level+"] "+format+"\n", args...)
	if console {
		fmt.Fprint(l.writer, msg)
	}
	if l.fileLog != nil {
		l.fileLog.WriteString(time.Now().Format("2006-01-02 15:04:05") + " " + msg)
	}
}
