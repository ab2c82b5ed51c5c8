package logging

import (
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

// Logger writes leveled lines to a file. The terminal belongs to the UI, so
// nothing is ever printed to stdout or stderr from here.
type Logger struct {
	file   *os.File
	logger *log.Logger
}

// Open appends to the log file at path. An empty path yields a logger that
// discards everything.
func Open(path string) (*Logger, error) {
	if path == "" {
		return Discard(), nil
	}
	l := log.New(io.Discard, "", log.LstdFlags)
	f, err := tea.LogToFileWith(path, "todo", l)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return &Logger{file: f, logger: l}, nil
}

// New logs to w; used by tests.
func New(w io.Writer) *Logger {
	return &Logger{logger: log.New(w, "", 0)}
}

func Discard() *Logger {
	return &Logger{logger: log.New(io.Discard, "", 0)}
}

func (l *Logger) Infof(format string, args ...any) {
	l.logger.Printf("INFO: "+format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.logger.Printf("WARN: "+format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.logger.Printf("ERROR: "+format, args...)
}

// Printf lets the storage engine log through the same file.
func (l *Logger) Printf(format string, args ...any) {
	l.logger.Printf(format, args...)
}

func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
