// Package logging adapts github.com/baditaflorin/l to the small logger
// interface the rest of namescreen depends on.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/baditaflorin/l"
)

// Logger is the structured logger used across namescreen.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Close() error
}

// Options selects where and how log records are written.
type Options struct {
	File  string // empty = stderr
	JSON  bool
	Async bool
	Level string // debug, info, warn or error; empty = info
}

// StdLogger wraps an l.Logger.
type StdLogger struct {
	logger l.Logger
	file   *os.File
}

// New builds a logger from opts.
func New(opts Options) (*StdLogger, error) {
	var output io.Writer = os.Stderr
	var file *os.File
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output, file = f, f
	}
	level := l.ParseLevel(opts.Level)
	logger, err := l.NewStandardFactory().CreateLogger(l.Config{
		Level:       level,
		MinLevel:    level,
		Output:      output,
		JsonFormat:  opts.JSON,
		AsyncWrite:  opts.Async,
		BufferSize:  1024 * 1024,       // 1MB
		MaxFileSize: 100 * 1024 * 1024, // 100MB
		MaxBackups:  5,
		AddSource:   true,
		Metrics:     false,
	})
	if err != nil {
		if file != nil {
			file.Close()
		}
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return &StdLogger{logger: logger, file: file}, nil
}

// FromExisting wraps an already configured l.Logger.
func FromExisting(logger l.Logger) *StdLogger { return &StdLogger{logger: logger} }

func (s *StdLogger) Debug(msg string, kv ...interface{}) { s.logger.Debug(msg, kv...) }
func (s *StdLogger) Info(msg string, kv ...interface{})  { s.logger.Info(msg, kv...) }
func (s *StdLogger) Warn(msg string, kv ...interface{})  { s.logger.Warn(msg, kv...) }
func (s *StdLogger) Error(msg string, kv ...interface{}) { s.logger.Error(msg, kv...) }

// Close flushes the underlying logger and closes the log file, if any.
func (s *StdLogger) Close() error {
	err := s.logger.Close()
	if s.file != nil {
		if cerr := s.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

type nop struct{}

func (nop) Debug(string, ...interface{}) {}
func (nop) Info(string, ...interface{})  {}
func (nop) Warn(string, ...interface{})  {}
func (nop) Error(string, ...interface{}) {}
func (nop) Close() error                 { return nil }

// Nop returns a Logger that discards everything.
func Nop() Logger { return nop{} }
