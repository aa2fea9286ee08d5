package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Logger defines the interface for logging throughout the application.
// Different implementations can be used for different contexts (console, build log, silent).
type Logger interface {
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

// ConsoleLogger writes human-readable logs to stdout/stderr.
type ConsoleLogger struct {
	debug bool
}

func NewConsoleLogger() *ConsoleLogger {
	return &ConsoleLogger{}
}

// SetDebug toggles Debug output.
func (c *ConsoleLogger) SetDebug(on bool) {
	c.debug = on
}

func (c *ConsoleLogger) Info(msg string, args ...interface{}) {
	fmt.Printf("[INFO] "+msg+"\n", args...)
}

func (c *ConsoleLogger) Warn(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "[WARN] "+msg+"\n", args...)
}

func (c *ConsoleLogger) Error(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "[ERROR] "+msg+"\n", args...)
}

func (c *ConsoleLogger) Debug(msg string, args ...interface{}) {
	if c.debug {
		fmt.Printf("[DEBUG] "+msg+"\n", args...)
	}
}

// WriterLogger prefixes every line with "Hygieia: " and writes it to w.
// It stands in for the build console, so the lines end up next to the
// build's own output.
type WriterLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterLogger(w io.Writer) *WriterLogger {
	return &WriterLogger{w: w}
}

func (l *WriterLogger) printf(level, msg string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "Hygieia: "+level+msg+"\n", args...)
}

func (l *WriterLogger) Info(msg string, args ...interface{})  { l.printf("", msg, args...) }
func (l *WriterLogger) Warn(msg string, args ...interface{})  { l.printf("WARNING ", msg, args...) }
func (l *WriterLogger) Error(msg string, args ...interface{}) { l.printf("ERROR ", msg, args...) }
func (l *WriterLogger) Debug(msg string, args ...interface{}) {}

// SilentLogger discards all log messages.
// Used by the MCP server, where stdout carries the protocol.
type SilentLogger struct{}

func NewSilentLogger() *SilentLogger {
	return &SilentLogger{}
}

func (s *SilentLogger) Info(msg string, args ...interface{})  {}
func (s *SilentLogger) Warn(msg string, args ...interface{})  {}
func (s *SilentLogger) Error(msg string, args ...interface{}) {}
func (s *SilentLogger) Debug(msg string, args ...interface{}) {}
