// Package log provides centralized debug logging for the compiler and CLI.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// EnvVar names a file that receives debug logging when no other output is
// configured.
const EnvVar = "REACTPUG_DEBUG"

var (
	out io.Writer
	mu  sync.Mutex
)

// SetOutput sets the log destination. Pass nil to disable logging.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// OpenFile appends logging to the file at path, creating its directory if
// needed. Close the returned file to flush it; output is reset to nil first.
func OpenFile(path string) (io.Closer, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	SetOutput(f)
	return closerFunc(func() error {
		SetOutput(nil)
		return f.Close()
	}), nil
}

// FromEnv opens the file named by EnvVar. It returns a nil closer when the
// variable is unset.
func FromEnv(getenv func(string) string) (io.Closer, error) {
	path := getenv(EnvVar)
	if path == "" {
		return nil, nil
	}
	return OpenFile(path)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func write(prefix, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if out != nil {
		fmt.Fprintf(out, prefix+format+"\n", args...)
	}
}

// Debug writes an unprefixed log message if logging is enabled.
func Debug(format string, args ...any) {
	write("", format, args...)
}

// Compile writes a compile-prefixed log message.
func Compile(format string, args ...any) {
	write("[compile] ", format, args...)
}

// Optimize writes an optimize-prefixed log message.
func Optimize(format string, args ...any) {
	write("[optimize] ", format, args...)
}

// Watch writes a watch-prefixed log message.
func Watch(format string, args ...any) {
	write("[watch] ", format, args...)
}

// Error writes an error-prefixed log message.
func Error(format string, args ...any) {
	write("[error] ", format, args...)
}

// Enabled returns true if logging is enabled.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return out != nil
}
