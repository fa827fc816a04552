// Package diaglog manages the per-run diagnostic log kept in the output directory.
//
// The file is opened when the Log is created and is removed at the end of every
// conversion attempt by Cleanup, so it never accumulates history. It is recreated
// lazily on the next write.
package diaglog

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Log is an io.Writer over the diagnostic log file. It is safe for concurrent use.
type Log struct {
	mu     sync.Mutex
	path   string
	retain bool
	file   *os.File
	closed bool
}

// Open creates dir if needed and opens (creating) the log file named name inside it.
// When retain is true, Cleanup keeps the file instead of deleting it.
func Open(dir, name string, retain bool) (*Log, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory %s: %w", dir, err)
	}
	l := &Log{path: filepath.Join(dir, name), retain: retain}
	if err := l.openLocked(); err != nil {
		return nil, err
	}
	return l, nil
}

// Path returns the absolute location of the log file.
func (l *Log) Path() string { return l.path }

// Handler returns a slog text handler writing to the log at the given level.
func (l *Log) Handler(level slog.Leveler) slog.Handler {
	return slog.NewTextHandler(l, &slog.HandlerOptions{Level: level})
}

// Write implements io.Writer, reopening the file if a previous Cleanup removed it.
func (l *Log) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, fs.ErrClosed
	}
	if l.file == nil {
		if err := l.openLocked(); err != nil {
			return 0, err
		}
	}
	return l.file.Write(p)
}

// Cleanup ends the current run: the file is closed and, unless retained, deleted.
// A missing file is not an error.
func (l *Log) Cleanup() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var closeErr error
	if l.file != nil {
		closeErr = l.file.Close()
		l.file = nil
	}
	if l.retain {
		return closeErr
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Join(closeErr, fmt.Errorf("remove diagnostic log: %w", err))
	}
	return closeErr
}

// Close performs a final Cleanup and rejects further writes.
func (l *Log) Close() error {
	err := l.Cleanup()
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	return err
}

func (l *Log) openLocked() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open diagnostic log %s: %w", l.path, err)
	}
	l.file = f
	return nil
}
