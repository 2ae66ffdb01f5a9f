package notes

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"roadmap/pkg/interfaces"
)

// ErrNoNotes is returned by ReadAll before anything has been saved.
var ErrNoNotes = interfaces.ErrNoNotes

// FileLog is a newline-delimited, append-only note file. The file is opened
// and closed inside every call.
type FileLog struct {
	path string
	mu   sync.Mutex // orders appends from concurrent sessions
}

// NewFileLog returns a log backed by path. The file is created on first Append.
func NewFileLog(path string) *FileLog {
	return &FileLog{path: path}
}

// Append writes note and a trailing newline. Empty notes are written as-is.
func (l *FileLog) Append(note string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open note log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(note + "\n"); err != nil {
		return fmt.Errorf("append note: %w", err)
	}
	return f.Sync()
}

// ReadAll returns the whole file.
func (l *FileLog) ReadAll() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNoNotes
		}
		return "", fmt.Errorf("read note log: %w", err)
	}
	return string(data), nil
}

// Path returns the backing file path.
func (l *FileLog) Path() string {
	return l.path
}
