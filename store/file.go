package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileLog is a ConversationLog backed by a plain text file, one entry per
// line, readable by any process that can open the file.
type FileLog struct {
	mu   sync.Mutex
	path string
}

func NewFileLog(path string) (*FileLog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("store: mkdir %q: %w", dir, err)
		}
	}
	return &FileLog{path: path}, nil
}

// Append writes the entry and its trailing newline in a single write so a
// concurrent reader never observes a torn line.
func (l *FileLog) Append(text string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("store: open %q: %w", l.path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(sanitizeEntry(text) + "\n"); err != nil {
		return fmt.Errorf("store: append %q: %w", l.path, err)
	}
	return nil
}

func (l *FileLog) ReadAll() ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	raw, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("store: read %q: %w", l.path, err)
	}
	return splitLines(string(raw)), nil
}

func (l *FileLog) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.WriteFile(l.path, []byte{}, 0644); err != nil {
		return fmt.Errorf("store: truncate %q: %w", l.path, err)
	}
	return nil
}

// FileStatus is a StatusRegister backed by whole-file overwrites.
type FileStatus struct {
	mu   sync.Mutex
	path string
}

func NewFileStatus(path string) (*FileStatus, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("store: mkdir %q: %w", dir, err)
		}
	}
	return &FileStatus{path: path}, nil
}

func (s *FileStatus) Set(status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.path, []byte(status), 0644); err != nil {
		return fmt.Errorf("store: write %q: %w", s.path, err)
	}
	return nil
}

// Get returns the current status, or "" when nothing has been written yet.
func (s *FileStatus) Get() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("store: read %q: %w", s.path, err)
	}
	return string(raw), nil
}
