package store

import "sync"

// MemoryLog is an in-process ConversationLog, used in tests and embedded
// setups where pollers live in the same process.
type MemoryLog struct {
	mu      sync.Mutex
	entries []string
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{entries: []string{}}
}

func (l *MemoryLog) Append(text string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, sanitizeEntry(text))
	return nil
}

func (l *MemoryLog) ReadAll() ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out, nil
}

func (l *MemoryLog) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = l.entries[:0]
	return nil
}

// MemoryStatus is an in-process StatusRegister.
type MemoryStatus struct {
	mu    sync.Mutex
	value string
}

func NewMemoryStatus() *MemoryStatus {
	return &MemoryStatus{}
}

func (s *MemoryStatus) Set(status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = status
	return nil
}

func (s *MemoryStatus) Get() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, nil
}
