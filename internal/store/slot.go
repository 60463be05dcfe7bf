package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// SlotName is the fixed name under which the transaction list persists.
const SlotName = "transactions"

// Slot reads and writes one named blob of persisted state. A slot that
// has never been written reads back as (nil, nil).
type Slot interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}

// JSONFileSlot persists the blob as a flat JSON file on disk.
type JSONFileSlot struct {
	path string
}

func NewJSONFileSlot(path string) *JSONFileSlot {
	return &JSONFileSlot{path: path}
}

func (s *JSONFileSlot) Read(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read slot file %s: %w", s.path, err)
	}
	return data, nil
}

func (s *JSONFileSlot) Write(_ context.Context, data []byte) error {
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create slot directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write slot file %s: %w", s.path, err)
	}
	return nil
}

// MemorySlot keeps the blob in process memory. Used by tests and the
// memory backend.
type MemorySlot struct {
	mu   sync.Mutex
	data []byte
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

func (s *MemorySlot) Read(_ context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, nil
	}
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, nil
}

func (s *MemorySlot) Write(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make([]byte, len(data))
	copy(s.data, data)
	return nil
}
