package zonestate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// MemoryStore keeps entries in a map, optionally mirrored to a JSON file.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
	path    string
}

// NewMemoryStore creates a store. When path is non-empty, existing state is
// loaded from it and every Set rewrites the file. A missing file is not an error.
func NewMemoryStore(path string) (*MemoryStore, error) {
	s := &MemoryStore{entries: make(map[string]Entry), path: path}
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read zone state: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		return nil, fmt.Errorf("parse zone state %s: %w", path, err)
	}
	return s, nil
}

func (s *MemoryStore) Get(_ context.Context, symbol string) (Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[symbol]
	return e, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, symbol string, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[symbol] = e
	return s.save()
}

func (s *MemoryStore) save() error {
	if s.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}

func (s *MemoryStore) Close() error { return nil }
