package kvstore

import (
	"context"
	"errors"
	"strconv"
	"sync"
)

// MemoryHashStore is a process-local HashStore used for development and tests.
type MemoryHashStore struct {
	mu   sync.Mutex
	data map[string]map[string]string

	// Err, when set, is returned by every operation
	Err error
}

func NewMemoryHashStore() *MemoryHashStore {
	return &MemoryHashStore{data: make(map[string]map[string]string)}
}

func (s *MemoryHashStore) HashGet(_ context.Context, key string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make(map[string]string, len(s.data[key]))
	for k, v := range s.data[key] {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryHashStore) HashSet(_ context.Context, key string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	h, ok := s.data[key]
	if !ok {
		h = make(map[string]string)
		s.data[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

func (s *MemoryHashStore) HashIncrement(_ context.Context, key, field string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	h, ok := s.data[key]
	if !ok {
		h = make(map[string]string)
		s.data[key] = h
	}
	var cur int64
	if raw, ok := h[field]; ok {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, errors.New("hash value is not an integer")
		}
		cur = n
	}
	cur += delta
	h[field] = strconv.FormatInt(cur, 10)
	return cur, nil
}

func (s *MemoryHashStore) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Err
}
