package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var errBackend = errors.New("connection refused")

// stubCache is a hand-written Cache mock. A nil func falls back to an in-process map.
type stubCache struct {
	mu       sync.Mutex
	data     map[string][]byte
	getFn    func(key string) ([]byte, bool, error)
	setFn    func(key string, value []byte) error
	getCalls atomic.Int32
	setCalls atomic.Int32
}

func newStubCache() *stubCache {
	return &stubCache{data: make(map[string][]byte)}
}

func (s *stubCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.getCalls.Add(1)
	if s.getFn != nil {
		return s.getFn(key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *stubCache) Set(_ context.Context, key string, value []byte) error {
	s.setCalls.Add(1)
	if s.setFn != nil {
		return s.setFn(key, value)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func failing() *stubCache {
	s := newStubCache()
	s.getFn = func(string) ([]byte, bool, error) { return nil, false, errBackend }
	s.setFn = func(string, []byte) error { return errBackend }
	return s
}
