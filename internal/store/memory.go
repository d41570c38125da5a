package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/serroba/tinyurl/internal/shortener"
)

var errSessionClosed = errors.New("session closed")

// MemoryStore is an in-memory implementation of shortener.Gateway.
type MemoryStore struct {
	mu      sync.RWMutex
	targets map[shortener.Code]string // code -> target
	codes   map[string]shortener.Code // target -> first code
	max     shortener.Code
	open    atomic.Int64
}

// NewMemoryStore creates a new in-memory URL store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		targets: make(map[shortener.Code]string),
		codes:   make(map[string]shortener.Code),
	}
}

func (m *MemoryStore) Open(_ context.Context) (shortener.Session, error) {
	m.open.Add(1)

	return &memorySession{store: m}, nil
}

func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// OpenSessions returns the number of sessions not yet closed.
func (m *MemoryStore) OpenSessions() int64 {
	return m.open.Load()
}

// Len returns the number of stored mappings.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.targets)
}

// Shutdown is a no-op for MemoryStore.
func (m *MemoryStore) Shutdown() error {
	return nil
}

type memorySession struct {
	store  *MemoryStore
	closed bool
}

func (s *memorySession) FindTargetByCode(_ context.Context, code shortener.Code) (string, error) {
	if s.closed {
		return "", errSessionClosed
	}

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	target, ok := s.store.targets[code]
	if !ok {
		return "", shortener.ErrNotFound
	}

	return target, nil
}

func (s *memorySession) FindCodeByTarget(_ context.Context, target string) (shortener.Code, error) {
	if s.closed {
		return "", errSessionClosed
	}

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	code, ok := s.store.codes[target]
	if !ok {
		return "", shortener.ErrNotFound
	}

	return code, nil
}

func (s *memorySession) MaxCode(_ context.Context) (shortener.Code, error) {
	if s.closed {
		return "", errSessionClosed
	}

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	if len(s.store.targets) == 0 {
		return "", shortener.ErrNotFound
	}

	return s.store.max, nil
}

func (s *memorySession) Insert(_ context.Context, mapping shortener.ShortMapping) error {
	if s.closed {
		return errSessionClosed
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if _, ok := s.store.targets[mapping.Code]; ok {
		return shortener.WrapStorage("insert", shortener.ErrDuplicateCode)
	}

	s.store.targets[mapping.Code] = mapping.Target

	if _, ok := s.store.codes[mapping.Target]; !ok {
		s.store.codes[mapping.Target] = mapping.Code
	}

	if len(s.store.targets) == 1 || codeLess(s.store.max, mapping.Code) {
		s.store.max = mapping.Code
	}

	return nil
}

func (s *memorySession) Close() error {
	if s.closed {
		return nil
	}

	s.closed = true
	s.store.open.Add(-1)

	return nil
}

// codeLess orders canonical base62 codes numerically: shorter first, then bytewise.
func codeLess(a, b shortener.Code) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}

	return a < b
}

var _ shortener.Gateway = (*MemoryStore)(nil)
