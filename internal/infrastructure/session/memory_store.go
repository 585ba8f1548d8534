package session

import (
	"context"
	"sync"

	"github.com/workcity/crm-client/internal/core/domain"
)

// MemoryStore is a process-local session slot. Used by tests and by
// one-shot invocations that must not touch disk.
type MemoryStore struct {
	mu   sync.Mutex
	sess *domain.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess == nil {
		return nil, nil
	}
	clone := *s.sess
	return &clone, nil
}

func (s *MemoryStore) Save(_ context.Context, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *sess
	s.sess = &clone
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = nil
	return nil
}
