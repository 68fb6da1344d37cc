package storage

import (
	"context"
	"sync"
	"time"

	"MetalTracker/internal/model"
)

// MemoryStore keeps data in process memory; used in tests and when no storage is configured.
type MemoryStore struct {
	mu    sync.Mutex
	data  *model.AppData
	users map[string]string
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{now: time.Now} }

func (s *MemoryStore) Load(_ context.Context) (*model.AppData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return NewAppData(s.now()), nil
	}
	return s.data.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, data *model.AppData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data.Clone()
	return nil
}

func (s *MemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	return nil
}

func (s *MemoryStore) Close() error { return nil }
