package tier

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu   sync.RWMutex
	data map[string]Subscription
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]Subscription)}
}

func (s *memoryStore) Get(ctx context.Context, userID string) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return Subscription{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.data[userID]
	if !ok {
		return Subscription{}, ErrNotFound
	}
	return sub, nil
}

func (s *memoryStore) Upsert(ctx context.Context, sub Subscription) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sub.UserID] = sub
	return nil
}
