package cache

import (
	"context"
	"sync"
	"time"

	"github.com/KNICEX/market-pulse/internal/service/market"
)

var _ Store = (*MemoryStore)(nil)

type entry struct {
	expiresAt time.Time
	quote     market.Quote
}

// MemoryStore is a process-local Store. MaxItems caps the number of entries, 0 means no cap.
type MemoryStore struct {
	MaxItems int

	mu    sync.RWMutex
	items map[string]entry
	now   func() time.Time
}

func NewMemoryStore(maxItems int) *MemoryStore {
	return &MemoryStore{
		MaxItems: maxItems,
		items:    make(map[string]entry),
		now:      time.Now,
	}
}

func (s *MemoryStore) GetMany(ctx context.Context, keys []string) (map[string]market.Quote, error) {
	now := s.now()
	res := make(map[string]market.Quote, len(keys))

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, key := range keys {
		if e, ok := s.items[key]; ok && now.Before(e.expiresAt) {
			res[key] = e.quote
		}
	}
	return res, nil
}

func (s *MemoryStore) SetMany(ctx context.Context, quotes map[string]market.Quote, ttl time.Duration) error {
	now := s.now()
	expiry := now.Add(ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, quote := range quotes {
		s.items[key] = entry{expiresAt: expiry, quote: quote}
	}

	if s.MaxItems <= 0 || len(s.items) <= s.MaxItems {
		return nil
	}
	// 先清过期的, 仍超出就随便删
	for key, e := range s.items {
		if !now.Before(e.expiresAt) {
			delete(s.items, key)
		}
	}
	for key := range s.items {
		if len(s.items) <= s.MaxItems {
			break
		}
		delete(s.items, key)
	}
	return nil
}
