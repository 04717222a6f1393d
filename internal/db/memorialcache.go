package db

import (
	"context"
	"sync"

	"github.com/ChaseHampton/graver/internal/memorial"
)

// MemorialCache is a set of memorial ids already handled in this run or
// already present in the store.
type MemorialCache struct {
	mu    sync.RWMutex
	cache map[int64]bool
}

func NewMemorialCache() *MemorialCache {
	return &MemorialCache{
		cache: make(map[int64]bool),
	}
}

// LoadFromStore marks every memorial already in s as seen.
func (mc *MemorialCache) LoadFromStore(ctx context.Context, s *Store) (int, error) {
	ids, err := s.MemorialIDs(ctx)
	if err != nil {
		return 0, err
	}
	mc.MarkSeen(ids...)
	return len(ids), nil
}

func (mc *MemorialCache) Seen(id int64) bool {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.cache[id]
}

// returns both new and previously seen memorials
func (mc *MemorialCache) FilterMemorials(memorials []memorial.Memorial) ([]memorial.Memorial, []memorial.Memorial) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	var fresh []memorial.Memorial
	var seen []memorial.Memorial
	for _, m := range memorials {
		if !mc.cache[m.MemorialID] {
			fresh = append(fresh, m)
		} else {
			seen = append(seen, m)
		}
	}
	return fresh, seen
}

func (mc *MemorialCache) MarkSeen(ids ...int64) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	for _, id := range ids {
		mc.cache[id] = true
	}
}

func (mc *MemorialCache) Size() int {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return len(mc.cache)
}
