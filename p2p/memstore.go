package p2p

import (
	"context"
	"time"

	"github.com/initia-labs/lightnode/cache"
)

type memoryRecord struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is a bounded in-memory record store. Expired records stay in
// place until PruneExpired runs; Get already hides them.
type MemoryStore struct {
	records *cache.Cache[string, memoryRecord]
	now     func() time.Time
}

func NewMemoryStore(maxRecords int) *MemoryStore {
	return &MemoryStore{
		records: cache.New[string, memoryRecord](maxRecords),
		now:     time.Now,
	}
}

func (s *MemoryStore) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.records.Set(key, memoryRecord{
		value:     append([]byte(nil), value...),
		expiresAt: s.now().Add(ttl),
	})
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	rec, ok := s.records.Get(key)
	if !ok || !s.now().Before(rec.expiresAt) {
		return nil, ErrRecordNotFound
	}
	return append([]byte(nil), rec.value...), nil
}

// Len counts stored records, expired ones included.
func (s *MemoryStore) Len(_ context.Context) (int, error) {
	return s.records.Len(), nil
}

func (s *MemoryStore) PruneExpired(ctx context.Context, now time.Time) (int, error) {
	pruned := 0
	for _, key := range s.records.Keys() {
		if err := ctx.Err(); err != nil {
			return pruned, err
		}
		rec, ok := s.records.Peek(key)
		if !ok || now.Before(rec.expiresAt) {
			continue
		}
		if s.records.Remove(key) {
			pruned++
		}
	}
	return pruned, nil
}

func (s *MemoryStore) Close() error {
	s.records.Purge()
	return nil
}
