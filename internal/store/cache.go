package store

import (
	"time"

	"github.com/goccy/go-json"

	"github.com/mmcdole/moviedb/internal/metrics"
)

type cacheEntry struct {
	StoredAt time.Time       `json:"storedAt"`
	Value    json.RawMessage `json:"value"`
}

// GetCached decodes a cached metadata response into dest if it is younger than ttl.
func (s *Store) GetCached(key string, ttl time.Duration, dest any) bool {
	var entry cacheEntry
	ok, err := s.get(bucketMetadata, key, &entry)
	if err != nil || !ok || s.now().Sub(entry.StoredAt) > ttl {
		metrics.StoreCacheMisses.Inc()
		return false
	}
	if err := json.Unmarshal(entry.Value, dest); err != nil {
		metrics.StoreCacheMisses.Inc()
		return false
	}
	metrics.StoreCacheHits.Inc()
	return true
}

// PutCached stores a metadata response under key
func (s *Store) PutCached(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.set(bucketMetadata, key, cacheEntry{StoredAt: s.now(), Value: data})
}

// InvalidateCached drops every cached response whose key starts with prefix
func (s *Store) InvalidateCached(prefix string) error {
	return s.deletePrefix(bucketMetadata, prefix)
}
