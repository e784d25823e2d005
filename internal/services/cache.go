package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Twahaaa/JOURNY/internal/database"
	"github.com/Twahaaa/JOURNY/internal/models"
)

const (
	// entryListKeyPrefix is the Redis key prefix for cached entry listings
	entryListKeyPrefix = "entries:"
	// entryListTTL keeps listings short-lived; writes invalidate eagerly
	// but a stale read must age out quickly regardless
	entryListTTL = 5 * time.Minute
)

// EntryListCache caches per-owner entry listings in Redis. It is strictly a
// read-path accelerator: every method degrades to a no-op or a miss when the
// cache is nil or Redis misbehaves, and correctness never depends on it.
type EntryListCache struct{}

func NewEntryListCache() *EntryListCache {
	return &EntryListCache{}
}

// Get returns the cached listing for an owner, or (nil, false) on a miss.
func (c *EntryListCache) Get(ctx context.Context, ownerID string) ([]models.JournalEntry, bool) {
	if c == nil || database.RedisClient == nil {
		return nil, false
	}

	val, err := database.RedisClient.Get(ctx, entryListKeyPrefix+ownerID).Result()
	if err != nil {
		return nil, false // cache miss, not an error
	}

	var entries []models.JournalEntry
	if err := json.Unmarshal([]byte(val), &entries); err != nil {
		return nil, false
	}
	return entries, true
}

// Set stores the listing for an owner. Errors are swallowed.
func (c *EntryListCache) Set(ctx context.Context, ownerID string, entries []models.JournalEntry) {
	if c == nil || database.RedisClient == nil {
		return
	}

	jsonData, err := json.Marshal(entries)
	if err != nil {
		return
	}
	database.RedisClient.Set(ctx, entryListKeyPrefix+ownerID, jsonData, entryListTTL)
}

// Invalidate drops the cached listing for an owner. Called whenever an
// entry is created, completes analysis, or is deleted.
func (c *EntryListCache) Invalidate(ctx context.Context, ownerID string) {
	if c == nil || database.RedisClient == nil {
		return
	}
	database.RedisClient.Del(ctx, entryListKeyPrefix+ownerID)
}
