package repository

import (
	"context"
	"sync"
	"time"
)

// MemoryStateRepository is the in-process fallback for gateway state. Typing
// entries expire lazily on read.
type MemoryStateRepository struct {
	typing     sync.Map
	rateLimits sync.Map
}

func NewMemoryStateRepository() *MemoryStateRepository {
	return &MemoryStateRepository{}
}

type typingEntry struct {
	expiresAt time.Time
}

func (r *MemoryStateRepository) SetTyping(ctx context.Context, chatID, userID int64, ttl time.Duration) error {
	r.typing.Store(typingKey(chatID, userID), &typingEntry{expiresAt: time.Now().Add(ttl)})
	return nil
}

func (r *MemoryStateRepository) ClearTyping(ctx context.Context, chatID, userID int64) error {
	r.typing.Delete(typingKey(chatID, userID))
	return nil
}

// IsTyping reports whether the typing marker is still live.
func (r *MemoryStateRepository) IsTyping(chatID, userID int64) bool {
	val, ok := r.typing.Load(typingKey(chatID, userID))
	if !ok {
		return false
	}
	entry := val.(*typingEntry)
	if time.Now().After(entry.expiresAt) {
		r.typing.Delete(typingKey(chatID, userID))
		return false
	}
	return true
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemoryStateRepository) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, ok := r.rateLimits.Load(userID)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{
			count:     1,
			expiresAt: now.Add(window),
		}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	r.rateLimits.Store(userID, entry)
	return entry.count <= limit, nil
}
