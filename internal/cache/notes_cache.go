package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NotesCache persists AI player notes in Redis, one hash per room keyed by
// player id. A save fully replaces the player's blob; clearing a room drops
// every player's notes at once.
type NotesCache interface {
	Save(ctx context.Context, roomID, playerID, notes string) error
	Load(ctx context.Context, roomID, playerID string) (string, error)
	ClearPlayer(ctx context.Context, roomID, playerID string) error
	ClearRoom(ctx context.Context, roomID string) error
}

type notesCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewNotesCache creates a new notes cache
func NewNotesCache(client *redis.Client) NotesCache {
	return &notesCache{
		client: client,
		ttl:    24 * time.Hour, // Notes outlive a room by at most a day
	}
}

func (c *notesCache) key(roomID string) string {
	return fmt.Sprintf("ainotes:%s", roomID)
}

func (c *notesCache) Save(ctx context.Context, roomID, playerID, notes string) error {
	key := c.key(roomID)
	if err := c.client.HSet(ctx, key, playerID, notes).Err(); err != nil {
		return err
	}
	return c.client.Expire(ctx, key, c.ttl).Err()
}

func (c *notesCache) Load(ctx context.Context, roomID, playerID string) (string, error) {
	notes, err := c.client.HGet(ctx, c.key(roomID), playerID).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return notes, nil
}

func (c *notesCache) ClearPlayer(ctx context.Context, roomID, playerID string) error {
	return c.client.HDel(ctx, c.key(roomID), playerID).Err()
}

func (c *notesCache) ClearRoom(ctx context.Context, roomID string) error {
	return c.client.Del(ctx, c.key(roomID)).Err()
}
