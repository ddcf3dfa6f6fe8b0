package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// UsedTurnCache remembers which turns have already fed a mini-game
type UsedTurnCache interface {
	Add(ctx context.Context, sessionID, turnID string) error
	Members(ctx context.Context, sessionID string) (map[string]bool, error)
}

type usedTurnCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewUsedTurnCache(client *redis.Client) UsedTurnCache {
	return &usedTurnCache{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (c *usedTurnCache) key(sessionID string) string {
	return fmt.Sprintf("session:%s:used", sessionID)
}

func (c *usedTurnCache) Add(ctx context.Context, sessionID, turnID string) error {
	pipe := c.client.TxPipeline()
	pipe.SAdd(ctx, c.key(sessionID), turnID)
	pipe.Expire(ctx, c.key(sessionID), c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *usedTurnCache) Members(ctx context.Context, sessionID string) (map[string]bool, error) {
	ids, err := c.client.SMembers(ctx, c.key(sessionID)).Result()
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
