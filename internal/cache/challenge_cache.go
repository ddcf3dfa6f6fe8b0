package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"familyglitch/internal/model"
)

// ChallengeCache holds generated mini-games until they are submitted
type ChallengeCache interface {
	Set(ctx context.Context, ch *model.Challenge) error
	Get(ctx context.Context, sessionID, challengeID string) (*model.Challenge, error)
	// Delete reports whether this call removed the challenge
	Delete(ctx context.Context, sessionID, challengeID string) (bool, error)
}

type challengeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewChallengeCache creates a new challenge cache
func NewChallengeCache(client *redis.Client) ChallengeCache {
	return &challengeCache{
		client: client,
		ttl:    2 * time.Hour,
	}
}

func (c *challengeCache) key(sessionID, challengeID string) string {
	return fmt.Sprintf("session:%s:challenge:%s", sessionID, challengeID)
}

func (c *challengeCache) Set(ctx context.Context, ch *model.Challenge) error {
	data, err := json.Marshal(ch)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(ch.SessionID, ch.ID), data, c.ttl).Err()
}

func (c *challengeCache) Get(ctx context.Context, sessionID, challengeID string) (*model.Challenge, error) {
	data, err := c.client.Get(ctx, c.key(sessionID, challengeID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ch model.Challenge
	if err := json.Unmarshal([]byte(data), &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

func (c *challengeCache) Delete(ctx context.Context, sessionID, challengeID string) (bool, error) {
	n, err := c.client.Del(ctx, c.key(sessionID, challengeID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
