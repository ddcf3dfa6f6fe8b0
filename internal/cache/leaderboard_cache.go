package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LeaderboardCache handles Redis ZSET operations for session scores
type LeaderboardCache interface {
	Init(ctx context.Context, sessionID string, playerIDs []string) error
	AddPoints(ctx context.Context, sessionID, playerID string, points int) (int, error)
	GetAll(ctx context.Context, sessionID string) ([]LeaderboardEntry, error)
	GetRank(ctx context.Context, sessionID, playerID string) (int64, error)
}

// LeaderboardEntry represents a single leaderboard entry
type LeaderboardEntry struct {
	PlayerID string `json:"playerId"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
}

type leaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLeaderboardCache creates a new leaderboard cache
func NewLeaderboardCache(client *redis.Client) LeaderboardCache {
	return &leaderboardCache{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (c *leaderboardCache) key(sessionID string) string {
	return fmt.Sprintf("session:%s:lb", sessionID)
}

// Init seats every player at zero without touching existing scores
func (c *leaderboardCache) Init(ctx context.Context, sessionID string, playerIDs []string) error {
	members := make([]redis.Z, len(playerIDs))
	for i, id := range playerIDs {
		members[i] = redis.Z{Score: 0, Member: id}
	}
	pipe := c.client.TxPipeline()
	pipe.ZAddNX(ctx, c.key(sessionID), members...)
	pipe.Expire(ctx, c.key(sessionID), c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *leaderboardCache) AddPoints(ctx context.Context, sessionID, playerID string, points int) (int, error) {
	total, err := c.client.ZIncrBy(ctx, c.key(sessionID), float64(points), playerID).Result()
	if err != nil {
		return 0, err
	}
	return int(total), nil
}

func (c *leaderboardCache) GetAll(ctx context.Context, sessionID string) ([]LeaderboardEntry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, c.key(sessionID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(results))
	for i, z := range results {
		entries[i] = LeaderboardEntry{
			PlayerID: z.Member.(string),
			Score:    int(z.Score),
			Rank:     i + 1,
		}
	}
	return entries, nil
}

func (c *leaderboardCache) GetRank(ctx context.Context, sessionID, playerID string) (int64, error) {
	rank, err := c.client.ZRevRank(ctx, c.key(sessionID), playerID).Result()
	if err == redis.Nil {
		return -1, nil
	}
	return rank + 1, err // 1-indexed
}
