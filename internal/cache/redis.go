package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/faresearch/config"
	"github.com/redis/go-redis/v9"
)

// RedisCache holds the adjacency lists of the airport graph. Route discovery
// hits the same handful of hub airports over and over, so the direct-edge
// lookups are cache-aside with a short TTL.
type RedisCache struct {
	client   *redis.Client
	graphTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, graphTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:   redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		graphTTL: graphTTL,
	}
}

// NewRedisCacheWithClient wires an existing client (used in tests).
func NewRedisCacheWithClient(client *redis.Client, graphTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, graphTTL: graphTTL}
}

// GetConnections returns the cached adjacency list for an airport, or nil on
// a miss. A cached empty list is distinct from a miss.
func (c *RedisCache) GetConnections(ctx context.Context, code string) ([]string, error) {
	data, err := c.client.Get(ctx, connectionsKey(code)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var codes []string
	if err := json.Unmarshal(data, &codes); err != nil {
		return nil, err
	}
	if codes == nil {
		codes = []string{}
	}
	return codes, nil
}

func (c *RedisCache) SetConnections(ctx context.Context, code string, connections []string) error {
	if connections == nil {
		connections = []string{}
	}
	payload, err := json.Marshal(connections)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, connectionsKey(code), payload, c.graphTTL).Err()
}

func connectionsKey(code string) string {
	return fmt.Sprintf("graph:connections:%s", code)
}
