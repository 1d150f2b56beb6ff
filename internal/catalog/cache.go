package catalog

import (
	"context"
	"encoding/json"
	"time"

	"agama-events/internal/logger"
	"agama-events/internal/models"

	"github.com/go-redis/redis/v8"
)

const ticketTypeCachePrefix = "ticket_types:"

// RedisTicketTypeCache keeps the active ticket-type set for public event
// pages in redis with a short TTL. Cache failures degrade to DB reads.
type RedisTicketTypeCache struct {
	Client *redis.Client
	TTL    time.Duration
	Logger *logger.Logger
}

func NewRedisTicketTypeCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisTicketTypeCache {
	return &RedisTicketTypeCache{Client: client, TTL: ttl, Logger: log}
}

func (c *RedisTicketTypeCache) Get(ctx context.Context, eventID string) ([]models.TicketType, bool) {
	raw, err := c.Client.Get(ctx, ticketTypeCachePrefix+eventID).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.Logger.Warn("CACHE", "ticket type cache read failed: "+err.Error())
		return nil, false
	}

	var set []models.TicketType
	if err := json.Unmarshal([]byte(raw), &set); err != nil {
		c.Logger.Warn("CACHE", "ticket type cache entry corrupt, dropping: "+err.Error())
		c.Client.Del(ctx, ticketTypeCachePrefix+eventID)
		return nil, false
	}
	return set, true
}

func (c *RedisTicketTypeCache) Set(ctx context.Context, eventID string, set []models.TicketType) {
	raw, err := json.Marshal(set)
	if err != nil {
		return
	}
	if err := c.Client.Set(ctx, ticketTypeCachePrefix+eventID, raw, c.TTL).Err(); err != nil {
		c.Logger.Warn("CACHE", "ticket type cache write failed: "+err.Error())
	}
}

func (c *RedisTicketTypeCache) Invalidate(ctx context.Context, eventID string) {
	if err := c.Client.Del(ctx, ticketTypeCachePrefix+eventID).Err(); err != nil {
		c.Logger.Warn("CACHE", "ticket type cache invalidation failed: "+err.Error())
	}
}
