package policy

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sajidkarim/messmate-backend/pkg/db/models"
	"github.com/sajidkarim/messmate-backend/pkg/logger"
	"github.com/sajidkarim/messmate-backend/pkg/redis"
)

const settingsCacheName = "policy"

// Cache fronts the settings document. Misses and cache failures are soft:
// callers fall through to the database either way.
type Cache interface {
	Get(ctx context.Context) (*models.PolicySettings, bool)
	Set(ctx context.Context, settings *models.PolicySettings)
	Invalidate(ctx context.Context)
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	logg   *logger.Logger
}

// NewRedisCache wraps the shared redis client as a settings cache.
func NewRedisCache(client *redis.Client, ttl time.Duration, logg *logger.Logger) Cache {
	if client == nil {
		return NoopCache{}
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &redisCache{client: client, ttl: ttl, logg: logg}
}

func (c *redisCache) Get(ctx context.Context) (*models.PolicySettings, bool) {
	raw, err := c.client.Get(ctx, c.client.SettingsKey(settingsCacheName))
	if err != nil {
		if !errors.Is(err, redis.Nil) && c.logg != nil {
			c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "settings cache read failed")
		}
		return nil, false
	}
	var settings models.PolicySettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		if c.logg != nil {
			c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "settings cache entry corrupt, dropping")
		}
		c.Invalidate(ctx)
		return nil, false
	}
	return &settings, true
}

func (c *redisCache) Set(ctx context.Context, settings *models.PolicySettings) {
	if settings == nil {
		return
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.client.SettingsKey(settingsCacheName), string(raw), c.ttl); err != nil && c.logg != nil {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "settings cache write failed")
	}
}

func (c *redisCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, c.client.SettingsKey(settingsCacheName)); err != nil && c.logg != nil {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "settings cache invalidation failed")
	}
}

// NoopCache disables caching; every read goes to the database.
type NoopCache struct{}

func (NoopCache) Get(ctx context.Context) (*models.PolicySettings, bool) { return nil, false }
func (NoopCache) Set(ctx context.Context, settings *models.PolicySettings) {
}
func (NoopCache) Invalidate(ctx context.Context) {}
