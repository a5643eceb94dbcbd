package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nimasrn/retail-ledger/internal/model"
	"github.com/nimasrn/retail-ledger/pkg/logger"
	"github.com/nimasrn/retail-ledger/pkg/redis"
)

const kpiKey = "stats:kpis"

const defaultTTL = 30 * time.Second

// StatsCache keeps the dashboard KPIs in redis for a short TTL. Any redis
// failure counts as a miss, the ledger keeps working without the cache.
type StatsCache struct {
	rdb redis.RedisAdapter
	ttl time.Duration
}

func NewStatsCache(rdb redis.RedisAdapter, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &StatsCache{rdb: rdb, ttl: ttl}
}

func (c *StatsCache) GetKPIs(_ context.Context) (*model.DashboardKPIs, bool) {
	data, err := c.rdb.Get(kpiKey)
	if err != nil {
		if !errors.Is(err, redis.NilError) {
			logger.Debug("stats cache read failed", "error", err)
		}
		return nil, false
	}

	var kpis model.DashboardKPIs
	if err := json.Unmarshal(data, &kpis); err != nil {
		logger.Debug("stats cache holds malformed payload", "error", err)
		return nil, false
	}
	return &kpis, true
}

func (c *StatsCache) SetKPIs(_ context.Context, kpis *model.DashboardKPIs) {
	data, err := json.Marshal(kpis)
	if err != nil {
		return
	}
	if err := c.rdb.Set(kpiKey, data, c.ttl); err != nil {
		logger.Debug("stats cache write failed", "error", err)
	}
}

func (c *StatsCache) Invalidate() {
	if err := c.rdb.Del(kpiKey); err != nil {
		logger.Debug("stats cache invalidation failed", "error", err)
	}
}
