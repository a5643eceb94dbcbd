package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nimasrn/retail-ledger/internal/model"
	"github.com/nimasrn/retail-ledger/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T, ttl time.Duration) (*StatsCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb, err := redis.NewRedisAdapter(t.Name(), "test:", &redis.Options{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	return NewStatsCache(rdb, ttl), mr
}

func TestStatsCache_RoundTrip(t *testing.T) {
	c, _ := setupCache(t, time.Minute)
	ctx := context.Background()

	_, ok := c.GetKPIs(ctx)
	assert.False(t, ok)

	kpis := &model.DashboardKPIs{
		TotalSales:  38,
		TotalOrders: 2,
		TotalProfit: 15,
		TotalDebt:   32,
	}
	c.SetKPIs(ctx, kpis)

	got, ok := c.GetKPIs(ctx)
	require.True(t, ok)
	assert.Equal(t, kpis, got)
}

func TestStatsCache_Invalidate(t *testing.T) {
	c, _ := setupCache(t, time.Minute)
	ctx := context.Background()

	c.SetKPIs(ctx, &model.DashboardKPIs{TotalSales: 1})
	c.Invalidate()

	_, ok := c.GetKPIs(ctx)
	assert.False(t, ok)
}

func TestStatsCache_TTLExpiry(t *testing.T) {
	c, mr := setupCache(t, time.Second)
	ctx := context.Background()

	c.SetKPIs(ctx, &model.DashboardKPIs{TotalSales: 1})

	_, ok := c.GetKPIs(ctx)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	_, ok = c.GetKPIs(ctx)
	assert.False(t, ok)
}

func TestStatsCache_DownRedisIsAMiss(t *testing.T) {
	c, mr := setupCache(t, time.Minute)
	ctx := context.Background()

	c.SetKPIs(ctx, &model.DashboardKPIs{TotalSales: 1})
	mr.Close()

	_, ok := c.GetKPIs(ctx)
	assert.False(t, ok)
}
