package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/inventario-ledger/pkg/config"
)

// redisAddr usa TEST_REDIS_ADDR o levanta un contenedor redis.
func redisAddr(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("integración con Redis omitida con -short")
	}
	if addr := os.Getenv("TEST_REDIS_ADDR"); addr != "" {
		return addr
	}
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("sin Docker ni TEST_REDIS_ADDR: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })
	addr, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	return addr
}

func newCache(t *testing.T) *cache.RedisAvailabilityCache {
	c, err := cache.NewRedisAvailabilityCache(context.Background(), config.RedisConfig{
		Addr:            redisAddr(t),
		AvailabilityTTL: time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedisCache_GetSetInvalidate(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()
	company := "company-" + time.Now().Format("150405.000000")

	got, err := c.Get(ctx, company, "item-1", "wh-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	perWh := entity.NewAvailability("item-1", "wh-1", decimal.NewFromInt(12), decimal.NewFromInt(10))
	agg := entity.NewAvailability("item-1", "", decimal.NewFromInt(20), decimal.NewFromInt(10))
	other := entity.NewAvailability("item-2", "wh-1", decimal.NewFromInt(3), decimal.Zero)
	require.NoError(t, c.Set(ctx, company, perWh))
	require.NoError(t, c.Set(ctx, company, agg))
	require.NoError(t, c.Set(ctx, company, other))

	got, err = c.Get(ctx, company, "item-1", "wh-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Available.Equal(decimal.NewFromInt(2)))

	got, err = c.Get(ctx, company, "item-1", "")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.OnHand.Equal(decimal.NewFromInt(20)))

	require.NoError(t, c.InvalidateItems(ctx, company, []string{"item-1"}))

	got, err = c.Get(ctx, company, "item-1", "wh-1")
	require.NoError(t, err)
	assert.Nil(t, got)
	got, err = c.Get(ctx, company, "item-1", "")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = c.Get(ctx, company, "item-2", "wh-1")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestRedisCache_DireccionInvalida(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := cache.NewRedisAvailabilityCache(ctx, config.RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
