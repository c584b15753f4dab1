package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/pkg/config"
)

const (
	keyPrefix    = "availability"
	aggregateKey = "_all"
	defaultTTL   = 30 * time.Second
	pingTimeout  = 5 * time.Second
)

// RedisAvailabilityCache caché de disponibilidad para tableros. Cada ítem guarda el conjunto de
// sus claves para invalidar todas sus bodegas de una vez.
type RedisAvailabilityCache struct {
	client     redis.UniversalClient
	ttl        time.Duration
	ownsClient bool
}

// NewRedisAvailabilityCache conecta a Redis y verifica con PING.
func NewRedisAvailabilityCache(ctx context.Context, cfg config.RedisConfig) (*RedisAvailabilityCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: conectar a redis %s: %w", cfg.Addr, err)
	}

	c := NewRedisAvailabilityCacheWithClient(client, cfg.AvailabilityTTL)
	c.ownsClient = true
	return c, nil
}

// NewRedisAvailabilityCacheWithClient usa un cliente existente; el caller conserva su cierre.
func NewRedisAvailabilityCacheWithClient(client redis.UniversalClient, ttl time.Duration) *RedisAvailabilityCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisAvailabilityCache{client: client, ttl: ttl}
}

func entryKey(companyID, itemID, warehouseID string) string {
	if warehouseID == "" {
		warehouseID = aggregateKey
	}
	return fmt.Sprintf("%s:%s:%s:%s", keyPrefix, companyID, itemID, warehouseID)
}

func indexKey(companyID, itemID string) string {
	return fmt.Sprintf("%s:%s:%s:keys", keyPrefix, companyID, itemID)
}

type cachedAvailability struct {
	ItemID      string          `json:"item_id"`
	WarehouseID string          `json:"warehouse_id"`
	OnHand      decimal.Decimal `json:"on_hand"`
	Committed   decimal.Decimal `json:"committed"`
	Available   decimal.Decimal `json:"available"`
}

// Get devuelve (nil, nil) si no hay entrada.
func (c *RedisAvailabilityCache) Get(ctx context.Context, companyID, itemID, warehouseID string) (*entity.Availability, error) {
	data, err := c.client.Get(ctx, entryKey(companyID, itemID, warehouseID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: leer disponibilidad: %w", err)
	}
	var v cachedAvailability
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("cache: decodificar disponibilidad: %w", err)
	}
	return &entity.Availability{
		ItemID:      v.ItemID,
		WarehouseID: v.WarehouseID,
		OnHand:      v.OnHand,
		Committed:   v.Committed,
		Available:   v.Available,
	}, nil
}

// Set guarda la cifra con TTL y la registra en el índice del ítem.
func (c *RedisAvailabilityCache) Set(ctx context.Context, companyID string, a entity.Availability) error {
	data, err := json.Marshal(cachedAvailability{
		ItemID:      a.ItemID,
		WarehouseID: a.WarehouseID,
		OnHand:      a.OnHand,
		Committed:   a.Committed,
		Available:   a.Available,
	})
	if err != nil {
		return fmt.Errorf("cache: codificar disponibilidad: %w", err)
	}
	key := entryKey(companyID, a.ItemID, a.WarehouseID)
	idx := indexKey(companyID, a.ItemID)

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, key, data, c.ttl)
	pipe.SAdd(ctx, idx, key)
	pipe.Expire(ctx, idx, 2*c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache: guardar disponibilidad: %w", err)
	}
	return nil
}

// InvalidateItems borra todas las entradas de los ítems indicados.
func (c *RedisAvailabilityCache) InvalidateItems(ctx context.Context, companyID string, itemIDs []string) error {
	for _, itemID := range itemIDs {
		idx := indexKey(companyID, itemID)
		keys, err := c.client.SMembers(ctx, idx).Result()
		if err != nil {
			return fmt.Errorf("cache: leer índice de %s: %w", itemID, err)
		}
		keys = append(keys, idx)
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("cache: invalidar %s: %w", itemID, err)
		}
	}
	return nil
}

// Close cierra el cliente solo si lo creó esta caché.
func (c *RedisAvailabilityCache) Close() error {
	if !c.ownsClient {
		return nil
	}
	return c.client.Close()
}
