package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const tripsGenerationKey = "trips:available:gen"

// TripsCache кэширует выдачу доступных поездок в Redis.
// Инвалидация увеличивает номер поколения, старые ключи истекают по TTL.
type TripsCache struct {
	redisClient *redis.Client
	ttl         time.Duration
	enabled     bool
}

// NewTripsCache возвращает выключенный кэш, если клиент не задан
func NewTripsCache(client *redis.Client, ttl time.Duration) *TripsCache {
	if client == nil {
		return &TripsCache{enabled: false}
	}
	return &TripsCache{
		redisClient: client,
		ttl:         ttl,
		enabled:     true,
	}
}

// Get получает данные из кэша
func (c *TripsCache) Get(ctx context.Context, key string, result interface{}) (bool, error) {
	if !c.enabled {
		return false, nil
	}

	fullKey, err := c.key(ctx, key)
	if err != nil {
		return false, err
	}

	val, err := c.redisClient.Get(ctx, fullKey).Result()
	if err == redis.Nil {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("ошибка при получении данных из кэша: %w", err)
	}

	if err := json.Unmarshal([]byte(val), result); err != nil {
		return false, fmt.Errorf("ошибка при десериализации данных из кэша: %w", err)
	}
	return true, nil
}

// Set сохраняет данные в кэш
func (c *TripsCache) Set(ctx context.Context, key string, value interface{}) error {
	if !c.enabled {
		return nil
	}

	fullKey, err := c.key(ctx, key)
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("ошибка при сериализации данных для кэша: %w", err)
	}

	if err := c.redisClient.Set(ctx, fullKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("ошибка при сохранении данных в кэш: %w", err)
	}
	return nil
}

// Invalidate делает недействительными все сохраненные выдачи
func (c *TripsCache) Invalidate(ctx context.Context) error {
	if !c.enabled {
		return nil
	}
	if err := c.redisClient.Incr(ctx, tripsGenerationKey).Err(); err != nil {
		return fmt.Errorf("ошибка при инвалидации кэша поездок: %w", err)
	}
	return nil
}

func (c *TripsCache) key(ctx context.Context, key string) (string, error) {
	gen, err := c.redisClient.Get(ctx, tripsGenerationKey).Int64()
	if err != nil && err != redis.Nil {
		return "", fmt.Errorf("ошибка при чтении поколения кэша: %w", err)
	}
	return fmt.Sprintf("trips:available:%d:%s", gen, key), nil
}

// Close закрывает соединение с Redis
func (c *TripsCache) Close() error {
	if c.enabled {
		return c.redisClient.Close()
	}
	return nil
}
