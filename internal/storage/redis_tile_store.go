package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/annel0/terrain-noise/internal/logging"
	"github.com/go-redis/redis/v8"
)

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Addr      string        // Адрес Redis сервера
	Password  string        // Пароль (пустой если не требуется)
	DB        int           // Номер базы данных
	KeyPrefix string        // Префикс для ключей
	TTL       time.Duration // Время жизни записей
}

// DefaultRedisConfig возвращает конфигурацию по умолчанию
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:      "localhost:6379",
		KeyPrefix: "terrain:",
		TTL:       time.Hour,
	}
}

// RedisTileStore - горячий кеш тайлов в Redis
type RedisTileStore struct {
	client    *redis.Client
	codec     *Codec
	keyPrefix string
	ttl       time.Duration
}

// NewRedisTileStore подключается к Redis и проверяет соединение
func NewRedisTileStore(config *RedisConfig, codec *Codec) (*RedisTileStore, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.Info("Redis tile cache connected: %s", config.Addr)
	return newRedisTileStore(client, codec, config.KeyPrefix, config.TTL), nil
}

func newRedisTileStore(client *redis.Client, codec *Codec, prefix string, ttl time.Duration) *RedisTileStore {
	return &RedisTileStore{client: client, codec: codec, keyPrefix: prefix, ttl: ttl}
}

func (r *RedisTileStore) key(k TileKey) string {
	return r.keyPrefix + k.String()
}

// Save кладёт тайл в Redis с TTL
func (r *RedisTileStore) Save(ctx context.Context, key TileKey, tile *StoredTile) error {
	data, err := r.codec.Encode(tile)
	if err != nil {
		return fmt.Errorf("ошибка сериализации тайла: %w", err)
	}
	if err := r.client.Set(ctx, r.key(key), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set error: %w", err)
	}
	return nil
}

// Load читает тайл из Redis
func (r *RedisTileStore) Load(ctx context.Context, key TileKey) (*StoredTile, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrTileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get error: %w", err)
	}
	return r.codec.Decode(data)
}

// Delete удаляет тайл из Redis
func (r *RedisTileStore) Delete(ctx context.Context, key TileKey) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis delete error: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func (r *RedisTileStore) Close() error {
	return r.client.Close()
}
