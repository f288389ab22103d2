package storage

import (
	"context"
	"time"

	"github.com/annel0/terrain-noise/internal/logging"
)

// CachedTileStore - двухуровневое хранилище: Hot Cache (например, Redis)
// поверх Cold Storage (например, BadgerDB). Промах кеша читает холодное
// хранилище и асинхронно прогревает кеш (Read-Through).
type CachedTileStore struct {
	hot  TileStore
	cold TileStore
}

// NewCachedTileStore объединяет кеш и постоянное хранилище
func NewCachedTileStore(hot, cold TileStore) *CachedTileStore {
	return &CachedTileStore{hot: hot, cold: cold}
}

// Save пишет в оба уровня; ошибка кеша только логируется
func (c *CachedTileStore) Save(ctx context.Context, key TileKey, tile *StoredTile) error {
	if err := c.cold.Save(ctx, key, tile); err != nil {
		return err
	}
	if err := c.hot.Save(ctx, key, tile); err != nil {
		logging.Warn("Hot cache save failed for %s: %v", key, err)
	}
	return nil
}

// Load читает из кеша, при промахе - из холодного хранилища
func (c *CachedTileStore) Load(ctx context.Context, key TileKey) (*StoredTile, error) {
	st, err := c.hot.Load(ctx, key)
	if err == nil {
		return st, nil
	}
	if !IsNotFound(err) {
		logging.Warn("Hot cache load failed for %s: %v", key, err)
	}

	st, err = c.cold.Load(ctx, key)
	if err != nil {
		return nil, err
	}

	// Загружаем в кеш для следующих запросов
	go func(st *StoredTile) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.hot.Save(ctx, key, st); err != nil {
			logging.Debug("Hot cache warm-up failed for %s: %v", key, err)
		}
	}(st)
	return st, nil
}

// Delete удаляет из обоих уровней
func (c *CachedTileStore) Delete(ctx context.Context, key TileKey) error {
	if err := c.hot.Delete(ctx, key); err != nil {
		logging.Warn("Hot cache delete failed for %s: %v", key, err)
	}
	return c.cold.Delete(ctx, key)
}

// Close закрывает оба уровня
func (c *CachedTileStore) Close() error {
	hotErr := c.hot.Close()
	if err := c.cold.Close(); err != nil {
		return err
	}
	return hotErr
}
