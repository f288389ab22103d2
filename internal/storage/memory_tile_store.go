package storage

import (
	"context"
	"sync"

	"github.com/annel0/terrain-noise/internal/noise"
)

// MemoryTileStore хранит тайлы в памяти процесса (для тестов и одиночного запуска).
type MemoryTileStore struct {
	mu    sync.RWMutex
	tiles map[TileKey]*StoredTile
}

// NewMemoryTileStore создаёт пустое хранилище в памяти
func NewMemoryTileStore() *MemoryTileStore {
	return &MemoryTileStore{tiles: make(map[TileKey]*StoredTile)}
}

// Save сохраняет копию тайла
func (m *MemoryTileStore) Save(ctx context.Context, key TileKey, tile *StoredTile) error {
	m.mu.Lock()
	m.tiles[key] = cloneTile(tile)
	m.mu.Unlock()
	return nil
}

// Load возвращает копию тайла
func (m *MemoryTileStore) Load(ctx context.Context, key TileKey) (*StoredTile, error) {
	m.mu.RLock()
	st, ok := m.tiles[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrTileNotFound
	}
	return cloneTile(st), nil
}

// Delete удаляет тайл
func (m *MemoryTileStore) Delete(ctx context.Context, key TileKey) error {
	m.mu.Lock()
	delete(m.tiles, key)
	m.mu.Unlock()
	return nil
}

// Len возвращает число тайлов
func (m *MemoryTileStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tiles)
}

// Close ничего не делает
func (m *MemoryTileStore) Close() error { return nil }

func cloneTile(st *StoredTile) *StoredTile {
	tile := noise.NewTile(st.Tile.Side())
	for i := range st.Tile {
		copy(tile[i], st.Tile[i])
	}
	return &StoredTile{Scale: st.Scale, Tile: tile}
}
