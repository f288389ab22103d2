package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/annel0/terrain-noise/internal/noise"
)

// ErrTileNotFound возвращается, когда тайла нет в хранилище.
var ErrTileNotFound = errors.New("tile not found")

// TileKey однозначно определяет сгенерированный тайл: параметры генератора
// и параметры запроса. Один ключ всегда даёт один и тот же тайл.
type TileKey struct {
	Seed        uint32
	Omega       float32
	Row         int
	Col         int
	FirstOctave int
	LastOctave  int
	Side        int
}

// String возвращает ключ для key-value хранилищ.
func (k TileKey) String() string {
	return fmt.Sprintf("tile:%d:%.4f:%d:%d:%d:%d:%d",
		k.Seed, k.Omega, k.Row, k.Col, k.FirstOctave, k.LastOctave, k.Side)
}

// StoredTile - тайл вместе с множителем нормировки.
type StoredTile struct {
	Scale float32
	Tile  noise.Tile
}

// TileStore определяет интерфейс для хранения сгенерированных тайлов.
//
// Использование:
//
//	store, err := NewBadgerTileStore(path, codec, ttl)
//	err := store.Save(ctx, key, tile)
//	tile, err := store.Load(ctx, key) // ErrTileNotFound при промахе
type TileStore interface {
	// Save сохраняет тайл под ключом key.
	Save(ctx context.Context, key TileKey, tile *StoredTile) error

	// Load загружает тайл. Возвращает ErrTileNotFound если ключа нет.
	Load(ctx context.Context, key TileKey) (*StoredTile, error)

	// Delete удаляет тайл, отсутствие ключа не ошибка.
	Delete(ctx context.Context, key TileKey) error

	// Close закрывает хранилище.
	Close() error
}

// IsNotFound проверяет, является ли ошибка промахом хранилища.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTileNotFound)
}
