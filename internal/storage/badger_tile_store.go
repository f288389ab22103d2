package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
)

// BadgerTileStore - постоянное хранилище тайлов на BadgerDB
type BadgerTileStore struct {
	db      *badger.DB
	codec   *Codec
	ttl     time.Duration
	mutex   sync.RWMutex
	isReady bool
}

// NewBadgerTileStore открывает BadgerDB в каталоге dbPath.
// Пустой dbPath открывает базу в памяти. ttl = 0 - без истечения.
func NewBadgerTileStore(dbPath string, codec *Codec, ttl time.Duration) (*BadgerTileStore, error) {
	opts := badger.DefaultOptions(dbPath)
	if dbPath == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	return &BadgerTileStore{
		db:      db,
		codec:   codec,
		ttl:     ttl,
		isReady: true,
	}, nil
}

// Save сохраняет тайл
func (bs *BadgerTileStore) Save(ctx context.Context, key TileKey, tile *StoredTile) error {
	bs.mutex.RLock()
	defer bs.mutex.RUnlock()

	if !bs.isReady {
		return fmt.Errorf("хранилище не готово")
	}

	data, err := bs.codec.Encode(tile)
	if err != nil {
		return fmt.Errorf("ошибка сериализации тайла: %w", err)
	}

	err = bs.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key.String()), data)
		if bs.ttl > 0 {
			entry = entry.WithTTL(bs.ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}
	return nil
}

// Load загружает тайл
func (bs *BadgerTileStore) Load(ctx context.Context, key TileKey) (*StoredTile, error) {
	bs.mutex.RLock()
	defer bs.mutex.RUnlock()

	if !bs.isReady {
		return nil, fmt.Errorf("хранилище не готово")
	}

	var data []byte
	err := bs.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key.String()))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrTileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	return bs.codec.Decode(data)
}

// Delete удаляет тайл
func (bs *BadgerTileStore) Delete(ctx context.Context, key TileKey) error {
	bs.mutex.RLock()
	defer bs.mutex.RUnlock()

	if !bs.isReady {
		return fmt.Errorf("хранилище не готово")
	}

	return bs.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key.String()))
	})
}

// Close закрывает хранилище данных
func (bs *BadgerTileStore) Close() error {
	bs.mutex.Lock()
	defer bs.mutex.Unlock()

	if !bs.isReady {
		return nil
	}

	bs.isReady = false
	return bs.db.Close()
}
