// Package cache рассылает инвалидацию тайлов между узлами сервера.
// Узел, удаливший тайл, публикует его ключ; остальные узлы удаляют
// тайл из своих локальных хранилищ.
package cache

import (
	"context"
	"time"

	"github.com/annel0/terrain-noise/internal/storage"
)

// Invalidator управляет инвалидацией тайлов через Pub/Sub.
//
// Использование:
//
//	inv, err := NewNATSInvalidator(cfg, nodeID)
//	err = inv.Subscribe(ctx, func(key storage.TileKey) error { return store.Delete(ctx, key) })
//	err = inv.Publish(ctx, key)
type Invalidator interface {
	// Publish отправляет уведомление об инвалидации ключа.
	Publish(ctx context.Context, key storage.TileKey) error

	// Subscribe подписывается на уведомления других узлов.
	Subscribe(ctx context.Context, handler Handler) error

	// Close закрывает соединение.
	Close() error
}

// Handler обрабатывает уведомление об инвалидации.
type Handler func(key storage.TileKey) error

// Message - сообщение об инвалидации.
type Message struct {
	Key       storage.TileKey `json:"key"`
	Timestamp time.Time       `json:"timestamp"`
	NodeID    string          `json:"node_id"`
}

// Stats - счётчики инвалидатора.
type Stats struct {
	Published int64 `json:"published"`
	Received  int64 `json:"received"`
	Errors    int64 `json:"errors"`
}

// StoreHandler возвращает обработчик, удаляющий тайл из store.
func StoreHandler(store storage.TileStore) Handler {
	return func(key storage.TileKey) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return store.Delete(ctx, key)
	}
}
