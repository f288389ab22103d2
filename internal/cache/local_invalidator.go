package cache

import (
	"context"
	"sync"
	"time"

	"github.com/annel0/terrain-noise/internal/logging"
	"github.com/annel0/terrain-noise/internal/storage"
)

// LocalHub соединяет инвалидаторы внутри одного процесса.
// Используется одним узлом без NATS и в тестах.
type LocalHub struct {
	mu    sync.RWMutex
	nodes []*LocalInvalidator
}

// NewLocalHub создаёт пустой хаб.
func NewLocalHub() *LocalHub { return &LocalHub{} }

// Join создаёт инвалидатор узла nodeID.
func (h *LocalHub) Join(nodeID string) *LocalInvalidator {
	inv := &LocalInvalidator{hub: h, nodeID: nodeID, dedupe: newDedupe(5 * time.Second), clock: time.Now}
	h.mu.Lock()
	h.nodes = append(h.nodes, inv)
	h.mu.Unlock()
	return inv
}

// LocalInvalidator - Invalidator поверх LocalHub. Обработчики вызываются синхронно.
type LocalInvalidator struct {
	hub    *LocalHub
	nodeID string
	dedupe *dedupe
	clock  func() time.Time

	mu      sync.RWMutex
	handler Handler
}

// Publish доставляет ключ всем остальным узлам хаба.
func (l *LocalInvalidator) Publish(ctx context.Context, key storage.TileKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.hub.mu.RLock()
	nodes := append([]*LocalInvalidator(nil), l.hub.nodes...)
	l.hub.mu.RUnlock()

	for _, n := range nodes {
		if n != l {
			n.deliver(key)
		}
	}
	return nil
}

func (l *LocalInvalidator) deliver(key storage.TileKey) {
	l.mu.RLock()
	h := l.handler
	l.mu.RUnlock()
	if h == nil || l.dedupe.check(key.String(), l.clock()) {
		return
	}
	if err := h(key); err != nil {
		logging.Error("Invalidation handler failed for %s on %s: %v", key, l.nodeID, err)
	}
}

// Subscribe устанавливает обработчик.
func (l *LocalInvalidator) Subscribe(ctx context.Context, handler Handler) error {
	l.mu.Lock()
	l.handler = handler
	l.mu.Unlock()
	return nil
}

// Close отключает узел от хаба.
func (l *LocalInvalidator) Close() error {
	l.hub.mu.Lock()
	defer l.hub.mu.Unlock()
	for i, n := range l.hub.nodes {
		if n == l {
			l.hub.nodes = append(l.hub.nodes[:i], l.hub.nodes[i+1:]...)
			break
		}
	}
	return nil
}
