package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/annel0/terrain-noise/internal/logging"
	"github.com/annel0/terrain-noise/internal/storage"
	"github.com/nats-io/nats.go"
)

// NATSInvalidator реализует Invalidator поверх NATS Pub/Sub.
type NATSInvalidator struct {
	conn   *nats.Conn
	config InvalidatorConfig
	nodeID string
	dedupe *dedupe

	subMu        sync.Mutex
	subscription *nats.Subscription

	stopCh    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	published int64
	received  int64
	errors    int64
}

// InvalidatorConfig содержит конфигурацию NATS invalidator.
type InvalidatorConfig struct {
	NATSURL       string
	Subject       string
	MaxReconnects int
	ReconnectWait time.Duration
	DedupeWindow  time.Duration
}

func (c *InvalidatorConfig) withDefaults() {
	if c.Subject == "" {
		c.Subject = "terrain.cache.invalidation"
	}
	if c.MaxReconnects == 0 {
		c.MaxReconnects = 10
	}
	if c.ReconnectWait == 0 {
		c.ReconnectWait = 2 * time.Second
	}
	if c.DedupeWindow == 0 {
		c.DedupeWindow = 5 * time.Second
	}
}

// NewNATSInvalidator подключается к NATS. nodeID отличает свои сообщения от чужих.
func NewNATSInvalidator(config InvalidatorConfig, nodeID string) (*NATSInvalidator, error) {
	config.withDefaults()

	conn, err := nats.Connect(config.NATSURL,
		nats.Name("terrain-noise-cache"),
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logging.Warn("NATS disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logging.Info("NATS reconnected to %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	n := &NATSInvalidator{
		conn:   conn,
		config: config,
		nodeID: nodeID,
		dedupe: newDedupe(config.DedupeWindow),
		stopCh: make(chan struct{}),
	}
	n.startDedupeCleanup()

	logging.Info("NATS invalidator initialized: %s (subject: %s)", config.NATSURL, config.Subject)
	return n, nil
}

// Publish отправляет уведомление об инвалидации ключа.
func (n *NATSInvalidator) Publish(ctx context.Context, key storage.TileKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(Message{Key: key, Timestamp: time.Now(), NodeID: n.nodeID})
	if err != nil {
		atomic.AddInt64(&n.errors, 1)
		return fmt.Errorf("marshal invalidation: %w", err)
	}
	if err := n.conn.Publish(n.config.Subject, data); err != nil {
		atomic.AddInt64(&n.errors, 1)
		return fmt.Errorf("publish invalidation: %w", err)
	}
	atomic.AddInt64(&n.published, 1)
	logging.Debug("Published invalidation for %s", key)
	return nil
}

// Subscribe подписывается на инвалидации других узлов до отмены ctx или Close.
func (n *NATSInvalidator) Subscribe(ctx context.Context, handler Handler) error {
	n.subMu.Lock()
	defer n.subMu.Unlock()
	if n.subscription != nil {
		return fmt.Errorf("already subscribed to invalidations")
	}

	sub, err := n.conn.Subscribe(n.config.Subject, func(msg *nats.Msg) {
		n.handle(msg.Data, handler)
	})
	if err != nil {
		return fmt.Errorf("subscribe invalidations: %w", err)
	}
	n.subscription = sub

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		select {
		case <-ctx.Done():
		case <-n.stopCh:
		}
		n.unsubscribe()
	}()
	return nil
}

func (n *NATSInvalidator) handle(data []byte, handler Handler) {
	atomic.AddInt64(&n.received, 1)

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		atomic.AddInt64(&n.errors, 1)
		logging.Error("Failed to unmarshal invalidation message: %v", err)
		return
	}
	if msg.NodeID == n.nodeID {
		return
	}
	if n.dedupe.check(msg.Key.String(), time.Now()) {
		return
	}
	if err := handler(msg.Key); err != nil {
		atomic.AddInt64(&n.errors, 1)
		logging.Error("Invalidation handler failed for %s: %v", msg.Key, err)
	}
}

func (n *NATSInvalidator) unsubscribe() {
	n.subMu.Lock()
	defer n.subMu.Unlock()
	if n.subscription == nil {
		return
	}
	if err := n.subscription.Unsubscribe(); err != nil {
		logging.Error("Failed to unsubscribe from invalidations: %v", err)
	}
	n.subscription = nil
}

func (n *NATSInvalidator) startDedupeCleanup() {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ticker := time.NewTicker(n.config.DedupeWindow)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				n.dedupe.cleanup(now)
			case <-n.stopCh:
				return
			}
		}
	}()
}

// Stats возвращает счётчики.
func (n *NATSInvalidator) Stats() Stats {
	return Stats{
		Published: atomic.LoadInt64(&n.published),
		Received:  atomic.LoadInt64(&n.received),
		Errors:    atomic.LoadInt64(&n.errors),
	}
}

// Close отписывается и закрывает соединение с NATS.
func (n *NATSInvalidator) Close() error {
	n.closeOnce.Do(func() {
		close(n.stopCh)
		n.wg.Wait()
		n.conn.Close()
		logging.Info("NATS invalidator closed")
	})
	return nil
}
