// Package app собирает сервис генерации из конфигурации: хранилище тайлов,
// журнал запусков, шину событий, метрики.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/annel0/terrain-noise/internal/cache"
	"github.com/annel0/terrain-noise/internal/config"
	"github.com/annel0/terrain-noise/internal/eventbus"
	"github.com/annel0/terrain-noise/internal/logging"
	"github.com/annel0/terrain-noise/internal/metrics"
	"github.com/annel0/terrain-noise/internal/runs"
	"github.com/annel0/terrain-noise/internal/storage"
	"github.com/annel0/terrain-noise/internal/terrain"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// App - собранные компоненты сервиса.
type App struct {
	Config      *config.Config
	Service     *terrain.Service
	Store       storage.TileStore
	Runs        runs.Repository
	Bus         eventbus.EventBus
	Registry    *prometheus.Registry
	Invalidator cache.Invalidator // NATS при заданном eventbus.url, иначе локальный

	codec       *storage.Codec
	busExporter *eventbus.MetricsExporter
}

// Build создаёт компоненты по конфигурации. При ошибке уже созданные
// компоненты закрываются.
func Build(cfg *config.Config) (_ *App, err error) {
	a := &App{Config: cfg, Registry: prometheus.NewRegistry()}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if a.codec, err = storage.NewCodec(cfg.Storage.Compression); err != nil {
		return nil, err
	}
	if a.Store, err = NewTileStore(cfg.Storage, a.codec); err != nil {
		return nil, fmt.Errorf("хранилище тайлов: %w", err)
	}
	if a.Runs, err = NewRunsRepository(cfg.Runs); err != nil {
		return nil, fmt.Errorf("журнал запусков: %w", err)
	}
	if a.Bus, err = NewEventBus(cfg.EventBus); err != nil {
		return nil, fmt.Errorf("шина событий: %w", err)
	}
	eventbus.Init(a.Bus)
	if _, err = eventbus.StartLoggingListener(a.Bus); err != nil {
		return nil, err
	}
	a.busExporter = eventbus.NewMetricsExporter(a.Bus, a.Registry)
	a.busExporter.Start(time.Second)

	if a.Invalidator, err = NewInvalidator(cfg.EventBus); err != nil {
		return nil, fmt.Errorf("инвалидация кеша: %w", err)
	}
	if err = a.Invalidator.Subscribe(context.Background(), cache.StoreHandler(a.Store)); err != nil {
		return nil, err
	}

	a.Service = terrain.NewService(cfg.Generator, terrain.Options{
		Store:       a.Store,
		Runs:        a.Runs,
		Bus:         a.Bus,
		Metrics:     metrics.NewGenerationMetrics(a.Registry),
		Invalidator: a.Invalidator,
	})
	return a, nil
}

// NewTileStore создаёт хранилище по имени бэкенда.
func NewTileStore(cfg config.StorageConfig, codec *storage.Codec) (storage.TileStore, error) {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	redisCfg := &storage.RedisConfig{
		Addr:      cfg.RedisAddr,
		DB:        cfg.RedisDB,
		KeyPrefix: "terrain:",
		TTL:       ttl,
	}

	switch cfg.Backend {
	case "", "memory":
		return storage.NewMemoryTileStore(), nil
	case "badger":
		bs, err := storage.NewBadgerTileStore(cfg.BadgerPath, codec, 0)
		if err != nil {
			return nil, err
		}
		return bs, nil
	case "redis":
		rs, err := storage.NewRedisTileStore(redisCfg, codec)
		if err != nil {
			return nil, err
		}
		return rs, nil
	case "cached":
		cold, err := storage.NewBadgerTileStore(cfg.BadgerPath, codec, 0)
		if err != nil {
			return nil, err
		}
		hot, err := storage.NewRedisTileStore(redisCfg, codec)
		if err != nil {
			logging.Warn("Redis недоступен (%v), используется только BadgerDB", err)
			return cold, nil
		}
		return storage.NewCachedTileStore(hot, cold), nil
	default:
		return nil, fmt.Errorf("неизвестный бэкенд %q", cfg.Backend)
	}
}

// NewRunsRepository создаёт журнал по имени бэкенда.
func NewRunsRepository(cfg config.RunsConfig) (runs.Repository, error) {
	switch cfg.Backend {
	case "", "memory":
		return runs.NewMemoryRepo(), nil
	case "maria", "mysql":
		repo, err := runs.NewMariaRepo(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case "mongo":
		repo, err := runs.NewMongoRepo(runs.MongoConfig{URI: cfg.MongoURI, Database: cfg.Database})
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("неизвестный бэкенд %q", cfg.Backend)
	}
}

// NewEventBus создаёт JetStream шину, если задан URL, иначе шину в памяти.
func NewEventBus(cfg config.EventBusConfig) (eventbus.EventBus, error) {
	if cfg.URL == "" {
		return eventbus.NewMemoryBus(1024), nil
	}
	bus, err := eventbus.NewJetStreamBus(cfg.URL, cfg.Stream, time.Duration(cfg.Retention)*time.Hour)
	if err != nil {
		return nil, err
	}
	return bus, nil
}

// NewInvalidator создаёт NATS инвалидатор, если задан URL, иначе локальный.
func NewInvalidator(cfg config.EventBusConfig) (cache.Invalidator, error) {
	nodeID := uuid.NewString()
	if cfg.URL == "" {
		return cache.NewLocalHub().Join(nodeID), nil
	}
	inv, err := cache.NewNATSInvalidator(cache.InvalidatorConfig{NATSURL: cfg.URL}, nodeID)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// Close закрывает все компоненты.
func (a *App) Close() error {
	var errs []error
	if a.busExporter != nil {
		a.busExporter.Stop()
	}
	if a.Invalidator != nil {
		errs = append(errs, a.Invalidator.Close())
	}
	if a.Bus != nil {
		eventbus.Init(nil)
		errs = append(errs, a.Bus.Close())
	}
	if a.Runs != nil {
		errs = append(errs, a.Runs.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	if a.codec != nil {
		a.codec.Close()
	}
	return errors.Join(errs...)
}

// Warmup генерирует тайл по умолчанию, чтобы заполнить пул генераторов.
func (a *App) Warmup(ctx context.Context) error {
	g := a.Config.Generator
	_, err := a.Service.GenerateTile(ctx, terrain.Request{
		FirstOctave: g.FirstOctave,
		LastOctave:  g.LastOctave,
		Side:        min(g.TileSide, 256),
	})
	return err
}
