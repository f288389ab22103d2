// Package terrain - сервис генерации тайлов рельефа поверх амортизированного шума.
package terrain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/annel0/terrain-noise/internal/cache"
	"github.com/annel0/terrain-noise/internal/config"
	"github.com/annel0/terrain-noise/internal/eventbus"
	"github.com/annel0/terrain-noise/internal/logging"
	"github.com/annel0/terrain-noise/internal/metrics"
	"github.com/annel0/terrain-noise/internal/noise"
	"github.com/annel0/terrain-noise/internal/observability"
	"github.com/annel0/terrain-noise/internal/runs"
	"github.com/annel0/terrain-noise/internal/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Options - необязательные зависимости сервиса. Любое поле может быть nil.
type Options struct {
	Store   storage.TileStore
	Runs    runs.Repository
	Bus     eventbus.EventBus // nil - глобальная шина eventbus.Publish
	Metrics *metrics.GenerationMetrics
	Logger  *logging.Logger

	// Invalidator рассылает удаление тайла другим узлам.
	Invalidator cache.Invalidator
}

// Service выдаёт тайлы рельефа для фиксированных seed и omega.
// Генераторы берутся из пула, поэтому независимые запросы можно
// обслуживать параллельно; один тайл всегда генерируется в одной горутине.
type Service struct {
	seed    uint32
	omega   float32
	store   storage.TileStore
	runs    runs.Repository
	bus     eventbus.EventBus
	metrics *metrics.GenerationMetrics
	log     *logging.Logger
	inv     cache.Invalidator
	cpu     cpuClock
	pool    sync.Pool
}

// NewService создаёт сервис. omega вне [0,1] обрезается с предупреждением в логе.
func NewService(cfg config.GeneratorConfig, opts Options) *Service {
	s := &Service{
		seed:    cfg.Seed,
		store:   opts.Store,
		runs:    opts.Runs,
		bus:     opts.Bus,
		metrics: opts.Metrics,
		log:     opts.Logger,
		inv:     opts.Invalidator,
		cpu:     processCPUClock(),
	}
	if s.log == nil {
		s.log = logging.GetTerrainLogger()
	}

	// Таблицы генератора растут под запрос, начальный размер - из конфигурации
	side := cfg.TileSide
	if side < 2 {
		side = 2
	}
	probe := noise.NewExponentialMagnitude(cfg.Seed, cfg.Omega)
	if probe.Omega != cfg.Omega {
		s.log.Warn("omega %v вне [0,1], используется %v", cfg.Omega, probe.Omega)
	}
	s.omega = probe.Omega

	s.pool.New = func() any {
		if s.metrics != nil {
			s.metrics.GeneratorCreated()
		}
		return noise.NewGenerator(side, s.seed, s.omega)
	}
	return s
}

// Seed возвращает сид сервиса.
func (s *Service) Seed() uint32 { return s.seed }

// Omega возвращает множитель хвоста после обрезки.
func (s *Service) Omega() float32 { return s.omega }

// Key возвращает ключ хранилища для запроса.
func (s *Service) Key(req Request) storage.TileKey {
	return storage.TileKey{
		Seed:        s.seed,
		Omega:       s.omega,
		Row:         req.Row,
		Col:         req.Col,
		FirstOctave: req.FirstOctave,
		LastOctave:  req.LastOctave,
		Side:        req.Side,
	}
}

// GenerateTile возвращает тайл из хранилища или генерирует его.
// Ошибки хранилища при чтении и записи не прерывают генерацию.
func (s *Service) GenerateTile(ctx context.Context, req Request) (*Result, error) {
	ctx, span := observability.Tracer().Start(ctx, "terrain.GenerateTile")
	defer span.End()
	span.SetAttributes(
		attribute.Int("tile.row", req.Row),
		attribute.Int("tile.col", req.Col),
		attribute.Int("tile.first_octave", req.FirstOctave),
		attribute.Int("tile.last_octave", req.LastOctave),
		attribute.Int("tile.side", req.Side),
	)

	if err := req.Validate(); err != nil {
		s.observeError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		return nil, err
	}

	key := s.Key(req)
	start := time.Now()

	if res, ok := s.lookup(ctx, req, key); ok {
		res.WallTime = time.Since(start)
		span.SetAttributes(attribute.Bool("tile.cached", true))
		s.finish(ctx, res)
		return res, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := s.generate(req, key)
	span.SetAttributes(
		attribute.Bool("tile.cached", false),
		attribute.Float64("tile.scale", float64(res.Scale)),
	)

	if s.store != nil {
		if err := s.store.Save(ctx, key, &storage.StoredTile{Scale: res.Scale, Tile: res.Tile}); err != nil {
			s.log.Warn("не удалось сохранить тайл %s: %v", key, err)
			s.observeReason("store_save")
		}
	}

	s.finish(ctx, res)
	return res, nil
}

func (s *Service) lookup(ctx context.Context, req Request, key storage.TileKey) (*Result, bool) {
	if s.store == nil {
		return nil, false
	}
	st, err := s.store.Load(ctx, key)
	if err != nil {
		if !storage.IsNotFound(err) {
			s.log.Warn("ошибка чтения тайла %s: %v", key, err)
			s.observeReason("store_load")
		}
		return nil, false
	}
	return &Result{
		Request: req,
		Key:     key,
		RunID:   runs.NewRun().ID,
		Tile:    st.Tile,
		Scale:   st.Scale,
		Octaves: noise.Octaves(req.FirstOctave, req.LastOctave, req.Side),
		Cached:  true,
	}, true
}

func (s *Service) generate(req Request, key storage.TileKey) *Result {
	gen := s.pool.Get().(*noise.Generator)
	defer s.pool.Put(gen)

	tile := noise.NewTile(req.Side)
	x, y := req.Origin()

	cpuStart := s.cpu()
	start := time.Now()
	scale := gen.Generate(x, y, req.FirstOctave, req.LastOctave, req.Side, tile)
	wall := time.Since(start)
	cpu := s.cpu() - cpuStart

	return &Result{
		Request:  req,
		Key:      key,
		RunID:    runs.NewRun().ID,
		Tile:     tile,
		Scale:    scale,
		Octaves:  noise.Octaves(req.FirstOctave, req.LastOctave, req.Side),
		WallTime: wall,
		CPUTime:  cpu,
	}
}

// finish пишет журнал, публикует событие и обновляет метрики.
func (s *Service) finish(ctx context.Context, res *Result) {
	req := res.Request
	if res.Cached {
		s.log.Debug("тайл (%d,%d) %dx%d выдан из хранилища", req.Row, req.Col, req.Side, req.Side)
	} else {
		s.log.Info("тайл (%d,%d) %dx%d: %d октав за %v (CPU %v), нормировка %.6f",
			req.Row, req.Col, req.Side, req.Side, res.Octaves, res.WallTime, res.CPUTime, res.Scale)
	}

	if s.metrics != nil {
		if res.Cached {
			s.metrics.ObserveCached()
		} else {
			s.metrics.ObserveGenerated(req.Side, res.Scale, res.WallTime, res.CPUTime)
		}
	}

	if s.runs != nil {
		run := &runs.Run{
			ID:          res.RunID,
			Seed:        s.seed,
			Omega:       s.omega,
			Row:         req.Row,
			Col:         req.Col,
			FirstOctave: req.FirstOctave,
			LastOctave:  req.LastOctave,
			Side:        req.Side,
			Octaves:     res.Octaves,
			Scale:       res.Scale,
			Cached:      res.Cached,
			WallTime:    res.WallTime,
			CPUTime:     res.CPUTime,
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.runs.Record(ctx, run); err != nil {
			s.log.Warn("не удалось записать запуск %s: %v", run.ID, err)
		}
	}

	ev, err := eventbus.NewTileEnvelope(eventbus.TileGenerated{
		RunID:       res.RunID,
		Seed:        s.seed,
		Omega:       s.omega,
		Row:         req.Row,
		Col:         req.Col,
		FirstOctave: req.FirstOctave,
		LastOctave:  req.LastOctave,
		Side:        req.Side,
		Scale:       res.Scale,
		Cached:      res.Cached,
		DurationMs:  float64(res.WallTime.Microseconds()) / 1000,
	})
	if err != nil {
		s.log.Warn("событие тайла: %v", err)
		return
	}
	if s.bus != nil {
		err = s.bus.Publish(ctx, ev)
	} else {
		err = eventbus.Publish(ctx, ev)
	}
	if err != nil {
		s.log.Warn("публикация %s: %v", ev.EventType, err)
	}
}

// InvalidateTile удаляет тайл из хранилища и оповещает другие узлы.
func (s *Service) InvalidateTile(ctx context.Context, req Request) error {
	if err := req.Validate(); err != nil {
		return err
	}
	key := s.Key(req)
	if s.store != nil {
		if err := s.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("удаление тайла %s: %w", key, err)
		}
	}
	if s.inv != nil {
		if err := s.inv.Publish(ctx, key); err != nil {
			return fmt.Errorf("инвалидация %s: %w", key, err)
		}
	}
	s.log.Info("тайл %s инвалидирован", key)
	return nil
}

// RecentRuns возвращает последние записи журнала.
func (s *Service) RecentRuns(ctx context.Context, limit int) ([]runs.Run, error) {
	if s.runs == nil {
		return nil, fmt.Errorf("журнал запусков не настроен")
	}
	return s.runs.Recent(ctx, limit)
}

func (s *Service) observeError(err error) {
	switch {
	case errors.Is(err, ErrInsufficientGranularity):
		s.observeReason("granularity")
	default:
		s.observeReason("invalid")
	}
}

func (s *Service) observeReason(reason string) {
	if s.metrics != nil {
		s.metrics.ObserveError(reason)
	}
}
