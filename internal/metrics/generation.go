// Package metrics содержит Prometheus-метрики генератора рельефа.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// GenerationMetrics - метрики генерации и хранилища тайлов.
//
//   - terrain_tiles_generated_total{source} - counter (generated | cached)
//   - terrain_tile_generation_seconds - histogram (wall time)
//   - terrain_tile_cpu_seconds_total - counter
//   - terrain_samples_generated_total - counter
//   - terrain_last_rescale_factor - gauge
//   - terrain_tile_errors_total{reason} - counter
//   - terrain_pool_generators_created_total - counter
type GenerationMetrics struct {
	tiles      *prometheus.CounterVec
	duration   prometheus.Histogram
	cpu        prometheus.Counter
	samples    prometheus.Counter
	rescale    prometheus.Gauge
	errors     *prometheus.CounterVec
	generators prometheus.Counter
}

// NewGenerationMetrics создаёт метрики и регистрирует их в reg.
func NewGenerationMetrics(reg prometheus.Registerer) *GenerationMetrics {
	m := &GenerationMetrics{
		tiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "terrain",
			Name:      "tiles_generated_total",
			Help:      "Выданные тайлы по источнику (generated, cached).",
		}, []string{"source"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "terrain",
			Name:      "tile_generation_seconds",
			Help:      "Время генерации одного тайла.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 9),
		}),
		cpu: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "terrain",
			Name:      "tile_cpu_seconds_total",
			Help:      "Процессорное время процесса, потраченное на генерацию.",
		}),
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "terrain",
			Name:      "samples_generated_total",
			Help:      "Число сгенерированных сэмплов шума.",
		}),
		rescale: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "terrain",
			Name:      "last_rescale_factor",
			Help:      "Множитель нормировки последнего тайла.",
		}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "terrain",
			Name:      "tile_errors_total",
			Help:      "Ошибки запросов тайлов по причине.",
		}, []string{"reason"}),
		generators: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "terrain",
			Name:      "pool_generators_created_total",
			Help:      "Генераторы, созданные пулом.",
		}),
	}

	reg.MustRegister(m.tiles, m.duration, m.cpu, m.samples, m.rescale, m.errors, m.generators)
	return m
}

// ObserveGenerated учитывает сгенерированный тайл стороны side.
func (m *GenerationMetrics) ObserveGenerated(side int, scale float32, wall, cpu time.Duration) {
	m.tiles.WithLabelValues("generated").Inc()
	m.duration.Observe(wall.Seconds())
	if cpu > 0 {
		m.cpu.Add(cpu.Seconds())
	}
	m.samples.Add(float64(side * side))
	m.rescale.Set(float64(scale))
}

// ObserveCached учитывает тайл, выданный из хранилища.
func (m *GenerationMetrics) ObserveCached() {
	m.tiles.WithLabelValues("cached").Inc()
}

// ObserveError учитывает неудачный запрос.
func (m *GenerationMetrics) ObserveError(reason string) {
	m.errors.WithLabelValues(reason).Inc()
}

// GeneratorCreated учитывает новый генератор в пуле.
func (m *GenerationMetrics) GeneratorCreated() {
	m.generators.Inc()
}
