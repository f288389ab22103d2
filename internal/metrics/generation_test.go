package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewGenerationMetrics(reg)

	m.ObserveGenerated(64, 0.75, 20*time.Millisecond, 10*time.Millisecond)
	m.ObserveGenerated(32, 0.8, 5*time.Millisecond, 0)
	m.ObserveCached()
	m.ObserveError("invalid")
	m.GeneratorCreated()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.tiles.WithLabelValues("generated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tiles.WithLabelValues("cached")))
	assert.Equal(t, float64(64*64+32*32), testutil.ToFloat64(m.samples))
	assert.InDelta(t, 0.8, testutil.ToFloat64(m.rescale), 1e-6)
	assert.InDelta(t, 0.01, testutil.ToFloat64(m.cpu), 1e-9)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("invalid")))

	count, err := testutil.GatherAndCount(reg, "terrain_tile_generation_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGenerationMetrics_DoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewGenerationMetrics(reg)
	assert.Panics(t, func() { NewGenerationMetrics(reg) })
}
