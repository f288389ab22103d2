package app

import (
	"context"
	"testing"

	"github.com/annel0/terrain-noise/internal/config"
	"github.com/annel0/terrain-noise/internal/runs"
	"github.com/annel0/terrain-noise/internal/storage"
	"github.com/annel0/terrain-noise/internal/terrain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_MemoryBackends(t *testing.T) {
	cfg := config.Default()
	cfg.Generator.TileSide = 32
	cfg.Generator.FirstOctave = 1
	cfg.Generator.LastOctave = 4

	a, err := Build(cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &storage.MemoryTileStore{}, a.Store)
	assert.IsType(t, &runs.MemoryRepo{}, a.Runs)

	require.NoError(t, a.Warmup(context.Background()))
	res, err := a.Service.GenerateTile(context.Background(), terrain.Request{FirstOctave: 1, LastOctave: 4, Side: 32})
	require.NoError(t, err)
	assert.True(t, res.Cached)

	families, err := a.Registry.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["terrain_tiles_generated_total"])
	assert.True(t, names["go_goroutines"])
}

func TestBuild_BadgerBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Generator.TileSide = 16
	cfg.Storage.Backend = "badger"
	cfg.Storage.BadgerPath = t.TempDir()

	a, err := Build(cfg)
	require.NoError(t, err)
	assert.IsType(t, &storage.BadgerTileStore{}, a.Store)
	require.NoError(t, a.Close())
}

func TestBuild_UnknownBackends(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = "floppy"
	_, err := Build(cfg)
	assert.Error(t, err)

	cfg = config.Default()
	cfg.Runs.Backend = "csv"
	_, err = Build(cfg)
	assert.Error(t, err)
}
