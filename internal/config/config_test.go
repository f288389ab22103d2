package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutPath(t *testing.T) {
	t.Setenv("TERRAIN_CONFIG", "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 4096, cfg.Generator.TileSide)
	assert.Equal(t, 5, cfg.Generator.FirstOctave)
	assert.Equal(t, 12, cfg.Generator.LastOctave)
	assert.Equal(t, "memory", cfg.Storage.Backend)
}

func TestLoad_OverridesFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terrain.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
generator:
  tile_side: 512
  seed: 42
  omega: 0.7
storage:
  backend: badger
  badger_path: /tmp/tiles
server:
  rest_port: 9000
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 512, cfg.Generator.TileSide)
	assert.Equal(t, uint32(42), cfg.Generator.Seed)
	assert.Equal(t, float32(0.7), cfg.Generator.Omega)
	assert.Equal(t, 5, cfg.Generator.FirstOctave, "незаданные поля остаются по умолчанию")
	assert.Equal(t, "badger", cfg.Storage.Backend)
	assert.Equal(t, 9000, cfg.Server.GetRESTPort())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestPortFallback(t *testing.T) {
	t.Setenv("TERRAIN_METRICS_PORT", "3111")
	s := ServerConfig{}
	assert.Equal(t, 3111, s.GetMetricsPort())
	assert.Equal(t, 8088, s.GetRESTPort())
}

func TestGeneratorValidate(t *testing.T) {
	g := Default().Generator
	warnings, err := g.Validate()
	require.NoError(t, err)
	assert.Empty(t, warnings)

	g.Omega = 1.5
	warnings, err = g.Validate()
	require.NoError(t, err)
	assert.Len(t, warnings, 1)

	bad := Default().Generator
	bad.TileSide = 1000
	_, err = bad.Validate()
	assert.Error(t, err)

	bad = Default().Generator
	bad.TileSide = 16
	bad.FirstOctave = 5 // 16 >> 4 = 1
	_, err = bad.Validate()
	assert.Error(t, err)
}
