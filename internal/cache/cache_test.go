package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/annel0/terrain-noise/internal/noise"
	"github.com/annel0/terrain-noise/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupe(t *testing.T) {
	d := newDedupe(time.Second)
	now := time.Now()

	assert.False(t, d.check("a", now))
	assert.True(t, d.check("a", now.Add(500*time.Millisecond)))
	assert.False(t, d.check("a", now.Add(2*time.Second)))
	assert.False(t, d.check("b", now))

	assert.Equal(t, 1, d.cleanup(now.Add(2500*time.Millisecond)))
}

func TestDedupe_SweepsWithoutCleanup(t *testing.T) {
	d := newDedupe(time.Second)
	now := time.Now()
	for i := 0; i < 100; i++ {
		d.check(fmt.Sprintf("tile:%d", i), now)
	}
	require.Len(t, d.seen, 100)

	d.check("fresh", now.Add(3*time.Second))
	assert.Len(t, d.seen, 1)
}

func TestLocalInvalidator_DedupeStaysBounded(t *testing.T) {
	ctx := context.Background()
	hub := NewLocalHub()
	a, b := hub.Join("a"), hub.Join("b")
	require.NoError(t, b.Subscribe(ctx, func(storage.TileKey) error { return nil }))

	now := time.Now()
	b.clock = func() time.Time { return now }
	for i := 0; i < 50; i++ {
		require.NoError(t, a.Publish(ctx, storage.TileKey{Row: i, Side: 2}))
	}
	require.Len(t, b.dedupe.seen, 50)

	now = now.Add(time.Minute)
	require.NoError(t, a.Publish(ctx, storage.TileKey{Row: 1000, Side: 2}))
	assert.Len(t, b.dedupe.seen, 1)
}

func TestLocalHub_DeletesOnOtherNodes(t *testing.T) {
	ctx := context.Background()
	key := storage.TileKey{Seed: 1, Row: 2, Col: 3, FirstOctave: 1, LastOctave: 3, Side: 4}

	hub := NewLocalHub()
	a, b := hub.Join("a"), hub.Join("b")
	storeA, storeB := storage.NewMemoryTileStore(), storage.NewMemoryTileStore()
	for _, s := range []*storage.MemoryTileStore{storeA, storeB} {
		require.NoError(t, s.Save(ctx, key, &storage.StoredTile{Scale: 1, Tile: noise.NewTile(4)}))
	}
	require.NoError(t, a.Subscribe(ctx, StoreHandler(storeA)))
	require.NoError(t, b.Subscribe(ctx, StoreHandler(storeB)))

	require.NoError(t, a.Publish(ctx, key))

	assert.Equal(t, 1, storeA.Len(), "publisher keeps its own handler silent")
	assert.Equal(t, 0, storeB.Len())
}

func TestLocalHub_Close(t *testing.T) {
	ctx := context.Background()
	hub := NewLocalHub()
	a, b := hub.Join("a"), hub.Join("b")

	calls := 0
	require.NoError(t, b.Subscribe(ctx, func(storage.TileKey) error { calls++; return nil }))
	require.NoError(t, b.Close())
	require.NoError(t, a.Publish(ctx, storage.TileKey{Side: 2}))
	assert.Zero(t, calls)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.Error(t, a.Publish(cancelled, storage.TileKey{Side: 2}))
}
