package storage

import (
	"context"
	"testing"
	"time"

	"github.com/annel0/terrain-noise/internal/noise"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTile(t *testing.T, side int) *StoredTile {
	t.Helper()
	g := noise.NewGenerator(side, 42, 0.3)
	tile := noise.NewTile(side)
	scale := g.Generate(3, 5, 1, 4, side, tile)
	return &StoredTile{Scale: scale, Tile: tile}
}

func testKey() TileKey {
	return TileKey{Seed: 42, Omega: 0.3, Row: 5, Col: 3, FirstOctave: 1, LastOctave: 4, Side: 16}
}

func TestTileKey_String(t *testing.T) {
	assert.Equal(t, "tile:42:0.3000:5:3:1:4:16", testKey().String())
}

func TestCodec_RoundTrip(t *testing.T) {
	st := testTile(t, 16)

	for _, compress := range []bool{false, true} {
		codec, err := NewCodec(compress)
		require.NoError(t, err)

		data, err := codec.Encode(st)
		require.NoError(t, err)
		assert.Equal(t, "TILE", string(data[:4]))
		if !compress {
			assert.Len(t, data, codecHeaderSize+16*16*4)
		}

		got, err := codec.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, st.Scale, got.Scale)
		assert.Equal(t, st.Tile, got.Tile)
		codec.Close()
	}
}

func TestCodec_CompressesFlatTile(t *testing.T) {
	codec, err := NewCodec(true)
	require.NoError(t, err)
	defer codec.Close()

	data, err := codec.Encode(&StoredTile{Scale: 1, Tile: noise.NewTile(64)})
	require.NoError(t, err)
	assert.Less(t, len(data), 64*64*4/10)
}

func TestCodec_RejectsMalformed(t *testing.T) {
	codec, err := NewCodec(false)
	require.NoError(t, err)
	defer codec.Close()

	_, err = codec.Decode([]byte("TI"))
	assert.ErrorIs(t, err, errMalformedTile)

	data, err := codec.Encode(testTile(t, 4))
	require.NoError(t, err)
	_, err = codec.Decode(data[:len(data)-3])
	assert.ErrorIs(t, err, errMalformedTile)

	_, err = codec.Encode(&StoredTile{Tile: noise.Tile{{1, 2}, {3}}})
	assert.Error(t, err)
}

func exerciseStore(t *testing.T, store TileStore) {
	ctx := context.Background()
	key := testKey()
	st := testTile(t, 16)

	_, err := store.Load(ctx, key)
	assert.True(t, IsNotFound(err))

	require.NoError(t, store.Save(ctx, key, st))

	got, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, st.Scale, got.Scale)
	assert.Equal(t, st.Tile, got.Tile)

	other := key
	other.Seed++
	_, err = store.Load(ctx, other)
	assert.True(t, IsNotFound(err))

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Load(ctx, key)
	assert.True(t, IsNotFound(err))
}

func TestMemoryTileStore(t *testing.T) {
	store := NewMemoryTileStore()
	defer store.Close()
	exerciseStore(t, store)
}

func TestMemoryTileStore_CopiesTiles(t *testing.T) {
	store := NewMemoryTileStore()
	ctx := context.Background()
	st := testTile(t, 4)
	want := st.Tile[1][2]

	require.NoError(t, store.Save(ctx, testKey(), st))
	st.Tile[1][2] = 99

	got, err := store.Load(ctx, testKey())
	require.NoError(t, err)
	assert.Equal(t, want, got.Tile[1][2])
	assert.Equal(t, 1, store.Len())
}

func TestBadgerTileStore(t *testing.T) {
	codec, err := NewCodec(true)
	require.NoError(t, err)
	defer codec.Close()

	store, err := NewBadgerTileStore(t.TempDir(), codec, 0)
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}

func TestBadgerTileStore_InMemoryWithTTL(t *testing.T) {
	codec, err := NewCodec(false)
	require.NoError(t, err)
	defer codec.Close()

	store, err := NewBadgerTileStore("", codec, time.Hour)
	require.NoError(t, err)
	exerciseStore(t, store)

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
	_, err = store.Load(context.Background(), testKey())
	assert.Error(t, err)
}

func TestCachedTileStore(t *testing.T) {
	hot := NewMemoryTileStore()
	cold := NewMemoryTileStore()
	store := NewCachedTileStore(hot, cold)
	exerciseStore(t, store)
}

func TestCachedTileStore_WarmsHotCache(t *testing.T) {
	hot := NewMemoryTileStore()
	cold := NewMemoryTileStore()
	store := NewCachedTileStore(hot, cold)
	ctx := context.Background()
	st := testTile(t, 8)

	require.NoError(t, cold.Save(ctx, testKey(), st))
	got, err := store.Load(ctx, testKey())
	require.NoError(t, err)
	assert.Equal(t, st.Tile, got.Tile)

	assert.Eventually(t, func() bool { return hot.Len() == 1 }, time.Second, 10*time.Millisecond)
}
