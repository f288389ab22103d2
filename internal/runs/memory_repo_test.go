package runs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRun(row int) *Run {
	run := NewRun()
	run.Seed = 9999
	run.Omega = 0.3
	run.Row = row
	run.FirstOctave = 1
	run.LastOctave = 8
	run.Side = 256
	return run
}

func TestNewRun(t *testing.T) {
	a, b := NewRun(), NewRun()
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.CreatedAt.IsZero())
}

func TestRun_Validate(t *testing.T) {
	assert.NoError(t, newTestRun(0).Validate())

	run := newTestRun(0)
	run.ID = ""
	assert.Error(t, run.Validate())

	run = newTestRun(0)
	run.Side = 0
	assert.Error(t, run.Validate())

	run = newTestRun(0)
	run.FirstOctave = 9
	assert.Error(t, run.Validate())
}

func TestMemoryRepo(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	t.Run("Record and Recent", func(t *testing.T) {
		for row := 0; row < 5; row++ {
			require.NoError(t, repo.Record(ctx, newTestRun(row)))
		}

		recent, err := repo.Recent(ctx, 3)
		require.NoError(t, err)
		require.Len(t, recent, 3)
		assert.Equal(t, 4, recent[0].Row)
		assert.Equal(t, 2, recent[2].Row)

		all, err := repo.Recent(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, all, 5)
	})

	t.Run("Invalid Run", func(t *testing.T) {
		run := newTestRun(0)
		run.Side = -1
		assert.Error(t, repo.Record(ctx, run))
		assert.Equal(t, 5, repo.Count())
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, repo.Record(cctx, newTestRun(0)), context.Canceled)
	})
}

func TestMemoryRepo_EvictsOldest(t *testing.T) {
	repo := NewMemoryRepoWithCapacity(3)
	ctx := context.Background()
	for row := 0; row < 5; row++ {
		require.NoError(t, repo.Record(ctx, newTestRun(row)))
	}

	assert.Equal(t, 3, repo.Count())
	recent, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, []int{4, 3, 2}, []int{recent[0].Row, recent[1].Row, recent[2].Row})
}
