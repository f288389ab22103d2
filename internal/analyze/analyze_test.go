package analyze

import (
	"bytes"
	"strings"
	"testing"

	"github.com/annel0/terrain-noise/internal/pack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ramp возвращает массив, высота которого растёт на 1 м по оси i.
func ramp(side int) *pack.Heights {
	h := pack.NewHeights(side)
	for i := 0; i < side; i++ {
		for j := 0; j < side; j++ {
			h.Set(i, j, uint16(1000+10*i))
		}
	}
	return h
}

func testOptions() Options {
	return Options{Octaves: 2, MidOctave: 0, Granularity: 10, MaxGradient: 1, CellSpacing: 5}
}

func TestAnalyze_Ramp(t *testing.T) {
	rep := Analyze(ramp(4), testOptions())
	require.Len(t, rep.Octaves, 2)

	o0 := rep.Octaves[0]
	assert.Equal(t, int64(24), o0.Count)
	assert.InDelta(t, 0.1, o0.Mean(), 1e-12)
	assert.InDelta(t, 0.2, o0.Max, 1e-12)
	assert.Equal(t, int64(12), o0.Distribution[0])
	assert.Equal(t, int64(12), o0.Distribution[2])

	// Октава 1: шаг 2, множитель 2 (выше средней октавы)
	o1 := rep.Octaves[1]
	assert.Equal(t, int64(16), o1.Count)
	assert.InDelta(t, 0.2, o1.Mean(), 1e-12)
	assert.InDelta(t, 0.4, o1.Max, 1e-12)
	assert.Equal(t, int64(8), o1.Distribution[4])
	assert.InDelta(t, 50.0, o1.Percent(0), 1e-12)
}

func TestAnalyze_SkipsMissingData(t *testing.T) {
	h := ramp(4)
	h.Set(1, 1, 0)

	rep := Analyze(h, testOptions())
	// Точка (1,1) не даёт своих двух уклонов и выпадает как сосед у (0,1) и (1,0)
	assert.Equal(t, int64(20), rep.Octaves[0].Count)
}

func TestAnalyze_DropsSteepGradients(t *testing.T) {
	h := ramp(2)
	h.Set(1, 0, 60000)

	opts := testOptions()
	opts.Octaves = 1
	rep := Analyze(h, opts)
	// Оба уклона к (1,0) слишком крутые, остаются (0,0)-(0,1) с нулём и (0,1)-(1,1) с 0.2
	assert.Equal(t, int64(2), rep.Octaves[0].Count)
	assert.InDelta(t, 0.2, rep.Octaves[0].Max, 1e-12)
}

func TestAnalyze_EmptyOctave(t *testing.T) {
	opts := testOptions()
	opts.Octaves = 4
	rep := Analyze(ramp(4), opts)

	// шаг 4 и 8 выходят за массив
	assert.Zero(t, rep.Octaves[2].Count)
	assert.Zero(t, rep.Octaves[3].Mean())
	assert.Equal(t, -9999.0, rep.Octaves[3].Max)
	assert.Zero(t, rep.Octaves[3].Percent(0))

	mean, median, err := rep.MeanOfMeans()
	require.NoError(t, err)
	assert.InDelta(t, 0.15, mean, 1e-12)
	assert.InDelta(t, 0.15, median, 1e-12)
}

func TestReport_WriteTSV(t *testing.T) {
	rep := Analyze(ramp(4), testOptions())

	var buf bytes.Buffer
	require.NoError(t, rep.WriteTSV(&buf))
	lines := strings.Split(buf.String(), "\n")

	assert.Equal(t, "Gradients:\t24\t16\t", lines[0])
	assert.Equal(t, "Mean\t0.1000\t0.2000\t", lines[1])
	assert.Equal(t, "Max\t0.2000\t0.4000\t", lines[2])
	assert.Equal(t, "", lines[3])
	assert.Equal(t, "0.10\t50.0000\t50.0000\t", lines[4])
	assert.Equal(t, "0.20\t0\t0\t", lines[5])
	assert.Equal(t, "0.30\t50.0000\t0\t", lines[6])
	assert.Len(t, lines, 4+10+1)
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, 16, opts.Octaves)
	assert.Equal(t, 9, opts.MidOctave)
	assert.Equal(t, 50, opts.Granularity)
	assert.Equal(t, 1.0, opts.MaxGradient)
}
