package pack

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/annel0/terrain-noise/internal/dem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDEM(t *testing.T, dir, name string, rows [][]float32) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, dem.Write(f, dem.NewHeader(len(rows), dem.DefaultCellSize), rows))
	return path
}

func TestQuantize(t *testing.T) {
	cases := []struct {
		h    float32
		want uint16
		ok   bool
	}{
		{1234.56, 12345, true},
		{0.05, 0, true},
		{0, 0, false},
		{-9999, 0, false},
		{7000, 65535, true},
	}
	for _, c := range cases {
		v, ok := Quantize(c.h)
		assert.Equal(t, c.want, v, "h=%v", c.h)
		assert.Equal(t, c.ok, ok, "h=%v", c.h)
	}
}

func TestPackFiles(t *testing.T) {
	dir := t.TempDir()
	var names []string
	for k := 0; k < 4; k++ {
		base := float32(100 * (k + 1))
		rows := [][]float32{{base, base + 1}, {base + 2, -9999}}
		names = append(names, writeDEM(t, dir, string(rune('a'+k))+".asc", rows))
	}

	h, st, err := PackFiles(names, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, h.Side)
	assert.Equal(t, int64(16), st.Points)
	assert.Equal(t, int64(4), st.BadPoints)

	assert.Equal(t, uint16(1000), h.At(0, 0)) // a
	assert.Equal(t, uint16(2010), h.At(0, 3)) // b
	assert.Equal(t, uint16(3020), h.At(3, 0)) // c
	assert.Equal(t, uint16(0), h.At(3, 3))    // d, нет данных
	assert.Equal(t, uint16(4000), h.At(2, 2))
}

func TestPackFiles_Errors(t *testing.T) {
	dir := t.TempDir()
	small := writeDEM(t, dir, "small.asc", [][]float32{{1}})
	big := writeDEM(t, dir, "big.asc", [][]float32{{1, 2}, {3, 4}})

	_, _, err := PackFiles([]string{small}, 2)
	assert.Error(t, err)

	_, _, err = PackFiles([]string{big, small, big, big}, 2)
	assert.Error(t, err)

	_, _, err = PackFiles([]string{filepath.Join(dir, "missing.asc")}, 1)
	assert.Error(t, err)
}

func TestWriteRead(t *testing.T) {
	h := NewHeights(64)
	for i := range h.Data {
		h.Data[i] = uint16(i * 7)
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, h))
	assert.Equal(t, "TPK1", buf.String()[:4])

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestRead_BadFormat(t *testing.T) {
	_, err := Read(strings.NewReader("NOPE1234"))
	assert.ErrorIs(t, err, ErrBadFormat)

	_, err = Read(strings.NewReader("TP"))
	assert.ErrorIs(t, err, ErrBadFormat)
}

func TestReadFileList(t *testing.T) {
	names, err := ReadFileList(strings.NewReader("a.asc b.asc\n c.asc\n\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.asc", "b.asc", "c.asc"}, names)
}
