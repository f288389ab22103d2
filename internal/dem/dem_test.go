package dem

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite_Layout(t *testing.T) {
	var buf bytes.Buffer
	rows := [][]float32{{1, 2.5}, {1234.567, 0}}
	require.NoError(t, Write(&buf, NewHeader(2, DefaultCellSize), rows))

	want := "nrows 2\n" +
		"ncols 2\n" +
		"xllcenter 0.000000\n" +
		"yllcenter 0.000000\n" +
		"cellsize 5.000000\n" +
		"NODATA_value  -9999\n" +
		"1.00 2.50 \n" +
		"1234.57 0.00 \n"
	assert.Equal(t, want, buf.String())
}

func TestWrite_RejectsShapeMismatch(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, NewHeader(2, 5), [][]float32{{1, 2}}))
	assert.Error(t, Write(&buf, NewHeader(2, 5), [][]float32{{1, 2}, {3}}))
}

func TestRead_WrittenGrid(t *testing.T) {
	var buf bytes.Buffer
	rows := [][]float32{{10.25, 20.5, 30}, {0.01, 4999.99, 2500}, {1, 2, 3}}
	require.NoError(t, Write(&buf, NewHeader(3, DefaultCellSize), rows))

	grid, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, 3, grid.Header.NRows)
	assert.Equal(t, 3, grid.Header.NCols)
	assert.Equal(t, 5.0, grid.Header.CellSize)
	assert.Equal(t, float64(NoData), grid.Header.NoData)
	for i := range rows {
		for j := range rows[i] {
			assert.InDelta(t, rows[i][j], grid.Rows[i][j], 0.005)
		}
	}
}

func TestReadHeader_CornerKeys(t *testing.T) {
	src := "NCOLS 4\nNROWS 2\nXLLCORNER 100.5\nYLLCORNER -3\nCELLSIZE 30\nNODATA_VALUE -1\n"
	h, err := ReadHeader(bufio.NewReader(strings.NewReader(src)))
	require.NoError(t, err)
	assert.Equal(t, Header{NRows: 2, NCols: 4, XLLCenter: 100.5, YLLCenter: -3, CellSize: 30, NoData: -1}, h)
}

func TestReadHeader_Malformed(t *testing.T) {
	cases := map[string]string{
		"short":        "nrows 2\nncols 2\n",
		"bad value":    "nrows two\nncols 2\nxllcenter 0\nyllcenter 0\ncellsize 5\nNODATA_value -9999\n",
		"unknown key":  "nrows 2\nncols 2\nxllcenter 0\nyllcenter 0\ncellsize 5\nfoo 1\n",
		"zero size":    "nrows 0\nncols 2\nxllcenter 0\nyllcenter 0\ncellsize 5\nNODATA_value -9999\n",
		"fractional":   "nrows 2.5\nncols 2\nxllcenter 0\nyllcenter 0\ncellsize 5\nNODATA_value -9999\n",
		"too wide":     "nrows 4\nncols 4611686018427387904\nxllcenter 0\nyllcenter 0\ncellsize 5\nNODATA_value -9999\n",
		"too many":     "nrows 1048576\nncols 1048576\nxllcenter 0\nyllcenter 0\ncellsize 5\nNODATA_value -9999\n",
		"not a number": "nrows NaN\nncols 2\nxllcenter 0\nyllcenter 0\ncellsize 5\nNODATA_value -9999\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadHeader(bufio.NewReader(strings.NewReader(src)))
			assert.ErrorIs(t, err, ErrMalformedHeader)
		})
	}
}

func TestRead_OverflowingDimensions(t *testing.T) {
	src := "nrows 4\nncols 4611686018427387904\nxllcenter 0\nyllcenter 0\ncellsize 5\nNODATA_value -9999\n1 2 3 4\n"
	var err error
	require.NotPanics(t, func() { _, err = Read(strings.NewReader(src)) })
	assert.ErrorIs(t, err, ErrMalformedHeader)
}

func TestRead_Truncated(t *testing.T) {
	src := "nrows 2\nncols 2\nxllcenter 0\nyllcenter 0\ncellsize 5\nNODATA_value -9999\n1 2\n3\n"
	_, err := Read(strings.NewReader(src))
	assert.Error(t, err)
}
