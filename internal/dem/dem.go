// Package dem читает и пишет сетки высот в формате Esri ASCII grid (.asc).
package dem

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// NoData - значение ячейки без данных.
const NoData = -9999

// DefaultCellSize - шаг сетки в метрах.
const DefaultCellSize = 5

// Пределы размеров сетки при чтении.
const (
	MaxDimension = 1 << 20 // строк или столбцов
	MaxCells     = 1 << 28 // значений всего
)

// ErrMalformedHeader - заголовок файла не соответствует формату.
var ErrMalformedHeader = errors.New("malformed DEM header")

// Header - шесть строк заголовка ASCII grid.
type Header struct {
	NRows     int
	NCols     int
	XLLCenter float64
	YLLCenter float64
	CellSize  float64
	NoData    float64
}

// NewHeader возвращает заголовок квадратной сетки n×n с началом в нуле.
func NewHeader(n int, cellSize float64) Header {
	return Header{NRows: n, NCols: n, CellSize: cellSize, NoData: NoData}
}

// Grid - сетка высот, Rows[i][j] - строка i, столбец j.
type Grid struct {
	Header Header
	Rows   [][]float32
}

// Write пишет заголовок и строки значений с точностью до сантиметра.
func Write(w io.Writer, h Header, rows [][]float32) error {
	bw := bufio.NewWriterSize(w, 1<<16)
	fmt.Fprintf(bw, "nrows %d\n", h.NRows)
	fmt.Fprintf(bw, "ncols %d\n", h.NCols)
	fmt.Fprintf(bw, "xllcenter %0.6f\n", h.XLLCenter)
	fmt.Fprintf(bw, "yllcenter %0.6f\n", h.YLLCenter)
	fmt.Fprintf(bw, "cellsize %0.6f\n", h.CellSize)
	fmt.Fprintf(bw, "NODATA_value  %d\n", int(h.NoData))

	if len(rows) != h.NRows {
		return fmt.Errorf("сетка: %d строк, в заголовке %d", len(rows), h.NRows)
	}
	buf := make([]byte, 0, 16)
	for i, row := range rows {
		if len(row) != h.NCols {
			return fmt.Errorf("строка %d: %d значений, в заголовке %d", i, len(row), h.NCols)
		}
		for _, v := range row {
			buf = strconv.AppendFloat(buf[:0], float64(v), 'f', 2, 32)
			buf = append(buf, ' ')
			bw.Write(buf)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// ReadHeader разбирает шесть строк заголовка. Ключи сравниваются без учёта регистра,
// xllcorner/yllcorner принимаются наравне с xllcenter/yllcenter.
func ReadHeader(r *bufio.Reader) (Header, error) {
	var h Header
	seen := make(map[string]bool, 6)
	for i := 0; i < 6; i++ {
		line, err := r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return h, fmt.Errorf("%w: строка %d: %v", ErrMalformedHeader, i+1, err)
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return h, fmt.Errorf("%w: строка %d %q", ErrMalformedHeader, i+1, strings.TrimSpace(line))
		}
		key := strings.ToLower(fields[0])
		val, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return h, fmt.Errorf("%w: %s: %v", ErrMalformedHeader, key, err)
		}
		switch key {
		case "nrows":
			if h.NRows, err = dimension(key, val); err != nil {
				return h, err
			}
		case "ncols":
			if h.NCols, err = dimension(key, val); err != nil {
				return h, err
			}
		case "xllcenter", "xllcorner":
			h.XLLCenter = val
		case "yllcenter", "yllcorner":
			h.YLLCenter = val
		case "cellsize":
			h.CellSize = val
		case "nodata_value":
			h.NoData = val
		default:
			return h, fmt.Errorf("%w: неизвестный ключ %q", ErrMalformedHeader, fields[0])
		}
		seen[key] = true
	}
	if !seen["nrows"] || !seen["ncols"] || h.NRows <= 0 || h.NCols <= 0 {
		return h, fmt.Errorf("%w: размеры сетки %dx%d", ErrMalformedHeader, h.NRows, h.NCols)
	}
	if h.NRows*h.NCols > MaxCells {
		return h, fmt.Errorf("%w: сетка %dx%d больше %d значений", ErrMalformedHeader, h.NRows, h.NCols, MaxCells)
	}
	return h, nil
}

// dimension проверяет, что размер целый и лежит в (0, MaxDimension].
func dimension(key string, val float64) (int, error) {
	if val != math.Trunc(val) || val <= 0 || val > MaxDimension {
		return 0, fmt.Errorf("%w: %s = %v", ErrMalformedHeader, key, val)
	}
	return int(val), nil
}

// Read читает заголовок и все значения сетки.
func Read(r io.Reader) (*Grid, error) {
	br := bufio.NewReaderSize(r, 1<<16)
	h, err := ReadHeader(br)
	if err != nil {
		return nil, err
	}

	sc := bufio.NewScanner(br)
	sc.Buffer(make([]byte, 1<<16), 1<<26)
	sc.Split(bufio.ScanWords)

	rows := make([][]float32, h.NRows)
	buf := make([]float32, h.NRows*h.NCols)
	for i := range rows {
		rows[i] = buf[i*h.NCols : (i+1)*h.NCols]
		for j := range rows[i] {
			if !sc.Scan() {
				if err := sc.Err(); err != nil {
					return nil, fmt.Errorf("чтение значений: %w", err)
				}
				return nil, fmt.Errorf("сетка обрывается на строке %d, столбце %d", i, j)
			}
			v, err := strconv.ParseFloat(sc.Text(), 32)
			if err != nil {
				return nil, fmt.Errorf("значение (%d,%d): %w", i, j, err)
			}
			rows[i][j] = float32(v)
		}
	}
	return &Grid{Header: h, Rows: rows}, nil
}
