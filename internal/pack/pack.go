// Package pack собирает квадратную мозаику DEM-файлов в один упакованный
// файл высот (uint16, дециметры) и читает его обратно.
package pack

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/annel0/terrain-noise/internal/dem"
	"github.com/annel0/terrain-noise/internal/logging"
	"github.com/klauspost/compress/zstd"
)

// Формат файла:
//
//	[4] magic "TPK1"
//	[4] сторона массива, uint32 LE
//	[..] zstd-поток side*side значений uint16 LE, построчно
const magic = "TPK1"

// ErrBadFormat - файл не является упакованным массивом высот.
var ErrBadFormat = errors.New("not a packed height file")

// Heights - квадратный массив высот в дециметрах; 0 - нет данных.
type Heights struct {
	Side int
	Data []uint16
}

// NewHeights выделяет массив side×side.
func NewHeights(side int) *Heights {
	return &Heights{Side: side, Data: make([]uint16, side*side)}
}

// At возвращает высоту в точке (i, j).
func (h *Heights) At(i, j int) uint16 { return h.Data[i*h.Side+j] }

// Set записывает высоту в точке (i, j).
func (h *Heights) Set(i, j int, v uint16) { h.Data[i*h.Side+j] = v }

// Stats - счётчики обработанных точек.
type Stats struct {
	Points    int64
	BadPoints int64 // точки с высотой <= 0, записаны как 0
}

// Quantize переводит высоту в метрах в дециметры. Неположительные значения
// (в том числе NODATA) дают 0 и ok = false.
func Quantize(h float32) (v uint16, ok bool) {
	if h <= 0 {
		return 0, false
	}
	d := h * 10
	if d >= 65535 {
		return 65535, true
	}
	return uint16(d), true
}

// Place копирует сетку в массив, левый верхний угол - (row, col) в точках.
func (h *Heights) Place(row, col int, g *dem.Grid, st *Stats) error {
	if row+g.Header.NRows > h.Side || col+g.Header.NCols > h.Side {
		return fmt.Errorf("сетка %dx%d не помещается в (%d,%d) массива %d",
			g.Header.NRows, g.Header.NCols, row, col, h.Side)
	}
	for i, line := range g.Rows {
		for j, v := range line {
			q, ok := Quantize(v)
			if !ok {
				st.BadPoints++
			}
			h.Set(row+i, col+j, q)
			st.Points++
		}
	}
	return nil
}

// ReadFileList читает имена файлов, разделённые пробельными символами.
func ReadFileList(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	var names []string
	for sc.Scan() {
		names = append(names, sc.Text())
	}
	return names, sc.Err()
}

// PackFiles собирает gridSize×gridSize DEM-файлов (построчно) в один массив.
// Все файлы должны быть квадратными одного размера; он берётся из первого файла.
func PackFiles(names []string, gridSize int) (*Heights, Stats, error) {
	var st Stats
	if gridSize <= 0 || len(names) < gridSize*gridSize {
		return nil, st, fmt.Errorf("нужно %d файлов, в списке %d", gridSize*gridSize, len(names))
	}

	var heights *Heights
	cell := 0
	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			name := names[i*gridSize+j]
			g, err := readGrid(name)
			if err != nil {
				return nil, st, err
			}
			if heights == nil {
				cell = g.Header.NRows
				if g.Header.NCols != cell {
					return nil, st, fmt.Errorf("%s: сетка %dx%d не квадратная", name, g.Header.NRows, cell)
				}
				heights = NewHeights(cell * gridSize)
			}
			if g.Header.NRows != cell || g.Header.NCols != cell {
				return nil, st, fmt.Errorf("%s: сетка %dx%d, ожидалось %dx%d",
					name, g.Header.NRows, g.Header.NCols, cell, cell)
			}
			if err := heights.Place(i*cell, j*cell, g, &st); err != nil {
				return nil, st, err
			}
			logging.Debug("%s упакован в (%d,%d)", name, i, j)
		}
	}
	return heights, st, nil
}

func readGrid(name string) (*dem.Grid, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	g, err := dem.Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return g, nil
}

// Write пишет массив в упакованном формате.
func Write(w io.Writer, h *Heights) error {
	var hdr [8]byte
	copy(hdr[:], magic)
	binary.LittleEndian.PutUint32(hdr[4:], uint32(h.Side))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("zstd encoder: %w", err)
	}
	buf := make([]byte, 2*h.Side)
	for i := 0; i < h.Side; i++ {
		row := h.Data[i*h.Side : (i+1)*h.Side]
		for j, v := range row {
			binary.LittleEndian.PutUint16(buf[2*j:], v)
		}
		if _, err := enc.Write(buf); err != nil {
			enc.Close()
			return err
		}
	}
	return enc.Close()
}

// Read читает упакованный массив.
func Read(r io.Reader) (*Heights, error) {
	var hdr [8]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	if string(hdr[:4]) != magic {
		return nil, ErrBadFormat
	}
	side := int(binary.LittleEndian.Uint32(hdr[4:]))

	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	defer dec.Close()

	h := NewHeights(side)
	buf := make([]byte, 2*side)
	for i := 0; i < side; i++ {
		if _, err := io.ReadFull(dec, buf); err != nil {
			return nil, fmt.Errorf("строка %d: %w", i, err)
		}
		row := h.Data[i*side : (i+1)*side]
		for j := range row {
			row[j] = binary.LittleEndian.Uint16(buf[2*j:])
		}
	}
	return h, nil
}
