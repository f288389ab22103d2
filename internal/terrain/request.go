package terrain

import (
	"errors"
	"fmt"
	"time"

	"github.com/annel0/terrain-noise/internal/noise"
	"github.com/annel0/terrain-noise/internal/storage"
)

// MaxSide - наибольшая сторона тайла, которую примет сервис.
const MaxSide = 8192

var (
	// ErrInvalidRequest - запрос нарушает предусловия генератора.
	ErrInvalidRequest = errors.New("invalid tile request")

	// ErrInsufficientGranularity - на первой октаве на подъячейку приходится
	// меньше двух сэмплов, генератор не может заполнить тайл.
	ErrInsufficientGranularity = errors.New("insufficient granularity for first octave")
)

// Request - запрос тайла по его индексу в сетке тайлов.
// Соседние индексы дают бесшовно стыкующиеся тайлы.
type Request struct {
	Row         int `json:"row"`
	Col         int `json:"col"`
	FirstOctave int `json:"first_octave"` // m0, самая крупная октава, >= 1
	LastOctave  int `json:"last_octave"`  // m1, самая мелкая октава
	Side        int `json:"side"`         // степень двойки
}

// Validate проверяет запрос.
func (r Request) Validate() error {
	if r.Side < 2 || r.Side&(r.Side-1) != 0 {
		return fmt.Errorf("%w: сторона %d не степень двойки >= 2", ErrInvalidRequest, r.Side)
	}
	if r.Side > MaxSide {
		return fmt.Errorf("%w: сторона %d больше %d", ErrInvalidRequest, r.Side, MaxSide)
	}
	if r.FirstOctave < 1 || r.LastOctave < r.FirstOctave {
		return fmt.Errorf("%w: октавы %d..%d", ErrInvalidRequest, r.FirstOctave, r.LastOctave)
	}
	if r.FirstOctave > 31 || r.Side>>(r.FirstOctave-1) < 2 {
		return fmt.Errorf("%w: сторона %d, первая октава %d", ErrInsufficientGranularity, r.Side, r.FirstOctave)
	}
	return nil
}

// Origin возвращает координаты решётки левого верхнего угла тайла в единицах
// первой октавы. Тайл покрывает 2^(m0-1) ячеек на сторону.
func (r Request) Origin() (x, y int) {
	cells := 1 << (r.FirstOctave - 1)
	return r.Row * cells, r.Col * cells
}

// Result - сгенерированный тайл и сведения о запуске.
type Result struct {
	Request  Request
	Key      storage.TileKey
	RunID    string
	Tile     noise.Tile
	Scale    float32 // множитель нормировки, Tile*Scale лежит в [-1,1]
	Octaves  int
	Cached   bool
	WallTime time.Duration
	CPUTime  time.Duration
}

// Normalized возвращает новый тайл значений шума, приведённых к [-1,1].
func (r *Result) Normalized() noise.Tile {
	return r.mapTile(func(v float32) float32 { return v * r.Scale })
}

// Elevations возвращает высоты в метрах: altitude*(1 + v*scale)/2, то есть [0, altitude].
func (r *Result) Elevations(altitude float32) noise.Tile {
	return r.mapTile(func(v float32) float32 { return altitude * (1 + v*r.Scale) / 2 })
}

func (r *Result) mapTile(f func(float32) float32) noise.Tile {
	out := noise.NewTile(r.Tile.Side())
	for i, row := range r.Tile {
		for j, v := range row {
			out[i][j] = f(v)
		}
	}
	return out
}
