package noise

import "math"

const (
	persistence = 0.5
	sqrt2       = float32(math.Sqrt2)
)

// TileSource - всё, что умеет заполнить тайл шумом 1/f и вернуть множитель нормировки.
type TileSource interface {
	Generate(x, y, m0, m1, n int, tile Tile) float32
}

var (
	_ TileSource = (*Engine)(nil)
	_ TileSource = (*Generator)(nil)
	_ TileSource = (*ClassicGenerator)(nil)
)

// Generate заполняет тайл стороны n октавами m0..m1 шума 1/f (persistence 0.5,
// lacunarity 2) для ячейки решётки с левым верхним углом (x, y).
//
// Каждая следующая октава вдвое уменьшает гранулярность n, вдвое увеличивает
// число подъячеек r на сторону и координаты решётки, а её вклад умножается на 0.5.
// Первая октава пишется в тайл напрямую, остальные прибавляются, так что
// обнулять тайл заранее не нужно.
//
// Возвращает √2/(2 - scale), где scale - вклад последней сгенерированной октавы:
// умножение тайла на него приводит значения в [-1, 1].
// Если после пропуска октав до m0 гранулярность меньше 2, тайл не трогается
// и возвращается 1. Октавы, для которых n упало бы ниже 2, молча отбрасываются.
func (e *Engine) Generate(x, y, m0, m1, n int, tile Tile) float32 {
	r := 1 // подъячеек на сторону тайла
	for i := 1; i < m0; i++ {
		n /= 2
		r += r
	}
	if n < 2 {
		return 1
	}

	e.ensure(n)
	e.initSplineTable(n)
	for i0 := 0; i0 < r; i0++ {
		for j0 := 0; j0 < r; j0++ {
			e.initEdgeTables(x+i0, y+j0, n)
			e.getNoise(n, i0*n, j0*n, tile)
		}
	}

	scale := float32(1)
	for k := m0; k < m1 && n/2 >= 2; k++ {
		n /= 2
		r += r
		x += x
		y += y
		scale *= persistence

		e.initSplineTable(n)
		for i0 := 0; i0 < r; i0++ {
			for j0 := 0; j0 < r; j0++ {
				e.initEdgeTables(x+i0, y+j0, n)
				e.addNoise(n, i0*n, j0*n, scale, tile)
			}
		}
	}

	// Одна октава по модулю не больше 1/√2, сумма 1 + 0.5 + ... + scale = 2 - scale.
	return sqrt2 / (2 - scale)
}

// RescaleFactor возвращает множитель нормировки для октав m0..m1 без генерации,
// с теми же правилами отбрасывания октав, что и Generate.
func RescaleFactor(m0, m1, n int) float32 {
	for i := 1; i < m0; i++ {
		n /= 2
	}
	if n < 2 {
		return 1
	}
	scale := float32(1)
	for k := m0; k < m1 && n/2 >= 2; k++ {
		n /= 2
		scale *= persistence
	}
	return sqrt2 / (2 - scale)
}

// Octaves возвращает число октав, которые Generate реально сгенерирует.
func Octaves(m0, m1, n int) int {
	for i := 1; i < m0; i++ {
		n /= 2
	}
	if n < 2 {
		return 0
	}
	count := 1
	for k := m0; k < m1 && n/2 >= 2; k++ {
		n /= 2
		count++
	}
	return count
}
