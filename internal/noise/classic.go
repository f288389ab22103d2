package noise

import (
	"github.com/aquilax/go-perlin"
)

// Параметры классического шума Перлина, эквивалентные 1/f-схеме Generate.
const (
	classicAlpha = 2.0 // делитель амплитуды между октавами (persistence 0.5)
	classicBeta  = 2.0 // множитель частоты между октавами (lacunarity 2)
)

// ClassicGenerator - эталонный шум Перлина на таблице перестановок,
// используется только для сравнения с амортизированным шумом.
type ClassicGenerator struct {
	seed int64
}

// NewClassicGenerator создаёт эталонный генератор с указанным сидом.
func NewClassicGenerator(seed int64) *ClassicGenerator {
	return &ClassicGenerator{seed: seed}
}

// Generate заполняет тайл классическим шумом Перлина в тех же координатах решётки,
// что и (*Engine).Generate, и возвращает тот же множитель нормировки.
func (c *ClassicGenerator) Generate(x, y, m0, m1, n int, tile Tile) float32 {
	octaves := Octaves(m0, m1, n)
	if octaves == 0 {
		return 1
	}
	side := n
	for i := 1; i < m0; i++ {
		n /= 2
	}

	p := perlin.NewPerlin(classicAlpha, classicBeta, int32(octaves), c.seed)
	inv := 1 / float64(n)
	for i := 0; i < side; i++ {
		px := float64(x+i/n) + float64(i%n)*inv
		for j := 0; j < side; j++ {
			py := float64(y+j/n) + float64(j%n)*inv
			tile[i][j] = float32(p.Noise2D(px, py))
		}
	}
	return RescaleFactor(m0, m1, side)
}
