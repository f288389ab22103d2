package noise

// Generator - генератор рельефа: амортизированный шум с экспоненциально
// распределённым модулем градиента. Сид и omega неизменны после создания.
type Generator struct {
	engine *Engine
	seed   uint32
	omega  float32
}

// NewGenerator создаёт генератор с таблицами под тайл стороны n.
// omega вне [0,1] молча обрезается.
func NewGenerator(n int, seed uint32, omega float32) *Generator {
	mag := NewExponentialMagnitude(seed, omega)
	return &Generator{
		engine: NewEngine(n, seed, mag),
		seed:   seed,
		omega:  mag.Omega,
	}
}

// NewFlatGenerator создаёт генератор с единичными градиентами (базовый амортизированный шум).
func NewFlatGenerator(n int, seed uint32) *Generator {
	return &Generator{
		engine: NewEngine(n, seed, FlatMagnitude{}),
		seed:   seed,
		omega:  1,
	}
}

// Seed возвращает сид генератора.
func (g *Generator) Seed() uint32 { return g.seed }

// Omega возвращает множитель хвоста после обрезки.
func (g *Generator) Omega() float32 { return g.omega }

// Engine возвращает движок генератора.
func (g *Generator) Engine() *Engine { return g.engine }

// Generate см. (*Engine).Generate.
func (g *Generator) Generate(x, y, m0, m1, n int, tile Tile) float32 {
	return g.engine.Generate(x, y, m0, m1, n, tile)
}
