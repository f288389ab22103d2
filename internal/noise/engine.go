package noise

import "math"

// Tile - квадратный массив сэмплов шума. Первый индекс соответствует оси x решётки,
// второй - оси y. Память тайла принадлежит вызывающему коду.
type Tile [][]float32

// NewTile выделяет тайл n×n на одном непрерывном буфере.
func NewTile(n int) Tile {
	buf := make([]float32, n*n)
	t := make(Tile, n)
	for i := range t {
		t[i] = buf[i*n : (i+1)*n : (i+1)*n]
	}
	return t
}

// Side возвращает сторону тайла.
func (t Tile) Side() int { return len(t) }

// Engine реализует амортизированный градиентный шум.
//
// Вместо скалярного произведения в каждой точке движок один раз на подъячейку
// заполняет восемь линейных таблиц (по четыре на ось) и таблицу сплайна, после
// чего каждый сэмпл получается сложениями и тремя интерполяциями.
// На подъячейку приходится 4 хеша, 4 косинуса и 4 синуса.
//
// Таблицы - рабочее состояние одного вызова Generate: Engine нельзя использовать
// из нескольких горутин одновременно без внешней синхронизации.
type Engine struct {
	uax, vax, ubx, vbx []float32 // x-компоненты градиентов, амортизированные вдоль j
	uay, vay, uby, vby []float32 // y-компоненты градиентов, амортизированные вдоль i
	spline             []float32 // квинтический сплайн в точках i/n

	seed      uint32
	magnitude MagnitudeSource
}

// NewEngine создаёт движок с таблицами на гранулярность n.
// mag задаёт модуль градиентов; nil означает единичные градиенты.
func NewEngine(n int, seed uint32, mag MagnitudeSource) *Engine {
	if mag == nil {
		mag = FlatMagnitude{}
	}
	e := &Engine{seed: seed, magnitude: mag}
	e.ensure(n)
	return e
}

// Seed возвращает сид хеша направлений градиентов.
func (e *Engine) Seed() uint32 { return e.seed }

// ensure гарантирует, что все таблицы вмещают n элементов.
func (e *Engine) ensure(n int) {
	if n <= cap(e.spline) {
		e.resize(n)
		return
	}
	for _, t := range []*[]float32{
		&e.uax, &e.vax, &e.ubx, &e.vbx,
		&e.uay, &e.vay, &e.uby, &e.vby,
		&e.spline,
	} {
		*t = make([]float32, n)
	}
}

func (e *Engine) resize(n int) {
	for _, t := range []*[]float32{
		&e.uax, &e.vax, &e.ubx, &e.vbx,
		&e.uay, &e.vay, &e.uby, &e.vby,
		&e.spline,
	} {
		*t = (*t)[:n]
	}
}

// fillUp заполняет таблицу снизу вверх: t[0] = 0, шаг s/n.
func fillUp(t []float32, s float32, n int) {
	d := s / float32(n)
	t[0] = 0
	for i := 1; i < n; i++ {
		t[i] = t[i-1] + d
	}
}

// fillDn заполняет таблицу сверху вниз: t[n-1] = -s/n, шаг -s/n.
// Это зеркальное отражение fillUp относительно дальнего угла.
func fillDn(t []float32, s float32, n int) {
	d := -s / float32(n)
	t[n-1] = d
	for i := n - 2; i >= 0; i-- {
		t[i] = t[i+1] + d
	}
}

// gradient возвращает градиент в узле (x, y): направление из хеша как псевдоугла,
// модуль из стратегии magnitude.
func (e *Engine) gradient(x, y int) (gx, gy float32) {
	angle := float64(float32(hashAt(x, y, e.seed)))
	m := e.magnitude.MagnitudeAt(uint32(x), uint32(y))
	return m * float32(math.Cos(angle)), m * float32(math.Sin(angle))
}

// initEdgeTables инициализирует амортизированные таблицы для подъячейки
// с левым верхним углом (x0, y0) и гранулярностью n.
func (e *Engine) initEdgeTables(x0, y0, n int) {
	c00, s00 := e.gradient(x0, y0)
	c01, s01 := e.gradient(x0, y0+1)
	c10, s10 := e.gradient(x0+1, y0)
	c11, s11 := e.gradient(x0+1, y0+1)

	fillUp(e.uax, c00, n)
	fillDn(e.vax, c01, n)
	fillUp(e.ubx, c10, n)
	fillDn(e.vbx, c11, n)

	fillUp(e.uay, s00, n)
	fillUp(e.vay, s01, n)
	fillDn(e.uby, s10, n)
	fillDn(e.vby, s11, n)
}

// quintic - сглаживающий сплайн 6t⁵-15t⁴+10t³ с нулевыми первой и второй
// производными на концах, поэтому стыки тайлов не видны.
func quintic(t float32) float32 {
	return t * t * t * (10 + 3*t*(2*t-5))
}

// initSplineTable заполняет таблицу сплайна для гранулярности n.
func (e *Engine) initSplineTable(n int) {
	for i := 0; i < n; i++ {
		e.spline[i] = quintic(float32(i) / float32(n))
	}
}

func lerp(t, a, b float32) float32 {
	return a + t*(b-a)
}

// noiseAt возвращает один сэмпл текущей подъячейки в точке (i/n, j/n).
// Скалярные произведения заменены суммами табличных значений.
func (e *Engine) noiseAt(i, j int) float32 {
	sj := e.spline[j]
	u := e.uax[j] + e.uay[i]
	v := e.vax[j] + e.vay[i]
	a := lerp(sj, u, v)
	u = e.ubx[j] + e.uby[i]
	v = e.vbx[j] + e.vby[i]
	b := lerp(sj, u, v)
	return lerp(e.spline[i], a, b)
}

// getNoise записывает подъячейку n×n в тайл со смещением (i0, j0).
func (e *Engine) getNoise(n, i0, j0 int, tile Tile) {
	for i := 0; i < n; i++ {
		row := tile[i0+i][j0 : j0+n]
		for j := range row {
			row[j] = e.noiseAt(i, j)
		}
	}
}

// addNoise прибавляет подъячейку n×n, умноженную на scale, к тайлу со смещением (i0, j0).
func (e *Engine) addNoise(n, i0, j0 int, scale float32, tile Tile) {
	for i := 0; i < n; i++ {
		row := tile[i0+i][j0 : j0+n]
		for j := range row {
			row[j] += scale * e.noiseAt(i, j)
		}
	}
}
