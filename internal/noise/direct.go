package noise

import "github.com/chewxy/math32"

// cellNoise вычисляет шум ячейки (x0, y0) в точке (fx, fy) ∈ [0,1]² напрямую,
// четырьмя скалярными произведениями. Это та же функция, что строит
// амортизированный движок, но без таблиц; fx = 1 даёт значение на дальней границе.
func (e *Engine) cellNoise(x0, y0 int, fx, fy float32) float32 {
	c00, s00 := e.gradient(x0, y0)
	c01, s01 := e.gradient(x0, y0+1)
	c10, s10 := e.gradient(x0+1, y0)
	c11, s11 := e.gradient(x0+1, y0+1)

	sx, sy := quintic(fx), quintic(fy)
	a := lerp(sy, c00*fy+s00*fx, c01*(fy-1)+s01*fx)
	b := lerp(sy, c10*fy+s10*(fx-1), c11*(fy-1)+s11*(fx-1))
	return lerp(sx, a, b)
}

// DirectNoise возвращает одну октаву шума в точке (x, y) решётки без амортизации.
// Медленный эталон для сравнения с амортизированным движком.
func (e *Engine) DirectNoise(x, y float32) float32 {
	fx, fy := math32.Floor(x), math32.Floor(y)
	return e.cellNoise(int(fx), int(fy), x-fx, y-fy)
}

// DirectGenerate заполняет тайл той же октавной схемой, что Generate,
// но вычисляет каждый сэмпл отдельно через cellNoise. Ячейка и дробная часть
// считаются в целых, чтобы не терять точность float32 на больших координатах.
func (e *Engine) DirectGenerate(x, y, m0, m1, n int, tile Tile) float32 {
	side := n
	for i := 1; i < m0; i++ {
		n /= 2
	}
	if n < 2 {
		return 1
	}
	scale := float32(1)
	for k := m0; ; k++ {
		inv := 1 / float32(n)
		for i := 0; i < side; i++ {
			for j := 0; j < side; j++ {
				fx, fy := float32(i%n)*inv, float32(j%n)*inv
				v := e.cellNoise(x+i/n, y+j/n, fx, fy)
				if k == m0 {
					tile[i][j] = v
				} else {
					tile[i][j] += scale * v
				}
			}
		}
		if k >= m1 || n/2 < 2 {
			break
		}
		n /= 2
		x += x
		y += y
		scale *= persistence
	}
	return sqrt2 / (2 - scale)
}
