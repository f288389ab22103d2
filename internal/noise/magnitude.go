package noise

import (
	"math"

	"github.com/chewxy/math32"
)

// MaxHash - наибольшее значение, которое может вернуть Hash32.
const MaxHash uint32 = math.MaxUint32

// Смещения сидов для двух независимых хешей модуля градиента.
const (
	magnitudeSeedOffset = 9999   // сид для самого модуля
	tailSeedOffset      = 314159 // сид для выбора ветки распределения
)

// MagnitudeSource задаёт модуль градиента в узле решётки.
// Движок вызывает его для четырёх углов каждой подъячейки.
type MagnitudeSource interface {
	MagnitudeAt(x, y uint32) float32
}

// FlatMagnitude - единичные градиенты, классический амортизированный шум.
type FlatMagnitude struct{}

// MagnitudeAt всегда возвращает 1.
func (FlatMagnitude) MagnitudeAt(x, y uint32) float32 { return 1 }

// ExponentialMagnitude распределяет модуль градиента экспоненциально,
// с вероятностью Omega подменяя его равномерным ("подъём хвоста").
type ExponentialMagnitude struct {
	Seed1 uint32  // сид хеша модуля
	Seed2 uint32  // сид хеша выбора ветки
	Omega float32 // множитель хвоста, уже обрезанный до [0,1]
}

// NewExponentialMagnitude выводит оба сида из базового сида генератора.
// Omega вне [0,1] молча обрезается.
func NewExponentialMagnitude(seed uint32, omega float32) ExponentialMagnitude {
	return ExponentialMagnitude{
		Seed1: seed + magnitudeSeedOffset,
		Seed2: seed + tailSeedOffset,
		Omega: clip(omega, 0, 1),
	}
}

// MagnitudeAt возвращает модуль градиента в узле (x, y), строго внутри (0, 1) в float32.
func (m ExponentialMagnitude) MagnitudeAt(x, y uint32) float32 {
	return interior32(float32(Magnitude(x, y, m.Seed1, m.Seed2, MaxHash, m.Omega)))
}

// Lifted сообщает, попал ли узел в равномерную ветку распределения.
func (m ExponentialMagnitude) Lifted(x, y uint32) bool {
	return lifted(x, y, m.Seed2, MaxHash, m.Omega)
}

// UniformHash отображает значение хеша v ∈ [0, max] в интервал (0, 1)
// как (v+1)/(max+2); концы интервала недостижимы.
func UniformHash(v, max uint32) float64 {
	return (float64(v) + 1) / (float64(max) + 2)
}

// ExponentialHash отображает равномерный хеш в (0, 1) по закону
// -scale·ln(0.5v + 1) + 1, где scale = 1/ln(0.5(max+2)).
// Это замкнутая обратная функция распределения, а не выборка.
// Точные 0 и 1 (v = max и v = 0) сдвигаются на одно ULP внутрь интервала.
func ExponentialHash(v, max uint32) float64 {
	scale := 1 / math.Log(0.5*(float64(max)+2))
	return interior(-scale*math.Log(0.5*float64(v)+1) + 1)
}

// Magnitude возвращает модуль градиента в узле (x, y): равномерный с вероятностью omega,
// иначе экспоненциальный. Используются два независимых хеша узла.
func Magnitude(x, y, seed1, seed2, max uint32, omega float32) float64 {
	if lifted(x, y, seed2, max, omega) {
		return UniformHash(Hash32(x, y, seed1), max)
	}
	return ExponentialHash(Hash32(x, y, seed1), max)
}

func lifted(x, y, seed2, max uint32, omega float32) bool {
	return UniformHash(Hash32(x, y, seed2), max) < float64(clip(omega, 0, 1))
}

func clip(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func interior(f float64) float64 {
	switch {
	case f <= 0:
		return math.Nextafter(0, 1)
	case f >= 1:
		return math.Nextafter(1, 0)
	}
	return f
}

// interior32 - то же для float32: округление при переходе к float32
// снова даёт точные 0 и 1 у концов интервала.
func interior32(f float32) float32 {
	switch {
	case f <= 0:
		return math32.Nextafter(0, 1)
	case f >= 1:
		return math32.Nextafter(1, 0)
	}
	return f
}
