// Package random - скалярные случайные числа с экспоненциальным распределением
// и эксперимент по проверке их распределения.
package random

import (
	"math"
	"math/rand/v2"

	"github.com/annel0/terrain-noise/internal/noise"
)

// Source - источник равномерных целых в [0, Max()].
type Source interface {
	Uint32() uint32
	Max() uint32
}

// HashSource - счётчиковый источник на Hash32: i-е значение = Hash32(i, 0, seed).
// Детерминирован и совпадает с хешем, которым генератор рельефа выбирает градиенты.
type HashSource struct {
	seed uint32
	next uint32
}

// NewHashSource создаёт источник с сидом seed.
func NewHashSource(seed uint32) *HashSource {
	return &HashSource{seed: seed}
}

// Uint32 возвращает хеш следующего индекса счётчика.
func (s *HashSource) Uint32() uint32 {
	v := noise.Hash32(s.next, 0, s.seed)
	s.next++
	return v
}

// Max - наибольшее значение Uint32.
func (s *HashSource) Max() uint32 { return math.MaxUint32 }

// PCGSource - источник на PCG из стандартной библиотеки.
type PCGSource struct {
	pcg *rand.PCG
}

// NewPCGSource создаёт PCG-источник с сидом seed.
func NewPCGSource(seed uint64) *PCGSource {
	return &PCGSource{pcg: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)}
}

// Uint32 возвращает старшие 32 бита очередного значения PCG.
func (s *PCGSource) Uint32() uint32 { return uint32(s.pcg.Uint64() >> 32) }

// Max - наибольшее значение Uint32.
func (s *PCGSource) Max() uint32 { return math.MaxUint32 }

// UniformRand возвращает равномерное число (v+1)/(max+2), округлённое до float32.
func UniformRand(src Source) float32 {
	return float32(noise.UniformHash(src.Uint32(), src.Max()))
}

// ExpRand возвращает число из [0,1] с экспоненциально убывающей плотностью:
// 1 - log(v/2 + 1)/log((max+2)/2).
func ExpRand(src Source) float32 {
	return float32(noise.ExponentialHash(src.Uint32(), src.Max()))
}

// ExpRandLifted с вероятностью omega возвращает равномерное число, иначе экспоненциальное.
// omega обрезается до [0,1].
func ExpRandLifted(src Source, omega float32) float32 {
	omega = min(max(omega, 0), 1)
	if UniformRand(src) < omega {
		return UniformRand(src)
	}
	return ExpRand(src)
}
