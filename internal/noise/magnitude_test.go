package noise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformHash_StrictlyInterior(t *testing.T) {
	for _, v := range []uint32{0, 1, 12345, MaxHash / 2, MaxHash - 1, MaxHash} {
		u := UniformHash(v, MaxHash)
		assert.Greater(t, u, 0.0, "v=%d", v)
		assert.Less(t, u, 1.0, "v=%d", v)
	}
	assert.Equal(t, 0.5, UniformHash(0, 0))
}

func TestExponentialHash_Endpoints(t *testing.T) {
	top := ExponentialHash(0, MaxHash)
	bottom := ExponentialHash(MaxHash, MaxHash)
	assert.Less(t, top, 1.0)
	assert.Greater(t, bottom, 0.0)
	assert.Greater(t, top, bottom)

	// Монотонно убывает по v.
	prev := top
	for v := uint32(1); v < 1<<31; v *= 3 {
		cur := ExponentialHash(v, MaxHash)
		assert.LessOrEqual(t, cur, prev, "v=%d", v)
		prev = cur
	}
}

func TestMagnitude_Range(t *testing.T) {
	const seed = 9999
	for _, omega := range []float32{0, 0.3, 1} {
		for x := uint32(0); x < 320; x++ {
			for y := uint32(0); y < 320; y++ {
				m := Magnitude(x, y, seed+magnitudeSeedOffset, seed+tailSeedOffset, MaxHash, omega)
				if m <= 0 || m >= 1 {
					require.Failf(t, "модуль вне (0,1)", "omega=%v (%d,%d) -> %v", omega, x, y, m)
				}
			}
		}
	}
}

func TestExponentialMagnitude_StrictlyInteriorInFloat32(t *testing.T) {
	// Крайние хеши, которые при переходе к float32 округляются до 0 или 1.
	assert.Equal(t, float32(1), float32(UniformHash(MaxHash, MaxHash)))
	assert.Equal(t, float32(1), float32(ExponentialHash(0, MaxHash)))
	assert.Equal(t, float32(0), float32(ExponentialHash(MaxHash, MaxHash)))

	for _, v := range []uint32{0, 1, MaxHash - 1000, MaxHash - 1, MaxHash} {
		for _, f := range []float64{UniformHash(v, MaxHash), ExponentialHash(v, MaxHash)} {
			m := interior32(float32(f))
			assert.Greater(t, m, float32(0), "v=%d", v)
			assert.Less(t, m, float32(1), "v=%d", v)
		}
	}
	for v := MaxHash - 1000; v < MaxHash; v++ {
		require.Less(t, interior32(float32(UniformHash(v, MaxHash))), float32(1), "v=%d", v)
	}

	for _, omega := range []float32{0, 0.3, 1} {
		mag := NewExponentialMagnitude(9999, omega)
		for x := uint32(0); x < 300; x++ {
			for y := uint32(0); y < 300; y++ {
				m := mag.MagnitudeAt(x, y)
				if m <= 0 || m >= 1 {
					require.Failf(t, "модуль вне (0,1)", "omega=%v (%d,%d) -> %v", omega, x, y, m)
				}
			}
		}
	}
}

func TestExponentialMagnitude_TailLiftMonotonic(t *testing.T) {
	const side = 150
	prev := -1
	for step := 0; step <= 10; step++ {
		omega := float32(step) / 10
		mag := NewExponentialMagnitude(777, omega)

		lifted := 0
		for x := uint32(0); x < side; x++ {
			for y := uint32(0); y < side; y++ {
				if mag.Lifted(x, y) {
					lifted++
				}
			}
		}
		assert.GreaterOrEqual(t, lifted, prev, "omega=%v", omega)
		assert.InDelta(t, float64(omega), float64(lifted)/(side*side), 0.02, "доля равномерной ветки")
		prev = lifted
	}
	assert.Equal(t, side*side, prev, "при omega=1 все узлы в равномерной ветке")
}

func TestExponentialMagnitude_ClipsOmega(t *testing.T) {
	assert.Equal(t, float32(0), NewExponentialMagnitude(1, -0.5).Omega)
	assert.Equal(t, float32(1), NewExponentialMagnitude(1, 1.7).Omega)
	assert.Equal(t, float32(0.25), NewExponentialMagnitude(1, 0.25).Omega)

	for x := uint32(0); x < 50; x++ {
		assert.Equal(t,
			Magnitude(x, 3, 10, 20, MaxHash, 0),
			Magnitude(x, 3, 10, 20, MaxHash, -3))
		assert.Equal(t,
			Magnitude(x, 3, 10, 20, MaxHash, 1),
			Magnitude(x, 3, 10, 20, MaxHash, 42))
	}
}

func TestExponentialMagnitude_LiftRaisesMean(t *testing.T) {
	mean := func(omega float32) float64 {
		mag := NewExponentialMagnitude(31337, omega)
		var sum float64
		for x := uint32(0); x < 100; x++ {
			for y := uint32(0); y < 100; y++ {
				sum += float64(mag.MagnitudeAt(x, y))
			}
		}
		return sum / 10000
	}
	expOnly, half, uniform := mean(0), mean(0.5), mean(1)
	assert.Less(t, expOnly, half)
	assert.Less(t, half, uniform)
	assert.InDelta(t, 0.5, uniform, 0.02, "равномерная ветка в среднем даёт 0.5")
}

func TestFlatMagnitude(t *testing.T) {
	assert.Equal(t, float32(1), FlatMagnitude{}.MagnitudeAt(123, 456))
}
