package random

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/montanaflynn/stats"
)

// DefaultGranularity - число корзин гистограммы эксперимента.
const DefaultGranularity = 100

// summaryLimit - сколько первых сэмплов сохраняется для сводной статистики.
const summaryLimit = 1 << 16

// Sampler возвращает очередное случайное число из [0,1].
type Sampler func() float32

// Distribution - результат эксперимента: частоты по корзинам и выбросы.
type Distribution struct {
	Counts      []int
	Samples     int
	MissedSmall int // сэмплы с индексом корзины < 0
	MissedLarge int // сэмплы с индексом корзины >= granularity
	Min         float32
	Max         float32

	kept []float64
}

// RunExperiment берёт n сэмплов и строит гистограмму с granularity корзинами.
// Сэмпл f попадает в корзину int(f*(granularity-1)).
func RunExperiment(sample Sampler, n, granularity int) *Distribution {
	if granularity <= 0 {
		granularity = DefaultGranularity
	}
	d := &Distribution{
		Counts:  make([]int, granularity),
		Samples: n,
		Min:     math.MaxFloat32,
		Max:     -math.MaxFloat32,
		kept:    make([]float64, 0, min(n, summaryLimit)),
	}
	for i := 0; i < n; i++ {
		f := sample()
		d.Min = min(d.Min, f)
		d.Max = max(d.Max, f)
		if len(d.kept) < summaryLimit {
			d.kept = append(d.kept, float64(f))
		}

		k := int(f * float32(granularity-1))
		switch {
		case k < 0:
			d.MissedSmall++
		case k >= granularity:
			d.MissedLarge++
		default:
			d.Counts[k]++
		}
	}
	return d
}

// Frequencies возвращает долю сэмплов в каждой корзине.
func (d *Distribution) Frequencies() []float64 {
	out := make([]float64, len(d.Counts))
	if d.Samples == 0 {
		return out
	}
	for i, c := range d.Counts {
		out[i] = float64(c) / float64(d.Samples)
	}
	return out
}

// Hits возвращает число сэмплов, попавших в корзины.
func (d *Distribution) Hits() int {
	sum := 0
	for _, c := range d.Counts {
		sum += c
	}
	return sum
}

// WriteTo пишет частоты по одной на строку (%0.4f) и пустую строку в конце.
func (d *Distribution) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var total int64
	for _, f := range d.Frequencies() {
		n, err := fmt.Fprintf(bw, "%0.4f\n", f)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	n, err := bw.WriteString("\n")
	total += int64(n)
	if err != nil {
		return total, err
	}
	return total, bw.Flush()
}

// Summary - сводная статистика по сохранённым сэмплам.
type Summary struct {
	Mean   float64
	Median float64
	StdDev float64
}

// Summary считает среднее, медиану и стандартное отклонение по первым сэмплам.
func (d *Distribution) Summary() (Summary, error) {
	var s Summary
	if len(d.kept) == 0 {
		return s, fmt.Errorf("нет сэмплов")
	}
	data := stats.Float64Data(d.kept)
	var err error
	if s.Mean, err = stats.Mean(data); err != nil {
		return s, err
	}
	if s.Median, err = stats.Median(data); err != nil {
		return s, err
	}
	if s.StdDev, err = stats.StandardDeviation(data); err != nil {
		return s, err
	}
	return s, nil
}
