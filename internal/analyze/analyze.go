// Package analyze считает распределение уклонов упакованного массива высот
// по октавам: для октавы k соседние точки берутся через 2^k шагов сетки.
package analyze

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/annel0/terrain-noise/internal/pack"
	"github.com/montanaflynn/stats"
)

// Options - параметры анализа.
type Options struct {
	Octaves     int     // число октав
	MidOctave   int     // первая октава, у которой ширина больше высоты
	Granularity int     // число корзин распределения
	MaxGradient float64 // уклоны не меньше этого значения отбрасываются
	CellSpacing float64 // шаг сетки в метрах
}

// DefaultOptions - 16 октав, середина 9, 50 корзин до уклона 1.0, шаг 5 м.
func DefaultOptions() Options {
	return Options{
		Octaves:     16,
		MidOctave:   9,
		Granularity: 50,
		MaxGradient: 1.0,
		CellSpacing: 5,
	}
}

// OctaveStats - статистика уклонов одной октавы.
type OctaveStats struct {
	Octave       int
	Count        int64
	Sum          float64
	Max          float64
	Distribution []int64
}

// Mean возвращает средний уклон или 0 без сэмплов.
func (o *OctaveStats) Mean() float64 {
	if o.Count == 0 {
		return 0
	}
	return o.Sum / float64(o.Count)
}

// Percent возвращает долю корзины k в процентах.
func (o *OctaveStats) Percent(k int) float64 {
	if o.Count == 0 {
		return 0
	}
	return 100 * float64(o.Distribution[k]) / float64(o.Count)
}

// Report - результат анализа по всем октавам.
type Report struct {
	Options Options
	Octaves []OctaveStats
}

// Analyze обходит массив для каждой октавы.
func Analyze(h *pack.Heights, opts Options) *Report {
	rep := &Report{Options: opts, Octaves: make([]OctaveStats, opts.Octaves)}
	for k := range rep.Octaves {
		rep.Octaves[k] = processOctave(h, k, opts)
	}
	return rep
}

// processOctave записывает уклоны вправо и вниз от каждой точки с данными.
// Высоты в дециметрах, поэтому делитель 10·length.
func processOctave(h *pack.Heights, k int, opts Options) OctaveStats {
	st := OctaveStats{Octave: k, Max: -9999, Distribution: make([]int64, opts.Granularity)}

	step := 1 << k
	length := opts.CellSpacing * float64(step)
	m := 1.0
	for i := opts.MidOctave; i < k; i++ {
		m *= 2
	}
	d := 10 * length
	deltaInv := float64(opts.Granularity) / opts.MaxGradient

	record := func(g float64) {
		if g >= opts.MaxGradient {
			return
		}
		st.Count++
		st.Max = math.Max(st.Max, g)
		st.Sum += g
		if n := int(g*deltaInv + 0.5); n >= 0 && n < opts.Granularity {
			st.Distribution[n]++
		}
	}

	side := h.Side
	for i := 0; i < side; i++ {
		for j := 0; j < side; j++ {
			h0 := h.At(i, j)
			if h0 == 0 {
				continue
			}
			if i+step < side {
				if h1 := h.At(i+step, j); h1 > 0 {
					record(m * math.Abs(float64(h0)-float64(h1)) / d)
				}
			}
			if j+step < side {
				if h2 := h.At(i, j+step); h2 > 0 {
					record(m * math.Abs(float64(h0)-float64(h2)) / d)
				}
			}
		}
	}
	return st
}

// MeanOfMeans возвращает среднее и медиану средних уклонов по октавам с данными.
func (r *Report) MeanOfMeans() (mean, median float64, err error) {
	var means stats.Float64Data
	for i := range r.Octaves {
		if r.Octaves[i].Count > 0 {
			means = append(means, r.Octaves[i].Mean())
		}
	}
	if mean, err = stats.Mean(means); err != nil {
		return 0, 0, err
	}
	if median, err = stats.Median(means); err != nil {
		return 0, 0, err
	}
	return mean, median, nil
}

// WriteTSV пишет отчёт: строки Gradients, Mean, Max, пустая строка,
// затем по строке на корзину с долями в процентах по октавам.
func (r *Report) WriteTSV(w io.Writer) error {
	bw := bufio.NewWriter(w)

	bw.WriteString("Gradients:\t")
	for i := range r.Octaves {
		fmt.Fprintf(bw, "%d\t", r.Octaves[i].Count)
	}
	bw.WriteString("\nMean\t")
	for i := range r.Octaves {
		fmt.Fprintf(bw, "%0.4f\t", r.Octaves[i].Mean())
	}
	bw.WriteString("\nMax\t")
	for i := range r.Octaves {
		fmt.Fprintf(bw, "%0.4f\t", r.Octaves[i].Max)
	}
	bw.WriteString("\n\n")

	delta := r.Options.MaxGradient / float64(r.Options.Granularity)
	g := 0.0
	for k := 0; k < r.Options.Granularity; k++ {
		g += delta
		fmt.Fprintf(bw, "%0.2f\t", g)
		for i := range r.Octaves {
			if r.Octaves[i].Distribution[k] > 0 {
				fmt.Fprintf(bw, "%0.4f\t", r.Octaves[i].Percent(k))
			} else {
				bw.WriteString("0\t") // настоящие нули видны сразу
			}
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}
