package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/annel0/terrain-noise/internal/analyze"
	"github.com/annel0/terrain-noise/internal/pack"
)

func main() {
	opts := analyze.DefaultOptions()
	var (
		in  = flag.String("in", "UtahDEMData.bin", "Packed heights file")
		out = flag.String("out", "output.txt", "TSV report")
	)
	flag.IntVar(&opts.Octaves, "octaves", opts.Octaves, "Number of octaves")
	flag.IntVar(&opts.MidOctave, "mid", opts.MidOctave, "Middle octave")
	flag.Float64Var(&opts.CellSpacing, "spacing", opts.CellSpacing, "Cell spacing in meters")
	flag.Parse()

	f, err := os.Open(*in)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	h, err := pack.Read(bufio.NewReader(f))
	f.Close()
	if err != nil {
		log.Fatalf("❌ чтение %s: %v", *in, err)
	}

	rep := analyze.Analyze(h, opts)
	for _, o := range rep.Octaves {
		fmt.Printf("Octave %d: %d gradients, mean %0.4f, max %0.4f\n", o.Octave, o.Count, o.Mean(), o.Max)
	}
	if mean, median, err := rep.MeanOfMeans(); err == nil {
		fmt.Printf("Mean of octave means %0.4f, median %0.4f\n", mean, median)
	}

	of, err := os.Create(*out)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer of.Close()
	if err := rep.WriteTSV(of); err != nil {
		log.Fatalf("❌ запись %s: %v", *out, err)
	}
}
