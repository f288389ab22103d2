package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/annel0/terrain-noise/internal/random"
)

func main() {
	var (
		seed        = flag.Uint("seed", 9999, "Hash seed")
		omega       = flag.Float64("omega", 0.3, "Multiplier for exponential distribution, [0,1]")
		samples     = flag.Int("n", 10000000, "Number of samples")
		granularity = flag.Int("g", random.DefaultGranularity, "Number of buckets")
		out         = flag.String("out", "distribution.txt", "Output file")
	)
	flag.Parse()

	if *omega < 0 || *omega > 1 {
		log.Fatalf("❌ omega должна быть в [0,1], получено %v", *omega)
	}

	src := random.NewHashSource(uint32(*seed))
	w := float32(*omega)
	d := random.RunExperiment(func() float32 { return random.ExpRandLifted(src, w) }, *samples, *granularity)

	fmt.Printf("Min %f, max %f\n", d.Min, d.Max)
	fmt.Printf("Missed %d small, %d large\n", d.MissedSmall, d.MissedLarge)
	fmt.Printf("Hits %d of %d\n", d.Hits(), d.Samples)
	if s, err := d.Summary(); err == nil {
		fmt.Printf("Mean %0.4f, median %0.4f, std dev %0.4f\n", s.Mean, s.Median, s.StdDev)
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer f.Close()
	if _, err := d.WriteTo(f); err != nil {
		log.Fatalf("❌ запись %s: %v", *out, err)
	}
}
