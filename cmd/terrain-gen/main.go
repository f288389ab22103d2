package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/annel0/terrain-noise/internal/config"
	"github.com/annel0/terrain-noise/internal/dem"
	"github.com/annel0/terrain-noise/internal/logging"
	"github.com/annel0/terrain-noise/internal/terrain"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config (или ENV TERRAIN_CONFIG)")
		seed       = flag.Uint("seed", 0, "Hash seed (0 - из конфигурации)")
		omega      = flag.Float64("omega", -1, "Multiplier for exponential distribution, [0,1] (-1 - из конфигурации)")
		altitude   = flag.Float64("altitude", 0, "Maximum altitude in meters (0 - из конфигурации)")
		side       = flag.Int("side", 0, "Tile side, power of two (0 - из конфигурации)")
		row        = flag.Int("row", 9999, "Tile row")
		col        = flag.Int("col", 7777, "Tile column")
		m0         = flag.Int("m0", 5, "First octave")
		m1         = flag.Int("m1", 12, "Last octave")
		out        = flag.String("out", "output", "Output file name without .asc")
	)
	flag.Parse()

	if err := logging.InitDefaultLogger("terrain-gen"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	gen := cfg.Generator
	if *seed != 0 {
		gen.Seed = uint32(*seed)
	}
	if *omega != -1 {
		if *omega < 0 || *omega > 1 {
			log.Fatalf("❌ omega должна быть в [0,1], получено %v", *omega)
		}
		gen.Omega = float32(*omega)
	}
	if *altitude != 0 {
		gen.Altitude = float32(*altitude)
	}
	if *side != 0 {
		gen.TileSide = *side
	}
	gen.FirstOctave, gen.LastOctave = *m0, *m1

	warnings, err := gen.Validate()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	for _, w := range warnings {
		logging.Warn("%s", w)
	}

	svc := terrain.NewService(gen, terrain.Options{})
	res, err := svc.GenerateTile(context.Background(), terrain.Request{
		Row:         *row,
		Col:         *col,
		FirstOctave: gen.FirstOctave,
		LastOctave:  gen.LastOctave,
		Side:        gen.TileSide,
	})
	if errors.Is(err, terrain.ErrInsufficientGranularity) {
		log.Fatalf("❌ тайл %d слишком мал для октавы %d", gen.TileSide, gen.FirstOctave)
	}
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	name := *out + ".asc"
	f, err := os.Create(name)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	err = dem.Write(f, dem.NewHeader(gen.TileSide, float64(gen.CellSize)), res.Elevations(gen.Altitude))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		log.Fatalf("❌ запись %s: %v", name, err)
	}

	fmt.Printf("Generated %dx%d noise in %v CPU time (%d octaves, scale %.6f)\n",
		gen.TileSide, gen.TileSide, res.CPUTime, res.Octaves, res.Scale)
	fmt.Printf("Saved to %s\n", name)
}
