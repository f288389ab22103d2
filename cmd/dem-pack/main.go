package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/annel0/terrain-noise/internal/pack"
)

func main() {
	var (
		list = flag.String("list", "filelist.txt", "File with DEM file names, row-major")
		grid = flag.Int("grid", 0, "Files per row (0 - sqrt of the list length)")
		out  = flag.String("out", "UtahDEMData.bin", "Packed output file")
	)
	flag.Parse()

	lf, err := os.Open(*list)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	names, err := pack.ReadFileList(lf)
	lf.Close()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	size := *grid
	if size == 0 {
		for size*size < len(names) {
			size++
		}
	}

	h, st, err := pack.PackFiles(names, size)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	w := bufio.NewWriter(f)
	if err := pack.Write(w, h); err != nil {
		log.Fatalf("❌ запись %s: %v", *out, err)
	}
	if err := w.Flush(); err != nil {
		log.Fatalf("❌ запись %s: %v", *out, err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("❌ %v", err)
	}

	fmt.Printf("Packed %d files into %dx%d heights\n", len(names), h.Side, h.Side)
	fmt.Printf("%d points, %d bad points\n", st.Points, st.BadPoints)
}
