// Package main generates deterministic field configuration files for
// benchmark sweeps. Each file is a complete mowsim config in JSON with a
// randomized field layout request and a unique seed.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
)

// FieldParams defines the sweep axes for generated configs.
type FieldParams struct {
	Seed        int64 `json:"seed"`
	Width       int   `json:"width"`
	Height      int   `json:"height"`
	NumSquares  int   `json:"num_squares"`
	NumCircles  int   `json:"num_circles"`
	Isolated    bool  `json:"isolated"`
	RobotCount  int   `json:"robot_count"`
	Cycles      int   `json:"cycles"`
	Repetitions int   `json:"repetitions"`
}

// configDoc mirrors the config file layout consumed by the simulator.
// Only the keys that vary between generated fields are emitted; everything
// else falls back to the simulator defaults.
type configDoc struct {
	Sim struct {
		Seed        int64 `json:"seed"`
		Cycles      int   `json:"cycles"`
		Repetitions int   `json:"repetitions"`
		MapIndex    int   `json:"map_index"`
	} `json:"sim"`
	Field struct {
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Mode   string `json:"mode"`
		Random struct {
			NumSquares int `json:"num_squares"`
			NumCircles int `json:"num_circles"`
			Isolated   struct {
				Enabled bool `json:"enabled"`
			} `json:"isolated"`
		} `json:"random"`
	} `json:"field"`
	Robots struct {
		Count int `json:"count"`
	} `json:"robots"`
	Export struct {
		BaseName string `json:"base_name"`
	} `json:"export"`
}

func buildConfig(p FieldParams, mapIndex int) *configDoc {
	doc := &configDoc{}
	doc.Sim.Seed = p.Seed
	doc.Sim.Cycles = p.Cycles
	doc.Sim.Repetitions = p.Repetitions
	doc.Sim.MapIndex = mapIndex
	doc.Field.Width = p.Width
	doc.Field.Height = p.Height
	doc.Field.Mode = "random"
	doc.Field.Random.NumSquares = p.NumSquares
	doc.Field.Random.NumCircles = p.NumCircles
	doc.Field.Random.Isolated.Enabled = p.Isolated
	doc.Robots.Count = p.RobotCount
	doc.Export.BaseName = fmt.Sprintf("field_%dx%d_s%d", p.Width, p.Height, p.Seed)
	return doc
}

func main() {
	var (
		outDir    = flag.String("out", "fields", "output directory")
		count     = flag.Int("count", 10, "number of field configs to generate")
		baseSeed  = flag.Int64("seed", 1000, "base seed; config i uses seed+i")
		minSize   = flag.Int("min-size", 30, "minimum grid side in tiles")
		maxSize   = flag.Int("max-size", 80, "maximum grid side in tiles")
		maxBlocks = flag.Int("max-blocks", 4, "maximum blocked areas of each shape")
		robots    = flag.Int("robots", 1, "robot count per field")
		cycles    = flag.Int("cycles", 3, "autonomy cycles per run")
		reps      = flag.Int("reps", 1, "repetitions per field")
	)
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "creating %s: %v\n", *outDir, err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(*baseSeed))
	for i := 0; i < *count; i++ {
		side := func() int {
			if *maxSize <= *minSize {
				return *minSize
			}
			return *minSize + rng.Intn(*maxSize-*minSize+1)
		}
		p := FieldParams{
			Seed:        *baseSeed + int64(i),
			Width:       side(),
			Height:      side(),
			NumSquares:  rng.Intn(*maxBlocks + 1),
			NumCircles:  rng.Intn(*maxBlocks + 1),
			Isolated:    rng.Float64() < 0.5,
			RobotCount:  *robots,
			Cycles:      *cycles,
			Repetitions: *reps,
		}

		doc := buildConfig(p, i)
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "marshaling config %d: %v\n", i, err)
			os.Exit(1)
		}

		path := filepath.Join(*outDir, fmt.Sprintf("field_%03d.json", i))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "writing %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("generated %s (%dx%d, %d squares, %d circles, isolated=%v)\n",
			path, p.Width, p.Height, p.NumSquares, p.NumCircles, p.Isolated)
	}
}
