package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/grasslab/mowsim/internal/core"
	"github.com/grasslab/mowsim/internal/env"
)

// newGenerateCmd creates the field preview command: build the field from
// the current configuration and write its tile-type layout without running
// a simulation, so layouts can be inspected before a long batch.
func newGenerateCmd() *cobra.Command {
	var out string

	genCmd := &cobra.Command{
		Use:   "generate",
		Short: "Build the field from the configuration and write its layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			rng := rand.New(rand.NewSource(cfg.Sim.Seed))
			gen, err := env.ForMode(cfg.Field.Mode)
			if err != nil {
				return err
			}
			field, err := env.Build(cfg, gen, rng)
			if err != nil {
				return fmt.Errorf("building field: %w", err)
			}

			logger.Info("field built",
				zap.Int("width", field.Grid.Width),
				zap.Int("height", field.Grid.Height),
				zap.Int("areas", len(field.Areas)),
				zap.Int("station_x", field.Station.X),
				zap.Int("station_y", field.Station.Y),
			)
			for _, a := range field.Areas {
				logger.Info("area placed",
					zap.String("area", a.Name()),
					zap.Int("x", a.Origin.X),
					zap.Int("y", a.Origin.Y),
					zap.Int("openings", len(a.Openings)),
				)
			}

			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return err
			}
			return writeLayout(out, field.Grid)
		},
	}

	genCmd.Flags().StringVar(&out, "out", "field_layout.txt", "layout output path")
	return genCmd
}

// writeLayout renders the grid as one rune per tile, a quick visual check
// of a placement before committing to a batch run.
func writeLayout(path string, g *core.Grid) error {
	glyphs := map[core.TileType]byte{
		core.TileGrass:          '.',
		core.TileGuideLine:      '#',
		core.TileOpening:        'O',
		core.TileSquaredBlocked: 'S',
		core.TileCircledBlocked: 'C',
		core.TileIsolated:       'I',
		core.TileBaseStation:    'B',
	}

	buf := make([]byte, 0, (g.Width+1)*g.Height)
	for _, row := range g.TypeGrid() {
		for _, t := range row {
			buf = append(buf, glyphs[t])
		}
		buf = append(buf, '\n')
	}
	return os.WriteFile(path, buf, 0o644)
}
