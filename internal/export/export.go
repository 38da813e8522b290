// Package export serializes simulation output: per-cycle visit matrices,
// the static tile-type layout, and visit-count histograms, all as delimited
// files an external plotting pipeline can consume.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/grasslab/mowsim/internal/config"
	"github.com/grasslab/mowsim/internal/core"
	"github.com/grasslab/mowsim/internal/sim"
)

// Writer exports one run's artifacts under a common directory and base name.
type Writer struct {
	OutDir   string
	BaseName string
	MapIndex int
	Rep      int
	TileSize float64
}

// NewWriter builds a Writer from configuration for one repetition.
func NewWriter(cfg *config.Config, rep int) *Writer {
	return &Writer{
		OutDir:   cfg.Export.OutDir,
		BaseName: cfg.Export.BaseName,
		MapIndex: cfg.Sim.MapIndex,
		Rep:      rep,
		TileSize: cfg.Field.TileSize,
	}
}

// WriteCycle writes one cycle's visit matrix. Each row carries the run
// bookkeeping columns followed by the row's continuous x offset and the
// per-column visit counts; the header labels columns by their continuous
// offset.
func (w *Writer) WriteCycle(rec sim.CycleRecord) error {
	if err := os.MkdirAll(w.OutDir, 0o755); err != nil {
		return err
	}
	name := fmt.Sprintf("%s_map%d_rep%d_cycle_%d.csv", w.BaseName, w.MapIndex, w.Rep, rec.Index)
	f, err := os.Create(filepath.Join(w.OutDir, name))
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if len(rec.Snapshot) == 0 {
		return nil
	}
	width := len(rec.Snapshot[0])

	header := []string{"map", "repetition", "cycle", "beginning_time", "stop_time", "after_recharge_time", "x"}
	for x := 0; x < width; x++ {
		header = append(header, strconv.FormatFloat(float64(x)*w.TileSize, 'g', -1, 64))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for y, row := range rec.Snapshot {
		out := []string{
			strconv.Itoa(w.MapIndex),
			strconv.Itoa(w.Rep),
			strconv.Itoa(rec.Index),
			strconv.FormatFloat(rec.BeginMin, 'g', -1, 64),
			strconv.FormatFloat(rec.StopMin, 'g', -1, 64),
			strconv.FormatFloat(rec.AfterRecharge, 'g', -1, 64),
			strconv.FormatFloat(float64(y)*w.TileSize, 'g', -1, 64),
		}
		for _, v := range row {
			out = append(out, strconv.Itoa(v))
		}
		if err := cw.Write(out); err != nil {
			return err
		}
	}
	return cw.Error()
}

// WriteTypeGrid writes the static tile-type layout once per run.
func (w *Writer) WriteTypeGrid(types [][]core.TileType) error {
	if err := os.MkdirAll(w.OutDir, 0o755); err != nil {
		return err
	}
	name := fmt.Sprintf("%s_map%d_types.csv", w.BaseName, w.MapIndex)
	f, err := os.Create(filepath.Join(w.OutDir, name))
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	for _, row := range types {
		out := make([]string, len(row))
		for x, t := range row {
			out[x] = t.String()
		}
		if err := cw.Write(out); err != nil {
			return err
		}
	}
	return cw.Error()
}

// WriteHistogram writes the distribution of non-zero visit counts over the
// cumulative matrix: one row per observed count value with its frequency.
func (w *Writer) WriteHistogram(counts [][]int) error {
	if err := os.MkdirAll(w.OutDir, 0o755); err != nil {
		return err
	}
	freq := make(map[int]int)
	max := 0
	for _, row := range counts {
		for _, v := range row {
			if v > 0 {
				freq[v]++
				if v > max {
					max = v
				}
			}
		}
	}

	name := fmt.Sprintf("%s_map%d_rep%d_histogram.csv", w.BaseName, w.MapIndex, w.Rep)
	f, err := os.Create(filepath.Join(w.OutDir, name))
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if err := cw.Write([]string{"passes", "tiles"}); err != nil {
		return err
	}
	for v := 1; v <= max; v++ {
		if freq[v] == 0 {
			continue
		}
		if err := cw.Write([]string{strconv.Itoa(v), strconv.Itoa(freq[v])}); err != nil {
			return err
		}
	}
	return cw.Error()
}

// WriteAll exports every finished cycle plus the layout and histogram.
func (w *Writer) WriteAll(s *sim.Simulator, writeTypes bool) error {
	for _, rec := range s.Records() {
		if err := w.WriteCycle(rec); err != nil {
			return fmt.Errorf("cycle %d: %w", rec.Index, err)
		}
	}
	if writeTypes {
		if err := w.WriteTypeGrid(s.Coverage().TypeGrid()); err != nil {
			return fmt.Errorf("type grid: %w", err)
		}
	}
	if err := w.WriteHistogram(s.Coverage().Cumulative()); err != nil {
		return fmt.Errorf("histogram: %w", err)
	}
	return nil
}
