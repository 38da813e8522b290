package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grasslab/mowsim/internal/core"
	"github.com/grasslab/mowsim/internal/sim"
)

func testWriter(t *testing.T) *Writer {
	t.Helper()
	return &Writer{
		OutDir:   t.TempDir(),
		BaseName: "coverage",
		MapIndex: 2,
		Rep:      1,
		TileSize: 0.5,
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteCycle(t *testing.T) {
	w := testWriter(t)
	rec := sim.CycleRecord{
		Index:         3,
		BeginMin:      0,
		StopMin:       12,
		AfterRecharge: 102,
		Snapshot: [][]int{
			{0, 1, 2},
			{3, 0, 1},
		},
	}
	require.NoError(t, w.WriteCycle(rec))

	rows := readCSV(t, filepath.Join(w.OutDir, "coverage_map2_rep1_cycle_3.csv"))
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"map", "repetition", "cycle", "beginning_time", "stop_time", "after_recharge_time", "x", "0", "0.5", "1"}, rows[0])
	assert.Equal(t, []string{"2", "1", "3", "0", "12", "102", "0", "0", "1", "2"}, rows[1])
	assert.Equal(t, []string{"2", "1", "3", "0", "12", "102", "0.5", "3", "0", "1"}, rows[2])
}

func TestWriteTypeGrid(t *testing.T) {
	w := testWriter(t)
	types := [][]core.TileType{
		{core.TileGrass, core.TileGuideLine},
		{core.TileSquaredBlocked, core.TileBaseStation},
	}
	require.NoError(t, w.WriteTypeGrid(types))

	rows := readCSV(t, filepath.Join(w.OutDir, "coverage_map2_types.csv"))
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Grass", "GuideLine"}, rows[0])
	assert.Equal(t, []string{"SquaredBlocked", "BaseStation"}, rows[1])
}

func TestWriteHistogram(t *testing.T) {
	w := testWriter(t)
	counts := [][]int{
		{0, 1, 1},
		{3, 1, 0},
	}
	require.NoError(t, w.WriteHistogram(counts))

	rows := readCSV(t, filepath.Join(w.OutDir, "coverage_map2_rep1_histogram.csv"))
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"passes", "tiles"}, rows[0])
	assert.Equal(t, []string{"1", "3"}, rows[1])
	assert.Equal(t, []string{"3", "1"}, rows[2])
}
