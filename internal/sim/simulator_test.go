package sim

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/grasslab/mowsim/internal/config"
	"github.com/grasslab/mowsim/internal/core"
	"github.com/grasslab/mowsim/internal/env"
)

// corridorField is a 20x3 open field with the station in the west wall
// middle row, so a heading-0 robot ping-pongs along the corridor.
func corridorField() *env.Field {
	g := core.NewGrid(20, 3, 1.0)
	station := core.TileIndex{X: 0, Y: 1}
	g.SetType(station, core.TileBaseStation)
	return &env.Field{Grid: g, Station: station}
}

func corridorConfig() *config.Config {
	return &config.Config{
		Sim: config.SimConfig{
			Cycles:          2,
			Seed:            7,
			AutonomyPolicy:  "step",
			RechargeMinutes: 90,
		},
		Robots: config.RobotConfig{
			Count:      1,
			Speed:      1,
			Autonomy:   20,
			Bounce:     "ping-pong",
			Cutting:    "standard",
			HeadingDeg: 0,
		},
	}
}

func TestRechargeCycleRollover(t *testing.T) {
	cfg := corridorConfig()
	s, err := New(cfg, corridorField(), zap.NewNop())
	require.NoError(t, err)

	m, err := s.Run(context.Background())
	require.NoError(t, err)

	// Per-step autonomy of 20 makes every cycle exactly 20 ticks: the
	// twenty-first action lands in the next cycle.
	assert.Equal(t, 40, m.TotalTicks)
	assert.Equal(t, 2, m.CyclesCompleted)
	require.Len(t, s.Records(), 2)

	rec := s.Records()[0]
	assert.Equal(t, 0, rec.Index)
	assert.Equal(t, 0.0, rec.BeginMin)
	assert.Equal(t, 1.0, rec.StopMin, "20 simulated seconds round up to one minute")
	assert.Equal(t, 91.0, rec.AfterRecharge, "recharge adds 90 minutes to the clock")

	rec = s.Records()[1]
	assert.Equal(t, 1, rec.Index)
	assert.Equal(t, 91.0, rec.BeginMin)

	for _, r := range s.Robots() {
		assert.Equal(t, core.StateTerminated, r.State)
	}
}

func TestCumulativeSurvivesRecharge(t *testing.T) {
	cfg := corridorConfig()
	s, err := New(cfg, corridorField(), zap.NewNop())
	require.NoError(t, err)

	_, err = s.Run(context.Background())
	require.NoError(t, err)

	// Cycle 0 walks east marking tiles 1..19; cycle 1 walks back marking
	// 18..0. The per-cycle snapshot holds only its own visits while the
	// cumulative matrix keeps both.
	snap0 := s.Coverage().Snapshot(0)
	assert.Equal(t, 1, snap0[1][10])
	assert.Equal(t, 1, snap0[1][19])
	assert.Equal(t, 0, snap0[1][0])

	cum := s.Coverage().Cumulative()
	assert.Equal(t, 2, cum[1][10])
	assert.Equal(t, 1, cum[1][19])
	assert.Equal(t, 1, cum[1][0])
}

func TestRobotsEndOnPassableTiles(t *testing.T) {
	cfg := corridorConfig()
	cfg.Robots.Count = 3
	cfg.Robots.Bounce = "random"
	s, err := New(cfg, corridorField(), zap.NewNop())
	require.NoError(t, err)

	_, err = s.Run(context.Background())
	require.NoError(t, err)

	for _, r := range s.Robots() {
		idx, err := s.Grid().TileAt(r.Pos)
		require.NoError(t, err)
		assert.True(t, s.Grid().Passable(idx, r.Inside))
		assert.GreaterOrEqual(t, r.Autonomy, 0.0)
	}
}

func TestDeterministicReplay(t *testing.T) {
	run := func() ([][]int, []core.Pos) {
		cfg := corridorConfig()
		cfg.Robots.Count = 2
		cfg.Robots.Bounce = "random"
		cfg.Robots.Cutting = "random-sweep"
		s, err := New(cfg, corridorField(), zap.NewNop())
		require.NoError(t, err)
		_, err = s.Run(context.Background())
		require.NoError(t, err)

		var poses []core.Pos
		for _, r := range s.Robots() {
			poses = append(poses, r.Pos)
		}
		return s.Coverage().Cumulative(), poses
	}

	cov1, pos1 := run()
	cov2, pos2 := run()
	assert.Equal(t, cov1, cov2, "same seed replays the same coverage")
	assert.Equal(t, pos1, pos2, "same seed replays the same trajectories")
}

func TestPerDistancePolicy(t *testing.T) {
	cfg := corridorConfig()
	cfg.Sim.Cycles = 1
	cfg.Sim.AutonomyPolicy = "distance"
	cfg.Robots.Autonomy = 5
	s, err := New(cfg, corridorField(), zap.NewNop())
	require.NoError(t, err)

	m, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, m.CyclesCompleted)
	assert.Equal(t, 5, m.CommittedSteps, "distance policy charges tile lengths, not ticks")
}

func TestObserverReceivesFramesAndCycles(t *testing.T) {
	cfg := corridorConfig()
	cfg.Stream.TickEvery = 1

	s, err := New(cfg, corridorField(), zap.NewNop())
	require.NoError(t, err)

	obs := &captureObserver{}
	s.SetObserver(obs)
	_, err = s.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, obs.frames, 40)
	require.Len(t, obs.cycles, 2)
	assert.Equal(t, 0, obs.cycles[0].Index)
	require.Len(t, obs.frames[0].Robots, 1)
	assert.Equal(t, "Moving", obs.frames[0].Robots[0].State)
}

func TestCancellationStopsRun(t *testing.T) {
	cfg := corridorConfig()
	cfg.Sim.Cycles = 1000
	s, err := New(cfg, corridorField(), zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExportMetrics(t *testing.T) {
	cfg := corridorConfig()
	s, err := New(cfg, corridorField(), zap.NewNop())
	require.NoError(t, err)
	_, err = s.Run(context.Background())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "metrics.json")
	require.NoError(t, s.ExportMetrics(path))
	assert.FileExists(t, path)
}

type captureObserver struct {
	frames []Frame
	cycles []CycleRecord
}

func (o *captureObserver) OnTick(f Frame)        { o.frames = append(o.frames, f) }
func (o *captureObserver) OnCycle(r CycleRecord) { o.cycles = append(o.cycles, r) }
