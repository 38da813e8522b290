package sim

import (
	"context"
	"encoding/json"
	"math"
	"math/rand"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/grasslab/mowsim/internal/config"
	"github.com/grasslab/mowsim/internal/core"
	"github.com/grasslab/mowsim/internal/env"
)

// tickSeconds is the simulated duration of one tick. Cycle records convert
// it to minutes for export.
const tickSeconds = 1.0

// Frame is a per-tick observation published to observers (stream, viewer).
type Frame struct {
	Tick   int         `json:"tick"`
	Cycle  int         `json:"cycle"`
	Robots []RobotPose `json:"robots"`
}

// RobotPose is one robot's observable state inside a Frame.
type RobotPose struct {
	ID       core.RobotID `json:"id"`
	X        float64      `json:"x"`
	Y        float64      `json:"y"`
	Heading  float64      `json:"heading"`
	State    string       `json:"state"`
	Autonomy float64      `json:"autonomy"`
}

// CycleRecord summarizes one finished autonomy cycle, with the timing
// bookkeeping the CSV export carries: all values in simulated minutes.
type CycleRecord struct {
	Index         int     `json:"cycle"`
	BeginMin      float64 `json:"beginning_time"`
	StopMin       float64 `json:"stop_time"`
	AfterRecharge float64 `json:"after_recharge_time"`
	Snapshot      [][]int `json:"-"`
}

// Observer receives simulation progress. Implementations must not mutate
// anything they are handed.
type Observer interface {
	OnTick(f Frame)
	OnCycle(rec CycleRecord)
}

// Metrics collects run statistics, exported as JSON alongside the CSVs.
type Metrics struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	TotalTicks      int     `json:"total_ticks"`
	CommittedSteps  int     `json:"committed_steps"`
	Collisions      int     `json:"collisions"`
	BounceDeadlocks int     `json:"bounce_deadlocks"`
	SharedVisits    int     `json:"shared_visits"`
	CyclesCompleted int     `json:"cycles_completed"`
	TilesCut        int     `json:"tiles_cut"`
	MowableTiles    int     `json:"mowable_tiles"`
	CoverageFrac    float64 `json:"coverage_fraction"`
	SimulatedMin    float64 `json:"simulated_minutes"`
}

// Simulator is the cycle controller: it drives discrete ticks, steps each
// robot in registration order, burns autonomy, and rolls cycles over at
// recharge events. Single-threaded by design; determinism comes from the one
// seeded rng threaded through every stochastic call.
type Simulator struct {
	cfg      *config.Config
	grid     *core.Grid
	station  core.TileIndex
	robots   []*core.Robot
	behavior Behavior
	coverage *Coverage
	policy   core.AutonomyPolicy
	rng      *rand.Rand
	log      *zap.Logger
	observer Observer

	tick    int
	cycle   int
	clock   float64 // Simulated seconds, excludes recharge gaps
	elapsed float64 // Simulated seconds, includes recharge gaps
	records []CycleRecord
	metrics Metrics
}

// New assembles a simulator over a built field. The configuration must
// already be validated.
func New(cfg *config.Config, field *env.Field, log *zap.Logger) (*Simulator, error) {
	bounce, err := core.ParseBounceMode(cfg.Robots.Bounce)
	if err != nil {
		return nil, err
	}
	cut, err := core.ParseCutMode(cfg.Robots.Cutting)
	if err != nil {
		return nil, err
	}
	policy, err := core.ParseAutonomyPolicy(cfg.Sim.AutonomyPolicy)
	if err != nil {
		return nil, err
	}

	s := &Simulator{
		cfg:      cfg,
		grid:     field.Grid,
		station:  field.Station,
		behavior: BehaviorFor(cut, bounce),
		coverage: NewCoverage(field.Grid),
		policy:   policy,
		rng:      rand.New(rand.NewSource(cfg.Sim.Seed)),
		log:      log,
	}

	start := field.Grid.Center(field.Station)
	heading := cfg.Robots.HeadingDeg * math.Pi / 180
	for i := 0; i < cfg.Robots.Count; i++ {
		s.robots = append(s.robots, core.NewRobot(
			core.RobotID(i), start, heading,
			cfg.Robots.Speed, cfg.Robots.Autonomy,
			bounce, cut,
		))
	}
	return s, nil
}

// SetObserver registers the single progress observer. Call before Run.
func (s *Simulator) SetObserver(o Observer) {
	s.observer = o
}

// Coverage exposes the run's coverage logger.
func (s *Simulator) Coverage() *Coverage { return s.coverage }

// Records returns the per-cycle records accumulated so far.
func (s *Simulator) Records() []CycleRecord { return s.records }

// Robots returns the fleet in registration order.
func (s *Simulator) Robots() []*core.Robot { return s.robots }

// Grid returns the simulation grid.
func (s *Simulator) Grid() *core.Grid { return s.grid }

// Run executes the simulation until the cycle limit is reached or the
// context is canceled. Cancellation is cooperative, checked once per tick.
// The returned error is non-nil only for fatal invariant violations.
func (s *Simulator) Run(ctx context.Context) (*Metrics, error) {
	s.metrics.StartTime = time.Now()
	cycleBegin := 0.0

	s.log.Info("simulation starting",
		zap.Int("cycles", s.cfg.Sim.Cycles),
		zap.Int64("seed", s.cfg.Sim.Seed),
		zap.String("behavior", s.behavior.Name()),
		zap.Int("robots", len(s.robots)),
	)

	for s.cycle < s.cfg.Sim.Cycles {
		select {
		case <-ctx.Done():
			s.log.Warn("simulation canceled", zap.Int("cycle", s.cycle), zap.Int("tick", s.tick))
			s.finish()
			return &s.metrics, ctx.Err()
		default:
		}

		if err := s.step(); err != nil {
			s.finish()
			return &s.metrics, err
		}

		if s.allDepleted() {
			s.rechargeAll(cycleBegin)
			cycleBegin = s.elapsed
		}
	}

	for _, r := range s.robots {
		r.State = core.StateTerminated
	}
	s.finish()
	s.log.Info("simulation finished",
		zap.Int("ticks", s.metrics.TotalTicks),
		zap.Int("cycles", s.metrics.CyclesCompleted),
		zap.Float64("coverage", s.metrics.CoverageFrac),
	)
	return &s.metrics, nil
}

// step resolves exactly one tick: one motion decision, one cutting update,
// and one autonomy decrement per active robot, in registration order.
func (s *Simulator) step() error {
	s.tick++
	s.metrics.TotalTicks++
	s.coverage.BeginTick()

	for _, r := range s.robots {
		if r.Depleted() {
			r.State = core.StateRecharging
			continue
		}

		res := s.behavior.Step(r, s.grid, s.rng)

		if res.Collided {
			s.metrics.Collisions++
		}
		if res.Deadlocked {
			s.metrics.BounceDeadlocks++
			s.log.Debug("bounce deadlock, robot waits in place",
				zap.Int("robot", int(r.ID)), zap.Int("tick", s.tick))
		}
		if res.Moved {
			s.metrics.CommittedSteps++
			for _, idx := range res.Visited {
				s.coverage.RecordVisit(idx)
			}
			if err := s.checkInvariants(r); err != nil {
				s.log.Error("fatal invariant violation",
					zap.Error(err),
					zap.Int("tick", s.tick),
					zap.Int("cycle", s.cycle),
					zap.Float64("autonomy", r.Autonomy),
				)
				return err
			}
		}

		switch s.policy {
		case core.AutonomyPerDistance:
			r.ConsumeAutonomy(res.Distance)
		default:
			// Per-step policy charges every acting tick, bounce ticks
			// included, so an enclosed robot still drains and recharges.
			r.ConsumeAutonomy(1)
		}
	}

	s.clock += tickSeconds
	s.elapsed += tickSeconds
	s.metrics.SharedVisits = s.coverage.SharedVisits()

	if s.observer != nil && s.tick%s.observeEvery() == 0 {
		s.observer.OnTick(s.frame())
	}
	return nil
}

// rechargeAll is the recharge event: freeze the cycle snapshot, advance the
// simulated clock by the recharge gap, reset every budget, and resume.
func (s *Simulator) rechargeAll(cycleBegin float64) {
	stop := s.elapsed
	s.elapsed += s.cfg.Sim.RechargeMinutes * 60

	rec := CycleRecord{
		Index:         s.cycle,
		BeginMin:      math.Ceil(cycleBegin / 60),
		StopMin:       math.Ceil(stop / 60),
		AfterRecharge: math.Ceil(s.elapsed / 60),
		Snapshot:      nil,
	}
	s.coverage.EndCycle(s.cycle)
	rec.Snapshot = s.coverage.Snapshot(s.cycle)
	s.records = append(s.records, rec)

	if s.observer != nil {
		s.observer.OnCycle(rec)
	}

	s.cycle++
	s.metrics.CyclesCompleted++
	s.log.Info("recharge complete",
		zap.Int("cycle", s.cycle),
		zap.Float64("stop_min", rec.StopMin),
	)

	if s.cycle >= s.cfg.Sim.Cycles {
		return
	}
	for _, r := range s.robots {
		r.ResetAutonomy()
		r.State = core.StateMoving
	}
}

// checkInvariants verifies the post-step guarantees. A violation is a logic
// bug, not a data condition, and aborts the run.
func (s *Simulator) checkInvariants(r *core.Robot) error {
	idx, err := s.grid.TileAt(r.Pos)
	if err != nil {
		return &core.InvariantError{
			Invariant: "robot-on-grid", Robot: r.ID, Pos: r.Pos,
			Detail: "position maps outside the grid",
		}
	}
	if !s.grid.Passable(idx, r.Inside) {
		return &core.InvariantError{
			Invariant: "robot-on-passable-tile", Robot: r.ID, Pos: r.Pos,
			Detail: "resolved onto tile " + s.grid.Tile(idx).Type.String(),
		}
	}
	if r.Autonomy < 0 {
		return &core.InvariantError{
			Invariant: "non-negative-autonomy", Robot: r.ID, Pos: r.Pos,
			Detail: "autonomy budget went negative",
		}
	}
	return nil
}

func (s *Simulator) allDepleted() bool {
	for _, r := range s.robots {
		if !r.Depleted() {
			return false
		}
	}
	return true
}

func (s *Simulator) observeEvery() int {
	if s.cfg.Stream.TickEvery > 0 {
		return s.cfg.Stream.TickEvery
	}
	return 1
}

func (s *Simulator) frame() Frame {
	f := Frame{Tick: s.tick, Cycle: s.cycle}
	for _, r := range s.robots {
		f.Robots = append(f.Robots, RobotPose{
			ID: r.ID, X: r.Pos.X, Y: r.Pos.Y,
			Heading: r.Heading, State: r.State.String(), Autonomy: r.Autonomy,
		})
	}
	return f
}

func (s *Simulator) finish() {
	s.metrics.EndTime = time.Now()
	s.metrics.SimulatedMin = s.elapsed / 60
	cut, mowable, frac := s.coverage.CutStats()
	s.metrics.TilesCut = cut
	s.metrics.MowableTiles = mowable
	s.metrics.CoverageFrac = frac
}

// ExportMetrics writes the run metrics to a JSON file.
func (s *Simulator) ExportMetrics(path string) error {
	data, err := json.MarshalIndent(s.metrics, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
