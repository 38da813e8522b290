// Package config loads and validates simulator configuration.
//
// The rest of the system consumes the validated Config value, never raw
// files: every configuration error is caught here or during placement,
// before the simulation starts.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/grasslab/mowsim/internal/core"
)

// Config is the root configuration.
type Config struct {
	Logger LoggerConfig `mapstructure:"logger"`
	Sim    SimConfig    `mapstructure:"sim"`
	Field  FieldConfig  `mapstructure:"field"`
	Robots RobotConfig  `mapstructure:"robots"`
	Export ExportConfig `mapstructure:"export"`
	Stream StreamConfig `mapstructure:"stream"`
}

// LoggerConfig controls the zap logger.
type LoggerConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"` // "console" or "json"
	AddSource bool   `mapstructure:"add_source"`
}

// SimConfig controls the run itself.
type SimConfig struct {
	Cycles          int     `mapstructure:"cycles"`
	Seed            int64   `mapstructure:"seed"`
	AutonomyPolicy  string  `mapstructure:"autonomy_policy"` // "step" or "distance"
	RechargeMinutes float64 `mapstructure:"recharge_minutes"`
	Repetitions     int     `mapstructure:"repetitions"`
	MapIndex        int     `mapstructure:"map_index"`
}

// FieldConfig describes the grid and its areas.
type FieldConfig struct {
	Width    int     `mapstructure:"width"`     // Tiles
	Height   int     `mapstructure:"height"`    // Tiles
	TileSize float64 `mapstructure:"tile_size"` // Meters per tile

	// Mode selects randomized or manual area placement.
	Mode string `mapstructure:"mode"` // "random" or "manual"

	// BaseStation is the explicit station tile; when absent the station
	// strategy picks one.
	BaseStation     *TilePos `mapstructure:"base_station"`
	StationStrategy string   `mapstructure:"station_strategy"` // "perimeter", "biggest-random", "biggest-center"

	PlacementAttempts   int  `mapstructure:"placement_attempts"`
	PerimeterGuidelines bool `mapstructure:"perimeter_guidelines"`

	Random RandomAreas `mapstructure:"random"`
	Manual ManualAreas `mapstructure:"manual"`
}

// TilePos is a discrete coordinate in configuration files.
type TilePos struct {
	X int `mapstructure:"x"`
	Y int `mapstructure:"y"`
}

// RandomAreas is the randomized-mode placement request.
type RandomAreas struct {
	NumSquares    int `mapstructure:"num_squares"`
	MinSquareSize int `mapstructure:"min_square_size"` // Tiles per side
	MaxSquareSize int `mapstructure:"max_square_size"`
	NumCircles    int `mapstructure:"num_circles"`
	MinRadius     int `mapstructure:"min_radius"`
	MaxRadius     int `mapstructure:"max_radius"`

	Isolated RandomIsolated `mapstructure:"isolated"`
}

// RandomIsolated requests one randomized isolated area.
type RandomIsolated struct {
	Enabled   bool   `mapstructure:"enabled"`
	Shape     string `mapstructure:"shape"` // "square" or "circle"
	MinWidth  int    `mapstructure:"min_width"`
	MaxWidth  int    `mapstructure:"max_width"`
	MinHeight int    `mapstructure:"min_height"`
	MaxHeight int    `mapstructure:"max_height"`
	Radius    int    `mapstructure:"radius"` // Circle shape only
}

// ManualAreas lists explicit area coordinates.
type ManualAreas struct {
	Squares  []RectSpec     `mapstructure:"squares"`
	Circles  []CircleSpec   `mapstructure:"circles"`
	Isolated []IsolatedSpec `mapstructure:"isolated"`
}

// RectSpec is an explicit rectangular footprint in tile units.
type RectSpec struct {
	X      int `mapstructure:"x"`
	Y      int `mapstructure:"y"`
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// CircleSpec is an explicit disc footprint in tile units.
type CircleSpec struct {
	X      int `mapstructure:"x"`
	Y      int `mapstructure:"y"`
	Radius int `mapstructure:"radius"`
}

// IsolatedSpec is an explicit isolated area with its opening tiles.
type IsolatedSpec struct {
	X        int       `mapstructure:"x"`
	Y        int       `mapstructure:"y"`
	Width    int       `mapstructure:"width"`
	Height   int       `mapstructure:"height"`
	Openings []TilePos `mapstructure:"openings"`
}

// RobotConfig describes the robot fleet. All robots start at the base
// station and share speed and mode settings.
type RobotConfig struct {
	Count      int     `mapstructure:"count"`
	Speed      float64 `mapstructure:"speed"`        // Tile lengths per tick
	Autonomy   float64 `mapstructure:"autonomy"`     // Budget per cycle
	Bounce     string  `mapstructure:"bounce"`       // "ping-pong" or "random"
	Cutting    string  `mapstructure:"cutting"`      // "standard" or "random-sweep"
	HeadingDeg float64 `mapstructure:"heading_deg"`  // Initial heading
}

// ExportConfig controls CSV/JSON output.
type ExportConfig struct {
	OutDir        string `mapstructure:"out_dir"`
	BaseName      string `mapstructure:"base_name"`
	WriteTypeGrid bool   `mapstructure:"write_type_grid"`
	WriteMetrics  bool   `mapstructure:"write_metrics"`
}

// StreamConfig controls the live WebSocket stream.
type StreamConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Addr      string `mapstructure:"addr"`
	TickEvery int    `mapstructure:"tick_every"` // Broadcast every N ticks
}

// SetDefaults installs defaults on a viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)

	v.SetDefault("sim.cycles", 3)
	v.SetDefault("sim.seed", 42)
	v.SetDefault("sim.autonomy_policy", "step")
	v.SetDefault("sim.recharge_minutes", 90.0)
	v.SetDefault("sim.repetitions", 1)
	v.SetDefault("sim.map_index", 0)

	v.SetDefault("field.width", 50)
	v.SetDefault("field.height", 50)
	v.SetDefault("field.tile_size", 0.5)
	v.SetDefault("field.mode", "random")
	v.SetDefault("field.station_strategy", "perimeter")
	v.SetDefault("field.placement_attempts", 35)
	v.SetDefault("field.perimeter_guidelines", true)

	v.SetDefault("field.random.num_squares", 2)
	v.SetDefault("field.random.min_square_size", 2)
	v.SetDefault("field.random.max_square_size", 5)
	v.SetDefault("field.random.num_circles", 1)
	v.SetDefault("field.random.min_radius", 1)
	v.SetDefault("field.random.max_radius", 3)
	v.SetDefault("field.random.isolated.enabled", true)
	v.SetDefault("field.random.isolated.shape", "square")
	v.SetDefault("field.random.isolated.min_width", 3)
	v.SetDefault("field.random.isolated.max_width", 8)
	v.SetDefault("field.random.isolated.min_height", 3)
	v.SetDefault("field.random.isolated.max_height", 8)
	v.SetDefault("field.random.isolated.radius", 4)

	v.SetDefault("robots.count", 1)
	v.SetDefault("robots.speed", 1.0)
	v.SetDefault("robots.autonomy", 600.0)
	v.SetDefault("robots.bounce", "ping-pong")
	v.SetDefault("robots.cutting", "standard")
	v.SetDefault("robots.heading_deg", 45.0)

	v.SetDefault("export.out_dir", "out")
	v.SetDefault("export.base_name", "coverage")
	v.SetDefault("export.write_type_grid", true)
	v.SetDefault("export.write_metrics", true)

	v.SetDefault("stream.enabled", false)
	v.SetDefault("stream.addr", ":8733")
	v.SetDefault("stream.tick_every", 5)
}

// Load reads configuration from the given file (any viper-supported format),
// layered over defaults and MOWSIM_* environment variables. An empty path
// loads defaults only.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("MOWSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks everything that can be checked without placing areas.
// Overlap and reachability of concrete placements are verified by the field
// generator, which also runs before the simulation starts.
func (c *Config) Validate() error {
	var errs []error

	if c.Field.Width <= 0 || c.Field.Height <= 0 {
		errs = append(errs, fmt.Errorf("field: dimensions %dx%d must be positive", c.Field.Width, c.Field.Height))
	}
	if c.Field.TileSize <= 0 {
		errs = append(errs, fmt.Errorf("field: tile size %.3f must be positive", c.Field.TileSize))
	}
	switch c.Field.Mode {
	case "random", "manual":
	default:
		errs = append(errs, fmt.Errorf("field: unknown mode %q", c.Field.Mode))
	}
	if bs := c.Field.BaseStation; bs != nil {
		if bs.X < 0 || bs.X >= c.Field.Width || bs.Y < 0 || bs.Y >= c.Field.Height {
			errs = append(errs, fmt.Errorf("field: base station (%d, %d) outside %dx%d grid",
				bs.X, bs.Y, c.Field.Width, c.Field.Height))
		}
	}
	if c.Field.PlacementAttempts <= 0 {
		errs = append(errs, errors.New("field: placement_attempts must be positive"))
	}

	errs = append(errs, c.validateAreas()...)

	if c.Sim.Cycles <= 0 {
		errs = append(errs, fmt.Errorf("sim: cycle limit %d must be positive", c.Sim.Cycles))
	}
	if c.Sim.Repetitions <= 0 {
		errs = append(errs, errors.New("sim: repetitions must be positive"))
	}
	if _, err := core.ParseAutonomyPolicy(c.Sim.AutonomyPolicy); err != nil {
		errs = append(errs, fmt.Errorf("sim: %w", err))
	}

	if c.Robots.Count <= 0 {
		errs = append(errs, errors.New("robots: count must be positive"))
	}
	if c.Robots.Speed <= 0 {
		errs = append(errs, fmt.Errorf("robots: speed %.3f must be positive", c.Robots.Speed))
	}
	if c.Robots.Autonomy <= 0 {
		errs = append(errs, fmt.Errorf("robots: autonomy %.3f must be positive", c.Robots.Autonomy))
	}
	if _, err := core.ParseBounceMode(c.Robots.Bounce); err != nil {
		errs = append(errs, fmt.Errorf("robots: %w", err))
	}
	if _, err := core.ParseCutMode(c.Robots.Cutting); err != nil {
		errs = append(errs, fmt.Errorf("robots: %w", err))
	}

	return errors.Join(errs...)
}

// validateAreas checks area specs against grid bounds and capacity.
func (c *Config) validateAreas() []error {
	var errs []error
	capacity := c.Field.Width * c.Field.Height
	claimed := 0

	switch c.Field.Mode {
	case "manual":
		for i, s := range c.Field.Manual.Squares {
			if s.Width <= 0 || s.Height <= 0 {
				errs = append(errs, fmt.Errorf("manual squared-area %d: size %dx%d must be positive", i, s.Width, s.Height))
				continue
			}
			if s.X < 0 || s.Y < 0 || s.X+s.Width > c.Field.Width || s.Y+s.Height > c.Field.Height {
				errs = append(errs, fmt.Errorf("manual squared-area %d at (%d, %d) exceeds grid bounds", i, s.X, s.Y))
			}
			claimed += s.Width * s.Height
		}
		for i, s := range c.Field.Manual.Circles {
			if s.Radius <= 0 {
				errs = append(errs, fmt.Errorf("manual circled-area %d: radius %d must be positive", i, s.Radius))
				continue
			}
			if s.X-s.Radius < 0 || s.Y-s.Radius < 0 || s.X+s.Radius >= c.Field.Width || s.Y+s.Radius >= c.Field.Height {
				errs = append(errs, fmt.Errorf("manual circled-area %d at (%d, %d) exceeds grid bounds", i, s.X, s.Y))
			}
			claimed += (2*s.Radius + 1) * (2*s.Radius + 1)
		}
		for i, s := range c.Field.Manual.Isolated {
			if s.Width <= 0 || s.Height <= 0 {
				errs = append(errs, fmt.Errorf("manual isolated-area %d: size %dx%d must be positive", i, s.Width, s.Height))
				continue
			}
			if s.X < 0 || s.Y < 0 || s.X+s.Width > c.Field.Width || s.Y+s.Height > c.Field.Height {
				errs = append(errs, fmt.Errorf("manual isolated-area %d at (%d, %d) exceeds grid bounds", i, s.X, s.Y))
			}
			if len(s.Openings) == 0 {
				errs = append(errs, fmt.Errorf("manual isolated-area %d has no openings", i))
			}
			for _, o := range s.Openings {
				if o.X < s.X || o.X >= s.X+s.Width || o.Y < s.Y || o.Y >= s.Y+s.Height {
					errs = append(errs, fmt.Errorf("manual isolated-area %d: opening (%d, %d) outside the area", i, o.X, o.Y))
				}
			}
			claimed += s.Width * s.Height
		}
	case "random":
		r := c.Field.Random
		if r.NumSquares < 0 || r.NumCircles < 0 {
			errs = append(errs, errors.New("random areas: counts must be non-negative"))
		}
		if r.NumSquares > 0 && (r.MinSquareSize <= 0 || r.MaxSquareSize < r.MinSquareSize) {
			errs = append(errs, fmt.Errorf("random squared-areas: size range [%d, %d] invalid", r.MinSquareSize, r.MaxSquareSize))
		}
		if r.NumCircles > 0 && (r.MinRadius <= 0 || r.MaxRadius < r.MinRadius) {
			errs = append(errs, fmt.Errorf("random circled-areas: radius range [%d, %d] invalid", r.MinRadius, r.MaxRadius))
		}
		if r.Isolated.Enabled {
			switch r.Isolated.Shape {
			case "square":
				if r.Isolated.MinWidth <= 0 || r.Isolated.MaxWidth < r.Isolated.MinWidth ||
					r.Isolated.MinHeight <= 0 || r.Isolated.MaxHeight < r.Isolated.MinHeight {
					errs = append(errs, errors.New("random isolated-area: size ranges invalid"))
				}
				claimed += r.Isolated.MaxWidth * r.Isolated.MaxHeight
			case "circle":
				if r.Isolated.Radius <= 0 {
					errs = append(errs, errors.New("random isolated-area: radius must be positive"))
				}
				claimed += (2*r.Isolated.Radius + 1) * (2*r.Isolated.Radius + 1)
			default:
				errs = append(errs, fmt.Errorf("random isolated-area: unknown shape %q", r.Isolated.Shape))
			}
		}
		claimed += r.NumSquares*r.MaxSquareSize*r.MaxSquareSize +
			r.NumCircles*(2*r.MaxRadius+1)*(2*r.MaxRadius+1)
	}

	// Worst-case footprint must leave room for the station and some grass.
	if claimed >= capacity {
		errs = append(errs, fmt.Errorf("areas claim up to %d tiles but the grid holds only %d", claimed, capacity))
	}
	return errs
}
