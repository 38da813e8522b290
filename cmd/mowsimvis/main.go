// Command mowsimvis runs a mowing simulation and opens an interactive
// playback viewer over the recorded run.
package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"

	"gioui.org/app"
	"gioui.org/unit"

	"github.com/grasslab/mowsim/internal/config"
	"github.com/grasslab/mowsim/internal/env"
	"github.com/grasslab/mowsim/internal/observability"
	"github.com/grasslab/mowsim/internal/sim"
	"github.com/grasslab/mowsim/internal/vis"
	"github.com/grasslab/mowsim/internal/vis/state"
)

func main() {
	cfgPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	rng := rand.New(rand.NewSource(cfg.Sim.Seed))
	gen, err := env.ForMode(cfg.Field.Mode)
	if err != nil {
		log.Fatal(err)
	}
	field, err := env.Build(cfg, gen, rng)
	if err != nil {
		log.Fatalf("build field: %v", err)
	}

	s, err := sim.New(cfg, field, logger)
	if err != nil {
		log.Fatal(err)
	}
	rec := &state.Recorder{}
	s.SetObserver(rec)
	if _, err := s.Run(context.Background()); err != nil {
		log.Fatalf("run: %v", err)
	}

	st := state.NewState(s, rec)

	go func() {
		window := new(app.Window)
		window.Option(
			app.Title("Mowing Simulator"),
			app.Size(unit.Dp(1200), unit.Dp(900)),
		)

		viewer := vis.NewApp(st)
		if err := viewer.Run(window); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}
