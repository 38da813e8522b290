package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/grasslab/mowsim/internal/env"
	"github.com/grasslab/mowsim/internal/sim"
	"github.com/grasslab/mowsim/internal/stream"
)

// newServeCmd creates the live-streaming command. The simulation runs
// once while the HTTP server broadcasts frames; after the run the server
// keeps serving the layout and coverage snapshots until interrupted.
func newServeCmd() *cobra.Command {
	var (
		addr     string
		throttle time.Duration
	)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the simulation and stream robot poses over WebSocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				cfg.Stream.Addr = addr
			}
			cfg.Stream.Enabled = true

			ctx := cmd.Context()
			rng := rand.New(rand.NewSource(cfg.Sim.Seed))

			gen, err := env.ForMode(cfg.Field.Mode)
			if err != nil {
				return err
			}
			field, err := env.Build(cfg, gen, rng)
			if err != nil {
				return fmt.Errorf("building field: %w", err)
			}

			s, err := sim.New(cfg, field, logger)
			if err != nil {
				return err
			}

			hub := stream.NewHub(logger)
			server := stream.NewServer(cfg.Stream.Addr, hub, field.Grid, logger)
			s.SetObserver(server)
			server.Start(ctx)

			// Give clients a moment to connect before frames start flowing.
			select {
			case <-time.After(throttle):
			case <-ctx.Done():
				return ctx.Err()
			}

			metrics, err := s.Run(ctx)
			if err != nil {
				return err
			}
			logger.Info("run finished, serving snapshots until interrupted",
				zap.Int("ticks", metrics.TotalTicks),
				zap.Float64("coverage", metrics.CoverageFrac),
			)

			<-ctx.Done()
			return nil
		},
	}

	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides stream.addr)")
	serveCmd.Flags().DurationVar(&throttle, "warmup", 2*time.Second, "delay before the run starts")
	return serveCmd
}
