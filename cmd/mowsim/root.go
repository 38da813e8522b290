package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/grasslab/mowsim/internal/config"
	"github.com/grasslab/mowsim/internal/observability"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mowsim",
	Short: "mowsim simulates autonomous mowing robots on a tile grid",
	Long: `mowsim simulates one or more autonomous mowing robots covering a
grass field. Fields carry blocked areas, isolated areas reachable only
through openings, and a base station; robots mow until their autonomy
runs out, recharge, and repeat for a configured number of cycles.
Coverage counts are exported as CSV after every cycle.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		logger, err = observability.NewLogger(cfg.Logger)
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (any viper-supported format)")
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newGenerateCmd())
}
