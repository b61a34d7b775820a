package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"regime-rotation/internal/config"
	"regime-rotation/internal/data"
	"regime-rotation/internal/logging"
	"regime-rotation/internal/model"
)

var (
	cfgPath  string
	logLevel string
	cfg      *config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "regime",
		Short:         "Macro regime labeling, forest training and sector rotation backtests",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				c.Log.Level = logLevel
			}
			if _, err := logging.Setup(c.Log); err != nil {
				return err
			}
			cfg = c
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to YAML config (optional)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level")

	rootCmd.AddCommand(newLabelCmd(), newTrainCmd(), newBacktestCmd(), newRunsCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	c := config.Default()
	if err := c.ApplyEnv(); err != nil {
		return nil, err
	}
	return c, c.Validate()
}

// featureRows loads the features CSV named by the flag, falling back to the
// config's data section.
func featureRows(path string) ([]model.FeatureRow, error) {
	if path == "" {
		path = cfg.Data.Features
	}
	if path == "" {
		return nil, fmt.Errorf("no features CSV: pass --features or set data.features")
	}
	rows, err := data.LoadFeatureCSV(path, cfg.Data.FeatureDateColumn)
	if err != nil {
		return nil, fmt.Errorf("load features: %w", err)
	}
	log.Debug().Str("path", path).Int("rows", len(rows)).Msg("loaded features")
	return rows, nil
}

func orDefault(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}
