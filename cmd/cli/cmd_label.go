package main

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"regime-rotation/internal/data"
	"regime-rotation/internal/regime"
)

func newLabelCmd() *cobra.Command {
	var featuresPath, outPath string
	cmd := &cobra.Command{
		Use:   "label",
		Short: "Label each feature row with a regime and write date,regime,name CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := featureRows(featuresPath)
			if err != nil {
				return err
			}
			series := regime.Series(rows)

			counts := map[string]int{}
			for _, p := range series {
				counts[p.Regime.String()]++
			}

			out := cmd.OutOrStdout()
			if outPath != "" {
				if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
					return err
				}
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			if err := data.WriteRegimeCSV(out, series); err != nil {
				return err
			}
			log.Info().Int("rows", len(series)).Interface("counts", counts).Msg("labeled features")
			return nil
		},
	}
	cmd.Flags().StringVar(&featuresPath, "features", "", "Features CSV (defaults to data.features)")
	cmd.Flags().StringVar(&outPath, "out", "", "Output CSV path (stdout when empty)")
	return cmd
}
