package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"regime-rotation/internal/data"
	"regime-rotation/internal/model"
	"regime-rotation/internal/training"
)

func newTrainCmd() *cobra.Command {
	var (
		featuresPath string
		predOut      string
		seed         int64
		trees        int
	)
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Label features and train the regime forest on 2005-2015, testing on 2016 on",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := featureRows(featuresPath)
			if err != nil {
				return err
			}
			res, err := train(rows, seed, trees)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "seed=%d train_rows=%d test_rows=%d\n", res.Seed, res.TrainRows, res.TestRows)
			fmt.Fprintf(w, "train_accuracy=%.4f test_accuracy=%.4f\n", res.TrainAccuracy, res.TestAccuracy)
			fmt.Fprintf(w, "\n%-12s %8s %8s %9s\n", "regime", "correct", "total", "accuracy")
			for _, ra := range res.RegimeAccuracy {
				fmt.Fprintf(w, "%-12s %8d %8d %9.4f\n", ra.Name, ra.Correct, ra.Total, ra.Accuracy)
			}
			fmt.Fprintf(w, "\n%-4s %-18s %-24s %8s\n", "rank", "feature", "category", "share%")
			for i, fi := range res.FeatureImportance {
				fmt.Fprintf(w, "%-4d %-18s %-24s %8.2f\n", i+1, fi.Feature, fi.Category, fi.Percent)
			}

			if predOut != "" {
				if err := os.MkdirAll(filepath.Dir(predOut), 0o755); err != nil {
					return err
				}
				f, err := os.Create(predOut)
				if err != nil {
					return err
				}
				defer f.Close()
				return data.WriteRegimeCSV(f, training.PredictedSeries(res, rows))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&featuresPath, "features", "", "Features CSV (defaults to data.features)")
	cmd.Flags().StringVar(&predOut, "predictions", "", "Write the model's regime series (labels in-sample, predictions after) to this CSV")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 uses forest.seed, then the clock)")
	cmd.Flags().IntVar(&trees, "trees", 0, "Override forest.trees")
	return cmd
}

func train(rows []model.FeatureRow, seed int64, trees int) (*training.Result, error) {
	opts := training.DefaultOptions()
	opts.Params = cfg.Forest.Params()
	if trees > 0 {
		opts.Params.Trees = trees
	}
	opts.Seed = cfg.Forest.Seed
	if seed != 0 {
		opts.Seed = seed
	}
	return training.LabelAndTrain(rows, opts)
}
