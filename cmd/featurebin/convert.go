package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eparker05/featurebin/internal/feature"
)

func newConvertCmd() *cobra.Command {
	var (
		inputPath  string
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a GFF3 annotation to a DuckDB feature database",
		Long: `Convert a GFF3 annotation file to a DuckDB database so later runs
can load features without re-parsing the text format.`,
		Example: `  featurebin convert --input ann.gff3.gz --output features.duckdb`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath == "" {
				return fmt.Errorf("--input is required")
			}
			if outputPath == "" {
				return fmt.Errorf("--output is required")
			}
			return runConvert(inputPath, outputPath)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Input GFF3 file (.gff3, .gff3.gz)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output DuckDB file path")

	return cmd
}

func runConvert(inputPath, outputPath string) error {
	set := feature.NewSet()
	loader := feature.NewGFFLoader(inputPath)
	loader.SetLogger(logger)
	if err := loader.Load(set); err != nil {
		return err
	}

	db, err := feature.NewDuckDBLoader(outputPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.CreateSchema(); err != nil {
		return err
	}

	written := 0
	for _, seqID := range set.SeqIDs() {
		features, err := set.All(seqID)
		if err != nil {
			return fmt.Errorf("enumerate %s: %w", seqID, err)
		}
		for _, f := range features {
			if err := db.InsertFeature(f); err != nil {
				return err
			}
			written++
		}
		logger.Info("converted sequence",
			zap.String("seqid", seqID),
			zap.Int("features", len(features)))
	}

	logger.Info("conversion complete",
		zap.String("output", outputPath),
		zap.Int("features", written))
	return nil
}
