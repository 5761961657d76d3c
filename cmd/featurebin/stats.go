package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	var (
		gffPath string
		dbPath  string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show per-sequence feature counts",
		Example: `  featurebin stats --gff ann.gff3.gz
  featurebin stats --db features.duckdb`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := loadSet(gffPath, dbPath)
			if err != nil {
				return err
			}

			for _, seqID := range set.SeqIDs() {
				fmt.Printf("%s\t%d\n", seqID, set.CountSeq(seqID))
			}
			fmt.Printf("total\t%d\n", set.Count())
			return nil
		},
	}

	cmd.Flags().StringVar(&gffPath, "gff", "", "GFF3 annotation file (.gff3, .gff3.gz)")
	cmd.Flags().StringVar(&dbPath, "db", "", "DuckDB feature database")

	return cmd
}
