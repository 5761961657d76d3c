package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eparker05/featurebin/internal/feature"
)

func newQueryCmd() *cobra.Command {
	var (
		gffPath string
		dbPath  string
		typ     string
	)

	cmd := &cobra.Command{
		Use:   "query <region>...",
		Short: "Find features overlapping one or more regions",
		Long: `Find all features overlapping the given regions.

Regions use the usual 1-based inclusive notation: "chr1:5000-6000"
covers coordinates 5000 through 6000, and "chr1:5000" is a single
position. Output is tab-separated GFF-style lines.`,
		Example: `  featurebin query --gff ann.gff3.gz chr1:5000-6000
  featurebin query --db features.duckdb chr2:44100 chrX:1-100000
  featurebin query --gff ann.gff3 --type exon chr1:5000-6000`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := loadSet(gffPath, dbPath)
			if err != nil {
				return err
			}

			for _, arg := range args {
				seqID, start, stop, err := parseRegion(arg)
				if err != nil {
					return err
				}
				hits, err := set.Query(seqID, start, stop)
				if err != nil {
					return fmt.Errorf("query %s: %w", arg, err)
				}
				sort.Slice(hits, func(i, j int) bool {
					if hits[i].Start != hits[j].Start {
						return hits[i].Start < hits[j].Start
					}
					return hits[i].End < hits[j].End
				})
				for _, f := range hits {
					if typ != "" && f.Type != typ {
						continue
					}
					printFeature(f)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&gffPath, "gff", "", "GFF3 annotation file (.gff3, .gff3.gz)")
	cmd.Flags().StringVar(&dbPath, "db", "", "DuckDB feature database")
	cmd.Flags().StringVar(&typ, "type", "", "Only report features of this type")

	return cmd
}

func printFeature(f *feature.Feature) {
	name := f.Name()
	if name == "" {
		name = "."
	}
	// Display coordinates 1-based inclusive, matching the input notation.
	fmt.Printf("%s\t%d\t%d\t%s\t%s\t%s\t%s\n",
		f.SeqID, f.Start+1, f.End, f.Type, f.Strand, f.Source, name)
}

// parseRegion parses "seq:start-end" (1-based inclusive) or "seq:pos"
// into a zero-based half-open range.
func parseRegion(arg string) (seqID string, start, stop int64, err error) {
	seqID, coords, ok := strings.Cut(arg, ":")
	if !ok || seqID == "" {
		return "", 0, 0, fmt.Errorf("bad region %q: want seq:start-end or seq:pos", arg)
	}

	lo, hi, ranged := strings.Cut(coords, "-")
	first, err := strconv.ParseInt(lo, 10, 64)
	if err != nil || first < 1 {
		return "", 0, 0, fmt.Errorf("bad region %q: invalid start", arg)
	}
	last := first
	if ranged {
		last, err = strconv.ParseInt(hi, 10, 64)
		if err != nil || last < first {
			return "", 0, 0, fmt.Errorf("bad region %q: invalid end", arg)
		}
	}
	return seqID, first - 1, last, nil
}
