// Package main provides the featurebin command-line tool.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/eparker05/featurebin/internal/feature"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// logger is configured by the root command before any subcommand runs.
var logger = zap.NewNop()

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:     "featurebin",
		Short:   "Overlap queries over sequence features",
		Long:    "featurebin indexes sequence features (GFF3 or DuckDB) in hierarchical bins and answers arbitrary range queries without scanning the whole annotation.",
		Version: fmt.Sprintf("%s (%s) built %s", version, commit, date),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(); err != nil {
				return err
			}
			if verbose {
				l, err := zap.NewDevelopment()
				if err != nil {
					return err
				}
				logger = l
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newQueryCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newConvertCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

func initConfig() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil // no home dir, no config file
	}
	viper.SetConfigFile(filepath.Join(home, ".featurebin.yaml"))
	if err := viper.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// loadSet builds a feature set from --gff or --db, falling back to the
// annotation paths in the config file.
func loadSet(gffPath, dbPath string) (*feature.Set, error) {
	if gffPath == "" {
		gffPath = viper.GetString("annotation.gff")
	}
	if dbPath == "" {
		dbPath = viper.GetString("annotation.db")
	}

	s := feature.NewSet()

	switch {
	case gffPath != "" && dbPath != "":
		return nil, fmt.Errorf("use either --gff or --db, not both")
	case gffPath != "":
		l := feature.NewGFFLoader(gffPath)
		l.SetLogger(logger)
		if err := l.Load(s); err != nil {
			return nil, err
		}
	case dbPath != "":
		l, err := feature.NewDuckDBLoader(dbPath)
		if err != nil {
			return nil, err
		}
		defer l.Close()
		if err := l.LoadAll(s); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("no annotation source: pass --gff or --db, or set annotation.gff in ~/.featurebin.yaml")
	}

	logger.Info("annotation loaded",
		zap.Int("features", s.Count()),
		zap.Int("sequences", len(s.SeqIDs())))
	return s, nil
}
