// Package main provides the fuseviz command-line tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// verbose is bound to the root --verbose flag.
var verbose bool

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fuseviz",
		Short: "Import and normalize gene-fusion caller output",
		Long: `fuseviz reads the output files of gene-fusion detection tools
(STAR-Fusion, deFuse) and normalizes them into one canonical record per
fusion event, for downstream reporting and visualization.`,
		Example: `  # Import STAR-Fusion predictions as normalized TSV
  fuseviz import --genome hg38 star-fusion.fusion_predictions.tsv

  # Import only the top 10 deFuse calls
  fuseviz import --tool defuse --genome hg19 --limit 10 results.filtered.tsv

  # Export a normalized batch to a queryable DuckDB file
  fuseviz export --genome hg38 -o fusions.duckdb star-fusion.fusion_predictions.tsv`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initConfig()
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// initConfig loads ~/.fuseviz.yaml and FUSEVIZ_* environment variables.
func initConfig() {
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigName(".fuseviz")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix("FUSEVIZ")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

// newLogger builds the logger installed into library code. Quiet by default;
// --verbose enables the development console logger.
func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("fuseviz version %s (%s) built %s\n", version, commit, date)
		},
	}
}
