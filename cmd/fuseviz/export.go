package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fuseviz/fuseviz/internal/duckdb"
)

func newExportCmd() *cobra.Command {
	flags := &importFlags{}
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export <input-file>",
		Short: "Import a fusion caller output file and export it as a DuckDB database",
		Long: `Import a fusion caller output file and write the normalized batch to a
DuckDB database file that reporting tools can query directly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(args[0], flags, outputPath)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output DuckDB file (default: <input>.duckdb)")

	return cmd
}

func runExport(inputPath string, flags *importFlags, outputPath string) error {
	logger := newLogger()

	fusions, tool, genome, err := importFusions(inputPath, flags, logger)
	if err != nil {
		return err
	}

	if outputPath == "" {
		outputPath = inputPath + ".duckdb"
	}
	if ext := filepath.Ext(outputPath); ext != ".duckdb" && ext != ".db" {
		outputPath = outputPath + ".duckdb"
	}

	// Remove a stale database so the export is a clean snapshot.
	if _, err := os.Stat(outputPath); err == nil {
		if err := os.Remove(outputPath); err != nil {
			return fmt.Errorf("remove existing file: %w", err)
		}
	}

	store, err := duckdb.Open(outputPath)
	if err != nil {
		return err
	}
	defer store.Close()

	fingerprint, err := duckdb.StatFile(inputPath)
	if err != nil {
		return fmt.Errorf("stat input file: %w", err)
	}

	batchID, err := store.WriteBatch(fingerprint, string(tool), genome, fusions)
	if err != nil {
		return err
	}

	count, err := store.FusionCount()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Exported batch %d (%d fusions) to %s\n", batchID, count, outputPath)
	return nil
}
