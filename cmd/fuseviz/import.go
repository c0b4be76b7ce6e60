package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/guregu/null.v3"

	"github.com/fuseviz/fuseviz/internal/fusion"
	"github.com/fuseviz/fuseviz/internal/importer"
	"github.com/fuseviz/fuseviz/internal/output"
)

// importFlags are shared by the import and export commands.
type importFlags struct {
	tool   string
	genome string
	limit  int64
}

func (f *importFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.tool, "tool", "", "Source tool: starfusion, defuse (auto-detected if not set)")
	cmd.Flags().StringVar(&f.genome, "genome", "", "Genome version: hg19, hg38, mm10 (default from config)")
	cmd.Flags().Int64Var(&f.limit, "limit", 0, "Read at most this many rows from the top of the file (0 = all)")
}

func newImportCmd() *cobra.Command {
	flags := &importFlags{}
	var outputFile string

	cmd := &cobra.Command{
		Use:   "import <input-file>",
		Short: "Import a fusion caller output file and write normalized records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(args[0], flags, outputFile)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runImport(inputPath string, flags *importFlags, outputFile string) error {
	fusions, _, _, err := importFusions(inputPath, flags, newLogger())
	if err != nil {
		return err
	}

	out := os.Stdout
	if outputFile != "" {
		out, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer out.Close()
	}

	writer := output.NewTabWriter(out)
	if err := writer.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, f := range fusions {
		if err := writer.Write(f); err != nil {
			return fmt.Errorf("write fusion %s: %w", f.ID, err)
		}
	}
	return writer.Flush()
}

// importFusions resolves the tool and genome arguments and runs one import.
// It returns the normalized batch, the tool tag it was parsed with, and the
// normalized genome version the batch was stamped with.
func importFusions(inputPath string, flags *importFlags, logger *zap.Logger) ([]*fusion.Fusion, importer.Tool, string, error) {
	genome := flags.genome
	if genome == "" {
		genome = viper.GetString("genome")
	}
	if genome == "" {
		genome = fusion.GenomeHG38
	}
	genome, err := fusion.NormalizeGenomeVersion(genome)
	if err != nil {
		return nil, "", "", err
	}

	tool := importer.Tool(flags.tool)
	if flags.tool == "" {
		detected, err := detectTool(inputPath)
		if err != nil {
			return nil, "", "", fmt.Errorf("%w\nHint: use --tool to specify the source tool", err)
		}
		logger.Info("detected fusion tool",
			zap.String("path", inputPath),
			zap.String("tool", string(detected)))
		tool = detected
	}

	var limit null.Int
	if flags.limit != 0 {
		limit = null.IntFrom(flags.limit)
	}

	imp := importer.New()
	imp.SetLogger(logger)

	fusions, err := imp.Import(inputPath, tool, genome, limit)
	if err != nil {
		return nil, "", "", err
	}
	return fusions, tool, genome, nil
}
