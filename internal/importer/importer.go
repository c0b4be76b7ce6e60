// Package importer is the public entry point for loading fusion caller
// output files into canonical fusion records.
package importer

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/guregu/null.v3"

	"github.com/fuseviz/fuseviz/internal/defuse"
	"github.com/fuseviz/fuseviz/internal/fusion"
	"github.com/fuseviz/fuseviz/internal/starfusion"
)

// Tool identifies a supported fusion caller format.
type Tool string

const (
	ToolSTARFusion Tool = starfusion.ToolName
	ToolDeFuse     Tool = defuse.ToolName
)

// Tools lists the supported tool tags.
func Tools() []Tool {
	return []Tool{ToolSTARFusion, ToolDeFuse}
}

// Importer validates shared preconditions and dispatches to the matching
// format parser. One Import call fully reads one file before returning; no
// state is shared between calls.
type Importer struct {
	logger *zap.Logger
}

// New creates an importer with a no-op logger.
func New() *Importer {
	return &Importer{logger: zap.NewNop()}
}

// SetLogger sets the logger used for progress and non-fatal read warnings.
func (i *Importer) SetLogger(l *zap.Logger) {
	i.logger = l
}

// Import reads the fusion calls in path, produced by the given tool, into an
// ordered slice of canonical fusion records. The genome version must be one
// of the supported builds (case-insensitive). When limit is set it must be
// positive and bounds how many rows are read from the top of the file; an
// absent limit reads all rows. A single malformed row fails the whole import
// with no partial result.
func (i *Importer) Import(path string, tool Tool, genomeVersion string, limit null.Int) ([]*fusion.Fusion, error) {
	genome, err := fusion.NormalizeGenomeVersion(genomeVersion)
	if err != nil {
		return nil, err
	}
	if limit.Valid && limit.Int64 <= 0 {
		return nil, &InvalidLimitError{Limit: limit.Int64}
	}

	parser, err := i.newParser(path, tool, genome)
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	fusions := []*fusion.Fusion{}
	for {
		if limit.Valid && int64(len(fusions)) >= limit.Int64 {
			i.logger.Info("row limit reached",
				zap.String("path", path),
				zap.Int64("limit", limit.Int64))
			break
		}

		f, err := parser.Next()
		if err != nil {
			return nil, fmt.Errorf("import %s: %w", path, err)
		}
		if f == nil {
			break
		}
		fusions = append(fusions, f)
	}

	i.logger.Info("imported fusions",
		zap.String("path", path),
		zap.String("tool", string(tool)),
		zap.String("genome", genome),
		zap.Int("count", len(fusions)))

	return fusions, nil
}

// newParser opens the format parser for the given tool.
func (i *Importer) newParser(path string, tool Tool, genome string) (fusion.Parser, error) {
	switch tool {
	case ToolSTARFusion:
		p, err := starfusion.NewParser(path, genome)
		if err != nil {
			return nil, &SourceReadError{Path: path, Err: err}
		}
		p.SetLogger(i.logger)
		return p, nil
	case ToolDeFuse:
		p, err := defuse.NewParser(path, genome)
		if err != nil {
			return nil, &SourceReadError{Path: path, Err: err}
		}
		p.SetLogger(i.logger)
		return p, nil
	default:
		return nil, &UnknownToolError{Tool: tool}
	}
}
