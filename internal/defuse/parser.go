// Package defuse parses deFuse result files into canonical fusion records.
//
// deFuse reports each breakpoint fact in its own column (no combined locus
// or gene encodings) and carries its own cluster identifier, so this parser
// exercises a different subset of the shared field extractors than the
// STAR-Fusion one.
package defuse

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/guregu/null.v3"

	"github.com/fuseviz/fuseviz/internal/extract"
	"github.com/fuseviz/fuseviz/internal/fusion"
)

// ToolName is the canonical tag stamped on fusions from this parser.
const ToolName = "defuse"

// Required deFuse column names.
const (
	ColClusterID       = "cluster_id"
	ColSplitrSequence  = "splitr_sequence"
	ColSplitrCount     = "splitr_count"
	ColSpanCount       = "span_count"
	ColGene1           = "gene1"
	ColGene2           = "gene2"
	ColGeneName1       = "gene_name1"
	ColGeneName2       = "gene_name2"
	ColGeneChromosome1 = "gene_chromosome1"
	ColGeneChromosome2 = "gene_chromosome2"
	ColGenomicBreak1   = "genomic_break_pos1"
	ColGenomicBreak2   = "genomic_break_pos2"
	ColGeneStrand1     = "gene_strand1"
	ColGeneStrand2     = "gene_strand2"
)

// Optional columns preserved as tool-specific data.
const (
	ColProbability = "probability"
	ColORF         = "orf"
)

var toolDataColumns = []string{ColProbability, ColORF}

// ColumnIndices holds the indices of the required deFuse columns.
type ColumnIndices struct {
	ClusterID       int
	SplitrSequence  int
	SplitrCount     int
	SpanCount       int
	Gene1           int
	Gene2           int
	GeneName1       int
	GeneName2       int
	GeneChromosome1 int
	GeneChromosome2 int
	GenomicBreak1   int
	GenomicBreak2   int
	GeneStrand1     int
	GeneStrand2     int
}

// Parser reads fusions from a deFuse results file.
type Parser struct {
	reader        *bufio.Reader
	file          *os.File
	gzipReader    *gzip.Reader
	lineNumber    int
	columns       ColumnIndices
	optional      map[string]int
	headerLine    string
	genomeVersion string
	logger        *zap.Logger
}

// NewParser creates a parser for the given deFuse results file, stamping
// every fusion with the supplied (already normalized) genome version.
// Supports plain and gzipped files.
func NewParser(path, genomeVersion string) (*Parser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open defuse file: %w", err)
	}

	p := &Parser{file: file, genomeVersion: genomeVersion, logger: zap.NewNop()}

	// Check for gzip magic bytes
	buf := make([]byte, 2)
	_, err = file.Read(buf)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("read defuse header: %w", err)
	}

	_, err = file.Seek(0, 0)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("seek defuse file: %w", err)
	}

	if buf[0] == 0x1f && buf[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(p.gzipReader)
	} else {
		p.reader = bufio.NewReader(file)
	}

	if err := p.parseHeader(); err != nil {
		p.Close()
		return nil, err
	}

	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader.
func NewParserFromReader(r io.Reader, genomeVersion string) (*Parser, error) {
	p := &Parser{
		reader:        bufio.NewReader(r),
		genomeVersion: genomeVersion,
		logger:        zap.NewNop(),
	}

	if err := p.parseHeader(); err != nil {
		return nil, err
	}

	return p, nil
}

// SetLogger sets the logger used for non-fatal read warnings.
func (p *Parser) SetLogger(l *zap.Logger) {
	p.logger = l
}

// readLine returns the next line of the file. A final line without a
// trailing newline is still returned; io.EOF means no data remains.
func (p *Parser) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err == io.EOF && line != "" {
		return line, nil
	}
	return line, err
}

// parseHeader reads the header line and resolves column indices.
func (p *Parser) parseHeader() error {
	for {
		line, err := p.readLine()
		if err != nil {
			if err == io.EOF {
				return &ParseError{
					Line:    p.lineNumber,
					Message: "no header line found",
				}
			}
			return fmt.Errorf("read header: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}

		p.headerLine = line
		return p.parseColumnIndices(line)
	}
}

// parseColumnIndices resolves the required and optional column indices from
// the header line.
func (p *Parser) parseColumnIndices(headerLine string) error {
	columns := strings.Split(headerLine, "\t")

	required := map[string]*int{
		ColClusterID:       &p.columns.ClusterID,
		ColSplitrSequence:  &p.columns.SplitrSequence,
		ColSplitrCount:     &p.columns.SplitrCount,
		ColSpanCount:       &p.columns.SpanCount,
		ColGene1:           &p.columns.Gene1,
		ColGene2:           &p.columns.Gene2,
		ColGeneName1:       &p.columns.GeneName1,
		ColGeneName2:       &p.columns.GeneName2,
		ColGeneChromosome1: &p.columns.GeneChromosome1,
		ColGeneChromosome2: &p.columns.GeneChromosome2,
		ColGenomicBreak1:   &p.columns.GenomicBreak1,
		ColGenomicBreak2:   &p.columns.GenomicBreak2,
		ColGeneStrand1:     &p.columns.GeneStrand1,
		ColGeneStrand2:     &p.columns.GeneStrand2,
	}
	for _, idx := range required {
		*idx = -1
	}
	p.optional = make(map[string]int)

	for i, col := range columns {
		if idx, ok := required[col]; ok {
			*idx = i
			continue
		}
		for _, name := range toolDataColumns {
			if col == name {
				p.optional[col] = i
				break
			}
		}
	}

	for col, idx := range required {
		if *idx == -1 {
			return &ParseError{
				Line:    p.lineNumber,
				Message: fmt.Sprintf("required column %q not found in header", col),
			}
		}
	}

	return nil
}

// Next reads the next fusion from the file.
// Returns nil, nil when there are no more rows.
func (p *Parser) Next() (*fusion.Fusion, error) {
	line, err := p.readLine()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read fusion line: %w", err)
	}
	p.lineNumber++

	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return p.Next() // Skip empty lines
	}

	return p.parseLine(line)
}

// parseLine parses a single deFuse data line into a Fusion.
func (p *Parser) parseLine(line string) (*fusion.Fusion, error) {
	fields := strings.Split(line, "\t")

	minCols := max(p.columns.ClusterID, p.columns.SplitrSequence,
		p.columns.SplitrCount, p.columns.SpanCount,
		p.columns.Gene1, p.columns.Gene2,
		p.columns.GeneName1, p.columns.GeneName2,
		p.columns.GeneChromosome1, p.columns.GeneChromosome2,
		p.columns.GenomicBreak1, p.columns.GenomicBreak2,
		p.columns.GeneStrand1, p.columns.GeneStrand2)
	if len(fields) <= minCols {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("expected at least %d columns, found %d", minCols+1, len(fields)),
		}
	}

	splitReads, err := p.parseCount(fields, p.columns.SplitrCount, ColSplitrCount)
	if err != nil {
		return nil, err
	}
	spanningReads, err := p.parseCount(fields, p.columns.SpanCount, ColSpanCount)
	if err != nil {
		return nil, err
	}

	break1, err := p.parseCount(fields, p.columns.GenomicBreak1, ColGenomicBreak1)
	if err != nil {
		return nil, err
	}
	break2, err := p.parseCount(fields, p.columns.GenomicBreak2, ColGenomicBreak2)
	if err != nil {
		return nil, err
	}

	// deFuse marks the junction inside splitr_sequence with "|".
	seq := fields[p.columns.SplitrSequence]
	parts := strings.SplitN(seq, "|", 2)
	if len(parts) != 2 {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("column %s: %q does not contain a junction marker", ColSplitrSequence, seq),
		}
	}
	upSeq, downSeq := parts[0], parts[1]

	upstream, err := fusion.NewPartnerGene(
		fields[p.columns.GeneName1], fields[p.columns.Gene1],
		fields[p.columns.GeneChromosome1], break1,
		fields[p.columns.GeneStrand1], upSeq)
	if err != nil {
		return nil, p.rowError(err)
	}
	downstream, err := fusion.NewPartnerGene(
		fields[p.columns.GeneName2], fields[p.columns.Gene2],
		fields[p.columns.GeneChromosome2], break2,
		fields[p.columns.GeneStrand2], downSeq)
	if err != nil {
		return nil, p.rowError(err)
	}

	toolData := make(map[string]string)
	for _, col := range toolDataColumns {
		if idx, ok := p.optional[col]; ok {
			if v, present := extract.OptionalField(fields, idx); present {
				toolData[col] = v
			}
		}
	}

	// deFuse does not annotate reading frame.
	return &fusion.Fusion{
		ID:            fields[p.columns.ClusterID],
		Tool:          ToolName,
		GenomeVersion: p.genomeVersion,
		SplitReads:    null.IntFrom(splitReads),
		SpanningReads: null.IntFrom(spanningReads),
		Upstream:      upstream,
		Downstream:    downstream,
		Inframe:       fusion.InframeUnknown,
		ToolData:      toolData,
	}, nil
}

// parseCount parses a required non-negative integer column.
func (p *Parser) parseCount(fields []string, idx int, col string) (int64, error) {
	n, err := strconv.ParseInt(fields[idx], 10, 64)
	if err != nil || n < 0 {
		return 0, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("column %s: %q is not a non-negative integer", col, fields[idx]),
		}
	}
	return n, nil
}

// rowError wraps a field-level extraction error with line context.
func (p *Parser) rowError(err error) error {
	return &ParseError{
		Line:    p.lineNumber,
		Message: err.Error(),
		Err:     err,
	}
}

// Header returns the header line.
func (p *Parser) Header() string {
	return p.headerLine
}

// Columns returns the resolved required column indices.
func (p *Parser) Columns() ColumnIndices {
	return p.columns
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// ParseError represents an error during deFuse parsing with line context.
// Err carries the underlying field-extraction error when one exists.
type ParseError struct {
	Line    int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("defuse parse error at line %d: %s", e.Line, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// max returns the maximum of the provided integers.
func max(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
