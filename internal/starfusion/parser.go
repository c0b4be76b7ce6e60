// Package starfusion parses STAR-Fusion prediction files into canonical
// fusion records.
package starfusion

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
const ToolName = "starfusion"

// Required STAR-Fusion column names.
const (
	ColJunctionReadCount = "JunctionReadCount"
	ColSpanningFragCount = "SpanningFragCount"
	ColLeftGene          = "LeftGene"
	ColLeftBreakpoint    = "LeftBreakpoint"
	ColRightGene         = "RightGene"
	ColRightBreakpoint   = "RightBreakpoint"
)

// Optional columns. PROT_FUSION_TYPE feeds the inframe status and FUSION_CDS
// feeds the junction sequences; the rest are preserved verbatim as
// tool-specific data.
const (
	ColFusionName         = "FusionName"
	ColSpliceType         = "SpliceType"
	ColLargeAnchorSupport = "LargeAnchorSupport"
	ColFFPM               = "FFPM"
	ColLeftBreakDinuc     = "LeftBreakDinuc"
	ColLeftBreakEntropy   = "LeftBreakEntropy"
	ColRightBreakDinuc    = "RightBreakDinuc"
	ColRightBreakEntropy  = "RightBreakEntropy"
	ColAnnots             = "annots"
	ColProtFusionType     = "PROT_FUSION_TYPE"
	ColFusionCDS          = "FUSION_CDS"
)

// toolDataColumns are the optional columns copied into Fusion.ToolData when
// present.
var toolDataColumns = []string{
	ColFusionName,
	ColSpliceType,
	ColLargeAnchorSupport,
	ColFFPM,
	ColLeftBreakDinuc,
	ColLeftBreakEntropy,
	ColRightBreakDinuc,
	ColRightBreakEntropy,
	ColAnnots,
}

// ColumnIndices holds the indices of the required STAR-Fusion columns.
type ColumnIndices struct {
	JunctionReadCount int
	SpanningFragCount int
	LeftGene          int
	LeftBreakpoint    int
	RightGene         int
	RightBreakpoint   int
}

// Parser reads fusions from a STAR-Fusion prediction file.
type Parser struct {
	reader        *bufio.Reader
	file          *os.File
	gzipReader    *gzip.Reader
	lineNumber    int
	rowIndex      int
	columns       ColumnIndices
	optional      map[string]int
	headerLine    string
	headerWidth   int
	genomeVersion string
	logger        *zap.Logger
}

// NewParser creates a parser for the given STAR-Fusion file, stamping every
// fusion with the supplied (already normalized) genome version. Supports
// plain and gzipped files.
func NewParser(path, genomeVersion string) (*Parser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open starfusion file: %w", err)
	}

	p := &Parser{file: file, genomeVersion: genomeVersion, logger: zap.NewNop()}

	// Check for gzip magic bytes
	buf := make([]byte, 2)
	_, err = file.Read(buf)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("read starfusion header: %w", err)
	}

	// Seek back to beginning
	_, err = file.Seek(0, 0)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("seek starfusion file: %w", err)
	}

	// Check for gzip magic number (0x1f, 0x8b)
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

// parseHeader reads the header line and resolves column indices. STAR-Fusion
// prefixes the header line with "#" (as in "#FusionName"), so the marker is
// stripped rather than treated as a comment.
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

		line = strings.TrimPrefix(line, "#")
		p.headerLine = line
		return p.parseColumnIndices(line)
	}
}

// parseColumnIndices resolves the required and optional column indices from
// the header line.
func (p *Parser) parseColumnIndices(headerLine string) error {
	columns := strings.Split(headerLine, "\t")
	p.headerWidth = len(columns)

	p.columns = ColumnIndices{
		JunctionReadCount: -1,
		SpanningFragCount: -1,
		LeftGene:          -1,
		LeftBreakpoint:    -1,
		RightGene:         -1,
		RightBreakpoint:   -1,
	}
	p.optional = make(map[string]int)

	for i, col := range columns {
		switch col {
		case ColJunctionReadCount:
			p.columns.JunctionReadCount = i
		case ColSpanningFragCount:
			p.columns.SpanningFragCount = i
		case ColLeftGene:
			p.columns.LeftGene = i
		case ColLeftBreakpoint:
			p.columns.LeftBreakpoint = i
		case ColRightGene:
			p.columns.RightGene = i
		case ColRightBreakpoint:
			p.columns.RightBreakpoint = i
		case ColProtFusionType, ColFusionCDS:
			p.optional[col] = i
		default:
			for _, name := range toolDataColumns {
				if col == name {
					p.optional[col] = i
					break
				}
			}
		}
	}

	for col, idx := range map[string]int{
		ColJunctionReadCount: p.columns.JunctionReadCount,
		ColSpanningFragCount: p.columns.SpanningFragCount,
		ColLeftGene:          p.columns.LeftGene,
		ColLeftBreakpoint:    p.columns.LeftBreakpoint,
		ColRightGene:         p.columns.RightGene,
		ColRightBreakpoint:   p.columns.RightBreakpoint,
	} {
		if idx == -1 {
			return &ParseError{
				Line:    p.lineNumber,
				Message: fmt.Sprintf("required column %q not found in header", col),
			}
		}
	}

	return nil
}

// optionalIndex returns the resolved index of an optional column, or -1.
func (p *Parser) optionalIndex(col string) int {
	if idx, ok := p.optional[col]; ok {
		return idx
	}
	return -1
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

// parseLine parses a single STAR-Fusion data line into a Fusion.
func (p *Parser) parseLine(line string) (*fusion.Fusion, error) {
	fields := strings.Split(line, "\t")

	minCols := max(p.columns.JunctionReadCount, p.columns.SpanningFragCount,
		p.columns.LeftGene, p.columns.LeftBreakpoint,
		p.columns.RightGene, p.columns.RightBreakpoint)
	if len(fields) <= minCols {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("expected at least %d columns, found %d", minCols+1, len(fields)),
		}
	}
	if len(fields) > p.headerWidth {
		p.logger.Warn("row has more columns than header, extra columns ignored",
			zap.Int("line", p.lineNumber),
			zap.Int("header", p.headerWidth),
			zap.Int("row", len(fields)))
	}

	splitReads, err := p.parseCount(fields, p.columns.JunctionReadCount, ColJunctionReadCount)
	if err != nil {
		return nil, err
	}
	spanningReads, err := p.parseCount(fields, p.columns.SpanningFragCount, ColSpanningFragCount)
	if err != nil {
		return nil, err
	}

	leftGene, err := extract.ParseGeneField(fields[p.columns.LeftGene])
	if err != nil {
		return nil, p.rowError(err)
	}
	rightGene, err := extract.ParseGeneField(fields[p.columns.RightGene])
	if err != nil {
		return nil, p.rowError(err)
	}

	leftLocus, err := extract.ParseLocus(fields[p.columns.LeftBreakpoint])
	if err != nil {
		return nil, p.rowError(err)
	}
	rightLocus, err := extract.ParseLocus(fields[p.columns.RightBreakpoint])
	if err != nil {
		return nil, p.rowError(err)
	}

	cds, _ := extract.OptionalField(fields, p.optionalIndex(ColFusionCDS))
	upSeq, downSeq := extract.SplitJunction(cds)

	upstream, err := fusion.NewPartnerGene(leftGene.Name, leftGene.EnsemblID,
		leftLocus.Chromosome, leftLocus.Position, leftLocus.Strand, upSeq)
	if err != nil {
		return nil, p.rowError(err)
	}
	downstream, err := fusion.NewPartnerGene(rightGene.Name, rightGene.EnsemblID,
		rightLocus.Chromosome, rightLocus.Position, rightLocus.Strand, downSeq)
	if err != nil {
		return nil, p.rowError(err)
	}

	protType, hasProtType := extract.OptionalField(fields, p.optionalIndex(ColProtFusionType))

	toolData := make(map[string]string)
	for _, col := range toolDataColumns {
		if v, ok := extract.OptionalField(fields, p.optionalIndex(col)); ok {
			toolData[col] = v
		}
	}

	p.rowIndex++
	return &fusion.Fusion{
		ID:            strconv.Itoa(p.rowIndex),
		Tool:          ToolName,
		GenomeVersion: p.genomeVersion,
		SplitReads:    null.IntFrom(splitReads),
		SpanningReads: null.IntFrom(spanningReads),
		Upstream:      upstream,
		Downstream:    downstream,
		Inframe:       extract.InframeStatus(protType, hasProtType),
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

// Header returns the header line with the leading "#" stripped.
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

// ParseError represents an error during STAR-Fusion parsing with line
// context. Err carries the underlying field-extraction error when one
// exists.
type ParseError struct {
	Line    int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("starfusion parse error at line %d: %s", e.Line, e.Message)
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
