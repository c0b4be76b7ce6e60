package starfusion

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fuseviz/fuseviz/internal/extract"
	"github.com/fuseviz/fuseviz/internal/fusion"
)

func TestParser_ParseFusions(t *testing.T) {
	parser, err := NewParser(findTestFile(t, "star-fusion.tsv"), fusion.GenomeHG38)
	require.NoError(t, err)
	defer parser.Close()

	// Verify required column indices were resolved
	cols := parser.Columns()
	assert.Equal(t, 1, cols.JunctionReadCount)
	assert.Equal(t, 2, cols.SpanningFragCount)
	assert.Equal(t, 4, cols.LeftGene)
	assert.Equal(t, 5, cols.LeftBreakpoint)
	assert.Equal(t, 6, cols.RightGene)
	assert.Equal(t, 7, cols.RightBreakpoint)

	// First fusion (TMPRSS2--ERG)
	f, err := parser.Next()
	require.NoError(t, err)
	require.NotNil(t, f)

	assert.Equal(t, "1", f.ID)
	assert.Equal(t, ToolName, f.Tool)
	assert.Equal(t, fusion.GenomeHG38, f.GenomeVersion)
	assert.Equal(t, int64(37), f.SplitReads.Int64)
	assert.Equal(t, int64(14), f.SpanningReads.Int64)

	assert.Equal(t, "TMPRSS2", f.Upstream.Name)
	assert.Equal(t, "ENSG00000184012", f.Upstream.EnsemblID)
	assert.Equal(t, "chr21", f.Upstream.Chromosome)
	assert.Equal(t, int64(41508081), f.Upstream.Breakpoint)
	assert.Equal(t, "-", f.Upstream.Strand)
	assert.Equal(t, "gcagttcatcctgatctcc", f.Upstream.JunctionSequence)

	assert.Equal(t, "ERG", f.Downstream.Name)
	assert.Equal(t, "ENSG00000157554", f.Downstream.EnsemblID)
	assert.Equal(t, int64(38584945), f.Downstream.Breakpoint)
	assert.Equal(t, "ATGACCGCGTCCTCC", f.Downstream.JunctionSequence)

	assert.Equal(t, fusion.InframeTrue, f.Inframe)

	// Optional columns are preserved as tool-specific data
	assert.Equal(t, "TMPRSS2--ERG", f.ToolData[ColFusionName])
	assert.Equal(t, "YES_LTE", f.ToolData[ColLargeAnchorSupport])
	assert.Equal(t, "0.8364", f.ToolData[ColFFPM])
	assert.Equal(t, "ONLY_REF_SPLICE", f.ToolData[ColSpliceType])

	// Columns captured by canonical fields do not leak into tool data
	assert.NotContains(t, f.ToolData, ColProtFusionType)
	assert.NotContains(t, f.ToolData, ColFusionCDS)

	// Second fusion (BCR--ABL1) is frameshifted
	f, err = parser.Next()
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "2", f.ID)
	assert.Equal(t, fusion.InframeFalse, f.Inframe)

	// Third fusion (EML4--ALK) has no coding-effect annotation
	f, err = parser.Next()
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, fusion.InframeUnknown, f.Inframe)
	assert.Empty(t, f.Upstream.JunctionSequence)
	assert.Empty(t, f.Downstream.JunctionSequence)

	// Count remaining fusions
	count := 3
	for {
		f, err := parser.Next()
		require.NoError(t, err)
		if f == nil {
			break
		}
		count++
	}
	assert.Equal(t, 5, count)
}

func TestParser_RowIndexAsID(t *testing.T) {
	parser, err := NewParser(findTestFile(t, "star-fusion.tsv"), fusion.GenomeHG38)
	require.NoError(t, err)
	defer parser.Close()

	want := []string{"1", "2", "3", "4", "5"}
	for _, id := range want {
		f, err := parser.Next()
		require.NoError(t, err)
		require.NotNil(t, f)
		assert.Equal(t, id, f.ID)
	}
}

func TestParser_NoTrailingNewline(t *testing.T) {
	parser, err := NewParser(findTestFile(t, "star-fusion_no_trailing_newline.tsv"), fusion.GenomeHG38)
	require.NoError(t, err)
	defer parser.Close()

	// The final row is returned even though the file does not end in a newline
	f, err := parser.Next()
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "TMPRSS2--ERG", f.Label())
	assert.Equal(t, int64(37), f.SplitReads.Int64)

	f, err = parser.Next()
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestParser_HeaderOnlyNoTrailingNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "header_only.tsv")
	content := "#FusionName\tJunctionReadCount\tSpanningFragCount\tLeftGene\tLeftBreakpoint\tRightGene\tRightBreakpoint"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	parser, err := NewParser(path, fusion.GenomeHG38)
	require.NoError(t, err)
	defer parser.Close()

	assert.Equal(t, 4, parser.Columns().LeftBreakpoint)

	f, err := parser.Next()
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestParser_Gzip(t *testing.T) {
	parser, err := NewParser(findTestFile(t, "star-fusion.tsv.gz"), fusion.GenomeHG38)
	require.NoError(t, err)

	f, err := parser.Next()
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "TMPRSS2--ERG", f.Label())

	count := 1
	for {
		f, err := parser.Next()
		require.NoError(t, err)
		if f == nil {
			break
		}
		count++
	}
	assert.Equal(t, 5, count)

	require.NoError(t, parser.Close())
}

func TestParser_ExtraColumnsWarn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wide_row.tsv")
	content := "#FusionName\tJunctionReadCount\tSpanningFragCount\tLeftGene\tLeftBreakpoint\tRightGene\tRightBreakpoint\n" +
		"TMPRSS2--ERG\t37\t14\tTMPRSS2^ENSG00000184012.11\tchr21:41508081:-\tERG^ENSG00000157554.18\tchr21:38584945:-\textra\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	parser, err := NewParser(path, fusion.GenomeHG38)
	require.NoError(t, err)
	defer parser.Close()

	core, logs := observer.New(zap.WarnLevel)
	parser.SetLogger(zap.New(core))

	// The row parses despite the extra column, and the condition is logged
	f, err := parser.Next()
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "TMPRSS2--ERG", f.Label())

	warnings := logs.FilterMessage("row has more columns than header, extra columns ignored").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, int64(2), warnings[0].ContextMap()["line"])
}

func TestParser_MalformedLocus(t *testing.T) {
	parser, err := NewParser(findTestFile(t, "star-fusion_bad_locus.tsv"), fusion.GenomeHG38)
	require.NoError(t, err)
	defer parser.Close()

	_, err = parser.Next()
	require.Error(t, err)

	var malformed *extract.MalformedLocusError
	assert.True(t, errors.As(err, &malformed))

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 2, parseErr.Line)
}

func TestParser_MalformedGeneField(t *testing.T) {
	parser, err := NewParser(findTestFile(t, "star-fusion_bad_gene.tsv"), fusion.GenomeHG38)
	require.NoError(t, err)
	defer parser.Close()

	_, err = parser.Next()
	require.Error(t, err)

	var malformed *extract.MalformedGeneFieldError
	assert.True(t, errors.As(err, &malformed))
}

func TestParser_MissingRequiredColumn(t *testing.T) {
	_, err := NewParser(findTestFile(t, "star-fusion_missing_column.tsv"), fusion.GenomeHG38)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LeftBreakpoint")
}

func TestParser_MissingFile(t *testing.T) {
	_, err := NewParser(filepath.Join("testdata", "does-not-exist.tsv"), fusion.GenomeHG38)
	require.Error(t, err)
}

func TestParseError(t *testing.T) {
	err := &ParseError{
		Line:    42,
		Message: "required column not found",
	}
	assert.Equal(t, "starfusion parse error at line 42: required column not found", err.Error())
}

func TestParser_ImplementsParser(t *testing.T) {
	parser, err := NewParser(findTestFile(t, "star-fusion.tsv"), fusion.GenomeHG38)
	require.NoError(t, err)
	defer parser.Close()

	var _ fusion.Parser = parser
	_ = parser.LineNumber()
	f, err := parser.Next()
	require.NoError(t, err)
	require.NotNil(t, f)
}

// findTestFile locates a test file in the testdata directory.
func findTestFile(t *testing.T, name string) string {
	t.Helper()

	p := filepath.Join("testdata", name)
	if _, err := os.Stat(p); err != nil {
		t.Fatalf("Test file not found: %s", name)
	}
	return p
}
