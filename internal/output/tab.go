// Package output renders normalized fusion batches for downstream consumers.
package output

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fuseviz/fuseviz/internal/fusion"
)

// TabWriter writes fusions in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#ID",
			"Fusion",
			"Tool",
			"Genome",
			"UpstreamGene",
			"UpstreamEnsemblID",
			"UpstreamBreakpoint",
			"DownstreamGene",
			"DownstreamEnsemblID",
			"DownstreamBreakpoint",
			"SplitReads",
			"SpanningReads",
			"Inframe",
			"JunctionSequence",
			"ToolData",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single fusion.
func (tw *TabWriter) Write(f *fusion.Fusion) error {
	splitReads := "NA"
	if f.SplitReads.Valid {
		splitReads = fmt.Sprintf("%d", f.SplitReads.Int64)
	}
	spanningReads := "NA"
	if f.SpanningReads.Valid {
		spanningReads = fmt.Sprintf("%d", f.SpanningReads.Int64)
	}

	junction := "-"
	if f.Upstream.JunctionSequence != "" || f.Downstream.JunctionSequence != "" {
		junction = f.Upstream.JunctionSequence + "|" + f.Downstream.JunctionSequence
	}

	values := []string{
		f.ID,
		f.Label(),
		f.Tool,
		f.GenomeVersion,
		f.Upstream.Name,
		f.Upstream.EnsemblID,
		f.Upstream.Locus(),
		f.Downstream.Name,
		f.Downstream.EnsemblID,
		f.Downstream.Locus(),
		splitReads,
		spanningReads,
		f.Inframe.String(),
		junction,
		formatToolData(f.ToolData),
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

// formatToolData renders tool-specific annotations as key=value pairs in a
// stable order.
func formatToolData(data map[string]string) string {
	if len(data) == 0 {
		return "-"
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+data[k])
	}
	return strings.Join(pairs, ";")
}
