// Package fusion defines the canonical representation of a gene-fusion
// event produced by the format parsers.
package fusion

import (
	"fmt"

	"gopkg.in/guregu/null.v3"
)

// Strand values accepted for a partner gene.
const (
	StrandForward = "+"
	StrandReverse = "-"
)

// TranscriptRange is a transcript annotation attached to a partner gene by a
// downstream annotation step. Import always leaves the collection empty.
type TranscriptRange struct {
	ID    string // transcript identifier (e.g. ENST00000332149)
	Start int64  // 1-based start of the annotated range
	End   int64  // 1-based end of the annotated range
}

// PartnerGene is one side (upstream or downstream) of a fusion event.
type PartnerGene struct {
	Name             string // gene symbol (e.g. "TMPRSS2")
	EnsemblID        string // stable gene identifier, version suffix stripped
	Chromosome       string // contig label as reported by the tool, not normalized
	Breakpoint       int64  // 1-based genomic coordinate of the junction
	Strand           string // "+" or "-"
	JunctionSequence string // sequence spanning the breakpoint on this side; may be empty
	Transcripts      []TranscriptRange
}

// NewPartnerGene builds a PartnerGene and enforces the schema invariants:
// non-empty name and identifier, non-negative breakpoint, and a valid strand.
func NewPartnerGene(name, ensemblID, chromosome string, breakpoint int64, strand, junctionSequence string) (PartnerGene, error) {
	if name == "" {
		return PartnerGene{}, fmt.Errorf("partner gene: empty gene symbol")
	}
	if ensemblID == "" {
		return PartnerGene{}, fmt.Errorf("partner gene %s: empty ensembl identifier", name)
	}
	if breakpoint < 0 {
		return PartnerGene{}, fmt.Errorf("partner gene %s: negative breakpoint %d", name, breakpoint)
	}
	if strand != StrandForward && strand != StrandReverse {
		return PartnerGene{}, fmt.Errorf("partner gene %s: strand %q is not %q or %q", name, strand, StrandForward, StrandReverse)
	}

	return PartnerGene{
		Name:             name,
		EnsemblID:        ensemblID,
		Chromosome:       chromosome,
		Breakpoint:       breakpoint,
		Strand:           strand,
		JunctionSequence: junctionSequence,
		Transcripts:      []TranscriptRange{},
	}, nil
}

// Locus formats the breakpoint as chromosome:position:strand.
func (g PartnerGene) Locus() string {
	return fmt.Sprintf("%s:%d:%s", g.Chromosome, g.Breakpoint, g.Strand)
}

// Fusion is one detected fusion event between two genes. A Fusion and its two
// partner genes are built together from a single input row and are not
// mutated afterwards.
type Fusion struct {
	ID             string            // unique within the imported batch; 1-based row index unless the tool supplies one
	Tool           string            // canonical source tool tag (e.g. "starfusion")
	GenomeVersion  string            // normalized genome build tag (hg19, hg38, mm10)
	SplitReads     null.Int          // junction-spanning read support; absent when the tool does not report it
	SpanningReads  null.Int          // spanning-fragment support; absent when the tool does not report it
	ReadsAlignment string            // alignment-track placeholder, empty at import
	Upstream       PartnerGene       // 5' partner
	Downstream     PartnerGene       // 3' partner
	Inframe        Inframe           // reading-frame status, unknown for most tools
	ToolData       map[string]string // tool-specific annotations not captured by the canonical fields
}

// Label returns the conventional GENE1--GENE2 name of the fusion.
func (f *Fusion) Label() string {
	return f.Upstream.Name + "--" + f.Downstream.Name
}
