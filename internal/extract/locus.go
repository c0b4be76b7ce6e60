// Package extract provides the single-field extraction helpers shared by the
// format parsers. Each helper turns one raw cell value into a typed value or
// a well-defined absent marker.
package extract

import (
	"fmt"
	"strconv"
	"strings"
)

// Locus is a parsed breakpoint field.
type Locus struct {
	Chromosome string
	Position   int64
	Strand     string
}

// ParseLocus parses a colon-delimited breakpoint field like
// "chr1:186337017:+". The strand token is passed through as-is; strand
// validation happens when the partner gene is constructed.
func ParseLocus(s string) (Locus, error) {
	tokens := strings.Split(s, ":")
	if len(tokens) != 3 {
		return Locus{}, &MalformedLocusError{
			Value:  s,
			Reason: fmt.Sprintf("expected chromosome:position:strand, found %d tokens", len(tokens)),
		}
	}

	pos, err := strconv.ParseInt(tokens[1], 10, 64)
	if err != nil || pos < 0 {
		return Locus{}, &MalformedLocusError{
			Value:  s,
			Reason: fmt.Sprintf("position %q is not a non-negative integer", tokens[1]),
		}
	}

	return Locus{
		Chromosome: tokens[0],
		Position:   pos,
		Strand:     tokens[2],
	}, nil
}

// MalformedLocusError reports a breakpoint field that does not match the
// chromosome:position:strand structure.
type MalformedLocusError struct {
	Value  string
	Reason string
}

func (e *MalformedLocusError) Error() string {
	return fmt.Sprintf("malformed breakpoint locus %q: %s", e.Value, e.Reason)
}
