package extract

import (
	"fmt"
	"strings"
)

// GeneField is a parsed combined gene identifier field.
type GeneField struct {
	Name      string // gene symbol
	EnsemblID string // stable identifier, version suffix stripped
}

// ParseGeneField parses a caret-delimited gene field like
// "TPR^ENSG00000047410.11". The first token is the symbol; the second token
// is the identifier, with any ".version" suffix discarded.
func ParseGeneField(s string) (GeneField, error) {
	tokens := strings.Split(s, "^")
	if len(tokens) < 2 {
		return GeneField{}, &MalformedGeneFieldError{
			Value:  s,
			Reason: "expected symbol^identifier",
		}
	}

	id := strings.Split(tokens[1], ".")[0]
	return GeneField{
		Name:      tokens[0],
		EnsemblID: id,
	}, nil
}

// MalformedGeneFieldError reports a gene field that does not match the
// symbol^identifier structure.
type MalformedGeneFieldError struct {
	Value  string
	Reason string
}

func (e *MalformedGeneFieldError) Error() string {
	return fmt.Sprintf("malformed gene field %q: %s", e.Value, e.Reason)
}
