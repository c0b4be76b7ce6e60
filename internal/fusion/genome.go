package fusion

import (
	"fmt"
	"strings"
)

// Genome builds accepted on import.
const (
	GenomeHG19 = "hg19"
	GenomeHG38 = "hg38"
	GenomeMM10 = "mm10"
)

// NormalizeGenomeVersion matches v against the supported genome builds,
// case-insensitively, and returns the lower-case canonical tag.
func NormalizeGenomeVersion(v string) (string, error) {
	normalized := strings.ToLower(v)
	switch normalized {
	case GenomeHG19, GenomeHG38, GenomeMM10:
		return normalized, nil
	}
	return "", &InvalidGenomeVersionError{Version: v}
}

// InvalidGenomeVersionError reports a genome build tag outside the supported
// whitelist.
type InvalidGenomeVersionError struct {
	Version string
}

func (e *InvalidGenomeVersionError) Error() string {
	return fmt.Sprintf("unsupported genome version %q (supported: %s, %s, %s)",
		e.Version, GenomeHG19, GenomeHG38, GenomeMM10)
}
