package fusion

// Parser is the interface implemented by per-tool fusion file parsers.
type Parser interface {
	// Next reads the next fusion in file order.
	// Returns nil, nil when there are no more rows.
	Next() (*Fusion, error)

	// Close closes the parser and releases the underlying file.
	Close() error

	// LineNumber returns the current line number being processed.
	LineNumber() int
}
