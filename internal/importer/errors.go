package importer

import "fmt"

// InvalidLimitError reports a supplied row limit that is not positive.
type InvalidLimitError struct {
	Limit int64
}

func (e *InvalidLimitError) Error() string {
	return fmt.Sprintf("invalid row limit %d: must be a positive number", e.Limit)
}

// SourceReadError reports a source file that could not be opened or whose
// header could not be read against the expected columns.
type SourceReadError struct {
	Path string
	Err  error
}

func (e *SourceReadError) Error() string {
	return fmt.Sprintf("cannot read fusion source %s: %v", e.Path, e.Err)
}

func (e *SourceReadError) Unwrap() error {
	return e.Err
}

// UnknownToolError reports a tool tag with no registered format parser.
type UnknownToolError struct {
	Tool Tool
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown fusion tool %q (supported: %v)", string(e.Tool), Tools())
}
