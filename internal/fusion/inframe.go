package fusion

// Inframe is the tri-state reading-frame status of a fusion. It is only
// resolvable for tools that report a protein-fusion-type annotation.
type Inframe int

const (
	InframeUnknown Inframe = iota
	InframeTrue
	InframeFalse
)

func (i Inframe) String() string {
	switch i {
	case InframeTrue:
		return "true"
	case InframeFalse:
		return "false"
	default:
		return "unknown"
	}
}
