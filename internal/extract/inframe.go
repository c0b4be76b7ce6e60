package extract

import "github.com/fuseviz/fuseviz/internal/fusion"

// Canonical protein-fusion-type tokens reported by callers that annotate
// coding effect.
const (
	TokenInframe    = "INFRAME"
	TokenFrameshift = "FRAMESHIFT"
)

// InframeStatus maps a protein-fusion-type annotation to the canonical
// tri-state. An absent annotation, and any value other than the two
// canonical tokens, yields unknown.
func InframeStatus(v string, present bool) fusion.Inframe {
	if !present {
		return fusion.InframeUnknown
	}
	switch v {
	case TokenInframe:
		return fusion.InframeTrue
	case TokenFrameshift:
		return fusion.InframeFalse
	default:
		return fusion.InframeUnknown
	}
}
