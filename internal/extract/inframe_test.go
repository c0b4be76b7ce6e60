package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fuseviz/fuseviz/internal/fusion"
)

func TestInframeStatus(t *testing.T) {
	assert.Equal(t, fusion.InframeTrue, InframeStatus("INFRAME", true))
	assert.Equal(t, fusion.InframeFalse, InframeStatus("FRAMESHIFT", true))

	// Absence of the annotation yields unknown
	assert.Equal(t, fusion.InframeUnknown, InframeStatus("", false))

	// Non-canonical values yield unknown, including case variants
	assert.Equal(t, fusion.InframeUnknown, InframeStatus("inframe", true))
	assert.Equal(t, fusion.InframeUnknown, InframeStatus("NA", true))
}
