package duckdb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"

	"github.com/fuseviz/fuseviz/internal/fusion"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testBatch(t *testing.T) []*fusion.Fusion {
	t.Helper()

	up1, err := fusion.NewPartnerGene("TMPRSS2", "ENSG00000184012", "chr21", 41508081, "-", "gcagttcatc")
	require.NoError(t, err)
	down1, err := fusion.NewPartnerGene("ERG", "ENSG00000157554", "chr21", 38584945, "-", "ATGACCGCG")
	require.NoError(t, err)

	up2, err := fusion.NewPartnerGene("EML4", "ENSG00000143924", "chr2", 42295516, "+", "")
	require.NoError(t, err)
	down2, err := fusion.NewPartnerGene("ALK", "ENSG00000171094", "chr2", 29223528, "-", "")
	require.NoError(t, err)

	return []*fusion.Fusion{
		{
			ID:            "1",
			Tool:          "starfusion",
			GenomeVersion: fusion.GenomeHG38,
			SplitReads:    null.IntFrom(37),
			SpanningReads: null.IntFrom(14),
			Upstream:      up1,
			Downstream:    down1,
			Inframe:       fusion.InframeTrue,
			ToolData:      map[string]string{"FFPM": "0.8364"},
		},
		{
			ID:            "2",
			Tool:          "starfusion",
			GenomeVersion: fusion.GenomeHG38,
			SplitReads:    null.IntFrom(10),
			SpanningReads: null.Int{},
			Upstream:      up2,
			Downstream:    down2,
			Inframe:       fusion.InframeUnknown,
			ToolData:      map[string]string{},
		},
	}
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
}

func TestWriteAndListBatch(t *testing.T) {
	s := openInMemory(t)
	batch := testBatch(t)

	fingerprint := FileFingerprint{
		Path:    "star-fusion.tsv",
		Size:    1024,
		ModTime: time.Now(),
	}

	batchID, err := s.WriteBatch(fingerprint, "starfusion", fusion.GenomeHG38, batch)
	require.NoError(t, err)
	assert.Equal(t, int64(1), batchID)

	count, err := s.FusionCount()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	stored, err := s.ListFusions(batchID)
	require.NoError(t, err)
	require.Len(t, stored, 2)

	// Field-for-field round trip, including the absent spanning read count
	assert.Equal(t, batch[0], stored[0])
	assert.Equal(t, batch[1], stored[1])
	assert.False(t, stored[1].SpanningReads.Valid)
}

func TestWriteBatch_SequentialIDs(t *testing.T) {
	s := openInMemory(t)
	fingerprint := FileFingerprint{Path: "star-fusion.tsv", ModTime: time.Now()}

	first, err := s.WriteBatch(fingerprint, "starfusion", fusion.GenomeHG38, testBatch(t))
	require.NoError(t, err)
	second, err := s.WriteBatch(fingerprint, "starfusion", fusion.GenomeHG38, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
}

func TestListFusions_EmptyBatch(t *testing.T) {
	s := openInMemory(t)
	fingerprint := FileFingerprint{Path: "empty.tsv", ModTime: time.Now()}

	batchID, err := s.WriteBatch(fingerprint, "defuse", fusion.GenomeHG19, nil)
	require.NoError(t, err)

	stored, err := s.ListFusions(batchID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}
