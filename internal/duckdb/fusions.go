package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	goduckdb "github.com/marcboeker/go-duckdb"
	"gopkg.in/guregu/null.v3"

	"github.com/fuseviz/fuseviz/internal/fusion"
)

// WriteBatch inserts one imported batch and its fusions, returning the new
// batch identifier. The fusion rows are written with the DuckDB Appender
// API.
func (s *Store) WriteBatch(source FileFingerprint, tool, genomeVersion string, fusions []*fusion.Fusion) (int64, error) {
	var batchID int64
	row := s.db.QueryRow("SELECT COALESCE(MAX(batch_id), 0) + 1 FROM batches")
	if err := row.Scan(&batchID); err != nil {
		return 0, fmt.Errorf("allocate batch id: %w", err)
	}

	if _, err := s.db.Exec(
		"INSERT INTO batches VALUES (?, ?, ?, ?, ?, ?, ?)",
		batchID, tool, genomeVersion,
		source.Path, source.Size, source.ModTime, time.Now(),
	); err != nil {
		return 0, fmt.Errorf("insert batch: %w", err)
	}

	if len(fusions) == 0 {
		return batchID, nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return 0, fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "fusions")
		return err
	}); err != nil {
		return 0, fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, f := range fusions {
		toolData, err := json.Marshal(f.ToolData)
		if err != nil {
			return 0, fmt.Errorf("encode tool data for fusion %s: %w", f.ID, err)
		}

		if err := appender.AppendRow(
			batchID, f.ID, f.Label(), f.Tool, f.GenomeVersion,
			nullableInt(f.SplitReads), nullableInt(f.SpanningReads),
			f.Inframe.String(),
			f.Upstream.Name, f.Upstream.EnsemblID, f.Upstream.Chromosome,
			f.Upstream.Breakpoint, f.Upstream.Strand, f.Upstream.JunctionSequence,
			f.Downstream.Name, f.Downstream.EnsemblID, f.Downstream.Chromosome,
			f.Downstream.Breakpoint, f.Downstream.Strand, f.Downstream.JunctionSequence,
			string(toolData),
		); err != nil {
			return 0, fmt.Errorf("append fusion %s: %w", f.ID, err)
		}
	}

	if err := appender.Flush(); err != nil {
		return 0, fmt.Errorf("flush fusions: %w", err)
	}
	return batchID, nil
}

// FusionCount returns the number of stored fusions across all batches.
func (s *Store) FusionCount() (int64, error) {
	var count int64
	row := s.db.QueryRow("SELECT COUNT(*) FROM fusions")
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count fusions: %w", err)
	}
	return count, nil
}

// ListFusions reads the fusions of one batch back in insertion order.
func (s *Store) ListFusions(batchID int64) ([]*fusion.Fusion, error) {
	rows, err := s.db.Query(`SELECT
		id, tool, genome_version, split_reads, spanning_reads, inframe,
		up_name, up_ensembl_id, up_chrom, up_breakpoint, up_strand, up_junction_sequence,
		down_name, down_ensembl_id, down_chrom, down_breakpoint, down_strand, down_junction_sequence,
		tool_data
		FROM fusions WHERE batch_id = ? ORDER BY rowid`, batchID)
	if err != nil {
		return nil, fmt.Errorf("query fusions: %w", err)
	}
	defer rows.Close()

	var fusions []*fusion.Fusion
	for rows.Next() {
		f, err := scanFusion(rows)
		if err != nil {
			return nil, err
		}
		fusions = append(fusions, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fusions: %w", err)
	}
	return fusions, nil
}

// scanFusion reconstructs one fusion record from a result row.
func scanFusion(rows *sql.Rows) (*fusion.Fusion, error) {
	var (
		f          fusion.Fusion
		splitReads sql.NullInt64
		spanReads  sql.NullInt64
		inframe    string
		toolData   string
	)
	if err := rows.Scan(
		&f.ID, &f.Tool, &f.GenomeVersion, &splitReads, &spanReads, &inframe,
		&f.Upstream.Name, &f.Upstream.EnsemblID, &f.Upstream.Chromosome,
		&f.Upstream.Breakpoint, &f.Upstream.Strand, &f.Upstream.JunctionSequence,
		&f.Downstream.Name, &f.Downstream.EnsemblID, &f.Downstream.Chromosome,
		&f.Downstream.Breakpoint, &f.Downstream.Strand, &f.Downstream.JunctionSequence,
		&toolData,
	); err != nil {
		return nil, fmt.Errorf("scan fusion: %w", err)
	}

	f.SplitReads = null.NewInt(splitReads.Int64, splitReads.Valid)
	f.SpanningReads = null.NewInt(spanReads.Int64, spanReads.Valid)
	f.Inframe = parseInframe(inframe)
	f.Upstream.Transcripts = []fusion.TranscriptRange{}
	f.Downstream.Transcripts = []fusion.TranscriptRange{}

	if err := json.Unmarshal([]byte(toolData), &f.ToolData); err != nil {
		return nil, fmt.Errorf("decode tool data for fusion %s: %w", f.ID, err)
	}

	return &f, nil
}

// parseInframe maps the stored tri-state label back to its enum value.
func parseInframe(s string) fusion.Inframe {
	switch s {
	case "true":
		return fusion.InframeTrue
	case "false":
		return fusion.InframeFalse
	default:
		return fusion.InframeUnknown
	}
}

// nullableInt converts a null.Int to the driver-level value, mapping absent
// to SQL NULL.
func nullableInt(n null.Int) any {
	if !n.Valid {
		return nil
	}
	return n.Int64
}
