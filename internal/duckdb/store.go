// Package duckdb persists normalized fusion batches to DuckDB so downstream
// reporting tools can query them as a single file.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding imported fusion batches.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS batches (
		batch_id BIGINT,
		tool VARCHAR,
		genome_version VARCHAR,
		source_path VARCHAR,
		source_size BIGINT,
		source_mtime TIMESTAMP,
		imported_at TIMESTAMP,
		PRIMARY KEY (batch_id)
	)`); err != nil {
		return err
	}

	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS fusions (
		batch_id BIGINT,
		id VARCHAR,
		label VARCHAR,
		tool VARCHAR,
		genome_version VARCHAR,
		split_reads BIGINT,
		spanning_reads BIGINT,
		inframe VARCHAR,
		up_name VARCHAR,
		up_ensembl_id VARCHAR,
		up_chrom VARCHAR,
		up_breakpoint BIGINT,
		up_strand VARCHAR,
		up_junction_sequence VARCHAR,
		down_name VARCHAR,
		down_ensembl_id VARCHAR,
		down_chrom VARCHAR,
		down_breakpoint BIGINT,
		down_strand VARCHAR,
		down_junction_sequence VARCHAR,
		tool_data VARCHAR
	)`)
	return err
}
