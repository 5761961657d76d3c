package feature

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/marcboeker/go-duckdb"
)

// DuckDBLoader stores and retrieves features in a DuckDB database,
// used as an on-disk interchange format for converted annotation sets.
type DuckDBLoader struct {
	db   *sql.DB
	path string
}

// NewDuckDBLoader opens (or creates) a DuckDB feature database.
func NewDuckDBLoader(path string) (*DuckDBLoader, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	return &DuckDBLoader{db: db, path: path}, nil
}

// Close closes the database connection.
func (l *DuckDBLoader) Close() error {
	return l.db.Close()
}

// CreateSchema creates the features table if it does not exist.
// Coordinates are stored zero-based half-open, as in the in-memory
// representation; "end" is a reserved word in DuckDB, hence end_.
func (l *DuckDBLoader) CreateSchema() error {
	_, err := l.db.Exec(`
		CREATE TABLE IF NOT EXISTS features (
			seqid VARCHAR NOT NULL,
			source VARCHAR,
			type VARCHAR,
			start BIGINT NOT NULL,
			end_ BIGINT NOT NULL,
			score VARCHAR,
			strand VARCHAR,
			attributes VARCHAR
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// InsertFeature writes one feature to the database.
func (l *DuckDBLoader) InsertFeature(f *Feature) error {
	attrs, err := json.Marshal(f.Attributes)
	if err != nil {
		return fmt.Errorf("marshal attributes: %w", err)
	}

	_, err = l.db.Exec(`
		INSERT INTO features (seqid, source, type, start, end_, score, strand, attributes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, f.SeqID, f.Source, f.Type, f.Start, f.End, f.Score, f.Strand, string(attrs))
	if err != nil {
		return fmt.Errorf("insert feature %s: %w", f, err)
	}
	return nil
}

// LoadAll loads every stored feature into the set.
func (l *DuckDBLoader) LoadAll(s *Set) error {
	return l.load(s, "")
}

// LoadSeq loads the features of a single sequence into the set.
func (l *DuckDBLoader) LoadSeq(s *Set, seqID string) error {
	return l.load(s, seqID)
}

func (l *DuckDBLoader) load(s *Set, seqID string) error {
	query := `
		SELECT seqid, source, type, start, end_, score, strand, attributes
		FROM features
	`
	var args []any
	if seqID != "" {
		query += " WHERE seqid = ?"
		args = append(args, seqID)
	}
	query += " ORDER BY seqid, start"

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return fmt.Errorf("query features: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		f, err := scanFeature(rows)
		if err != nil {
			return err
		}
		if err := s.Add(f); err != nil {
			return err
		}
	}
	return rows.Err()
}

func scanFeature(rows *sql.Rows) (*Feature, error) {
	var f Feature
	var attrs string
	if err := rows.Scan(&f.SeqID, &f.Source, &f.Type, &f.Start, &f.End,
		&f.Score, &f.Strand, &attrs); err != nil {
		return nil, fmt.Errorf("scan feature: %w", err)
	}
	if attrs != "" {
		if err := json.Unmarshal([]byte(attrs), &f.Attributes); err != nil {
			return nil, fmt.Errorf("unmarshal attributes: %w", err)
		}
	}
	return &f, nil
}

// SeqIDs returns the distinct sequence IDs present in the database.
func (l *DuckDBLoader) SeqIDs() ([]string, error) {
	rows, err := l.db.Query(`SELECT DISTINCT seqid FROM features ORDER BY seqid`)
	if err != nil {
		return nil, fmt.Errorf("query seqids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Count returns the number of stored features.
func (l *DuckDBLoader) Count() (int64, error) {
	var n int64
	if err := l.db.QueryRow(`SELECT COUNT(*) FROM features`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count features: %w", err)
	}
	return n, nil
}
