package docs

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/rikeda71/drizzle-docs-generator-sub000/internal/schema"
)

// catalogSchema is the DDL for the catalog database. Each generation run
// inserts a fresh set of rows keyed by run id.
const catalogSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	generated_at TEXT NOT NULL,
	dialect TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS tables (
	run_id TEXT NOT NULL REFERENCES runs(id),
	name TEXT NOT NULL,
	comment TEXT,
	position INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS columns (
	run_id TEXT NOT NULL REFERENCES runs(id),
	table_name TEXT NOT NULL,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	nullable INTEGER NOT NULL,
	primary_key INTEGER NOT NULL,
	"unique" INTEGER NOT NULL,
	auto_increment INTEGER NOT NULL,
	default_value TEXT,
	comment TEXT,
	position INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS relations (
	run_id TEXT NOT NULL REFERENCES runs(id),
	source_table TEXT NOT NULL,
	source_columns TEXT NOT NULL,
	target_table TEXT NOT NULL,
	target_columns TEXT NOT NULL,
	cardinality TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS enums (
	run_id TEXT NOT NULL REFERENCES runs(id),
	name TEXT NOT NULL,
	"values" TEXT NOT NULL
);
`

// WriteCatalog exports the schema into a SQLite catalog database at path.
// The database is created when missing; rows of earlier runs are kept.
func WriteCatalog(path string, s *schema.IntermediateSchema) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open catalog database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(catalogSchema); err != nil {
		return fmt.Errorf("failed to initialize catalog schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin catalog transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	runID := uuid.New().String()
	if _, err := tx.Exec(
		`INSERT INTO runs (id, generated_at, dialect) VALUES (?, ?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339), s.Dialect,
	); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i, t := range s.Tables {
		if _, err := tx.Exec(
			`INSERT INTO tables (run_id, name, comment, position) VALUES (?, ?, ?, ?)`,
			runID, t.Name, nullString(t.Comment), i,
		); err != nil {
			return fmt.Errorf("failed to insert table %s: %w", t.Name, err)
		}
		for j, c := range t.Columns {
			var def sql.NullString
			if c.HasDefault {
				def = sql.NullString{String: c.Default, Valid: true}
			}
			if _, err := tx.Exec(
				`INSERT INTO columns (run_id, table_name, name, type, nullable, primary_key, "unique", auto_increment, default_value, comment, position)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				runID, t.Name, c.Name, c.Type, c.Nullable, c.PrimaryKey, c.Unique, c.AutoIncrement,
				def, nullString(c.Comment), j,
			); err != nil {
				return fmt.Errorf("failed to insert column %s.%s: %w", t.Name, c.Name, err)
			}
		}
	}

	for _, r := range s.Relations {
		if _, err := tx.Exec(
			`INSERT INTO relations (run_id, source_table, source_columns, target_table, target_columns, cardinality)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			runID, r.SourceTable, strings.Join(r.SourceColumns, ","),
			r.TargetTable, strings.Join(r.TargetColumns, ","), string(r.Cardinality),
		); err != nil {
			return fmt.Errorf("failed to insert relation: %w", err)
		}
	}

	for _, e := range s.Enums {
		if _, err := tx.Exec(
			`INSERT INTO enums (run_id, name, "values") VALUES (?, ?, ?)`,
			runID, e.Name, strings.Join(e.Values, ","),
		); err != nil {
			return fmt.Errorf("failed to insert enum %s: %w", e.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit catalog transaction: %w", err)
	}
	return nil
}

// nullString converts an optional comment to a sql.NullString.
func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
