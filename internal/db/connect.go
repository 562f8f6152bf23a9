package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:peereval.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/peereval?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS roster (
  student_id TEXT PRIMARY KEY,
  student_name TEXT NOT NULL DEFAULT '',
  unit1 TEXT NOT NULL DEFAULT '',
  unit2 TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS question_catalog (
  question_id TEXT PRIMARY KEY,
  question_text TEXT NOT NULL,
  question_type TEXT NOT NULL DEFAULT '',
  choices TEXT NOT NULL DEFAULT '',
  instructional_comment TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS submissions (
  id INTEGER PRIMARY KEY AUTOINCREMENT, -- BIGSERIAL in Postgres
  evaluator_id TEXT NOT NULL DEFAULT '',
  evaluated_student_id TEXT NOT NULL DEFAULT '',
  evaluated_student_name TEXT NOT NULL DEFAULT '',
  question_id TEXT NOT NULL DEFAULT '',
  response_type TEXT NOT NULL DEFAULT '',
  response_value TEXT NOT NULL DEFAULT '',
  submitted_at INTEGER NOT NULL DEFAULT 0,
  unit_context TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS report_evaluators (
  evaluator_id TEXT PRIMARY KEY,
  scored_count INTEGER NOT NULL,
  comment_count INTEGER NOT NULL,
  mean_score REAL NOT NULL,
  std_dev REAL NOT NULL,
  min_score REAL NOT NULL,
  max_score REAL NOT NULL,
  pct_max REAL NOT NULL,
  pct_min REAL NOT NULL,
  distinct_values INTEGER NOT NULL,
  consensus_deviation REAL NOT NULL,
  intra_peer_spread REAL NOT NULL,
  comment_coverage REAL NOT NULL,
  mean_comment_len REAL NOT NULL,
  weight REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS report_scores (
  student_id TEXT NOT NULL,
  question_id TEXT NOT NULL,
  weighted_score REAL,
  PRIMARY KEY (student_id, question_id)
);

CREATE TABLE IF NOT EXISTS report_overall (
  student_id TEXT PRIMARY KEY,
  overall_score REAL
);

CREATE TABLE IF NOT EXISTS report_missing (
  evaluator_id TEXT NOT NULL,
  unit TEXT NOT NULL,
  peer_id TEXT NOT NULL,
  not_applicable INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (evaluator_id, unit, peer_id)
);

CREATE TABLE IF NOT EXISTS report_discrepancies (
  evaluator_id TEXT NOT NULL,
  unit TEXT NOT NULL,
  peer_id TEXT NOT NULL,
  checked_at INTEGER NOT NULL,
  PRIMARY KEY (evaluator_id, unit, peer_id)
);

CREATE TABLE IF NOT EXISTS run_lock (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  holder TEXT NOT NULL,
  claimed_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  started_at INTEGER NOT NULL,
  finished_at INTEGER,
  roster_rows INTEGER NOT NULL DEFAULT 0,
  question_rows INTEGER NOT NULL DEFAULT 0,
  submission_rows INTEGER NOT NULL DEFAULT 0,
  skipped_rows INTEGER NOT NULL DEFAULT 0,
  missing_entries INTEGER NOT NULL DEFAULT 0
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS roster (
  student_id TEXT PRIMARY KEY,
  student_name TEXT NOT NULL DEFAULT '',
  unit1 TEXT NOT NULL DEFAULT '',
  unit2 TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS question_catalog (
  question_id TEXT PRIMARY KEY,
  question_text TEXT NOT NULL,
  question_type TEXT NOT NULL DEFAULT '',
  choices TEXT NOT NULL DEFAULT '',
  instructional_comment TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS submissions (
  id BIGSERIAL PRIMARY KEY,
  evaluator_id TEXT NOT NULL DEFAULT '',
  evaluated_student_id TEXT NOT NULL DEFAULT '',
  evaluated_student_name TEXT NOT NULL DEFAULT '',
  question_id TEXT NOT NULL DEFAULT '',
  response_type TEXT NOT NULL DEFAULT '',
  response_value TEXT NOT NULL DEFAULT '',
  submitted_at BIGINT NOT NULL DEFAULT 0,
  unit_context TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS report_evaluators (
  evaluator_id TEXT PRIMARY KEY,
  scored_count INTEGER NOT NULL,
  comment_count INTEGER NOT NULL,
  mean_score DOUBLE PRECISION NOT NULL,
  std_dev DOUBLE PRECISION NOT NULL,
  min_score DOUBLE PRECISION NOT NULL,
  max_score DOUBLE PRECISION NOT NULL,
  pct_max DOUBLE PRECISION NOT NULL,
  pct_min DOUBLE PRECISION NOT NULL,
  distinct_values INTEGER NOT NULL,
  consensus_deviation DOUBLE PRECISION NOT NULL,
  intra_peer_spread DOUBLE PRECISION NOT NULL,
  comment_coverage DOUBLE PRECISION NOT NULL,
  mean_comment_len DOUBLE PRECISION NOT NULL,
  weight DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS report_scores (
  student_id TEXT NOT NULL,
  question_id TEXT NOT NULL,
  weighted_score DOUBLE PRECISION,
  PRIMARY KEY (student_id, question_id)
);

CREATE TABLE IF NOT EXISTS report_overall (
  student_id TEXT PRIMARY KEY,
  overall_score DOUBLE PRECISION
);

CREATE TABLE IF NOT EXISTS report_missing (
  evaluator_id TEXT NOT NULL,
  unit TEXT NOT NULL,
  peer_id TEXT NOT NULL,
  not_applicable INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (evaluator_id, unit, peer_id)
);

CREATE TABLE IF NOT EXISTS report_discrepancies (
  evaluator_id TEXT NOT NULL,
  unit TEXT NOT NULL,
  peer_id TEXT NOT NULL,
  checked_at BIGINT NOT NULL,
  PRIMARY KEY (evaluator_id, unit, peer_id)
);

CREATE TABLE IF NOT EXISTS run_lock (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  holder TEXT NOT NULL,
  claimed_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
  id BIGSERIAL PRIMARY KEY,
  started_at BIGINT NOT NULL,
  finished_at BIGINT,
  roster_rows INTEGER NOT NULL DEFAULT 0,
  question_rows INTEGER NOT NULL DEFAULT 0,
  submission_rows INTEGER NOT NULL DEFAULT 0,
  skipped_rows INTEGER NOT NULL DEFAULT 0,
  missing_entries INTEGER NOT NULL DEFAULT 0
);
`
