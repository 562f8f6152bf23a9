package tabular

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SQLStore implements Source and Sink over the shared *sql.DB opened by
// internal/db. Works against both the sqlite and postgres schemas.
type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) RosterRows(ctx context.Context) ([]RosterRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT student_id, student_name, unit1, unit2, email, status FROM roster`)
	if err != nil {
		return nil, fmt.Errorf("roster source: %w", err)
	}
	defer rows.Close()
	var out []RosterRow
	for rows.Next() {
		var r RosterRow
		if err := rows.Scan(&r.StudentID, &r.StudentName, &r.Unit1, &r.Unit2, &r.Email, &r.Status); err != nil {
			return nil, fmt.Errorf("roster source: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) QuestionRows(ctx context.Context) ([]QuestionRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT question_id, question_text, question_type, choices, instructional_comment FROM question_catalog`)
	if err != nil {
		return nil, fmt.Errorf("question catalog source: %w", err)
	}
	defer rows.Close()
	var out []QuestionRow
	for rows.Next() {
		var r QuestionRow
		if err := rows.Scan(&r.QuestionID, &r.QuestionText, &r.QuestionType, &r.Choices, &r.InstructionalComment); err != nil {
			return nil, fmt.Errorf("question catalog source: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) SubmissionRows(ctx context.Context) ([]SubmissionRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT evaluator_id, evaluated_student_id, evaluated_student_name, question_id,
		        response_type, response_value, submitted_at, unit_context
		 FROM submissions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("submission source: %w", err)
	}
	defer rows.Close()
	var out []SubmissionRow
	for rows.Next() {
		var r SubmissionRow
		if err := rows.Scan(&r.EvaluatorID, &r.EvaluatedStudentID, &r.EvaluatedStudentName,
			&r.QuestionID, &r.ResponseType, &r.ResponseValue, &r.SubmittedAt, &r.UnitContext); err != nil {
			return nil, fmt.Errorf("submission source: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// WriteReports replaces every report table in one transaction.
func (s *SQLStore) WriteReports(ctx context.Context, set ReportSet) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.clearTables(ctx, tx, "report_evaluators", "report_scores", "report_overall", "report_missing"); err != nil {
		return err
	}

	for _, r := range set.Evaluators {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO report_evaluators
			 (evaluator_id, scored_count, comment_count, mean_score, std_dev, min_score, max_score,
			  pct_max, pct_min, distinct_values, consensus_deviation, intra_peer_spread,
			  comment_coverage, mean_comment_len, weight)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
			r.EvaluatorID, r.ScoredCount, r.CommentCount, r.MeanScore, r.StdDev, r.MinScore, r.MaxScore,
			r.PctMax, r.PctMin, r.DistinctValues, r.ConsensusDeviation, r.IntraPeerSpread,
			r.CommentCoverage, r.MeanCommentLen, r.Weight); err != nil {
			return err
		}
	}
	for _, r := range set.Scores {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO report_scores (student_id, question_id, weighted_score) VALUES ($1,$2,$3)`,
			r.StudentID, r.QuestionID, nullable(r.WeightedScore)); err != nil {
			return err
		}
	}
	for _, r := range set.Overall {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO report_overall (student_id, overall_score) VALUES ($1,$2)`,
			r.StudentID, nullable(r.Overall)); err != nil {
			return err
		}
	}
	for _, r := range set.Missing {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO report_missing (evaluator_id, unit, peer_id, not_applicable) VALUES ($1,$2,$3,$4)`,
			r.EvaluatorID, r.Unit, r.PeerID, boolInt(r.NotApplicable)); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (started_at, finished_at, roster_rows, question_rows, submission_rows, skipped_rows, missing_entries)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		set.Stats.StartedAt, set.Stats.FinishedAt, set.Stats.RosterRows, set.Stats.QuestionRows,
		set.Stats.SubmissionRows, set.Stats.SkippedRows, set.Stats.MissingEntries); err != nil {
		return err
	}
	return tx.Commit()
}

// clearTables empties report tables ahead of a rewrite. Postgres gets a
// single TRUNCATE; sqlite has no TRUNCATE so each table is deleted.
func (s *SQLStore) clearTables(ctx context.Context, tx *sql.Tx, tables ...string) error {
	if s.driver == "postgres" {
		_, err := tx.ExecContext(ctx, "TRUNCATE "+strings.Join(tables, ", "))
		return err
	}
	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLStore) WriteDiscrepancies(ctx context.Context, rowsIn []DiscrepancyRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := s.clearTables(ctx, tx, "report_discrepancies"); err != nil {
		return err
	}
	for _, r := range rowsIn {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO report_discrepancies (evaluator_id, unit, peer_id, checked_at) VALUES ($1,$2,$3,$4)`,
			r.EvaluatorID, r.Unit, r.PeerID, r.CheckedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// --- report readers (API surface) ---

func (s *SQLStore) EvaluatorReport(ctx context.Context) ([]EvaluatorRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT evaluator_id, scored_count, comment_count, mean_score, std_dev, min_score, max_score,
		        pct_max, pct_min, distinct_values, consensus_deviation, intra_peer_spread,
		        comment_coverage, mean_comment_len, weight
		 FROM report_evaluators ORDER BY evaluator_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []EvaluatorRow
	for rows.Next() {
		var r EvaluatorRow
		if err := rows.Scan(&r.EvaluatorID, &r.ScoredCount, &r.CommentCount, &r.MeanScore, &r.StdDev,
			&r.MinScore, &r.MaxScore, &r.PctMax, &r.PctMin, &r.DistinctValues, &r.ConsensusDeviation,
			&r.IntraPeerSpread, &r.CommentCoverage, &r.MeanCommentLen, &r.Weight); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) ScoreReport(ctx context.Context) ([]ScoreRow, []OverallRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT student_id, question_id, weighted_score FROM report_scores ORDER BY student_id, question_id`)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	var scores []ScoreRow
	for rows.Next() {
		var r ScoreRow
		var v sql.NullFloat64
		if err := rows.Scan(&r.StudentID, &r.QuestionID, &v); err != nil {
			return nil, nil, err
		}
		if v.Valid {
			f := v.Float64
			r.WeightedScore = &f
		}
		scores = append(scores, r)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	orows, err := s.db.QueryContext(ctx,
		`SELECT student_id, overall_score FROM report_overall ORDER BY student_id`)
	if err != nil {
		return nil, nil, err
	}
	defer orows.Close()
	var overall []OverallRow
	for orows.Next() {
		var r OverallRow
		var v sql.NullFloat64
		if err := orows.Scan(&r.StudentID, &v); err != nil {
			return nil, nil, err
		}
		if v.Valid {
			f := v.Float64
			r.Overall = &f
		}
		overall = append(overall, r)
	}
	return scores, overall, orows.Err()
}

func (s *SQLStore) MissingReport(ctx context.Context) ([]MissingRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT evaluator_id, unit, peer_id, not_applicable FROM report_missing ORDER BY evaluator_id, unit, peer_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []MissingRow
	for rows.Next() {
		var r MissingRow
		var na int
		if err := rows.Scan(&r.EvaluatorID, &r.Unit, &r.PeerID, &na); err != nil {
			return nil, err
		}
		r.NotApplicable = na != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) DiscrepancyReport(ctx context.Context) ([]DiscrepancyRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT evaluator_id, unit, peer_id, checked_at FROM report_discrepancies ORDER BY evaluator_id, unit, peer_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DiscrepancyRow
	for rows.Next() {
		var r DiscrepancyRow
		if err := rows.Scan(&r.EvaluatorID, &r.Unit, &r.PeerID, &r.CheckedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullable(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
