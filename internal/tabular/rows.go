// Package tabular defines the narrow row-level contracts between the
// scoring pipeline and its surrounding tabular store: three read-only
// sources (roster, question catalog, submissions) and one report sink.
package tabular

import "context"

// RosterRow is one raw roster record as stored.
type RosterRow struct {
	StudentID   string
	StudentName string
	Unit1       string
	Unit2       string
	Email       string
	Status      string
}

// QuestionRow is one raw question-catalog record.
type QuestionRow struct {
	QuestionID           string
	QuestionText         string
	QuestionType         string
	Choices              string
	InstructionalComment string
}

// SubmissionRow is one raw peer-evaluation submission record.
type SubmissionRow struct {
	EvaluatorID          string
	EvaluatedStudentID   string
	EvaluatedStudentName string
	QuestionID           string
	ResponseType         string
	ResponseValue        string
	SubmittedAt          int64 // unix seconds
	UnitContext          string
}

// Source provides read-only access to the three input tables.
type Source interface {
	RosterRows(ctx context.Context) ([]RosterRow, error)
	QuestionRows(ctx context.Context) ([]QuestionRow, error)
	SubmissionRows(ctx context.Context) ([]SubmissionRow, error)
}

// EvaluatorRow is one evaluator-analytics output record.
type EvaluatorRow struct {
	EvaluatorID        string
	ScoredCount        int
	CommentCount       int
	MeanScore          float64
	StdDev             float64
	MinScore           float64
	MaxScore           float64
	PctMax             float64
	PctMin             float64
	DistinctValues     int
	ConsensusDeviation float64
	IntraPeerSpread    float64
	CommentCoverage    float64
	MeanCommentLen     float64
	Weight             float64
}

// ScoreRow is one per-(student, question) weighted score. A nil value
// is a blank cell, not a zero.
type ScoreRow struct {
	StudentID     string
	QuestionID    string
	WeightedScore *float64
}

// OverallRow is one per-student overall summary (median of computed
// per-question scores); nil when no question had a value.
type OverallRow struct {
	StudentID string
	Overall   *float64
}

// MissingRow is one expected-but-absent evaluation pair.
type MissingRow struct {
	EvaluatorID   string
	Unit          string
	PeerID        string
	NotApplicable bool
}

// DiscrepancyRow flags a previously reported gap that is now satisfied
// by current submission data.
type DiscrepancyRow struct {
	EvaluatorID string
	Unit        string
	PeerID      string
	CheckedAt   int64
}

// RunStats is the audit record for one pipeline run.
type RunStats struct {
	StartedAt      int64
	FinishedAt     int64
	RosterRows     int
	QuestionRows   int
	SubmissionRows int
	SkippedRows    int
	MissingEntries int
}

// ReportSet is everything one run produces. The sink must write it
// atomically: either all tables are replaced or none are.
type ReportSet struct {
	Evaluators []EvaluatorRow
	Scores     []ScoreRow
	Overall    []OverallRow
	Missing    []MissingRow
	Stats      RunStats
}

// Sink accepts pipeline output.
type Sink interface {
	WriteReports(ctx context.Context, set ReportSet) error
	WriteDiscrepancies(ctx context.Context, rows []DiscrepancyRow) error
}
