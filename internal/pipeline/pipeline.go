// Package pipeline runs the full peer-evaluation batch: normalize,
// compute evaluator metrics and weights, aggregate scores, reconcile
// missing assessments, and write the report set.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/crewlab/peereval/internal/aggregate"
	"github.com/crewlab/peereval/internal/catalog"
	"github.com/crewlab/peereval/internal/evalstats"
	"github.com/crewlab/peereval/internal/reconcile"
	"github.com/crewlab/peereval/internal/roster"
	"github.com/crewlab/peereval/internal/submission"
	"github.com/crewlab/peereval/internal/tabular"
	"github.com/crewlab/peereval/internal/trust"
)

// Locker serializes report writes across concurrent runs.
type Locker interface {
	Acquire(ctx context.Context, holder string) error
	Release(ctx context.Context, holder string) error
}

// GapReportStore reads back the stored missing-assessment report for
// verification.
type GapReportStore interface {
	MissingReport(ctx context.Context) ([]tabular.MissingRow, error)
}

// Summary is what a run reports back to its caller.
type Summary struct {
	RosterRows     int `json:"roster_rows"`
	QuestionRows   int `json:"question_rows"`
	SubmissionRows int `json:"submission_rows"`
	SkippedRows    int `json:"skipped_rows"`
	ScoredStudents int `json:"scored_students"`
	MissingEntries int `json:"missing_entries"`
}

// Runner wires the pipeline stages to a source and sink.
type Runner struct {
	Source tabular.Source
	Sink   tabular.Sink
	Lock   Locker // nil disables run serialization
	Trust  trust.Config
	Now    func() time.Time
}

func (p *Runner) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Run executes one synchronous batch. Source-level problems abort with
// an error and nothing is written; malformed submission rows are
// skipped and surface only through the summary counts.
func (p *Runner) Run(ctx context.Context, holder string) (Summary, error) {
	var sum Summary

	if p.Lock != nil {
		if err := p.Lock.Acquire(ctx, holder); err != nil {
			return sum, err
		}
		defer func() {
			if err := p.Lock.Release(ctx, holder); err != nil {
				log.Printf("release run lock: %v", err)
			}
		}()
	}
	started := p.now()

	rosterRows, err := p.Source.RosterRows(ctx)
	if err != nil {
		return sum, fmt.Errorf("read roster: %w", err)
	}
	idx, err := roster.BuildIndex(rosterRows)
	if err != nil {
		return sum, err
	}
	sum.RosterRows = len(rosterRows)

	questionRows, err := p.Source.QuestionRows(ctx)
	if err != nil {
		return sum, fmt.Errorf("read question catalog: %w", err)
	}
	questions, err := catalog.Normalize(questionRows)
	if err != nil {
		return sum, err
	}
	sum.QuestionRows = len(questions)
	questionIDs := make(map[string]bool, len(questions))
	for _, q := range questions {
		questionIDs[q.ID] = true
	}

	subRows, err := p.Source.SubmissionRows(ctx)
	if err != nil {
		return sum, fmt.Errorf("read submissions: %w", err)
	}
	norm := submission.Normalize(toRows(subRows), idx, questionIDs)
	sum.SubmissionRows = len(subRows)
	sum.SkippedRows = len(norm.Skipped)

	metrics := evalstats.Compute(idx, norm.Responses)
	weights := trust.WeighAll(metrics, p.Trust)
	scores := aggregate.Compute(norm.Responses, weights)
	missing := reconcile.Missing(idx, norm.Responses)
	sum.ScoredStudents = len(scores)
	sum.MissingEntries = len(missing)

	set := buildReportSet(metrics, weights, scores, questions, missing)
	set.Stats = tabular.RunStats{
		StartedAt:      started.Unix(),
		FinishedAt:     p.now().Unix(),
		RosterRows:     sum.RosterRows,
		QuestionRows:   sum.QuestionRows,
		SubmissionRows: sum.SubmissionRows,
		SkippedRows:    sum.SkippedRows,
		MissingEntries: sum.MissingEntries,
	}
	if err := p.Sink.WriteReports(ctx, set); err != nil {
		return sum, fmt.Errorf("write reports: %w", err)
	}
	return sum, nil
}

// Verify re-checks the stored gap report against current submissions
// and writes the discrepancy report.
func (p *Runner) Verify(ctx context.Context, store GapReportStore) (reconcile.VerifyResult, error) {
	var res reconcile.VerifyResult

	rosterRows, err := p.Source.RosterRows(ctx)
	if err != nil {
		return res, fmt.Errorf("read roster: %w", err)
	}
	idx, err := roster.BuildIndex(rosterRows)
	if err != nil {
		return res, err
	}
	questionRows, err := p.Source.QuestionRows(ctx)
	if err != nil {
		return res, fmt.Errorf("read question catalog: %w", err)
	}
	questions, err := catalog.Normalize(questionRows)
	if err != nil {
		return res, err
	}
	questionIDs := make(map[string]bool, len(questions))
	for _, q := range questions {
		questionIDs[q.ID] = true
	}
	subRows, err := p.Source.SubmissionRows(ctx)
	if err != nil {
		return res, fmt.Errorf("read submissions: %w", err)
	}
	norm := submission.Normalize(toRows(subRows), idx, questionIDs)

	stored, err := store.MissingReport(ctx)
	if err != nil {
		return res, fmt.Errorf("read gap report: %w", err)
	}
	report := make([]reconcile.ReportEntry, 0, len(stored))
	for _, r := range stored {
		report = append(report, reconcile.ReportEntry{
			EvaluatorID:   r.EvaluatorID,
			Unit:          r.Unit,
			PeerID:        r.PeerID,
			NotApplicable: r.NotApplicable,
		})
	}

	res = reconcile.Verify(report, idx, norm.Responses)

	now := p.now().Unix()
	rows := make([]tabular.DiscrepancyRow, 0, len(res.Discrepancies))
	for _, d := range res.Discrepancies {
		rows = append(rows, tabular.DiscrepancyRow{
			EvaluatorID: d.EvaluatorID,
			Unit:        d.Unit,
			PeerID:      d.PeerID,
			CheckedAt:   now,
		})
	}
	if err := p.Sink.WriteDiscrepancies(ctx, rows); err != nil {
		return res, fmt.Errorf("write discrepancies: %w", err)
	}
	return res, nil
}

func toRows(in []tabular.SubmissionRow) []submission.Row {
	out := make([]submission.Row, 0, len(in))
	for _, r := range in {
		out = append(out, submission.Row{
			EvaluatorID:          r.EvaluatorID,
			EvaluatedStudentID:   r.EvaluatedStudentID,
			EvaluatedStudentName: r.EvaluatedStudentName,
			QuestionID:           r.QuestionID,
			ResponseType:         r.ResponseType,
			ResponseValue:        r.ResponseValue,
			SubmittedAt:          r.SubmittedAt,
			UnitContext:          r.UnitContext,
		})
	}
	return out
}

func buildReportSet(
	metrics []evalstats.Metrics,
	weights map[string]float64,
	scores []aggregate.StudentScores,
	questions []catalog.Question,
	missing []reconcile.Entry,
) tabular.ReportSet {
	var set tabular.ReportSet

	for _, m := range metrics {
		set.Evaluators = append(set.Evaluators, tabular.EvaluatorRow{
			EvaluatorID:        m.EvaluatorID,
			ScoredCount:        m.ScoredCount,
			CommentCount:       m.CommentCount,
			MeanScore:          round2(m.Mean),
			StdDev:             round2(m.StdDev),
			MinScore:           m.Min,
			MaxScore:           m.Max,
			PctMax:             round2(m.PctMax),
			PctMin:             round2(m.PctMin),
			DistinctValues:     m.DistinctValues,
			ConsensusDeviation: round2(m.ConsensusDeviation),
			IntraPeerSpread:    round2(m.IntraPeerSpread),
			CommentCoverage:    round2(m.CommentCoverage),
			MeanCommentLen:     round2(m.MeanCommentLen),
			Weight:             round2(weights[m.EvaluatorID]),
		})
	}

	for _, ss := range scores {
		// one row per catalog question keeps the score sheet rectangular;
		// questions nobody scored stay blank
		for _, q := range questions {
			row := tabular.ScoreRow{StudentID: ss.StudentID, QuestionID: q.ID}
			if c, ok := ss.ByQuestion[q.ID]; ok && c.OK {
				v := round2(c.Value)
				row.WeightedScore = &v
			}
			set.Scores = append(set.Scores, row)
		}
		orow := tabular.OverallRow{StudentID: ss.StudentID}
		if ss.Overall.OK {
			v := round2(ss.Overall.Value)
			orow.Overall = &v
		}
		set.Overall = append(set.Overall, orow)
	}

	for _, e := range missing {
		set.Missing = append(set.Missing, tabular.MissingRow{
			EvaluatorID: e.EvaluatorID,
			Unit:        e.Unit,
			PeerID:      e.PeerID,
		})
	}
	return set
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
