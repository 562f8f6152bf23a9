package evalstats

import (
	"math"
	"testing"
	"time"

	"github.com/crewlab/peereval/internal/roster"
	"github.com/crewlab/peereval/internal/submission"
	"github.com/crewlab/peereval/internal/tabular"
)

func buildIndex(t *testing.T, ids ...string) *roster.RosterIndex {
	t.Helper()
	var rows []tabular.RosterRow
	for _, id := range ids {
		rows = append(rows, tabular.RosterRow{StudentID: id, Unit1: "CAMERA", Status: "active"})
	}
	idx, err := roster.BuildIndex(rows)
	if err != nil {
		t.Fatal(err)
	}
	return idx
}

func score(evaluator, evaluated, question string, v float64) submission.Response {
	return submission.Response{
		Type: submission.TypeScore, Score: v,
		EvaluatorID: evaluator, EvaluatedID: evaluated, QuestionID: question,
		SubmittedAt: time.Unix(1700000000, 0), UnitContext: "CAMERA",
	}
}

func comment(evaluator, evaluated, question, text string) submission.Response {
	return submission.Response{
		Type: submission.TypeComment, Comment: text,
		EvaluatorID: evaluator, EvaluatedID: evaluated, QuestionID: question,
		SubmittedAt: time.Unix(1700000000, 0), UnitContext: "CAMERA",
	}
}

func metricsFor(t *testing.T, ms []Metrics, id string) Metrics {
	t.Helper()
	for _, m := range ms {
		if m.EvaluatorID == id {
			return m
		}
	}
	t.Fatalf("no metrics for %s", id)
	return Metrics{}
}

func TestMedian(t *testing.T) {
	cases := []struct {
		in   []float64
		want float64
	}{
		{[]float64{3}, 3},
		{[]float64{1, 5}, 3},
		{[]float64{5, 1, 3}, 3},
		{[]float64{4, 1, 3, 2}, 2.5},
	}
	for _, c := range cases {
		if got := Median(c.in); got != c.want {
			t.Errorf("Median(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestPopStdDev(t *testing.T) {
	if got := PopStdDev([]float64{4}); got != 0 {
		t.Errorf("single sample: %v", got)
	}
	got := PopStdDev([]float64{2, 4})
	if math.Abs(got-1) > 1e-9 {
		t.Errorf("PopStdDev(2,4) = %v, want 1", got)
	}
}

func TestConsensusDeviationExcludesSelf(t *testing.T) {
	idx := buildIndex(t, "U2100001A", "U2100002B", "U2100003C", "U2100009Z")
	rs := []submission.Response{
		score("U2100001A", "U2100009Z", "Q01", 5),
		score("U2100002B", "U2100009Z", "Q01", 3),
		score("U2100003C", "U2100009Z", "Q01", 1),
	}
	ms := Compute(idx, rs)

	// for U2100001A the group median excluding self is median(3,1)=2
	a := metricsFor(t, ms, "U2100001A")
	if math.Abs(a.ConsensusDeviation-3) > 1e-9 || a.ConsensusSamples != 1 {
		t.Errorf("A deviation = %v (n=%d), want 3", a.ConsensusDeviation, a.ConsensusSamples)
	}
	b := metricsFor(t, ms, "U2100002B")
	if math.Abs(b.ConsensusDeviation-0) > 1e-9 {
		t.Errorf("B deviation = %v, want 0", b.ConsensusDeviation)
	}
}

func TestIntraPeerSpread(t *testing.T) {
	idx := buildIndex(t, "U2100001A", "U2100002B")
	rs := []submission.Response{
		// same peer across two questions, identical scores: spread 0
		score("U2100001A", "U2100002B", "Q01", 4),
		score("U2100001A", "U2100002B", "Q02", 4),
		// a single score for another peer must not contribute
		score("U2100001A", "GUEST-7", "Q01", 2),
	}
	m := metricsFor(t, Compute(idx, rs), "U2100001A")
	if m.IntraPeerPairs != 1 {
		t.Fatalf("pairs = %d, want 1", m.IntraPeerPairs)
	}
	if m.IntraPeerSpread != 0 {
		t.Errorf("spread = %v, want 0", m.IntraPeerSpread)
	}
}

func TestIntraPeerSpreadNeedsDistinctQuestions(t *testing.T) {
	idx := buildIndex(t, "U2100001A", "U2100002B")
	rs := []submission.Response{
		// two scores for the same peer on the same question are one
		// observation, not a pair
		score("U2100001A", "U2100002B", "Q01", 2),
		score("U2100001A", "U2100002B", "Q01", 5),
	}
	m := metricsFor(t, Compute(idx, rs), "U2100001A")
	if m.IntraPeerPairs != 0 {
		t.Fatalf("pairs = %d, want 0", m.IntraPeerPairs)
	}
	if m.IntraPeerSpread != 0 {
		t.Errorf("spread = %v, want 0", m.IntraPeerSpread)
	}
}

func TestScalarStats(t *testing.T) {
	idx := buildIndex(t, "U2100001A", "U2100002B")
	rs := []submission.Response{
		score("U2100001A", "U2100002B", "Q01", 5),
		score("U2100001A", "U2100002B", "Q02", 1),
		score("U2100001A", "U2100002B", "Q03", 3),
		score("U2100001A", "U2100002B", "Q04", 5),
		comment("U2100001A", "U2100002B", "Q01", "good"),
	}
	m := metricsFor(t, Compute(idx, rs), "U2100001A")
	if m.ScoredCount != 4 || m.CommentCount != 1 {
		t.Fatalf("counts: %+v", m)
	}
	if m.Min != 1 || m.Max != 5 || m.Range != 4 {
		t.Errorf("min/max/range: %+v", m)
	}
	if math.Abs(m.PctMax-50) > 1e-9 || math.Abs(m.PctMin-25) > 1e-9 || math.Abs(m.PctMid-25) > 1e-9 {
		t.Errorf("pct: max=%v min=%v mid=%v", m.PctMax, m.PctMin, m.PctMid)
	}
	if m.DistinctValues != 3 {
		t.Errorf("distinct = %d", m.DistinctValues)
	}
	// 1 of 4 scored pairs carries a comment
	if math.Abs(m.CommentCoverage-25) > 1e-9 {
		t.Errorf("coverage = %v", m.CommentCoverage)
	}
	if m.MeanCommentLen != 4 {
		t.Errorf("mean comment len = %v", m.MeanCommentLen)
	}
}

func TestPlaceholdersGetNoMetrics(t *testing.T) {
	idx := buildIndex(t, "U2100001A")
	idx.EnsurePlaceholder("GUEST-7", "")
	ms := Compute(idx, nil)
	if len(ms) != 1 || ms[0].EvaluatorID != "U2100001A" {
		t.Fatalf("metrics set = %+v", ms)
	}
	if ms[0].ScoredCount != 0 {
		t.Errorf("silent evaluator should have zero counts: %+v", ms[0])
	}
}
