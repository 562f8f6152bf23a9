package aggregate

import (
	"math"
	"testing"

	"github.com/crewlab/peereval/internal/submission"
)

func score(evaluator, evaluated, question string, v float64) submission.Response {
	return submission.Response{
		Type: submission.TypeScore, Score: v,
		EvaluatorID: evaluator, EvaluatedID: evaluated, QuestionID: question,
	}
}

func findStudent(t *testing.T, ss []StudentScores, id string) StudentScores {
	t.Helper()
	for _, s := range ss {
		if s.StudentID == id {
			return s
		}
	}
	t.Fatalf("no scores for %s", id)
	return StudentScores{}
}

func TestWeightedMean(t *testing.T) {
	rs := []submission.Response{
		score("E1", "S1", "Q01", 5),
		score("E2", "S1", "Q01", 3),
		score("E3", "S1", "Q01", 1),
	}
	weights := map[string]float64{"E1": 1.0, "E2": 0.4, "E3": 0.7}
	out := Compute(rs, weights)
	s1 := findStudent(t, out, "S1")

	want := (5*1.0 + 3*0.4 + 1*0.7) / (1.0 + 0.4 + 0.7)
	got := s1.ByQuestion["Q01"]
	if !got.OK {
		t.Fatal("cell unexpectedly blank")
	}
	if math.Abs(got.Value-want) > 1e-9 {
		t.Fatalf("weighted = %v, want %v", got.Value, want)
	}
}

func TestZeroWeightExcluded(t *testing.T) {
	rs := []submission.Response{
		score("E1", "S1", "Q01", 5),
		score("E2", "S1", "Q01", 1),
	}
	weights := map[string]float64{"E1": 0.5, "E2": 0}
	out := Compute(rs, weights)
	got := findStudent(t, out, "S1").ByQuestion["Q01"]
	if math.Abs(got.Value-5) > 1e-9 {
		t.Fatalf("zero-weight response leaked in: %v", got.Value)
	}
}

func TestAllZeroWeightsFallBackToPlainMean(t *testing.T) {
	rs := []submission.Response{
		score("E1", "S1", "Q01", 5),
		score("E2", "S1", "Q01", 2),
	}
	weights := map[string]float64{"E1": 0, "E2": 0}
	out := Compute(rs, weights)
	got := findStudent(t, out, "S1").ByQuestion["Q01"]
	if !got.OK {
		t.Fatal("fallback mean missing")
	}
	if math.Abs(got.Value-3.5) > 1e-9 {
		t.Fatalf("fallback = %v, want 3.5", got.Value)
	}
}

func TestCommentsDoNotScore(t *testing.T) {
	rs := []submission.Response{
		{Type: submission.TypeComment, Comment: "nice", EvaluatorID: "E1", EvaluatedID: "S1", QuestionID: "Q01"},
	}
	out := Compute(rs, map[string]float64{"E1": 1})
	if len(out) != 0 {
		t.Fatalf("comment-only input produced cells: %+v", out)
	}
}

func TestOverallMedian(t *testing.T) {
	rs := []submission.Response{
		score("E1", "S1", "Q01", 5),
		score("E1", "S1", "Q02", 3),
		score("E1", "S1", "Q03", 2),
	}
	out := Compute(rs, map[string]float64{"E1": 1})
	s1 := findStudent(t, out, "S1")
	if !s1.Overall.OK || s1.Overall.Value != 3 {
		t.Fatalf("overall = %+v, want median 3", s1.Overall)
	}
}

func TestFullPrecisionRetained(t *testing.T) {
	rs := []submission.Response{
		score("E1", "S1", "Q01", 5),
		score("E2", "S1", "Q01", 4),
		score("E3", "S1", "Q01", 4),
	}
	weights := map[string]float64{"E1": 1, "E2": 1, "E3": 1}
	got := findStudent(t, Compute(rs, weights), "S1").ByQuestion["Q01"]
	// 13/3 must not arrive pre-rounded
	if math.Abs(got.Value-13.0/3.0) > 1e-12 {
		t.Fatalf("value = %v, want full-precision 13/3", got.Value)
	}
}
