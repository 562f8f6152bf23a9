package submission

import (
	"testing"

	"github.com/crewlab/peereval/internal/roster"
	"github.com/crewlab/peereval/internal/tabular"
)

func testIndex(t *testing.T) *roster.RosterIndex {
	t.Helper()
	idx, err := roster.BuildIndex([]tabular.RosterRow{
		{StudentID: "U2100001A", StudentName: "Ada", Unit1: "CAMERA", Status: "active"},
		{StudentID: "U2100002B", StudentName: "Ben", Unit1: "CAMERA", Status: "active"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return idx
}

var qids = map[string]bool{"Q01": true, "Q02": true}

func TestNormalizeHappyPath(t *testing.T) {
	idx := testIndex(t)
	res := Normalize([]Row{
		{EvaluatorID: "u2100001a", EvaluatedStudentID: "U2100002B", QuestionID: "q01",
			ResponseType: "score", ResponseValue: "4", SubmittedAt: 1700000000, UnitContext: "UNIT CAMERA"},
		{EvaluatorID: "U2100001A", EvaluatedStudentID: "U2100002B", QuestionID: "Q01",
			ResponseType: "COMMENT", ResponseValue: "  solid work  ", SubmittedAt: 1700000001},
	}, idx, qids)

	if len(res.Skipped) != 0 {
		t.Fatalf("unexpected skips: %+v", res.Skipped)
	}
	if len(res.Responses) != 2 {
		t.Fatalf("want 2 responses, got %d", len(res.Responses))
	}
	score := res.Responses[0]
	if score.Type != TypeScore || score.Score != 4 {
		t.Errorf("score response = %+v", score)
	}
	if score.EvaluatorID != "U2100001A" {
		t.Errorf("evaluator id not uppercased: %q", score.EvaluatorID)
	}
	if score.UnitContext != "CAMERA" {
		t.Errorf("unit context = %q", score.UnitContext)
	}
	comment := res.Responses[1]
	if comment.Comment != "solid work" {
		t.Errorf("comment not trimmed: %q", comment.Comment)
	}
	if score.ID == "" || comment.ID == "" || score.ID == comment.ID {
		t.Errorf("response ids not unique: %q vs %q", score.ID, comment.ID)
	}
}

func TestNormalizeSkips(t *testing.T) {
	idx := testIndex(t)
	rows := []Row{
		{EvaluatorID: "", EvaluatedStudentID: "U2100002B", QuestionID: "Q01", ResponseType: "SCORE", ResponseValue: "3"},
		{EvaluatorID: "U2100001A", EvaluatedStudentID: "U2100002B", QuestionID: "Q09", ResponseType: "SCORE", ResponseValue: "3"},
		{EvaluatorID: "U2100001A", EvaluatedStudentID: "U2100002B", QuestionID: "Q01", ResponseType: "SCORE", ResponseValue: "great"},
		{EvaluatorID: "U2100001A", EvaluatedStudentID: "U2100002B", QuestionID: "Q01", ResponseType: "SCORE", ResponseValue: "9"},
		{EvaluatorID: "U2100001A", EvaluatedStudentID: "U2100002B", QuestionID: "Q01", ResponseType: "COMMENT", ResponseValue: "   "},
		{EvaluatorID: "U2100009Z", EvaluatedStudentID: "U2100002B", QuestionID: "Q01", ResponseType: "SCORE", ResponseValue: "3"},
		{EvaluatorID: "U2100001A", EvaluatedStudentID: "U2100002B", QuestionID: "Q01", ResponseType: "RATING", ResponseValue: "3"},
	}
	res := Normalize(rows, idx, qids)
	if len(res.Responses) != 0 {
		t.Fatalf("want all rows skipped, kept %d", len(res.Responses))
	}
	if len(res.Skipped) != len(rows) {
		t.Fatalf("audit trail incomplete: %d of %d", len(res.Skipped), len(rows))
	}
	// audit + kept must account for every input row
	if len(res.Skipped)+len(res.Responses) != len(rows) {
		t.Fatal("row accounting broken")
	}
}

func TestNormalizeSynthesizesPlaceholder(t *testing.T) {
	idx := testIndex(t)
	res := Normalize([]Row{
		{EvaluatorID: "U2100001A", EvaluatedStudentID: "GUEST-7", EvaluatedStudentName: "Visiting Editor",
			QuestionID: "Q01", ResponseType: "SCORE", ResponseValue: "5"},
	}, idx, qids)
	if len(res.Responses) != 1 {
		t.Fatalf("response for unknown evaluated student should be kept, skips: %+v", res.Skipped)
	}
	s, ok := idx.Lookup("GUEST-7")
	if !ok || !s.IsPlaceholder() {
		t.Fatalf("placeholder not synthesized: %+v (ok=%v)", s, ok)
	}
	if s.Name != "Visiting Editor" {
		t.Errorf("placeholder name = %q", s.Name)
	}
}
