package submission

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/crewlab/peereval/internal/roster"
)

// SkipReason records one submission row dropped during normalization.
type SkipReason struct {
	EvaluatorID string
	QuestionID  string
	Reason      string
}

// Result pairs the normalized responses with the skip audit so the
// soft-failure path stays visible to callers.
type Result struct {
	Responses []Response
	Skipped   []SkipReason
}

// Row is the raw submission shape consumed by Normalize. It mirrors
// tabular.SubmissionRow without importing it, so tests can build rows
// directly.
type Row struct {
	EvaluatorID          string
	EvaluatedStudentID   string
	EvaluatedStudentName string
	QuestionID           string
	ResponseType         string
	ResponseValue        string
	SubmittedAt          int64
	UnitContext          string
}

// Normalize converts raw rows into Responses. Malformed rows are
// skipped with an audit entry; unknown evaluated students get
// placeholder records synthesized into idx so their scores survive.
func Normalize(rows []Row, idx *roster.RosterIndex, questionIDs map[string]bool) Result {
	var res Result

	skip := func(row Row, reason string) {
		res.Skipped = append(res.Skipped, SkipReason{
			EvaluatorID: roster.NormalizeID(row.EvaluatorID),
			QuestionID:  strings.ToUpper(strings.TrimSpace(row.QuestionID)),
			Reason:      reason,
		})
	}

	for _, row := range rows {
		evaluator := roster.NormalizeID(row.EvaluatorID)
		evaluated := roster.NormalizeID(row.EvaluatedStudentID)
		questionID := strings.ToUpper(strings.TrimSpace(row.QuestionID))
		typ := strings.ToUpper(strings.TrimSpace(row.ResponseType))
		value := strings.TrimSpace(row.ResponseValue)

		if evaluator == "" || evaluated == "" || questionID == "" || typ == "" || value == "" {
			skip(row, "missing required field")
			continue
		}
		if typ != TypeScore && typ != TypeComment {
			skip(row, "unknown response type")
			continue
		}
		if !questionIDs[questionID] {
			skip(row, "unknown question id")
			continue
		}

		ev, ok := idx.Lookup(evaluator)
		if !ok || ev.IsPlaceholder() || !roster.IsValidEmail(ev.Email) {
			skip(row, "evaluator not on active roster")
			continue
		}

		r := Response{
			QuestionID:  questionID,
			Type:        typ,
			EvaluatorID: evaluator,
			EvaluatedID: evaluated,
			SubmittedAt: time.Unix(row.SubmittedAt, 0).UTC(),
		}

		switch typ {
		case TypeScore:
			v, err := strconv.ParseFloat(value, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				skip(row, "unparseable score")
				continue
			}
			if !InScoreRange(v) {
				skip(row, "score out of range")
				continue
			}
			r.Score = v
		case TypeComment:
			r.Comment = value
		}

		if u, ok := roster.NormalizeUnit(row.UnitContext); ok {
			r.UnitContext = u
		}

		// evaluated identity may be absent from the roster; keep it.
		idx.EnsurePlaceholder(evaluated, strings.TrimSpace(row.EvaluatedStudentName))

		r.ID = newResponseID(r.SubmittedAt, evaluator, evaluated, questionID, typ)
		res.Responses = append(res.Responses, r)
	}
	return res
}
