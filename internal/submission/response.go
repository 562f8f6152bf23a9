// Package submission normalizes raw submission rows into Response
// records, keeping an audit trail of skipped rows.
package submission

import (
	"fmt"
	"math/rand"
	"time"
)

// Response types.
const (
	TypeScore   = "SCORE"
	TypeComment = "COMMENT"
)

// Score bounds for the Likert scale.
const (
	ScoreMin = 1.0
	ScoreMax = 5.0
)

// Response is one normalized submission row. Immutable once created.
type Response struct {
	ID          string
	QuestionID  string
	Type        string // TypeScore or TypeComment
	Score       float64
	Comment     string
	EvaluatorID string
	EvaluatedID string
	SubmittedAt time.Time
	// UnitContext is the normalized unit tag under which the evaluation
	// occurred; empty when the raw context was not a known tag.
	UnitContext string
}

// InScoreRange reports whether v sits inside the closed scale bounds.
func InScoreRange(v float64) bool { return v >= ScoreMin && v <= ScoreMax }

// newResponseID derives a unique id from the row's identifying fields
// plus a random component, mirroring how submissions were keyed upstream.
func newResponseID(ts time.Time, evaluator, evaluated, question, typ string) string {
	return fmt.Sprintf("%s-%s-%s-%s-%s-%04x",
		ts.Format("20060102150405"), evaluator, evaluated, question, typ, rand.Uint32()&0xffff)
}
