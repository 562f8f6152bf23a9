// Package catalog normalizes raw question-catalog rows into the
// question set the pipeline scores against.
package catalog

import (
	"errors"
	"regexp"
	"strings"

	"github.com/crewlab/peereval/internal/tabular"
)

// ErrNoUsableQuestions aborts the run: scoring needs at least one
// catalog question.
var ErrNoUsableQuestions = errors.New("catalog: no usable rows")

// TypeScale is the default Likert-style question type.
const TypeScale = "scale"

var shortCodeRe = regexp.MustCompile(`^Q\d{2}$`)

// Question is one catalog entry. Immutable once loaded.
type Question struct {
	ID          string
	Prompt      string
	Type        string
	Choices     []string
	Instruction string
}

// IsShortCode reports whether id matches the catalog short-code
// pattern (already uppercased).
func IsShortCode(id string) bool { return shortCodeRe.MatchString(id) }

// Normalize keeps rows with a well-formed id and non-empty prompt;
// malformed optional fields fall back to defaults.
func Normalize(rows []tabular.QuestionRow) ([]Question, error) {
	var out []Question
	seen := map[string]bool{}
	for _, row := range rows {
		id := strings.ToUpper(strings.TrimSpace(row.QuestionID))
		prompt := strings.TrimSpace(row.QuestionText)
		if !IsShortCode(id) || prompt == "" || seen[id] {
			continue
		}
		seen[id] = true
		q := Question{
			ID:          id,
			Prompt:      prompt,
			Type:        strings.TrimSpace(row.QuestionType),
			Choices:     splitChoices(row.Choices),
			Instruction: strings.TrimSpace(row.InstructionalComment),
		}
		if q.Type == "" {
			q.Type = TypeScale
		}
		out = append(out, q)
	}
	if len(out) == 0 {
		return nil, ErrNoUsableQuestions
	}
	return out, nil
}

func splitChoices(raw string) []string {
	var out []string
	for _, c := range strings.Split(raw, "|") {
		if s := strings.TrimSpace(c); s != "" {
			out = append(out, s)
		}
	}
	return out
}
