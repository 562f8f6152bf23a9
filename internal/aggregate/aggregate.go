// Package aggregate combines responses with evaluator weights into
// per-(student, question) scores and an overall per-student summary.
package aggregate

import (
	"sort"

	"github.com/crewlab/peereval/internal/evalstats"
	"github.com/crewlab/peereval/internal/submission"
)

// Cell is one computed score; OK is false for a blank cell (no
// contributing responses), which is distinct from a zero score.
type Cell struct {
	Value float64
	OK    bool
}

// StudentScores is the computed result for one evaluated student.
type StudentScores struct {
	StudentID  string
	ByQuestion map[string]Cell
	// Overall is the median of the per-question values that exist;
	// blank when none do.
	Overall Cell
}

// Compute aggregates score responses under the given evaluator weights.
// For each (student, question) pair: weighted mean over responses whose
// evaluator weight is positive; unweighted mean when scores exist but
// every weight is zero; blank otherwise. Results keep full precision;
// rounding happens at report time.
func Compute(responses []submission.Response, weights map[string]float64) []StudentScores {
	type cellAcc struct {
		weightedSum float64
		weightSum   float64
		plainSum    float64
		plainN      int
	}
	cells := map[string]map[string]*cellAcc{} // student -> question -> acc

	for _, r := range responses {
		if r.Type != submission.TypeScore {
			continue
		}
		byQ, ok := cells[r.EvaluatedID]
		if !ok {
			byQ = map[string]*cellAcc{}
			cells[r.EvaluatedID] = byQ
		}
		acc, ok := byQ[r.QuestionID]
		if !ok {
			acc = &cellAcc{}
			byQ[r.QuestionID] = acc
		}
		acc.plainSum += r.Score
		acc.plainN++
		if w := weights[r.EvaluatorID]; w > 0 {
			acc.weightedSum += r.Score * w
			acc.weightSum += w
		}
	}

	out := make([]StudentScores, 0, len(cells))
	for studentID, byQ := range cells {
		ss := StudentScores{StudentID: studentID, ByQuestion: make(map[string]Cell, len(byQ))}
		var values []float64
		for qid, acc := range byQ {
			var c Cell
			switch {
			case acc.weightSum > 0:
				c = Cell{Value: acc.weightedSum / acc.weightSum, OK: true}
			case acc.plainN > 0:
				// every contributing evaluator carries zero weight;
				// fall back to the unweighted mean
				c = Cell{Value: acc.plainSum / float64(acc.plainN), OK: true}
			}
			ss.ByQuestion[qid] = c
			if c.OK {
				values = append(values, c.Value)
			}
		}
		if len(values) > 0 {
			ss.Overall = Cell{Value: evalstats.Median(values), OK: true}
		}
		out = append(out, ss)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out
}
