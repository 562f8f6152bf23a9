// Package evalstats computes per-evaluator behavioral statistics from
// the normalized response set. Everything here is recomputed fully each
// run; there is no incremental state.
package evalstats

import (
	"math"
	"sort"

	"github.com/crewlab/peereval/internal/roster"
	"github.com/crewlab/peereval/internal/submission"
)

// Metrics is the behavioral profile of one evaluator.
type Metrics struct {
	EvaluatorID string

	ScoredCount  int
	CommentCount int

	Mean   float64
	StdDev float64 // population; 0 with fewer than 2 samples
	Min    float64
	Max    float64
	Range  float64

	// Percentages over scored responses, 0..100.
	PctMax float64 // scores at the scale maximum
	PctMin float64 // scores at the scale minimum
	PctMid float64 // strictly between

	DistinctValues int

	// ConsensusDeviation is the mean absolute deviation of this
	// evaluator's scores from the median of scores other evaluators gave
	// the same (student, question) pair.
	ConsensusDeviation float64
	ConsensusSamples   int

	// IntraPeerSpread averages, over peers this evaluator scored on at
	// least two questions, the spread of scores given to that peer. A
	// low value is a rubber-stamping signal.
	IntraPeerSpread float64
	IntraPeerPairs  int

	// CommentCoverage is the percentage of scored (student, question)
	// pairs that also carry a comment.
	CommentCoverage float64
	MeanCommentLen  float64
}

type pairKey struct{ evaluated, question string }

type scoredBy struct {
	evaluator string
	value     float64
}

type accumulator struct {
	scores       []float64
	commentLens  []int
	scoredPairs  map[pairKey]bool
	commentPairs map[pairKey]bool
	perPeer      map[string]map[string]float64 // peer -> question -> score
	devSum       float64
	devN         int
}

// Compute produces one Metrics per active, non-placeholder evaluator.
// Evaluators with zero responses still get a record so downstream
// weighting can assign them a zero weight.
func Compute(idx *roster.RosterIndex, responses []submission.Response) []Metrics {
	byPair := make(map[pairKey][]scoredBy)
	for _, r := range responses {
		if r.Type != submission.TypeScore {
			continue
		}
		k := pairKey{r.EvaluatedID, r.QuestionID}
		byPair[k] = append(byPair[k], scoredBy{r.EvaluatorID, r.Score})
	}

	accs := make(map[string]*accumulator)
	get := func(id string) *accumulator {
		a, ok := accs[id]
		if !ok {
			a = &accumulator{
				scoredPairs:  map[pairKey]bool{},
				commentPairs: map[pairKey]bool{},
				perPeer:      map[string]map[string]float64{},
			}
			accs[id] = a
		}
		return a
	}

	for _, r := range responses {
		a := get(r.EvaluatorID)
		k := pairKey{r.EvaluatedID, r.QuestionID}
		switch r.Type {
		case submission.TypeScore:
			a.scores = append(a.scores, r.Score)
			a.scoredPairs[k] = true
			if a.perPeer[r.EvaluatedID] == nil {
				a.perPeer[r.EvaluatedID] = map[string]float64{}
			}
			a.perPeer[r.EvaluatedID][r.QuestionID] = r.Score

			others := make([]float64, 0, len(byPair[k]))
			for _, s := range byPair[k] {
				if s.evaluator != r.EvaluatorID {
					others = append(others, s.value)
				}
			}
			if len(others) > 0 {
				a.devSum += math.Abs(r.Score - Median(others))
				a.devN++
			}
		case submission.TypeComment:
			a.commentLens = append(a.commentLens, len(r.Comment))
			a.commentPairs[k] = true
		}
	}

	var out []Metrics
	for _, s := range idx.Students() {
		if s.Kind != roster.Known || !roster.IsCanonicalID(s.ID) {
			continue
		}
		a := accs[s.ID]
		if a == nil {
			out = append(out, Metrics{EvaluatorID: s.ID})
			continue
		}
		out = append(out, a.metrics(s.ID))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EvaluatorID < out[j].EvaluatorID })
	return out
}

func (a *accumulator) metrics(id string) Metrics {
	m := Metrics{
		EvaluatorID:  id,
		ScoredCount:  len(a.scores),
		CommentCount: len(a.commentLens),
	}
	if n := len(a.scores); n > 0 {
		m.Mean = mean(a.scores)
		m.StdDev = PopStdDev(a.scores)
		m.Min, m.Max = minMax(a.scores)
		m.Range = m.Max - m.Min

		var atMax, atMin int
		distinct := map[float64]bool{}
		for _, v := range a.scores {
			distinct[v] = true
			if v == submission.ScoreMax {
				atMax++
			}
			if v == submission.ScoreMin {
				atMin++
			}
		}
		m.DistinctValues = len(distinct)
		m.PctMax = 100 * float64(atMax) / float64(n)
		m.PctMin = 100 * float64(atMin) / float64(n)
		m.PctMid = 100 - m.PctMax - m.PctMin
	}

	if a.devN > 0 {
		m.ConsensusDeviation = a.devSum / float64(a.devN)
		m.ConsensusSamples = a.devN
	}

	var spreadSum float64
	for _, byQuestion := range a.perPeer {
		if len(byQuestion) < 2 {
			continue
		}
		vals := make([]float64, 0, len(byQuestion))
		for _, v := range byQuestion {
			vals = append(vals, v)
		}
		spreadSum += PopStdDev(vals)
		m.IntraPeerPairs++
	}
	if m.IntraPeerPairs > 0 {
		m.IntraPeerSpread = spreadSum / float64(m.IntraPeerPairs)
	}

	if len(a.scoredPairs) > 0 {
		both := 0
		for k := range a.scoredPairs {
			if a.commentPairs[k] {
				both++
			}
		}
		m.CommentCoverage = 100 * float64(both) / float64(len(a.scoredPairs))
	}
	if len(a.commentLens) > 0 {
		total := 0
		for _, l := range a.commentLens {
			total += l
		}
		m.MeanCommentLen = float64(total) / float64(len(a.commentLens))
	}
	return m
}

// Median returns the middle value of vs (mean of the two middle values
// for even counts). vs is not modified.
func Median(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vs...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// PopStdDev returns the population standard deviation, 0 with fewer
// than 2 samples.
func PopStdDev(vs []float64) float64 {
	if len(vs) < 2 {
		return 0
	}
	mu := mean(vs)
	var ss float64
	for _, v := range vs {
		d := v - mu
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vs)))
}

func mean(vs []float64) float64 {
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func minMax(vs []float64) (lo, hi float64) {
	lo, hi = vs[0], vs[0]
	for _, v := range vs[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
