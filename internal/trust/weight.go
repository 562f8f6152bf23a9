package trust

import "github.com/crewlab/peereval/internal/evalstats"

// Weigh maps one evaluator's metrics to a weight in [0, 1]. The same
// metrics always yield the same weight; only zero-participation
// evaluators get exactly 0.
func Weigh(m evalstats.Metrics, cfg Config) float64 {
	if m.ScoredCount == 0 {
		return 0
	}
	if m.ScoredCount < cfg.MinScores {
		// insufficient data to judge behavior either way
		return cfg.FloorWeight
	}

	w := 1.0

	switch {
	case m.Mean > cfg.WarmMeanSevere:
		w -= cfg.BiasPenaltySev
	case m.Mean > cfg.WarmMean:
		w -= cfg.BiasPenalty
	case m.Mean < cfg.ColdMeanSevere:
		w -= cfg.BiasPenaltySev
	case m.Mean < cfg.ColdMean:
		w -= cfg.BiasPenalty
	}

	if m.PctMax > cfg.HighMaxPct {
		w -= cfg.MaxPctPenalty
		if m.PctMax > cfg.VeryHighMaxPct {
			w -= cfg.VeryMaxPctPenalty
		}
	}

	if m.PctMin < cfg.LowMinPct && m.Mean > cfg.ElevatedMean {
		w -= cfg.MinAvoidedPenalty
	}

	switch m.DistinctValues {
	case 1:
		w -= cfg.OneValuePenalty
	case 2:
		w -= cfg.TwoValuePenalty
	default:
		if m.StdDev < cfg.LowStdDev && m.ScoredCount >= cfg.LowStdDevSamples {
			w -= cfg.LowStdDevPenalty
		}
	}

	if m.IntraPeerPairs > 0 && m.IntraPeerSpread < cfg.LowIntraPeerSpread &&
		m.ScoredCount >= cfg.IntraPeerSamples {
		w -= cfg.IntraPeerPenalty
	}

	if m.ConsensusSamples >= cfg.ConsensusSamples && m.ConsensusDeviation > cfg.HighConsensusDev {
		w -= cfg.ConsensusDevPenalty
	}

	if m.CommentCoverage >= cfg.CoverageBonusPct {
		w += cfg.CoverageBonus
		if m.CommentCoverage >= cfg.CoverageBonusHighPct {
			w += cfg.CoverageBonus
		}
	}

	if w > 1 {
		w = 1
	}
	if w < 0 {
		w = 0
	}
	// anyone who participated meaningfully keeps at least the floor
	if w < cfg.FloorWeight {
		w = cfg.FloorWeight
	}
	return w
}

// WeighAll computes weights keyed by evaluator id.
func WeighAll(metrics []evalstats.Metrics, cfg Config) map[string]float64 {
	out := make(map[string]float64, len(metrics))
	for _, m := range metrics {
		out[m.EvaluatorID] = Weigh(m, cfg)
	}
	return out
}
