// Package trust maps evaluator metrics to a bounded bias-correction
// weight through a deterministic rule cascade.
package trust

// Config names every threshold of the weighting cascade so policy can
// be tuned and tested apart from the aggregation math.
type Config struct {
	// MinScores is the participation floor: evaluators with fewer
	// scores are pinned to FloorWeight without further analysis.
	MinScores   int
	FloorWeight float64

	// Score-bias thresholds on the evaluator's mean, two tiers each way.
	WarmMean       float64 // mean above this: mild warm bias
	WarmMeanSevere float64
	ColdMean       float64 // mean below this: mild cold bias
	ColdMeanSevere float64
	BiasPenalty    float64
	BiasPenaltySev float64

	// Extremity: heavy use of the scale maximum.
	HighMaxPct        float64
	VeryHighMaxPct    float64
	MaxPctPenalty     float64
	VeryMaxPctPenalty float64

	// Low-score avoidance: almost no minimum scores while the mean
	// stays elevated.
	LowMinPct         float64
	ElevatedMean      float64
	MinAvoidedPenalty float64

	// Range restriction.
	OneValuePenalty  float64
	TwoValuePenalty  float64
	LowStdDev        float64
	LowStdDevSamples int
	LowStdDevPenalty float64

	// Rubber-stamping: near-identical scores per peer across questions.
	LowIntraPeerSpread float64
	IntraPeerSamples   int
	IntraPeerPenalty   float64

	// Systematic disagreement with the peer consensus.
	HighConsensusDev    float64
	ConsensusSamples    int
	ConsensusDevPenalty float64

	// Comment-coverage bonuses, two increasing tiers.
	CoverageBonusPct     float64
	CoverageBonusHighPct float64
	CoverageBonus        float64
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		MinScores:   5,
		FloorWeight: 0.4,

		WarmMean:       4.2,
		WarmMeanSevere: 4.5,
		ColdMean:       2.2,
		ColdMeanSevere: 1.8,
		BiasPenalty:    0.15,
		BiasPenaltySev: 0.25,

		HighMaxPct:        80,
		VeryHighMaxPct:    90,
		MaxPctPenalty:     0.20,
		VeryMaxPctPenalty: 0.15,

		LowMinPct:         5,
		ElevatedMean:      3.8,
		MinAvoidedPenalty: 0.10,

		OneValuePenalty:  0.30,
		TwoValuePenalty:  0.20,
		LowStdDev:        0.35,
		LowStdDevSamples: 8,
		LowStdDevPenalty: 0.10,

		LowIntraPeerSpread: 0.30,
		IntraPeerSamples:   6,
		IntraPeerPenalty:   0.15,

		HighConsensusDev:    1.20,
		ConsensusSamples:    6,
		ConsensusDevPenalty: 0.15,

		CoverageBonusPct:     60,
		CoverageBonusHighPct: 85,
		CoverageBonus:        0.05,
	}
}
