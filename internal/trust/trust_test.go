package trust

import (
	"math"
	"testing"

	"github.com/crewlab/peereval/internal/evalstats"
)

func TestZeroScoresZeroWeight(t *testing.T) {
	w := Weigh(evalstats.Metrics{EvaluatorID: "U2100001A"}, DefaultConfig())
	if w != 0 {
		t.Fatalf("weight = %v, want 0", w)
	}
}

func TestInsufficientDataFloor(t *testing.T) {
	cfg := DefaultConfig()
	for n := 1; n <= 4; n++ {
		// extreme values must not matter below the participation floor
		m := evalstats.Metrics{ScoredCount: n, Mean: 5, PctMax: 100, DistinctValues: 1}
		if w := Weigh(m, cfg); w != 0.4 {
			t.Errorf("n=%d: weight = %v, want exactly 0.4", n, w)
		}
	}
}

func TestSingleValueRubberStamp(t *testing.T) {
	// one value (3) given to 10 peers: only the range-restriction
	// penalty applies
	m := evalstats.Metrics{
		EvaluatorID:    "U2100001A",
		ScoredCount:    10,
		Mean:           3,
		DistinctValues: 1,
	}
	w := Weigh(m, DefaultConfig())
	if math.Abs(w-0.70) > 1e-9 {
		t.Fatalf("weight = %v, want exactly 0.70", w)
	}
}

func TestWarmBiasTiers(t *testing.T) {
	cfg := DefaultConfig()
	base := evalstats.Metrics{ScoredCount: 10, DistinctValues: 4, StdDev: 1.0, PctMin: 10}

	mild := base
	mild.Mean = 4.3
	if w := Weigh(mild, cfg); math.Abs(w-0.85) > 1e-9 {
		t.Errorf("mild warm bias: %v, want 0.85", w)
	}
	severe := base
	severe.Mean = 4.8
	if w := Weigh(severe, cfg); math.Abs(w-0.75) > 1e-9 {
		t.Errorf("severe warm bias: %v, want 0.75", w)
	}
}

func TestColdBiasTiers(t *testing.T) {
	cfg := DefaultConfig()
	base := evalstats.Metrics{ScoredCount: 10, DistinctValues: 4, StdDev: 1.0, PctMin: 10}

	mild := base
	mild.Mean = 2.0
	if w := Weigh(mild, cfg); math.Abs(w-0.85) > 1e-9 {
		t.Errorf("mild cold bias: %v, want 0.85", w)
	}
	severe := base
	severe.Mean = 1.5
	if w := Weigh(severe, cfg); math.Abs(w-0.75) > 1e-9 {
		t.Errorf("severe cold bias: %v, want 0.75", w)
	}
}

func TestFloorAfterStackedPenalties(t *testing.T) {
	// a thoroughly penalized evaluator who still participated keeps 0.4
	m := evalstats.Metrics{
		ScoredCount:    20,
		Mean:           4.9,
		PctMax:         95,
		DistinctValues: 1,
	}
	if w := Weigh(m, DefaultConfig()); w != 0.4 {
		t.Fatalf("weight = %v, want floor 0.4", w)
	}
}

func TestCommentCoverageBonusCapped(t *testing.T) {
	// full coverage on clean behavior must not push past 1.0
	m := evalstats.Metrics{
		ScoredCount:     10,
		Mean:            3.2,
		StdDev:          1.1,
		DistinctValues:  5,
		PctMin:          10,
		CommentCoverage: 90,
	}
	if w := Weigh(m, DefaultConfig()); w != 1.0 {
		t.Fatalf("weight = %v, want capped 1.0", w)
	}
}

func TestBoundsProperty(t *testing.T) {
	cfg := DefaultConfig()
	for n := 0; n <= 30; n++ {
		for _, mean := range []float64{1, 1.9, 2.5, 3.8, 4.4, 5} {
			for _, distinct := range []int{1, 2, 3, 5} {
				m := evalstats.Metrics{
					ScoredCount:        n,
					Mean:               mean,
					DistinctValues:     distinct,
					PctMax:             95,
					IntraPeerPairs:     2,
					IntraPeerSpread:    0.1,
					ConsensusSamples:   10,
					ConsensusDeviation: 2,
					CommentCoverage:    90,
				}
				w := Weigh(m, cfg)
				if w < 0 || w > 1 {
					t.Fatalf("weight out of bounds: %v for %+v", w, m)
				}
				if n == 0 && w != 0 {
					t.Fatalf("zero scores must mean zero weight, got %v", w)
				}
				if n > 0 && w == 0 {
					t.Fatalf("participant got zero weight: %+v", m)
				}
				if n > 0 && w < 0.4 {
					t.Fatalf("participant below floor: %v", w)
				}
			}
		}
	}
}
