// Package reconcile computes expected-vs-actual peer evaluation pairs
// per unit and re-checks previously produced gap reports.
package reconcile

import (
	"sort"

	"github.com/crewlab/peereval/internal/roster"
	"github.com/crewlab/peereval/internal/submission"
)

// Entry is one expected-but-absent evaluation: evaluator never assessed
// peer within unit.
type Entry struct {
	EvaluatorID string
	Unit        string
	PeerID      string
}

type pair struct{ evaluator, unit string }

// actualAssessed derives, from responses, the set of peers each
// evaluator assessed per unit. A response with an unknown unit context
// counts toward the evaluator's primary unit.
func actualAssessed(idx *roster.RosterIndex, responses []submission.Response) map[pair]map[string]bool {
	actual := map[pair]map[string]bool{}
	for _, r := range responses {
		unit := r.UnitContext
		if unit == "" {
			ev, ok := idx.Lookup(r.EvaluatorID)
			if !ok {
				continue
			}
			unit = ev.PrimaryUnit()
		}
		if unit == "" {
			continue
		}
		k := pair{r.EvaluatorID, unit}
		peers, ok := actual[k]
		if !ok {
			peers = map[string]bool{}
			actual[k] = peers
		}
		peers[r.EvaluatedID] = true
	}
	return actual
}

// Missing returns, for every evaluator and every unit they belong to,
// the unit peers the evaluator has not assessed, sorted by evaluator id
// then unit then peer id.
func Missing(idx *roster.RosterIndex, responses []submission.Response) []Entry {
	actual := actualAssessed(idx, responses)

	var out []Entry
	for _, unit := range roster.Units {
		members := idx.UnitMembers(unit)
		for _, ev := range members {
			assessed := actual[pair{ev.ID, unit}]
			for _, peer := range members {
				if peer.ID == ev.ID {
					continue
				}
				if !assessed[peer.ID] {
					out = append(out, Entry{EvaluatorID: ev.ID, Unit: unit, PeerID: peer.ID})
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.EvaluatorID != b.EvaluatorID {
			return a.EvaluatorID < b.EvaluatorID
		}
		if a.Unit != b.Unit {
			return a.Unit < b.Unit
		}
		return a.PeerID < b.PeerID
	})
	return out
}
