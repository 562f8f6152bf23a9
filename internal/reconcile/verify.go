package reconcile

import (
	"github.com/crewlab/peereval/internal/roster"
	"github.com/crewlab/peereval/internal/submission"
)

// ReportEntry is one row of a previously generated gap report.
type ReportEntry struct {
	EvaluatorID   string
	Unit          string
	PeerID        string
	NotApplicable bool
}

// VerifyResult classifies a stored gap report against current data.
type VerifyResult struct {
	// Discrepancies are report entries whose pair is now present in the
	// actual-assessed set: the report is stale for them.
	Discrepancies []Entry
	StillMissing  int
	NotApplicable int
}

// Verify re-derives the actual-assessed set from current responses and
// checks each stored report entry against it.
func Verify(report []ReportEntry, idx *roster.RosterIndex, responses []submission.Response) VerifyResult {
	actual := actualAssessed(idx, responses)

	var res VerifyResult
	for _, e := range report {
		if e.NotApplicable {
			res.NotApplicable++
			continue
		}
		if actual[pair{e.EvaluatorID, e.Unit}][e.PeerID] {
			res.Discrepancies = append(res.Discrepancies, Entry{
				EvaluatorID: e.EvaluatorID, Unit: e.Unit, PeerID: e.PeerID,
			})
			continue
		}
		res.StillMissing++
	}
	return res
}
