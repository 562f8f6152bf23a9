package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/crewlab/peereval/internal/db"
	"github.com/crewlab/peereval/internal/pipeline"
	"github.com/crewlab/peereval/internal/tabular"
)

// POST /runs
func RunHandler(runner *pipeline.Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum, err := runner.Run(r.Context(), r.RemoteAddr)
		if err != nil {
			if errors.Is(err, db.ErrRunInProgress) {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			http.Error(w, "run failed: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(sum)
	}
}

// POST /reports/verify
func VerifyHandler(runner *pipeline.Runner, store *tabular.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := runner.Verify(r.Context(), store)
		if err != nil {
			http.Error(w, "verify failed: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"discrepancies":  res.Discrepancies,
			"still_missing":  res.StillMissing,
			"not_applicable": res.NotApplicable,
		})
	}
}

// GET /reports/evaluators
func EvaluatorReportHandler(store *tabular.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := store.EvaluatorReport(r.Context())
		if err != nil {
			http.Error(w, "evaluator report: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(rows)
	}
}

// GET /reports/scores
func ScoreReportHandler(store *tabular.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scores, overall, err := store.ScoreReport(r.Context())
		if err != nil {
			http.Error(w, "score report: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"scores":  scores,
			"overall": overall,
		})
	}
}

// GET /reports/missing
func MissingReportHandler(store *tabular.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := store.MissingReport(r.Context())
		if err != nil {
			http.Error(w, "missing report: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(rows)
	}
}

// GET /reports/discrepancies
func DiscrepancyReportHandler(store *tabular.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := store.DiscrepancyReport(r.Context())
		if err != nil {
			http.Error(w, "discrepancy report: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(rows)
	}
}
