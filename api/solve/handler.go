package solve

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kilianp07/invsched/api/runs"
	"github.com/kilianp07/invsched/core/model"
	"github.com/kilianp07/invsched/core/scheduler"
)

// maxBody bounds the size of a posted instance.
const maxBody = 1 << 20

// Solver runs and records a solve.
type Solver interface {
	Solve(ctx context.Context, inst *model.Instance) (string, scheduler.Result, error)
}

// Response is the body returned by POST /api/solve.
type Response struct {
	RunID  string           `json:"run_id"`
	Result scheduler.Result `json:"result"`
}

// NewHandler returns an HTTP handler solving instances posted as JSON via
// POST /api/solve. Invalid instances yield 400, exhausted search budgets 422.
func NewHandler(s Solver, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !runs.Authorized(r, token) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		inst, err := model.DecodeInstance(http.MaxBytesReader(w, r.Body, maxBody), "json")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		runID, res, err := s.Solve(r.Context(), inst)
		switch {
		case errors.Is(err, model.ErrInvalidInstance):
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		case errors.Is(err, scheduler.ErrSearchLimitExceeded):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		case err != nil:
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(Response{RunID: runID, Result: res}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
