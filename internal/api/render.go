package api

import (
	"encoding/json"
	"net/http"

	"github.com/atlastrail/render/internal/apperror"
	"github.com/atlastrail/render/internal/job"
	"github.com/atlastrail/render/internal/logger"
	"github.com/atlastrail/render/internal/worker"
)

const maxRenderLimit = 10

type renderRequest struct {
	Limit int `json:"limit"`
}

type renderResult struct {
	JobType   job.Type   `json:"job_type"`
	Status    job.Status `json:"status"`
	OutputURL string     `json:"output_url,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// handleRender claims up to limit queued jobs and processes them before
// responding. An empty queue is a success, a processing failure on a
// single-job pass is reported as the request's failure.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperror.WriteJSON(w, r, apperror.Wrap(err, apperror.ErrBadRequest))
			return
		}
	}
	if req.Limit < 1 {
		req.Limit = 1
	}
	if req.Limit > maxRenderLimit {
		req.Limit = maxRenderLimit
	}

	results, err := s.runner.Run(r.Context(), req.Limit)
	if err != nil {
		apperror.WriteJSON(w, r, apperror.Wrap(err, apperror.ErrInternal))
		return
	}

	if len(results) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"message": "no jobs",
		})
		return
	}

	if len(results) == 1 {
		res := results[0]
		if res.Status == job.StatusFailed {
			logger.FromContext(r.Context()).Warn("render pass failed",
				"job_id", res.JobID, "error", res.Err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"ok":    false,
				"job":   res.JobID,
				"error": res.Err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":     true,
			"job":    res.JobID,
			"result": toRenderResult(res),
		})
		return
	}

	out := make(map[string]renderResult, len(results))
	for _, res := range results {
		out[res.JobID.String()] = toRenderResult(res)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"results": out,
	})
}

func toRenderResult(res worker.Result) renderResult {
	rr := renderResult{
		JobType:   res.JobType,
		Status:    res.Status,
		OutputURL: res.OutputURL,
	}
	if res.Err != nil {
		rr.Error = res.Err.Error()
	}
	return rr
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
