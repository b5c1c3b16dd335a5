package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/atlastrail/render/internal/apperror"
	"github.com/atlastrail/render/internal/job"
	"github.com/atlastrail/render/internal/store"
)

// JobStore is the persistence surface the HTTP handlers need.
type JobStore interface {
	CreateJob(ctx context.Context, jobType job.Type, params []byte) (*job.RenderJob, error)
	GetJob(ctx context.Context, id uuid.UUID) (*job.RenderJob, error)
}

type enqueueRequest struct {
	JobType job.Type        `json:"job_type"`
	Params  json.RawMessage `json:"params"`
}

type jobResponse struct {
	ID        uuid.UUID       `json:"id"`
	JobType   job.Type        `json:"job_type"`
	Status    job.Status      `json:"status"`
	Progress  int             `json:"progress"`
	Params    json.RawMessage `json:"params"`
	OutputURL *string         `json:"output_url"`
	Logs      *string         `json:"logs,omitempty"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

// handleEnqueue validates the params for the requested job type before
// anything is persisted, so a malformed job never reaches the queue.
func (s *Server) handleEnqueue(w http.ResponseWriter, r *http.Request) {
	var req enqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperror.WriteJSON(w, r, apperror.Wrap(err, apperror.ErrBadRequest))
		return
	}

	if _, err := job.DecodeParams(req.JobType, req.Params); err != nil {
		if errors.Is(err, job.ErrUnknownType) {
			apperror.WriteJSON(w, r, apperror.Wrap(err, apperror.ErrUnknownJobType))
			return
		}
		apperror.WriteJSON(w, r, apperror.Wrap(err, apperror.ErrValidation))
		return
	}

	j, err := s.store.CreateJob(r.Context(), req.JobType, req.Params)
	if err != nil {
		apperror.WriteJSON(w, r, apperror.Wrap(err, apperror.ErrInternal))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"ok":  true,
		"job": toJobResponse(j),
	})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apperror.WriteJSON(w, r, apperror.Wrap(err, apperror.ErrBadRequest))
		return
	}

	j, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrJobNotFound) {
			apperror.WriteJSON(w, r, apperror.Wrap(err, apperror.ErrNotFound))
			return
		}
		apperror.WriteJSON(w, r, apperror.Wrap(err, apperror.ErrInternal))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":  true,
		"job": toJobResponse(j),
	})
}

func toJobResponse(j *job.RenderJob) jobResponse {
	return jobResponse{
		ID:        j.ID,
		JobType:   j.JobType,
		Status:    j.Status,
		Progress:  j.Progress,
		Params:    j.Params,
		OutputURL: j.OutputURL,
		Logs:      j.Logs,
		CreatedAt: j.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: j.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
