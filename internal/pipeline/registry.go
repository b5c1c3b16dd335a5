package pipeline

import (
	"fmt"
	"sync"

	"github.com/atlastrail/render/internal/job"
)

type Registry struct {
	pipelines map[job.Type]Pipeline
	mu        sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		pipelines: make(map[job.Type]Pipeline),
	}
}

func (r *Registry) Register(jobType job.Type, p Pipeline) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pipelines[jobType] = p
}

func (r *Registry) Get(jobType job.Type) (Pipeline, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.pipelines[jobType]
	return p, ok
}

func (r *Registry) GetOrError(jobType job.Type) (Pipeline, error) {
	p, ok := r.Get(jobType)
	if !ok {
		return nil, fmt.Errorf("%w: no pipeline for job_type %q", ErrValidation, jobType)
	}
	return p, nil
}

func (r *Registry) Types() []job.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]job.Type, 0, len(r.pipelines))
	for t := range r.pipelines {
		types = append(types, t)
	}
	return types
}
