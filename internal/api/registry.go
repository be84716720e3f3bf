package api

import (
	"sort"
	"sync"

	"github.com/backmassage/vconv/internal/job"
)

// Registry keeps every job started through the API for the life of the
// process. Completed jobs are retained so their outcome can be polled.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*job.Job
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*job.Job)}
}

// Add records j under its ID.
func (r *Registry) Add(j *job.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[j.ID] = j
}

// Get returns the job with id, if any.
func (r *Registry) Get(id string) (*job.Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[id]
	return j, ok
}

// List returns all jobs, oldest first.
func (r *Registry) List() []*job.Job {
	r.mu.RLock()
	out := make([]*job.Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		out = append(out, j)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(a, b int) bool {
		if out[a].Started.Equal(out[b].Started) {
			return out[a].ID < out[b].ID
		}
		return out[a].Started.Before(out[b].Started)
	})
	return out
}
