package sweep

import "context"

// Job is one unit of periodic work run by the Runner
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry holds jobs in registration order
type Registry struct {
	jobs []Job
}

// NewRegistry builds a registry with the given jobs, skipping nils
func NewRegistry(jobs ...Job) *Registry {
	r := &Registry{}
	for _, job := range jobs {
		r.Register(job)
	}
	return r
}

// Register appends a job
func (r *Registry) Register(job Job) {
	if job == nil {
		return
	}
	r.jobs = append(r.jobs, job)
}

// Jobs returns a copy of the registered jobs
func (r *Registry) Jobs() []Job {
	jobs := make([]Job, len(r.jobs))
	copy(jobs, r.jobs)
	return jobs
}
