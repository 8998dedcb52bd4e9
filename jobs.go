package main

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	jobQueued     = "queued"
	jobProcessing = "processing"
	jobDone       = "done"
	jobFailed     = "failed"
)

// job is one asynchronous extraction. Jobs live in memory only and vanish on
// restart.
type job struct {
	ID        string           `json:"id"`
	Status    string           `json:"status"`
	Percent   int              `json:"percent"`
	Stage     string           `json:"stage"`
	Error     string           `json:"error,omitempty"`
	Result    *processorResult `json:"result,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

type jobStore struct {
	mu   sync.RWMutex
	jobs map[string]*job
}

func newJobStore() *jobStore {
	return &jobStore{jobs: map[string]*job{}}
}

func (s *jobStore) create() job {
	j := &job{ID: uuid.NewString(), Status: jobQueued, Stage: jobQueued, CreatedAt: time.Now().UTC()}
	s.mu.Lock()
	s.jobs[j.ID] = j
	s.mu.Unlock()
	return *j
}

// get returns a copy so callers never race with the worker.
func (s *jobStore) get(id string) (job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return job{}, false
	}
	return *j, true
}

func (s *jobStore) start(id string) {
	s.update(id, func(j *job) { j.Status = jobProcessing })
}

// progress ignores updates once the job has settled.
func (s *jobStore) progress(id string, percent int, stage string) {
	s.update(id, func(j *job) {
		if j.Status == jobDone || j.Status == jobFailed {
			return
		}
		j.Percent = percent
		j.Stage = stage
	})
}

func (s *jobStore) finish(id string, res *processorResult) {
	s.update(id, func(j *job) {
		j.Status = jobDone
		j.Percent = 100
		j.Stage = jobDone
		j.Result = res
	})
}

func (s *jobStore) fail(id, msg string) {
	s.update(id, func(j *job) {
		j.Status = jobFailed
		j.Percent = 100
		j.Stage = jobFailed
		j.Error = msg
	})
}

func (s *jobStore) delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[id]
	delete(s.jobs, id)
	return ok
}

func (s *jobStore) update(id string, fn func(*job)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[id]; ok {
		fn(j)
	}
}
